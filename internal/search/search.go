package search

import (
	"strings"

	"restaurant-service/internal/entity"
)

// Filters holds the optional free-text criteria. Blank values are ignored.
type Filters struct {
	Name  string `json:"name" query:"name"`
	City  string `json:"city" query:"city"`
	State string `json:"state" query:"state"`
	Type  string `json:"type" query:"type"`
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (f Filters) Trimmed() Filters {
	return Filters{
		Name:  strings.TrimSpace(f.Name),
		City:  strings.TrimSpace(f.City),
		State: strings.TrimSpace(f.State),
		Type:  strings.TrimSpace(f.Type),
	}
}

// IsEmpty reports whether no filter would narrow the result.
func (f Filters) IsEmpty() bool {
	t := f.Trimmed()
	return t.Name == "" && t.City == "" && t.State == "" && t.Type == ""
}

// Observer is told how many candidates remain after each applied filter.
type Observer func(field string, remaining int)

type criterion struct {
	field string
	value string
	get   func(entity.Restaurant) string
}

// Search keeps the restaurants matching every non-blank filter. A restaurant
// matches a filter when the normalized field contains the normalized value.
// Input order is preserved and the returned slice is never nil.
func Search(all []entity.Restaurant, f Filters) []entity.Restaurant {
	return SearchObserved(all, f, nil)
}

// SearchObserved is Search with obs called after every applied filter.
// Filters run in the order name, city, state, type.
func SearchObserved(all []entity.Restaurant, f Filters, obs Observer) []entity.Restaurant {
	f = f.Trimmed()
	criteria := []criterion{
		{"name", f.Name, func(r entity.Restaurant) string { return r.Name }},
		{"city", f.City, func(r entity.Restaurant) string { return r.City }},
		{"state", f.State, func(r entity.Restaurant) string { return r.State }},
		{"type", f.Type, func(r entity.Restaurant) string { return r.Type }},
	}

	candidates := make([]entity.Restaurant, len(all))
	copy(candidates, all)

	for _, c := range criteria {
		if c.value == "" {
			continue
		}
		candidates = narrow(candidates, Normalize(c.value), c.get)
		if obs != nil {
			obs(c.field, len(candidates))
		}
	}
	return candidates
}

func narrow(candidates []entity.Restaurant, needle string, get func(entity.Restaurant) string) []entity.Restaurant {
	kept := candidates[:0]
	for _, r := range candidates {
		if strings.Contains(Normalize(get(r)), needle) {
			kept = append(kept, r)
		}
	}
	return kept
}
