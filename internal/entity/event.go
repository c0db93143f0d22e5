package entity

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// RestaurantEvent is the payload written to the restaurant topic after a
// successful write. Deleted events carry only the id.
type RestaurantEvent struct {
	EventID    string     `json:"event_id"`
	Type       string     `json:"type"`
	Restaurant Restaurant `json:"restaurant"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// EventKey returns the message key for an event, e.g. "restaurant.created.12".
func EventKey(eventType string, id int) string {
	return fmt.Sprintf("restaurant.%s.%d", eventType, id)
}

// ParseEventKey is the inverse of EventKey.
func ParseEventKey(key string) (string, int, error) {
	parts := strings.Split(key, ".")
	if len(parts) != 3 || parts[0] != "restaurant" || parts[1] == "" {
		return "", 0, fmt.Errorf("malformed event key %q", key)
	}
	id, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", 0, fmt.Errorf("malformed event key %q: %w", key, err)
	}
	return parts[1], id, nil
}
