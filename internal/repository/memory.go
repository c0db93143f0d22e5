package repository

import (
	"context"
	"sort"
	"sync"

	"restaurant-service/internal/entity"
)

// MemoryRestaurantStore is an in-process RestaurantStore. The uniqueness check
// and the write happen under the same lock, so a duplicate CNPJ can never be
// committed by two concurrent callers.
type MemoryRestaurantStore struct {
	mu     sync.RWMutex
	nextID int
	byID   map[int]entity.Restaurant
	byCNPJ map[string]int
}

func NewMemoryRestaurantStore() *MemoryRestaurantStore {
	return &MemoryRestaurantStore{
		nextID: 1,
		byID:   make(map[int]entity.Restaurant),
		byCNPJ: make(map[string]int),
	}
}

func (m *MemoryRestaurantStore) FindAll(_ context.Context) ([]entity.Restaurant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]entity.Restaurant, 0, len(m.byID))
	for _, r := range m.byID {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryRestaurantStore) FindByID(_ context.Context, id int) (*entity.Restaurant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (m *MemoryRestaurantStore) FindByCNPJ(_ context.Context, cnpj string) (*entity.Restaurant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byCNPJ[cnpj]
	if !ok {
		return nil, ErrNotFound
	}
	r := m.byID[id]
	return &r, nil
}

func (m *MemoryRestaurantStore) Insert(_ context.Context, in entity.RestaurantInput) (*entity.Restaurant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.byCNPJ[in.CNPJ]; taken {
		return nil, ErrDuplicateBusinessID
	}

	r := in.ToRestaurant(m.nextID)
	m.nextID++
	m.byID[r.ID] = r
	m.byCNPJ[r.CNPJ] = r.ID
	return &r, nil
}

func (m *MemoryRestaurantStore) Replace(_ context.Context, id int, in entity.RestaurantInput) (*entity.Restaurant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	if owner, taken := m.byCNPJ[in.CNPJ]; taken && owner != id {
		return nil, ErrDuplicateBusinessID
	}

	delete(m.byCNPJ, current.CNPJ)
	r := in.ToRestaurant(id)
	m.byID[id] = r
	m.byCNPJ[r.CNPJ] = id
	return &r, nil
}

func (m *MemoryRestaurantStore) Delete(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	delete(m.byID, id)
	delete(m.byCNPJ, r.CNPJ)
	return nil
}

// Len returns the number of stored restaurants.
func (m *MemoryRestaurantStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}

// MemoryUserStore is an in-process UserStore with unique username and email.
type MemoryUserStore struct {
	mu     sync.RWMutex
	nextID int
	users  map[int]entity.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{nextID: 1, users: make(map[int]entity.User)}
}

func (m *MemoryUserStore) Create(_ context.Context, user *entity.User) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == user.Username {
			return nil, ErrDuplicateUsername
		}
		if u.Email == user.Email {
			return nil, ErrDuplicateEmail
		}
	}

	created := *user
	created.ID = m.nextID
	m.nextID++
	m.users[created.ID] = created
	return &created, nil
}

func (m *MemoryUserStore) FindByID(_ context.Context, id int) (*entity.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *MemoryUserStore) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryUserStore) List(_ context.Context) ([]entity.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]entity.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryUserStore) Delete(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.users, id)
	return nil
}
