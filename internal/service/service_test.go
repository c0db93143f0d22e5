package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/segmentio/kafka-go"

	"restaurant-service/internal/auth"
	"restaurant-service/internal/entity"
	"restaurant-service/internal/repository"
	"restaurant-service/internal/search"
	"restaurant-service/internal/validation"
)

type fakeWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

// fakeCache is an in-memory Cache. When broken is set every call fails.
type fakeCache struct {
	mu     sync.Mutex
	data   map[string]string
	gets   int
	broken bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string]string)}
}

func (c *fakeCache) Get(_ context.Context, key string) *redis.StringCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.broken {
		return redis.NewStringResult("", errors.New("connection refused"))
	}
	v, ok := c.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.broken {
		return redis.NewStatusResult("", errors.New("connection refused"))
	}
	switch v := value.(type) {
	case []byte:
		c.data[key] = string(v)
	case string:
		c.data[key] = v
	}
	return redis.NewStatusResult("OK", nil)
}

func (c *fakeCache) Incr(_ context.Context, key string) *redis.IntCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.broken {
		return redis.NewIntResult(0, errors.New("connection refused"))
	}
	n, _ := strconv.ParseInt(c.data[key], 10, 64)
	n++
	c.data[key] = strconv.FormatInt(n, 10)
	return redis.NewIntResult(n, nil)
}

// countingStore counts full scans so cache hits can be observed.
type countingStore struct {
	*repository.MemoryRestaurantStore
	scans int
}

func (s *countingStore) FindAll(ctx context.Context) ([]entity.Restaurant, error) {
	s.scans++
	return s.MemoryRestaurantStore.FindAll(ctx)
}

func validInput(cnpj, name, city, state, kind string) entity.RestaurantInput {
	return entity.RestaurantInput{
		CNPJ:         cnpj,
		Name:         name,
		State:        state,
		City:         city,
		Type:         kind,
		PostalCode:   "01310100",
		StreetNumber: "100",
	}
}

func TestRestaurantService_CreateCanonicalizesAndPublishes(t *testing.T) {
	writer := &fakeWriter{}
	svc := NewRestaurantService(repository.NewMemoryRestaurantStore(), writer, nil, 0)

	r, err := svc.Create(context.Background(), validInput("12345678000190", "Pizza Hut", "São Paulo", "sp", "Pizza"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if r.ID != 1 || r.CNPJ != "12.345.678/0001-90" || r.State != "SP" || r.PostalCode != "01310-100" {
		t.Errorf("unexpected restaurant %+v", r)
	}

	if len(writer.msgs) != 1 {
		t.Fatalf("expected 1 event, got %d", len(writer.msgs))
	}
	if got := string(writer.msgs[0].Key); got != "restaurant.created.1" {
		t.Errorf("event key = %s", got)
	}
	var event entity.RestaurantEvent
	if err := json.Unmarshal(writer.msgs[0].Value, &event); err != nil {
		t.Fatalf("event payload: %v", err)
	}
	if event.Type != entity.EventCreated || event.Restaurant.Name != "Pizza Hut" || event.EventID == "" {
		t.Errorf("unexpected event %+v", event)
	}
}

func TestRestaurantService_CreateValidationError(t *testing.T) {
	store := repository.NewMemoryRestaurantStore()
	writer := &fakeWriter{}
	svc := NewRestaurantService(store, writer, nil, 0)

	_, err := svc.Create(context.Background(), validInput("123", "Pizza Hut", "São Paulo", "XX", "Pizza"))
	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := verr.Fields["cnpj"]; !ok {
		t.Errorf("expected cnpj field error, got %v", verr.Fields)
	}
	if _, ok := verr.Fields["state"]; !ok {
		t.Errorf("expected state field error, got %v", verr.Fields)
	}
	if store.Len() != 0 || len(writer.msgs) != 0 {
		t.Error("nothing should be stored or published on validation failure")
	}
}

func TestRestaurantService_DuplicateCNPJ(t *testing.T) {
	store := repository.NewMemoryRestaurantStore()
	writer := &fakeWriter{}
	svc := NewRestaurantService(store, writer, nil, 0)
	ctx := context.Background()

	if _, err := svc.Create(ctx, validInput("12.345.678/0001-90", "Pizza Hut", "São Paulo", "SP", "Pizza")); err != nil {
		t.Fatal(err)
	}
	// Raw and formatted CNPJ are the same business.
	_, err := svc.Create(ctx, validInput("12345678000190", "Other", "Rio de Janeiro", "RJ", "Bar"))
	if !errors.Is(err, repository.ErrDuplicateBusinessID) {
		t.Fatalf("expected ErrDuplicateBusinessID, got %v", err)
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 restaurant, got %d", store.Len())
	}
	if len(writer.msgs) != 1 {
		t.Errorf("failed create must not publish, got %d events", len(writer.msgs))
	}
}

func TestRestaurantService_UpdateAndDelete(t *testing.T) {
	writer := &fakeWriter{}
	svc := NewRestaurantService(repository.NewMemoryRestaurantStore(), writer, nil, 0)
	ctx := context.Background()

	a, _ := svc.Create(ctx, validInput("11.111.111/0001-11", "Pizza Hut", "São Paulo", "SP", "Pizza"))
	b, _ := svc.Create(ctx, validInput("22.222.222/0001-22", "Sushi Bar", "Rio de Janeiro", "RJ", "Japanese"))

	if _, err := svc.Update(ctx, b.ID, validInput(a.CNPJ, "Sushi Bar", "Rio de Janeiro", "RJ", "Japanese")); !errors.Is(err, repository.ErrDuplicateBusinessID) {
		t.Errorf("expected ErrDuplicateBusinessID, got %v", err)
	}

	updated, err := svc.Update(ctx, a.ID, validInput(a.CNPJ, "Pizza Hut Paulista", "São Paulo", "SP", "Pizza"))
	if err != nil {
		t.Fatalf("update with own CNPJ: %v", err)
	}
	if updated.Name != "Pizza Hut Paulista" || updated.ID != a.ID {
		t.Errorf("unexpected update result %+v", updated)
	}

	if _, err := svc.Update(ctx, 99, validInput("33.333.333/0001-33", "X", "Y", "SP", "Z")); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := svc.Delete(ctx, b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, b.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
	if _, err := svc.Get(ctx, b.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	var keys []string
	for _, m := range writer.msgs {
		keys = append(keys, string(m.Key))
	}
	want := []string{"restaurant.created.1", "restaurant.created.2", "restaurant.updated.1", "restaurant.deleted.2"}
	if len(keys) != len(want) {
		t.Fatalf("events = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, keys[i], want[i])
		}
	}
}

func TestRestaurantService_PublishFailureDoesNotFailWrite(t *testing.T) {
	store := repository.NewMemoryRestaurantStore()
	svc := NewRestaurantService(store, &fakeWriter{err: errors.New("broker down")}, nil, 0)

	if _, err := svc.Create(context.Background(), validInput("12.345.678/0001-90", "Pizza Hut", "São Paulo", "SP", "Pizza")); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if store.Len() != 1 {
		t.Errorf("expected restaurant to be stored")
	}
}

func TestRestaurantService_Search(t *testing.T) {
	svc := NewRestaurantService(repository.NewMemoryRestaurantStore(), nil, nil, 0)
	ctx := context.Background()
	svc.Create(ctx, validInput("11.111.111/0001-11", "Pizza Hut", "São Paulo", "SP", "Pizza"))
	svc.Create(ctx, validInput("22.222.222/0001-22", "Sushi Bar", "Rio de Janeiro", "RJ", "Japanese"))

	tests := []struct {
		name    string
		filters search.Filters
		want    []string
	}{
		{"no filters", search.Filters{}, []string{"Pizza Hut", "Sushi Bar"}},
		{"accent-insensitive city", search.Filters{City: "sao paulo"}, []string{"Pizza Hut"}},
		{"conjunctive miss", search.Filters{Type: "pizza", City: "rio"}, []string{}},
		{"whitespace only", search.Filters{Name: "   "}, []string{"Pizza Hut", "Sushi Bar"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Search(ctx, tt.filters)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got == nil {
				t.Fatal("expected non-nil slice")
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d results, want %v", len(got), tt.want)
			}
			for i, r := range got {
				if r.Name != tt.want[i] {
					t.Errorf("result %d = %s, want %s", i, r.Name, tt.want[i])
				}
			}
		})
	}
}

func TestRestaurantService_CacheAside(t *testing.T) {
	store := &countingStore{MemoryRestaurantStore: repository.NewMemoryRestaurantStore()}
	cache := newFakeCache()
	svc := NewRestaurantService(store, nil, cache, time.Minute)
	ctx := context.Background()

	svc.Create(ctx, validInput("11.111.111/0001-11", "Pizza Hut", "São Paulo", "SP", "Pizza"))

	for i := 0; i < 3; i++ {
		got, err := svc.Search(ctx, search.Filters{City: "São Paulo"})
		if err != nil || len(got) != 1 {
			t.Fatalf("search %d: %v %v", i, got, err)
		}
	}
	if store.scans != 1 {
		t.Errorf("expected 1 scan with warm cache, got %d", store.scans)
	}

	// An equivalent filter shares the cache entry.
	svc.Search(ctx, search.Filters{City: " sao PAULO "})
	if store.scans != 1 {
		t.Errorf("expected equivalent filters to hit cache, got %d scans", store.scans)
	}

	svc.Create(ctx, validInput("22.222.222/0001-22", "Outback", "São Paulo", "SP", "Steakhouse"))
	got, _ := svc.Search(ctx, search.Filters{City: "São Paulo"})
	if len(got) != 2 {
		t.Errorf("expected write to invalidate cached search, got %d results", len(got))
	}
	if store.scans != 2 {
		t.Errorf("expected a fresh scan after write, got %d", store.scans)
	}

	svc.List(ctx)
	svc.List(ctx)
	if store.scans != 3 {
		t.Errorf("expected list to be cached after first call, got %d scans", store.scans)
	}
}

func TestRestaurantService_BrokenCacheFallsBackToStore(t *testing.T) {
	cache := newFakeCache()
	cache.broken = true
	svc := NewRestaurantService(repository.NewMemoryRestaurantStore(), nil, cache, time.Minute)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput("11.111.111/0001-11", "Pizza Hut", "São Paulo", "SP", "Pizza"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := svc.Get(ctx, created.ID)
	if err != nil || got.Name != "Pizza Hut" {
		t.Fatalf("get: %v %v", got, err)
	}
	list, err := svc.List(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v %v", list, err)
	}
}

func TestGenerateCacheKey(t *testing.T) {
	a := GenerateCacheKey(search.Filters{City: "São Paulo"})
	b := GenerateCacheKey(search.Filters{City: "  sao paulo"})
	c := GenerateCacheKey(search.Filters{Name: "sao paulo"})
	if a != b {
		t.Error("expected equivalent filters to share a key")
	}
	if a == c {
		t.Error("expected different fields to produce different keys")
	}
	if len(a) != 32 {
		t.Errorf("expected md5 hex key, got %q", a)
	}
}

func newUserService() *UserService {
	return NewUserService(repository.NewMemoryUserStore(), auth.NewTokenIssuer("test-secret", time.Hour))
}

func TestUserService_RegisterLoginMe(t *testing.T) {
	svc := newUserService()
	ctx := context.Background()

	user, err := svc.Register(ctx, entity.RegisterInput{Username: "maria", Email: "maria@example.com", Password: "supersecret"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.PasswordHash == "supersecret" || user.PasswordHash == "" {
		t.Error("expected password to be hashed")
	}

	token, err := svc.Login(ctx, entity.LoginInput{Email: "maria@example.com", Password: "supersecret"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	id, err := svc.tokens.Parse(token)
	if err != nil || id != user.ID {
		t.Fatalf("token bound to %d (%v), want %d", id, err, user.ID)
	}

	me, err := svc.Me(ctx, id)
	if err != nil || me.Username != "maria" {
		t.Fatalf("me: %v %v", me, err)
	}

	if err := svc.Delete(ctx, user.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Me(ctx, id); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound for deleted user, got %v", err)
	}
}

func TestUserService_LoginFailures(t *testing.T) {
	svc := newUserService()
	ctx := context.Background()
	svc.Register(ctx, entity.RegisterInput{Username: "maria", Email: "maria@example.com", Password: "supersecret"})

	tests := []struct {
		name  string
		input entity.LoginInput
	}{
		{"unknown email", entity.LoginInput{Email: "joao@example.com", Password: "supersecret"}},
		{"wrong password", entity.LoginInput{Email: "maria@example.com", Password: "wrongpass"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Login(ctx, tt.input); !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}

	var verr *validation.Error
	if _, err := svc.Login(ctx, entity.LoginInput{Email: "maria@example.com"}); !errors.As(err, &verr) {
		t.Errorf("expected validation error for missing password, got %v", err)
	}
}

func TestUserService_RegisterErrors(t *testing.T) {
	svc := newUserService()
	ctx := context.Background()
	svc.Register(ctx, entity.RegisterInput{Username: "maria", Email: "maria@example.com", Password: "supersecret"})

	if _, err := svc.Register(ctx, entity.RegisterInput{Username: "maria", Email: "other@example.com", Password: "supersecret"}); !errors.Is(err, repository.ErrDuplicateUsername) {
		t.Errorf("expected ErrDuplicateUsername, got %v", err)
	}
	if _, err := svc.Register(ctx, entity.RegisterInput{Username: "other", Email: "maria@example.com", Password: "supersecret"}); !errors.Is(err, repository.ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}

	var verr *validation.Error
	_, err := svc.Register(ctx, entity.RegisterInput{Username: "ab", Email: "not-an-email", Password: "short"})
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, field := range []string{"username", "email", "password"} {
		if _, ok := verr.Fields[field]; !ok {
			t.Errorf("expected %s field error, got %v", field, verr.Fields)
		}
	}

	users, _ := svc.List(ctx)
	if len(users) != 1 {
		t.Errorf("expected 1 user, got %d", len(users))
	}
}
