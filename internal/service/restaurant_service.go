package service

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"restaurant-service/internal/entity"
	"restaurant-service/internal/repository"
	"restaurant-service/internal/search"
	"restaurant-service/internal/validation"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// EventWriter publishes restaurant events. *kafka.Writer satisfies it.
type EventWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type RestaurantService struct {
	store     repository.RestaurantStore
	validator *validation.Validator
	events    EventWriter
	cache     *restaurantCache
	now       func() time.Time
}

// NewRestaurantService creates a new instance of RestaurantService. events and
// rdb may be nil, in which case publishing and caching are skipped.
func NewRestaurantService(store repository.RestaurantStore, events EventWriter, rdb Cache, cacheTTL time.Duration) *RestaurantService {
	s := &RestaurantService{
		store:     store,
		validator: validation.New(),
		events:    events,
		now:       time.Now,
	}
	if rdb != nil {
		s.cache = &restaurantCache{rdb: rdb, ttl: cacheTTL}
	}
	return s
}

// Create validates in and inserts a new restaurant.
func (s *RestaurantService) Create(ctx context.Context, in entity.RestaurantInput) (*entity.Restaurant, error) {
	in, err := s.validator.Restaurant(in)
	if err != nil {
		return nil, err
	}

	restaurant, err := s.store.Insert(ctx, in)
	if err != nil {
		logger.Error().Err(err).Msgf("Error creating restaurant with CNPJ %s", in.CNPJ)
		return nil, err
	}

	logger.Info().Msgf("Created restaurant %d", restaurant.ID)
	s.afterWrite(ctx, entity.EventCreated, *restaurant)
	return restaurant, nil
}

// List returns every restaurant in id order.
func (s *RestaurantService) List(ctx context.Context) ([]entity.Restaurant, error) {
	var cached []entity.Restaurant
	key, hit := s.cache.load(ctx, "all", &cached)
	if hit {
		return cached, nil
	}

	restaurants, err := s.store.FindAll(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing restaurants")
		return nil, err
	}

	s.cache.store(ctx, key, restaurants)
	return restaurants, nil
}

func (s *RestaurantService) Get(ctx context.Context, id int) (*entity.Restaurant, error) {
	var cached entity.Restaurant
	key, hit := s.cache.load(ctx, "id:"+strconv.Itoa(id), &cached)
	if hit {
		return &cached, nil
	}

	restaurant, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.store(ctx, key, restaurant)
	return restaurant, nil
}

// Update replaces every mutable field of restaurant id.
func (s *RestaurantService) Update(ctx context.Context, id int, in entity.RestaurantInput) (*entity.Restaurant, error) {
	in, err := s.validator.Restaurant(in)
	if err != nil {
		return nil, err
	}

	restaurant, err := s.store.Replace(ctx, id, in)
	if err != nil {
		logger.Error().Err(err).Msgf("Error updating restaurant %d", id)
		return nil, err
	}

	logger.Info().Msgf("Updated restaurant %d", id)
	s.afterWrite(ctx, entity.EventUpdated, *restaurant)
	return restaurant, nil
}

func (s *RestaurantService) Delete(ctx context.Context, id int) error {
	if err := s.store.Delete(ctx, id); err != nil {
		logger.Error().Err(err).Msgf("Error deleting restaurant %d", id)
		return err
	}

	logger.Info().Msgf("Deleted restaurant %d", id)
	s.afterWrite(ctx, entity.EventDeleted, entity.Restaurant{ID: id})
	return nil
}

// Search scans every restaurant and keeps those matching all non-blank filters.
func (s *RestaurantService) Search(ctx context.Context, f search.Filters) ([]entity.Restaurant, error) {
	if f.IsEmpty() {
		return s.List(ctx)
	}

	var cached []entity.Restaurant
	key, hit := s.cache.load(ctx, "search:"+GenerateCacheKey(f), &cached)
	if hit {
		return cached, nil
	}

	all, err := s.store.FindAll(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error loading restaurants for search")
		return nil, err
	}

	logger.Debug().Msgf("Searching %d restaurants", len(all))
	result := search.SearchObserved(all, f, func(field string, remaining int) {
		logger.Debug().Str("filter", field).Int("remaining", remaining).Msg("Applied search filter")
	})

	s.cache.store(ctx, key, result)
	return result, nil
}

func (s *RestaurantService) afterWrite(ctx context.Context, eventType string, restaurant entity.Restaurant) {
	s.cache.invalidate(ctx)

	if err := s.publishRestaurantEvent(ctx, eventType, restaurant); err != nil {
		logger.Error().Err(err).Msgf("Error publishing %s event for restaurant %d", eventType, restaurant.ID)
	}
}

func (s *RestaurantService) publishRestaurantEvent(ctx context.Context, eventType string, restaurant entity.Restaurant) error {
	if s.events == nil {
		return nil
	}

	event := entity.RestaurantEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		Restaurant: restaurant,
		OccurredAt: s.now().UTC(),
	}
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return err
	}

	// restaurant.created.1 or restaurant.updated.1
	msg := kafka.Message{
		Key:   []byte(entity.EventKey(eventType, restaurant.ID)),
		Value: eventJSON,
	}
	return s.events.WriteMessages(ctx, msg)
}
