package restaurants

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/foodcart/pkg/catalog"
	pkgerrors "github.com/angelmondragon/foodcart/pkg/errors"
	"github.com/angelmondragon/foodcart/pkg/logger"
	"github.com/angelmondragon/foodcart/pkg/redis"
)

const defaultCacheTTL = 5 * time.Minute

type catalogSource interface {
	ListRestaurants(ctx context.Context) ([]catalog.Restaurant, error)
	ListMenuItems(ctx context.Context, restaurantID string) ([]catalog.MenuItem, error)
}

// Service exposes restaurant and menu lookups backed by the catalog.
type Service interface {
	ListRestaurants(ctx context.Context) ([]catalog.Restaurant, error)
	Restaurant(ctx context.Context, restaurantID string) (*catalog.Restaurant, error)
	Menu(ctx context.Context, restaurantID string) ([]catalog.MenuItem, error)
	MenuItem(ctx context.Context, restaurantID, menuItemID string) (*catalog.MenuItem, error)
	Names(ctx context.Context) (map[string]string, error)
	Refresh(ctx context.Context) error
}

type service struct {
	source catalogSource
	cache  redis.Cache
	ttl    time.Duration
	logg   *logger.Logger
}

// NewService builds the directory. cache may be nil, in which case every lookup hits the catalog.
func NewService(source catalogSource, cache redis.Cache, ttl time.Duration, logg *logger.Logger) (Service, error) {
	if source == nil {
		return nil, fmt.Errorf("catalog source required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &service{source: source, cache: cache, ttl: ttl, logg: logg}, nil
}

func (s *service) ListRestaurants(ctx context.Context) ([]catalog.Restaurant, error) {
	var restaurants []catalog.Restaurant
	if s.readCache(ctx, s.restaurantsKey(), &restaurants) {
		return restaurants, nil
	}
	return s.loadRestaurants(ctx)
}

func (s *service) Restaurant(ctx context.Context, restaurantID string) (*catalog.Restaurant, error) {
	restaurantID = strings.TrimSpace(restaurantID)
	if restaurantID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "restaurant id is required")
	}
	restaurants, err := s.ListRestaurants(ctx)
	if err != nil {
		return nil, err
	}
	for i := range restaurants {
		if restaurants[i].RestaurantID == restaurantID {
			return &restaurants[i], nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "restaurant not found")
}

func (s *service) Menu(ctx context.Context, restaurantID string) ([]catalog.MenuItem, error) {
	restaurantID = strings.TrimSpace(restaurantID)
	if restaurantID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "restaurant id is required")
	}

	key := s.menuKey(restaurantID)
	var items []catalog.MenuItem
	if s.readCache(ctx, key, &items) {
		return items, nil
	}

	items, err := s.source.ListMenuItems(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	s.writeCache(ctx, key, items)
	return items, nil
}

func (s *service) MenuItem(ctx context.Context, restaurantID, menuItemID string) (*catalog.MenuItem, error) {
	menuItemID = strings.TrimSpace(menuItemID)
	if menuItemID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "menu item id is required")
	}
	items, err := s.Menu(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].MenuItemID == menuItemID {
			return &items[i], nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
}

// Names maps every known restaurant id to its display name.
func (s *service) Names(ctx context.Context) (map[string]string, error) {
	restaurants, err := s.ListRestaurants(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(restaurants))
	for _, r := range restaurants {
		if r.RestaurantID == "" {
			continue
		}
		names[r.RestaurantID] = r.Name
	}
	return names, nil
}

// Refresh reloads the restaurant list from the catalog regardless of what is cached.
func (s *service) Refresh(ctx context.Context) error {
	restaurants, err := s.loadRestaurants(ctx)
	if err != nil {
		return err
	}
	s.logg.Debug(s.logg.WithField(ctx, "restaurant_count", len(restaurants)), "restaurant directory refreshed")
	return nil
}

func (s *service) loadRestaurants(ctx context.Context) ([]catalog.Restaurant, error) {
	restaurants, err := s.source.ListRestaurants(ctx)
	if err != nil {
		return nil, err
	}
	s.writeCache(ctx, s.restaurantsKey(), restaurants)
	return restaurants, nil
}

func (s *service) restaurantsKey() string {
	if s.cache == nil {
		return ""
	}
	return s.cache.CatalogKey("restaurants")
}

func (s *service) menuKey(restaurantID string) string {
	if s.cache == nil {
		return ""
	}
	return s.cache.CatalogKey("menu", restaurantID)
}

func (s *service) readCache(ctx context.Context, key string, out any) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, redis.ErrCacheMiss) {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"cache_key": key, "error": err.Error()}), "catalog cache read failed")
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"cache_key": key, "error": err.Error()}), "catalog cache entry unreadable")
		return false
	}
	return true
}

func (s *service) writeCache(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "catalog cache encode failed")
		return
	}
	if err := s.cache.Set(ctx, key, string(payload), s.ttl); err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"cache_key": key, "error": err.Error()}), "catalog cache write failed")
	}
}
