package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/foodcart/api/responses"
	"github.com/angelmondragon/foodcart/pkg/catalog"
	"github.com/angelmondragon/foodcart/pkg/logger"
)

type restaurantLister interface {
	ListRestaurants(ctx context.Context) ([]catalog.Restaurant, error)
	Menu(ctx context.Context, restaurantID string) ([]catalog.MenuItem, error)
}

// ListRestaurants returns the catalog's restaurants.
func ListRestaurants(svc restaurantLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		restaurants, err := svc.ListRestaurants(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]restaurantView, 0, len(restaurants))
		for _, restaurant := range restaurants {
			out = append(out, newRestaurantView(restaurant))
		}
		responses.WriteSuccess(w, map[string]any{"restaurants": out})
	}
}

// RestaurantMenu returns one restaurant's menu.
func RestaurantMenu(svc restaurantLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		restaurantID := chi.URLParam(r, "restaurantId")
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithRestaurantID(ctx, restaurantID)
		}

		items, err := svc.Menu(ctx, restaurantID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		out := make([]menuItemView, 0, len(items))
		for _, item := range items {
			out = append(out, newMenuItemView(item))
		}
		responses.WriteSuccess(w, map[string]any{"menu_items": out})
	}
}
