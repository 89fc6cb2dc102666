package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/foodcart/api/middleware"
	"github.com/angelmondragon/foodcart/api/responses"
	"github.com/angelmondragon/foodcart/api/validators"
	"github.com/angelmondragon/foodcart/internal/cart"
	"github.com/angelmondragon/foodcart/pkg/catalog"
	pkgerrors "github.com/angelmondragon/foodcart/pkg/errors"
	"github.com/angelmondragon/foodcart/pkg/logger"
)

type cartSessions interface {
	Cart(sessionID string) *cart.Store
	Lookup(sessionID string) (*cart.Store, bool)
}

type menuResolver interface {
	Restaurant(ctx context.Context, restaurantID string) (*catalog.Restaurant, error)
	MenuItem(ctx context.Context, restaurantID, menuItemID string) (*catalog.MenuItem, error)
}

type cartItemRequest struct {
	RestaurantID string `json:"restaurant_id" validate:"required"`
	MenuItemID   string `json:"menu_item_id" validate:"required"`
}

type cartQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// CartView renders the session's cart.
func CartView(sessions cartSessions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sessions == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart sessions unavailable"))
			return
		}
		sessionID := middleware.SessionIDFromContext(r.Context())
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart session missing"))
			return
		}

		// Viewing never allocates a cart; an unknown session reads as empty.
		var snapshot cart.Snapshot
		if store, ok := sessions.Lookup(sessionID); ok {
			snapshot = store.Snapshot()
		}
		responses.WriteSuccess(w, newCartView(snapshot))
	}
}

// CartAddItem adds one unit of a catalog item. Adding from a different
// restaurant answers 409 with the pending item so the client can confirm a replace.
func CartAddItem(sessions cartSessions, menu menuResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionCart(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithRestaurantID(ctx, payload.RestaurantID)
		}

		pending, err := resolvePending(ctx, menu, logg, payload)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		outcome, err := store.AddItem(pending.Item, pending.Restaurant)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if !outcome.Added() {
			snapshot := store.Snapshot()
			details := map[string]any{
				"status":  outcome.Status,
				"pending": newPendingItemView(*outcome.Pending),
			}
			if snapshot.Restaurant != nil {
				details["cart_restaurant"] = snapshot.Restaurant
			}
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeCartConflict, "cart contains items from another restaurant; confirm to replace it").WithDetails(details))
			return
		}

		responses.WriteSuccess(w, newCartView(store.Snapshot()))
	}
}

// CartReplace discards the cart and starts over with the given item.
func CartReplace(sessions cartSessions, menu menuResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionCart(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pending, err := resolvePending(r.Context(), menu, logg, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := store.ConfirmReplace(pending); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartView(store.Snapshot()))
	}
}

// CartUpdateQuantity sets a line's quantity; zero or less removes the line.
func CartUpdateQuantity(sessions cartSessions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionCart(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store.UpdateQuantity(chi.URLParam(r, "menuItemId"), *payload.Quantity)
		responses.WriteSuccess(w, newCartView(store.Snapshot()))
	}
}

func CartRemoveItem(sessions cartSessions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionCart(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		store.RemoveItem(chi.URLParam(r, "menuItemId"))
		responses.WriteSuccess(w, newCartView(store.Snapshot()))
	}
}

func CartClear(sessions cartSessions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionCart(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		store.Clear()
		responses.WriteSuccess(w, newCartView(store.Snapshot()))
	}
}

func sessionCart(r *http.Request, sessions cartSessions) (*cart.Store, error) {
	if sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart sessions unavailable")
	}
	sessionID := middleware.SessionIDFromContext(r.Context())
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart session missing")
	}
	return sessions.Cart(sessionID), nil
}

// resolvePending looks the item up in the catalog so price and name never come from the client.
// A failed restaurant lookup only costs the display name.
func resolvePending(ctx context.Context, menu menuResolver, logg *logger.Logger, payload cartItemRequest) (cart.PendingItem, error) {
	if menu == nil {
		return cart.PendingItem{}, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable")
	}

	item, err := menu.MenuItem(ctx, payload.RestaurantID, payload.MenuItemID)
	if err != nil {
		return cart.PendingItem{}, err
	}

	ref := cart.RestaurantRef{RestaurantID: payload.RestaurantID}
	restaurant, err := menu.Restaurant(ctx, payload.RestaurantID)
	switch {
	case err == nil:
		ref.Name = restaurant.Name
	case logg != nil:
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "cart.restaurant_lookup_failed")
	}

	return cart.PendingItem{
		Item: cart.CatalogItem{
			MenuItemID:   item.MenuItemID,
			Name:         item.Name,
			Price:        item.Price,
			Category:     item.Category,
			RestaurantID: item.RestaurantID,
		},
		Restaurant: ref,
	}, nil
}
