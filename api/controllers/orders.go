package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/foodcart/api/middleware"
	"github.com/angelmondragon/foodcart/api/responses"
	"github.com/angelmondragon/foodcart/api/validators"
	pkgerrors "github.com/angelmondragon/foodcart/pkg/errors"
	"github.com/angelmondragon/foodcart/pkg/logger"
	"github.com/angelmondragon/foodcart/pkg/orderintake"
)

const maxStatusLength = 32

type orderBook interface {
	ListOrders(ctx context.Context, customerID string) ([]orderintake.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID, status string) error
}

type orderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ListOrders returns the signed-in customer's orders as reported by order intake.
func ListOrders(orders orderBook, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID := middleware.CustomerIDFromContext(r.Context())
		if customerID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to view orders"))
			return
		}

		list, err := orders.ListOrders(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]orderView, 0, len(list))
		for _, order := range list {
			out = append(out, newOrderView(order))
		}
		responses.WriteSuccess(w, map[string]any{"orders": out})
	}
}

func UpdateOrderStatus(orders orderBook, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := chi.URLParam(r, "orderId")

		var payload orderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, ok := orderintake.NormalizeStatus(validators.SanitizeString(payload.Status, maxStatusLength))
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status").
				WithDetails(map[string]string{"status": payload.Status}))
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithFields(ctx, map[string]any{"order_id": orderID, "order_status": status})
		}
		if err := orders.UpdateOrderStatus(ctx, orderID, status); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(ctx, "orders.status_updated")
		}

		responses.WriteSuccess(w, map[string]string{"order_id": orderID, "status": status})
	}
}
