package controllers

import (
	"net/http"

	"github.com/angelmondragon/foodcart/api/middleware"
	"github.com/angelmondragon/foodcart/api/responses"
	"github.com/angelmondragon/foodcart/internal/checkout"
	pkgerrors "github.com/angelmondragon/foodcart/pkg/errors"
	"github.com/angelmondragon/foodcart/pkg/logger"
)

// Checkout places one order per restaurant in the session's cart.
// Partial failures answer 502 with the full per-restaurant result in the error details.
func Checkout(svc checkout.Service, sessions cartSessions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		store, err := sessionCart(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Execute(r.Context(), middleware.CustomerIDFromContext(r.Context()), store)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
