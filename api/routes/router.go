package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/foodcart/api/controllers"
	"github.com/angelmondragon/foodcart/api/middleware"
	"github.com/angelmondragon/foodcart/internal/cart"
	checkoutsvc "github.com/angelmondragon/foodcart/internal/checkout"
	"github.com/angelmondragon/foodcart/internal/restaurants"
	"github.com/angelmondragon/foodcart/pkg/config"
	"github.com/angelmondragon/foodcart/pkg/logger"
	"github.com/angelmondragon/foodcart/pkg/orderintake"
	"github.com/angelmondragon/foodcart/pkg/redis"
)

type cartSessions interface {
	Cart(sessionID string) *cart.Store
	Lookup(sessionID string) (*cart.Store, bool)
}

type orderBook interface {
	ListOrders(ctx context.Context, customerID string) ([]orderintake.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID, status string) error
}

// NewRouter wires the HTTP surface. cache and idempotencyStore may be nil when redis is not configured.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	cache redis.Pinger,
	idempotencyStore redis.IdempotencyStore,
	gatherer prometheus.Gatherer,
	restaurantService restaurants.Service,
	sessions cartSessions,
	checkoutService checkoutsvc.Service,
	orders orderBook,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, cache, logg))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.JWT, logg))

		r.Get("/restaurants", controllers.ListRestaurants(restaurantService, logg))
		r.Get("/restaurants/{restaurantId}/menu", controllers.RestaurantMenu(restaurantService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.CartSession(cfg.Session, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartView(sessions, logg))
				r.Delete("/", controllers.CartClear(sessions, logg))
				r.Post("/items", controllers.CartAddItem(sessions, restaurantService, logg))
				r.Post("/replace", controllers.CartReplace(sessions, restaurantService, logg))
				r.Patch("/items/{menuItemId}", controllers.CartUpdateQuantity(sessions, logg))
				r.Delete("/items/{menuItemId}", controllers.CartRemoveItem(sessions, logg))
			})

			r.With(
				middleware.RequireCustomer(logg),
				middleware.Idempotency(idempotencyStore, logg),
			).Post("/checkout", controllers.Checkout(checkoutService, sessions, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireCustomer(logg))

			r.Get("/orders", controllers.ListOrders(orders, logg))
			r.With(middleware.Idempotency(idempotencyStore, logg)).
				Put("/orders/{orderId}/status", controllers.UpdateOrderStatus(orders, logg))
		})
	})

	return r
}
