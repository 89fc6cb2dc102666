package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/foodcart/internal/cart"
	"github.com/angelmondragon/foodcart/internal/checkout"
	"github.com/angelmondragon/foodcart/internal/sessions"
	"github.com/angelmondragon/foodcart/pkg/auth"
	"github.com/angelmondragon/foodcart/pkg/catalog"
	"github.com/angelmondragon/foodcart/pkg/config"
	pkgerrors "github.com/angelmondragon/foodcart/pkg/errors"
	"github.com/angelmondragon/foodcart/pkg/logger"
	"github.com/angelmondragon/foodcart/pkg/metrics"
	"github.com/angelmondragon/foodcart/pkg/orderintake"
)

type stubRestaurants struct{}

func (stubRestaurants) ListRestaurants(context.Context) ([]catalog.Restaurant, error) {
	return []catalog.Restaurant{{RestaurantID: "r1", Name: "Pizza Place"}}, nil
}

func (stubRestaurants) Restaurant(_ context.Context, id string) (*catalog.Restaurant, error) {
	if id != "r1" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "restaurant not found")
	}
	return &catalog.Restaurant{RestaurantID: "r1", Name: "Pizza Place"}, nil
}

func (stubRestaurants) Menu(_ context.Context, id string) ([]catalog.MenuItem, error) {
	if id != "r1" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "restaurant not found")
	}
	return []catalog.MenuItem{{MenuItemID: "m1", Name: "Margherita", Price: decimal.RequireFromString("9.99"), RestaurantID: "r1"}}, nil
}

func (s stubRestaurants) MenuItem(ctx context.Context, restaurantID, menuItemID string) (*catalog.MenuItem, error) {
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

func (s stubRestaurants) Names(ctx context.Context) (map[string]string, error) {
	return map[string]string{"r1": "Pizza Place"}, nil
}

func (stubRestaurants) Refresh(context.Context) error { return nil }

type stubOrderIntake struct{}

func (stubOrderIntake) CreateOrder(_ context.Context, req orderintake.CreateOrderRequest) (*orderintake.CreateOrderResponse, error) {
	return &orderintake.CreateOrderResponse{OrderID: "order-" + req.RestaurantID}, nil
}

func (stubOrderIntake) ListOrders(context.Context, string) ([]orderintake.Order, error) {
	return nil, nil
}

func (stubOrderIntake) UpdateOrderStatus(context.Context, string, string) error {
	return nil
}

var testConfig = &config.Config{
	App:     config.AppConfig{Env: "dev", CORSOrigins: []string{"http://localhost:3000"}},
	JWT:     config.JWTConfig{Secret: "secret", Issuer: "identity.test"},
	Session: config.SessionConfig{CookieName: "foodcart_session", IdleTTL: time.Hour},
}

type harness struct {
	handler  http.Handler
	registry *sessions.Registry
}

func newHarness(t *testing.T) harness {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	reg := prometheus.NewRegistry()
	registry := sessions.NewRegistry(time.Hour)

	checkoutService, err := checkout.NewService(stubOrderIntake{}, stubRestaurants{}, metrics.NewCheckoutMetrics(reg), logg, checkout.Config{})
	if err != nil {
		t.Fatalf("checkout service: %v", err)
	}

	handler := NewRouter(testConfig, logg, nil, nil, reg, stubRestaurants{}, registry, checkoutService, stubOrderIntake{})
	return harness{handler: handler, registry: registry}
}

func (h harness) do(req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	h.handler.ServeHTTP(resp, req)
	return resp
}

func bearer(t *testing.T) string {
	t.Helper()
	token, err := auth.MintIdentityToken(testConfig.JWT, time.Now(), time.Hour, auth.IdentityPayload{Email: "shopper@example.com"})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return "Bearer " + token
}

func TestHealthRoutes(t *testing.T) {
	h := newHarness(t)
	for _, path := range []string{"/health/live", "/health/ready"} {
		resp := h.do(httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, resp.Code)
		}
	}
}

func TestMetricsRoute(t *testing.T) {
	h := newHarness(t)
	resp := h.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestCatalogRoutes(t *testing.T) {
	h := newHarness(t)
	if resp := h.do(httptest.NewRequest(http.MethodGet, "/api/v1/restaurants", nil)); resp.Code != http.StatusOK {
		t.Fatalf("restaurants: expected 200 got %d", resp.Code)
	}
	if resp := h.do(httptest.NewRequest(http.MethodGet, "/api/v1/restaurants/r1/menu", nil)); resp.Code != http.StatusOK {
		t.Fatalf("menu: expected 200 got %d", resp.Code)
	}
	if resp := h.do(httptest.NewRequest(http.MethodGet, "/api/v1/restaurants/zz/menu", nil)); resp.Code != http.StatusNotFound {
		t.Fatalf("unknown menu: expected 404 got %d", resp.Code)
	}
}

func TestCartCheckoutFlow(t *testing.T) {
	h := newHarness(t)

	add := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{"restaurant_id":"r1","menu_item_id":"m1"}`))
	resp := h.do(add)
	if resp.Code != http.StatusOK {
		t.Fatalf("add: expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	cookies := resp.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected session cookie, got %d cookies", len(cookies))
	}
	session := cookies[0]

	again := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{"restaurant_id":"r1","menu_item_id":"m1"}`))
	again.AddCookie(session)
	if resp := h.do(again); resp.Code != http.StatusOK {
		t.Fatalf("second add: expected 200 got %d", resp.Code)
	}

	anonymous := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
	anonymous.AddCookie(session)
	if resp := h.do(anonymous); resp.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous checkout: expected 401 got %d", resp.Code)
	}

	place := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
	place.AddCookie(session)
	place.Header.Set("Authorization", bearer(t))
	resp = h.do(place)
	if resp.Code != http.StatusCreated {
		t.Fatalf("checkout: expected 201 got %d: %s", resp.Code, resp.Body.String())
	}

	var body struct {
		Data checkout.Result `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Data.Success || len(body.Data.OrderIDs) != 1 || body.Data.OrderIDs[0] != "order-r1" {
		t.Fatalf("unexpected result %+v", body.Data)
	}

	store, ok := h.registry.Lookup(session.Value)
	if !ok {
		t.Fatalf("expected session cart to exist")
	}
	if !store.Snapshot().Empty() {
		t.Fatalf("expected cart to be cleared after checkout")
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	h := newHarness(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
	req.Header.Set("Authorization", bearer(t))
	resp := h.do(req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestOrdersRequireCustomer(t *testing.T) {
	h := newHarness(t)
	if resp := h.do(httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", bearer(t))
	if resp := h.do(req); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestSessionCartIsIsolated(t *testing.T) {
	h := newHarness(t)
	h.do(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{"restaurant_id":"r1","menu_item_id":"m1"}`)))

	resp := h.do(httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	var body struct {
		Data struct {
			Items []cart.LineItem `json:"items"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data.Items) != 0 {
		t.Fatalf("new session should start with an empty cart, got %d items", len(body.Data.Items))
	}
}
