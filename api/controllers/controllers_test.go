package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/foodcart/api/middleware"
	"github.com/angelmondragon/foodcart/internal/cart"
	"github.com/angelmondragon/foodcart/internal/checkout"
	"github.com/angelmondragon/foodcart/internal/sessions"
	"github.com/angelmondragon/foodcart/pkg/catalog"
	"github.com/angelmondragon/foodcart/pkg/config"
	pkgerrors "github.com/angelmondragon/foodcart/pkg/errors"
	"github.com/angelmondragon/foodcart/pkg/orderintake"
)

const testSessionID = "session-1"

type stubMenu struct {
	restaurants map[string]catalog.Restaurant
	items       map[string]catalog.MenuItem
	lookupErr   error
}

func newStubMenu() *stubMenu {
	return &stubMenu{
		restaurants: map[string]catalog.Restaurant{
			"r1": {RestaurantID: "r1", Name: "Pizza Place"},
			"r2": {RestaurantID: "r2", Name: "Noodle Bar"},
		},
		items: map[string]catalog.MenuItem{
			"m1": {MenuItemID: "m1", Name: "Margherita", Price: decimal.RequireFromString("9.99"), RestaurantID: "r1"},
			"m2": {MenuItemID: "m2", Name: "Garlic Bread", Price: decimal.RequireFromString("4.50"), RestaurantID: "r1"},
			"n1": {MenuItemID: "n1", Name: "Ramen", Price: decimal.RequireFromString("12.00"), RestaurantID: "r2"},
		},
	}
}

func (s *stubMenu) ListRestaurants(context.Context) ([]catalog.Restaurant, error) {
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	return []catalog.Restaurant{s.restaurants["r1"], s.restaurants["r2"]}, nil
}

func (s *stubMenu) Menu(_ context.Context, restaurantID string) ([]catalog.MenuItem, error) {
	var out []catalog.MenuItem
	for _, id := range []string{"m1", "m2", "n1"} {
		if item := s.items[id]; item.RestaurantID == restaurantID {
			out = append(out, item)
		}
	}
	if out == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "restaurant not found")
	}
	return out, nil
}

func (s *stubMenu) Restaurant(_ context.Context, restaurantID string) (*catalog.Restaurant, error) {
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	r, ok := s.restaurants[restaurantID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "restaurant not found")
	}
	return &r, nil
}

func (s *stubMenu) MenuItem(_ context.Context, restaurantID, menuItemID string) (*catalog.MenuItem, error) {
	item, ok := s.items[menuItemID]
	if !ok || item.RestaurantID != restaurantID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
	}
	return &item, nil
}

type stubCheckout struct {
	result     *checkout.Result
	err        error
	customerID string
}

func (s *stubCheckout) Execute(_ context.Context, customerID string, _ *cart.Store) (*checkout.Result, error) {
	s.customerID = customerID
	return s.result, s.err
}

type stubOrders struct {
	mu       sync.Mutex
	orders   []orderintake.Order
	listErr  error
	updated  map[string]string
	customer string
}

func (s *stubOrders) ListOrders(_ context.Context, customerID string) ([]orderintake.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customer = customerID
	return s.orders, s.listErr
}

func (s *stubOrders) UpdateOrderStatus(_ context.Context, orderID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updated == nil {
		s.updated = map[string]string{}
	}
	s.updated[orderID] = status
	return nil
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, body io.Reader) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(body).Decode(&env))
	return env
}

func decodeCart(t *testing.T, env envelope) cartView {
	t.Helper()
	var view cartView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	return view
}

func newRequest(method, target, body string, params map[string]string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	ctx := middleware.WithSessionID(req.Context(), testSessionID)
	if len(params) > 0 {
		rc := chi.NewRouteContext()
		for k, v := range params {
			rc.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rc)
	}
	return req.WithContext(ctx)
}

func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp
}

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}

	resp := serve(HealthReady(cfg, nil, nil), httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = serve(HealthReady(cfg, failingPinger{}, nil), httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func TestRestaurantMenuUsesURLParam(t *testing.T) {
	menu := newStubMenu()
	resp := serve(RestaurantMenu(menu, nil), newRequest(http.MethodGet, "/api/v1/restaurants/r2/menu", "", map[string]string{"restaurantId": "r2"}))
	require.Equal(t, http.StatusOK, resp.Code)

	env := decodeEnvelope(t, resp.Body)
	var payload struct {
		MenuItems []map[string]any `json:"menu_items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	require.Len(t, payload.MenuItems, 1)
	assert.Equal(t, "n1", payload.MenuItems[0]["menu_item_id"])
	assert.Equal(t, 12.0, payload.MenuItems[0]["price"])
}

func TestCartAddItemMergesAndTotals(t *testing.T) {
	registry := sessions.NewRegistry(time.Hour)
	menu := newStubMenu()
	add := CartAddItem(registry, menu, nil)

	for i := 0; i < 2; i++ {
		resp := serve(add, newRequest(http.MethodPost, "/api/v1/cart/items", `{"restaurant_id":"r1","menu_item_id":"m1"}`, nil))
		require.Equal(t, http.StatusOK, resp.Code)
	}

	resp := serve(CartView(registry, nil), newRequest(http.MethodGet, "/api/v1/cart", "", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	view := decodeCart(t, decodeEnvelope(t, resp.Body))

	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Items[0].Quantity)
	assert.Equal(t, "19.98", view.Total.String())
	assert.Equal(t, 2, view.ItemCount)
	require.NotNil(t, view.Restaurant)
	assert.Equal(t, "Pizza Place", view.Restaurant.Name)
}

func TestCartAddItemConflictReturnsPending(t *testing.T) {
	registry := sessions.NewRegistry(time.Hour)
	menu := newStubMenu()
	add := CartAddItem(registry, menu, nil)

	serve(add, newRequest(http.MethodPost, "/api/v1/cart/items", `{"restaurant_id":"r1","menu_item_id":"m1"}`, nil))
	resp := serve(add, newRequest(http.MethodPost, "/api/v1/cart/items", `{"restaurant_id":"r2","menu_item_id":"n1"}`, nil))

	require.Equal(t, http.StatusConflict, resp.Code)
	env := decodeEnvelope(t, resp.Body)
	assert.Equal(t, string(pkgerrors.CodeCartConflict), env.Error.Code)
	assert.Equal(t, string(cart.AddStatusConflict), env.Error.Details["status"])
	pending, ok := env.Error.Details["pending"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "n1", pending["menu_item_id"])

	snapshot := registry.Cart(testSessionID).Snapshot()
	require.Len(t, snapshot.Items, 1)
	assert.Equal(t, "m1", snapshot.Items[0].MenuItemID)
}

func TestCartReplaceStartsFresh(t *testing.T) {
	registry := sessions.NewRegistry(time.Hour)
	menu := newStubMenu()

	serve(CartAddItem(registry, menu, nil), newRequest(http.MethodPost, "/api/v1/cart/items", `{"restaurant_id":"r1","menu_item_id":"m1"}`, nil))
	resp := serve(CartReplace(registry, menu, nil), newRequest(http.MethodPost, "/api/v1/cart/replace", `{"restaurant_id":"r2","menu_item_id":"n1"}`, nil))
	require.Equal(t, http.StatusOK, resp.Code)

	view := decodeCart(t, decodeEnvelope(t, resp.Body))
	require.Len(t, view.Items, 1)
	assert.Equal(t, "n1", view.Items[0].MenuItemID)
	assert.Equal(t, 1, view.Items[0].Quantity)
	assert.Equal(t, "r2", view.Restaurant.RestaurantID)
}

func TestCartAddItemRejectsUnknownItem(t *testing.T) {
	registry := sessions.NewRegistry(time.Hour)
	resp := serve(CartAddItem(registry, newStubMenu(), nil), newRequest(http.MethodPost, "/api/v1/cart/items", `{"restaurant_id":"r1","menu_item_id":"nope"}`, nil))
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.True(t, registry.Cart(testSessionID).Snapshot().Empty())
}

func TestCartAddItemRejectsClientPrice(t *testing.T) {
	registry := sessions.NewRegistry(time.Hour)
	resp := serve(CartAddItem(registry, newStubMenu(), nil), newRequest(http.MethodPost, "/api/v1/cart/items", `{"restaurant_id":"r1","menu_item_id":"m1","price":0.01}`, nil))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCartAddItemSurvivesRestaurantLookupFailure(t *testing.T) {
	registry := sessions.NewRegistry(time.Hour)
	menu := newStubMenu()
	menu.lookupErr = errors.New("catalog timeout")

	resp := serve(CartAddItem(registry, menu, nil), newRequest(http.MethodPost, "/api/v1/cart/items", `{"restaurant_id":"r1","menu_item_id":"m1"}`, nil))
	require.Equal(t, http.StatusOK, resp.Code)
	view := decodeCart(t, decodeEnvelope(t, resp.Body))
	require.NotNil(t, view.Restaurant)
	assert.Equal(t, "r1", view.Restaurant.RestaurantID)
	assert.Empty(t, view.Restaurant.Name)
}

func TestCartUpdateQuantityAndRemove(t *testing.T) {
	registry := sessions.NewRegistry(time.Hour)
	menu := newStubMenu()
	add := CartAddItem(registry, menu, nil)
	serve(add, newRequest(http.MethodPost, "/api/v1/cart/items", `{"restaurant_id":"r1","menu_item_id":"m1"}`, nil))
	serve(add, newRequest(http.MethodPost, "/api/v1/cart/items", `{"restaurant_id":"r1","menu_item_id":"m2"}`, nil))

	resp := serve(CartUpdateQuantity(registry, nil), newRequest(http.MethodPatch, "/api/v1/cart/items/m1", `{"quantity":3}`, map[string]string{"menuItemId": "m1"}))
	require.Equal(t, http.StatusOK, resp.Code)
	view := decodeCart(t, decodeEnvelope(t, resp.Body))
	assert.Equal(t, "34.47", view.Total.String())
	assert.Equal(t, 4, view.ItemCount)

	resp = serve(CartUpdateQuantity(registry, nil), newRequest(http.MethodPatch, "/api/v1/cart/items/m2", `{"quantity":0}`, map[string]string{"menuItemId": "m2"}))
	view = decodeCart(t, decodeEnvelope(t, resp.Body))
	require.Len(t, view.Items, 1)

	resp = serve(CartRemoveItem(registry, nil), newRequest(http.MethodDelete, "/api/v1/cart/items/m1", "", map[string]string{"menuItemId": "m1"}))
	view = decodeCart(t, decodeEnvelope(t, resp.Body))
	assert.Empty(t, view.Items)
	assert.Nil(t, view.Restaurant)
	assert.Equal(t, "0.00", view.Total.String())
}

func TestCartUpdateQuantityRequiresQuantity(t *testing.T) {
	registry := sessions.NewRegistry(time.Hour)
	resp := serve(CartUpdateQuantity(registry, nil), newRequest(http.MethodPatch, "/api/v1/cart/items/m1", `{}`, map[string]string{"menuItemId": "m1"}))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCartClear(t *testing.T) {
	registry := sessions.NewRegistry(time.Hour)
	serve(CartAddItem(registry, newStubMenu(), nil), newRequest(http.MethodPost, "/api/v1/cart/items", `{"restaurant_id":"r1","menu_item_id":"m1"}`, nil))

	resp := serve(CartClear(registry, nil), newRequest(http.MethodDelete, "/api/v1/cart", "", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.True(t, registry.Cart(testSessionID).Snapshot().Empty())
}

func TestCartViewDoesNotCreateSession(t *testing.T) {
	registry := sessions.NewRegistry(time.Hour)

	resp := serve(CartView(registry, nil), newRequest(http.MethodGet, "/api/v1/cart", "", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	view := decodeCart(t, decodeEnvelope(t, resp.Body))

	assert.Empty(t, view.Items)
	assert.Equal(t, "0.00", view.Total.String())
	assert.Equal(t, 0, registry.Len())
}

func TestCartWithoutSessionIsInternalError(t *testing.T) {
	registry := sessions.NewRegistry(time.Hour)
	resp := serve(CartView(registry, nil), httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
}

func TestCheckoutCreated(t *testing.T) {
	registry := sessions.NewRegistry(time.Hour)
	svc := &stubCheckout{result: &checkout.Result{Success: true, OrderIDs: []string{"o-1"}}}

	req := newRequest(http.MethodPost, "/api/v1/checkout", "", nil)
	req = req.WithContext(middleware.WithCustomerID(req.Context(), "shopper@example.com"))
	resp := serve(Checkout(svc, registry, nil), req)

	require.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, "shopper@example.com", svc.customerID)
	var result checkout.Result
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, resp.Body).Data, &result))
	assert.True(t, result.Success)
	assert.Equal(t, []string{"o-1"}, result.OrderIDs)
}

func TestCheckoutPartialFailureCarriesResult(t *testing.T) {
	registry := sessions.NewRegistry(time.Hour)
	result := &checkout.Result{
		Success:             false,
		OrderIDs:            []string{"o-1"},
		FailedRestaurantIDs: []string{"r2"},
	}
	svc := &stubCheckout{
		result: result,
		err:    pkgerrors.New(pkgerrors.CodePartialBatch, "1 of 2 restaurant orders failed").WithDetails(result),
	}

	req := newRequest(http.MethodPost, "/api/v1/checkout", "", nil)
	req = req.WithContext(middleware.WithCustomerID(req.Context(), "shopper@example.com"))
	resp := serve(Checkout(svc, registry, nil), req)

	require.Equal(t, http.StatusBadGateway, resp.Code)
	env := decodeEnvelope(t, resp.Body)
	assert.Equal(t, string(pkgerrors.CodePartialBatch), env.Error.Code)
	assert.Equal(t, []any{"r2"}, env.Error.Details["failed_restaurant_ids"])
	assert.Equal(t, []any{"o-1"}, env.Error.Details["order_ids"])
}

func TestListOrders(t *testing.T) {
	orders := &stubOrders{orders: []orderintake.Order{{
		OrderID:        "o-1",
		RestaurantID:   "r1",
		RestaurantName: "Pizza Place",
		OrderItems:     []orderintake.OrderItem{{MenuItemID: "m1", Name: "Margherita", Quantity: 2, Price: decimal.RequireFromString("9.99")}},
		TotalAmount:    decimal.RequireFromString("19.98"),
		Status:         "pending",
	}}}

	req := newRequest(http.MethodGet, "/api/v1/orders", "", nil)
	req = req.WithContext(middleware.WithCustomerID(req.Context(), "shopper@example.com"))
	resp := serve(ListOrders(orders, nil), req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "shopper@example.com", orders.customer)
	var payload struct {
		Orders []orderView `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, resp.Body).Data, &payload))
	require.Len(t, payload.Orders, 1)
	assert.Equal(t, "19.98", payload.Orders[0].TotalAmount.String())
	assert.Equal(t, "9.99", payload.Orders[0].Items[0].Price.String())
}

func TestListOrdersRequiresCustomer(t *testing.T) {
	resp := serve(ListOrders(&stubOrders{}, nil), newRequest(http.MethodGet, "/api/v1/orders", "", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestUpdateOrderStatus(t *testing.T) {
	orders := &stubOrders{}
	params := map[string]string{"orderId": "o-1"}

	resp := serve(UpdateOrderStatus(orders, nil), newRequest(http.MethodPut, "/api/v1/orders/o-1/status", `{"status":"Out For Delivery"}`, params))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "out for delivery", orders.updated["o-1"])

	resp = serve(UpdateOrderStatus(orders, nil), newRequest(http.MethodPut, "/api/v1/orders/o-1/status", `{"status":"teleported"}`, params))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
