package orderintake

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/foodcart/pkg/errors"
	"github.com/angelmondragon/foodcart/pkg/money"
)

var idempotencyNamespace = uuid.MustParse("6f1c7a52-3f0e-4c2b-9a57-5d2f3b8e9c41")

// OrderItem is one line of an order.
type OrderItem struct {
	MenuItemID string          `json:"menuItemId"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
}

// CreateOrderRequest is the creation payload for one restaurant's order.
type CreateOrderRequest struct {
	CustomerID     string
	RestaurantID   string
	RestaurantName string
	OrderItems     []OrderItem
	TotalAmount    decimal.Decimal
}

// CreateOrderResponse carries the id the service assigned.
type CreateOrderResponse struct {
	OrderID string `json:"orderId"`
}

// Order is an order as stored by the order-intake service.
type Order struct {
	OrderID        string          `json:"orderId"`
	CustomerID     string          `json:"customerId"`
	RestaurantID   string          `json:"restaurantId"`
	RestaurantName string          `json:"restaurantName"`
	OrderItems     []OrderItem     `json:"orderItems"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	Status         string          `json:"status"`
	OrderDate      string          `json:"orderDate,omitempty"`
}

type wireItem struct {
	MenuItemID string      `json:"menuItemId"`
	Name       string      `json:"name"`
	Quantity   int         `json:"quantity"`
	Price      json.Number `json:"price"`
}

type wireOrder struct {
	CustomerID     string      `json:"customerId"`
	RestaurantID   string      `json:"restaurantId"`
	RestaurantName string      `json:"restaurantName"`
	OrderItems     []wireItem  `json:"orderItems"`
	TotalAmount    json.Number `json:"totalAmount"`
}

func (r CreateOrderRequest) wire() wireOrder {
	items := make([]wireItem, 0, len(r.OrderItems))
	for _, item := range r.OrderItems {
		items = append(items, wireItem{
			MenuItemID: item.MenuItemID,
			Name:       item.Name,
			Quantity:   item.Quantity,
			Price:      money.Number(item.Price),
		})
	}
	return wireOrder{
		CustomerID:     r.CustomerID,
		RestaurantID:   r.RestaurantID,
		RestaurantName: r.RestaurantName,
		OrderItems:     items,
		TotalAmount:    money.Number(r.TotalAmount),
	}
}

func (r CreateOrderRequest) validate() error {
	if strings.TrimSpace(r.CustomerID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if strings.TrimSpace(r.RestaurantID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "restaurant id is required")
	}
	if len(r.OrderItems) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order items are required")
	}
	for _, item := range r.OrderItems {
		if item.Quantity < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity for %s must be at least 1", item.MenuItemID))
		}
	}
	return nil
}

// IdempotencyKey derives a stable key from the customer, restaurant and items of a
// request, so that resubmitting the same group yields the same key.
func IdempotencyKey(req CreateOrderRequest) string {
	lines := make([]string, 0, len(req.OrderItems))
	for _, item := range req.OrderItems {
		lines = append(lines, fmt.Sprintf("%s:%d:%s", item.MenuItemID, item.Quantity, item.Price.StringFixed(money.Places)))
	}
	sort.Strings(lines)

	var b strings.Builder
	b.WriteString(strings.TrimSpace(req.CustomerID))
	b.WriteByte('|')
	b.WriteString(strings.TrimSpace(req.RestaurantID))
	b.WriteByte('|')
	b.WriteString(strings.Join(lines, ","))
	return uuid.NewSHA1(idempotencyNamespace, []byte(b.String())).String()
}

// Order statuses understood by the order-intake service.
const (
	StatusPending        = "pending"
	StatusConfirmed      = "confirmed"
	StatusPreparing      = "preparing"
	StatusOutForDelivery = "out for delivery"
	StatusDelivered      = "delivered"
	StatusCancelled      = "cancelled"
)

var knownStatuses = map[string]struct{}{
	StatusPending:        {},
	StatusConfirmed:      {},
	StatusPreparing:      {},
	StatusOutForDelivery: {},
	StatusDelivered:      {},
	StatusCancelled:      {},
}

// NormalizeStatus lower-cases status and reports whether it is a known order status.
func NormalizeStatus(status string) (string, bool) {
	normalized := strings.ToLower(strings.Join(strings.Fields(status), " "))
	_, ok := knownStatuses[normalized]
	return normalized, ok
}
