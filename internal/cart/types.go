package cart

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/foodcart/pkg/money"
)

// LineItem is one distinct menu item and its quantity within a cart.
type LineItem struct {
	MenuItemID   string          `json:"menu_item_id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	RestaurantID string          `json:"restaurant_id"`
}

// LineTotal returns price × quantity for the line.
func (l LineItem) LineTotal() decimal.Decimal {
	return money.LineTotal(l.Price, l.Quantity)
}

// RestaurantRef labels the cart. It is a display hint only; line items carry their own lineage.
type RestaurantRef struct {
	RestaurantID string `json:"restaurant_id" validate:"required"`
	Name         string `json:"name"`
}

// CatalogItem describes a menu item as sourced from the catalog.
type CatalogItem struct {
	MenuItemID   string          `json:"menu_item_id" validate:"required"`
	Name         string          `json:"name" validate:"required"`
	Price        decimal.Decimal `json:"price"`
	Category     string          `json:"category,omitempty"`
	RestaurantID string          `json:"restaurant_id,omitempty"`
}

// PendingItem is an add that was held back because it targets a different restaurant.
type PendingItem struct {
	Item       CatalogItem   `json:"item"`
	Restaurant RestaurantRef `json:"restaurant"`
}

// AddStatus tags the outcome of AddItem.
type AddStatus string

const (
	AddStatusAdded    AddStatus = "added"
	AddStatusConflict AddStatus = "conflict_requires_confirmation"
)

// AddOutcome reports whether an item was merged or needs ConfirmReplace.
type AddOutcome struct {
	Status  AddStatus    `json:"status"`
	Pending *PendingItem `json:"pending,omitempty"`
}

// Added reports whether the item landed in the cart.
func (o AddOutcome) Added() bool {
	return o.Status == AddStatusAdded
}

// Snapshot is an immutable copy of the cart taken at a point in time.
type Snapshot struct {
	Items      []LineItem
	Restaurant *RestaurantRef
}

// Empty reports whether the snapshot carries no line items.
func (s Snapshot) Empty() bool {
	return len(s.Items) == 0
}

// Total sums every line, rounded to two places.
func (s Snapshot) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range s.Items {
		sum = sum.Add(item.LineTotal())
	}
	return money.Round(sum)
}

// Count sums the quantities of every line.
func (s Snapshot) Count() int {
	count := 0
	for _, item := range s.Items {
		count += item.Quantity
	}
	return count
}
