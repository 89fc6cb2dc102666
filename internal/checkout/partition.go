package checkout

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/foodcart/internal/cart"
	"github.com/angelmondragon/foodcart/internal/checkout/helpers"
)

// DefaultFallbackName labels groups whose restaurant cannot be resolved.
const DefaultFallbackName = "Unknown Restaurant"

// RestaurantNames maps restaurant ids to display names.
type RestaurantNames map[string]string

// OrderGroup is the per-restaurant slice of a cart submitted as one order.
type OrderGroup struct {
	RestaurantID   string
	RestaurantName string
	Items          []cart.LineItem
	TotalAmount    decimal.Decimal
}

// Partition splits a cart snapshot into one group per restaurant found on its lines.
// The cart's display restaurant does not drive grouping; each line's own restaurant id does.
func Partition(snapshot cart.Snapshot, names RestaurantNames, fallback string) []OrderGroup {
	if snapshot.Empty() {
		return []OrderGroup{}
	}
	if strings.TrimSpace(fallback) == "" {
		fallback = DefaultFallbackName
	}

	grouped := helpers.GroupLinesByRestaurant(snapshot.Items)
	groups := make([]OrderGroup, 0, len(grouped))
	for _, lines := range grouped {
		items := make([]cart.LineItem, len(lines.Items))
		copy(items, lines.Items)
		groups = append(groups, OrderGroup{
			RestaurantID:   lines.RestaurantID,
			RestaurantName: resolveName(lines.RestaurantID, names, snapshot.Restaurant, fallback),
			Items:          items,
			TotalAmount:    helpers.ComputeGroupTotal(items),
		})
	}
	return groups
}

func resolveName(restaurantID string, names RestaurantNames, hint *cart.RestaurantRef, fallback string) string {
	if name := strings.TrimSpace(names[restaurantID]); name != "" {
		return name
	}
	if hint != nil && hint.RestaurantID == restaurantID {
		if name := strings.TrimSpace(hint.Name); name != "" {
			return name
		}
	}
	return fallback
}
