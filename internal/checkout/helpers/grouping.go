package helpers

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/foodcart/internal/cart"
	"github.com/angelmondragon/foodcart/pkg/money"
)

// RestaurantLines is the set of cart lines owned by one restaurant.
type RestaurantLines struct {
	RestaurantID string
	Items        []cart.LineItem
}

// GroupLinesByRestaurant groups lines by their own restaurant id, keeping the order in
// which each restaurant first appears.
func GroupLinesByRestaurant(items []cart.LineItem) []RestaurantLines {
	index := make(map[string]int, len(items))
	grouped := make([]RestaurantLines, 0)
	for _, item := range items {
		pos, ok := index[item.RestaurantID]
		if !ok {
			pos = len(grouped)
			index[item.RestaurantID] = pos
			grouped = append(grouped, RestaurantLines{RestaurantID: item.RestaurantID})
		}
		grouped[pos].Items = append(grouped[pos].Items, item)
	}
	return grouped
}

// ComputeGroupTotal sums price × quantity over the given lines, rounded to two places.
func ComputeGroupTotal(items []cart.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(money.LineTotal(item.Price, item.Quantity))
	}
	return money.Round(total)
}
