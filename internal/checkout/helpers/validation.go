package helpers

import (
	"fmt"
	"strings"

	"github.com/angelmondragon/foodcart/internal/cart"
	pkgerrors "github.com/angelmondragon/foodcart/pkg/errors"
)

// ValidateCustomer ensures an identity is present and returns it normalized.
func ValidateCustomer(customerID string) (string, error) {
	trimmed := strings.TrimSpace(customerID)
	if trimmed == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to place an order")
	}
	return trimmed, nil
}

// ValidateLines rejects lines that cannot be turned into an order payload.
func ValidateLines(items []cart.LineItem) error {
	for _, item := range items {
		if strings.TrimSpace(item.MenuItemID) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart line is missing a menu item id")
		}
		if strings.TrimSpace(item.RestaurantID) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("menu item %s has no restaurant", item.MenuItemID))
		}
		if item.Quantity < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("menu item %s must have a quantity of at least 1", item.MenuItemID))
		}
		if item.Price.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("menu item %s has a negative price", item.MenuItemID))
		}
	}
	return nil
}
