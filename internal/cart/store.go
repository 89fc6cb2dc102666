package cart

import (
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/foodcart/pkg/errors"
	"github.com/angelmondragon/foodcart/pkg/money"
)

var itemValidator = validator.New(validator.WithRequiredStructEnabled())

// Store holds one session's cart. All operations are serialised by an internal lock.
type Store struct {
	mu         sync.Mutex
	items      []LineItem
	restaurant *RestaurantRef
	submitted  map[string]string
}

// NewStore returns an empty cart.
func NewStore() *Store {
	return &Store{}
}

// AddItem merges item into the cart when the cart is empty or already labelled with
// restaurant. Otherwise the cart is left untouched and a conflict outcome carrying the
// pending item is returned; the caller resolves it with ConfirmReplace.
func (s *Store) AddItem(item CatalogItem, restaurant RestaurantRef) (AddOutcome, error) {
	item, restaurant, err := normalizeAdd(item, restaurant)
	if err != nil {
		return AddOutcome{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) > 0 && (s.restaurant == nil || s.restaurant.RestaurantID != restaurant.RestaurantID) {
		return AddOutcome{
			Status:  AddStatusConflict,
			Pending: &PendingItem{Item: item, Restaurant: restaurant},
		}, nil
	}

	if idx := s.indexOf(item.MenuItemID); idx >= 0 {
		s.items[idx].Quantity++
	} else {
		s.items = append(s.items, newLine(item, restaurant))
	}
	ref := restaurant
	s.restaurant = &ref
	return AddOutcome{Status: AddStatusAdded}, nil
}

// ConfirmReplace discards the current cart and starts over with only the pending item.
func (s *Store) ConfirmReplace(pending PendingItem) error {
	item, restaurant, err := normalizeAdd(pending.Item, pending.Restaurant)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetLocked()
	s.items = []LineItem{newLine(item, restaurant)}
	ref := restaurant
	s.restaurant = &ref
	return nil
}

// RemoveItem deletes the line with menuItemID. Absent ids are ignored.
func (s *Store) RemoveItem(menuItemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(strings.TrimSpace(menuItemID))
}

// UpdateQuantity sets the quantity of a line exactly. Non-positive quantities remove it.
func (s *Store) UpdateQuantity(menuItemID string, quantity int) {
	menuItemID = strings.TrimSpace(menuItemID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.removeLocked(menuItemID)
		return
	}
	if idx := s.indexOf(menuItemID); idx >= 0 {
		s.items[idx].Quantity = quantity
	}
}

// Clear empties the cart unconditionally.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

// Total returns Σ price × quantity rounded to two places.
func (s *Store) Total() decimal.Decimal {
	return s.Snapshot().Total()
}

// Count returns the number of units in the cart.
func (s *Store) Count() int {
	return s.Snapshot().Count()
}

// Snapshot copies the cart contents.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{Items: make([]LineItem, len(s.items))}
	copy(snap.Items, s.items)
	if s.restaurant != nil {
		ref := *s.restaurant
		snap.Restaurant = &ref
	}
	return snap
}

// RecordSubmitted notes that an order was already created for restaurantID by a
// checkout that did not fully succeed. The ledger is dropped whenever the cart empties.
func (s *Store) RecordSubmitted(restaurantID, orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) == 0 || restaurantID == "" {
		return
	}
	if s.submitted == nil {
		s.submitted = make(map[string]string)
	}
	s.submitted[restaurantID] = orderID
}

// SubmittedOrderID returns the order recorded for restaurantID by an earlier attempt.
func (s *Store) SubmittedOrderID(restaurantID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orderID, ok := s.submitted[restaurantID]
	return orderID, ok
}

func (s *Store) indexOf(menuItemID string) int {
	for i := range s.items {
		if s.items[i].MenuItemID == menuItemID {
			return i
		}
	}
	return -1
}

func (s *Store) removeLocked(menuItemID string) {
	idx := s.indexOf(menuItemID)
	if idx < 0 {
		return
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	if len(s.items) == 0 {
		s.resetLocked()
	}
}

func (s *Store) resetLocked() {
	s.items = nil
	s.restaurant = nil
	s.submitted = nil
}

func newLine(item CatalogItem, restaurant RestaurantRef) LineItem {
	lineage := item.RestaurantID
	if lineage == "" {
		lineage = restaurant.RestaurantID
	}
	return LineItem{
		MenuItemID:   item.MenuItemID,
		Name:         item.Name,
		Price:        item.Price,
		Quantity:     1,
		RestaurantID: lineage,
	}
}

func normalizeAdd(item CatalogItem, restaurant RestaurantRef) (CatalogItem, RestaurantRef, error) {
	item.MenuItemID = strings.TrimSpace(item.MenuItemID)
	item.Name = strings.TrimSpace(item.Name)
	item.RestaurantID = strings.TrimSpace(item.RestaurantID)
	restaurant.RestaurantID = strings.TrimSpace(restaurant.RestaurantID)
	restaurant.Name = strings.TrimSpace(restaurant.Name)

	if err := itemValidator.Struct(item); err != nil {
		return item, restaurant, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "menu item id and name are required")
	}
	if err := itemValidator.Struct(restaurant); err != nil {
		return item, restaurant, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "restaurant id is required")
	}
	if item.Price.IsNegative() {
		return item, restaurant, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	// Lines carry whole cents so per-restaurant totals always add up to the cart total.
	item.Price = money.Round(item.Price)
	return item, restaurant, nil
}
