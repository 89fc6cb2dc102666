package controllers

import (
	"encoding/json"

	"github.com/angelmondragon/foodcart/internal/cart"
	"github.com/angelmondragon/foodcart/pkg/catalog"
	"github.com/angelmondragon/foodcart/pkg/money"
	"github.com/angelmondragon/foodcart/pkg/orderintake"
)

type restaurantView struct {
	RestaurantID string  `json:"restaurant_id"`
	Name         string  `json:"name"`
	Cuisine      string  `json:"cuisine,omitempty"`
	Rating       float64 `json:"rating,omitempty"`
	Address      string  `json:"address,omitempty"`
	Phone        string  `json:"phone,omitempty"`
	ImageURL     string  `json:"image_url,omitempty"`
}

func newRestaurantView(r catalog.Restaurant) restaurantView {
	return restaurantView{
		RestaurantID: r.RestaurantID,
		Name:         r.Name,
		Cuisine:      r.Cuisine,
		Rating:       r.Rating,
		Address:      r.Address,
		Phone:        r.Phone,
		ImageURL:     r.ImageURL,
	}
}

type menuItemView struct {
	MenuItemID   string      `json:"menu_item_id"`
	Name         string      `json:"name"`
	Description  string      `json:"description,omitempty"`
	Price        json.Number `json:"price"`
	Category     string      `json:"category,omitempty"`
	ImageURL     string      `json:"image_url,omitempty"`
	RestaurantID string      `json:"restaurant_id"`
}

func newMenuItemView(item catalog.MenuItem) menuItemView {
	return menuItemView{
		MenuItemID:   item.MenuItemID,
		Name:         item.Name,
		Description:  item.Description,
		Price:        money.Number(item.Price),
		Category:     item.Category,
		ImageURL:     item.ImageURL,
		RestaurantID: item.RestaurantID,
	}
}

type cartLineView struct {
	MenuItemID   string      `json:"menu_item_id"`
	Name         string      `json:"name"`
	Price        json.Number `json:"price"`
	Quantity     int         `json:"quantity"`
	RestaurantID string      `json:"restaurant_id"`
	LineTotal    json.Number `json:"line_total"`
}

type cartView struct {
	Items      []cartLineView      `json:"items"`
	Restaurant *cart.RestaurantRef `json:"restaurant"`
	Total      json.Number         `json:"total"`
	ItemCount  int                 `json:"item_count"`
}

func newCartView(snapshot cart.Snapshot) cartView {
	items := make([]cartLineView, 0, len(snapshot.Items))
	for _, line := range snapshot.Items {
		items = append(items, cartLineView{
			MenuItemID:   line.MenuItemID,
			Name:         line.Name,
			Price:        money.Number(line.Price),
			Quantity:     line.Quantity,
			RestaurantID: line.RestaurantID,
			LineTotal:    money.Number(line.LineTotal()),
		})
	}
	return cartView{
		Items:      items,
		Restaurant: snapshot.Restaurant,
		Total:      money.Number(snapshot.Total()),
		ItemCount:  snapshot.Count(),
	}
}

type pendingItemView struct {
	MenuItemID   string             `json:"menu_item_id"`
	Name         string             `json:"name"`
	Price        json.Number        `json:"price"`
	RestaurantID string             `json:"restaurant_id"`
	Restaurant   cart.RestaurantRef `json:"restaurant"`
}

func newPendingItemView(pending cart.PendingItem) pendingItemView {
	restaurantID := pending.Item.RestaurantID
	if restaurantID == "" {
		restaurantID = pending.Restaurant.RestaurantID
	}
	return pendingItemView{
		MenuItemID:   pending.Item.MenuItemID,
		Name:         pending.Item.Name,
		Price:        money.Number(pending.Item.Price),
		RestaurantID: restaurantID,
		Restaurant:   pending.Restaurant,
	}
}

type orderItemView struct {
	MenuItemID string      `json:"menu_item_id"`
	Name       string      `json:"name"`
	Quantity   int         `json:"quantity"`
	Price      json.Number `json:"price"`
}

type orderView struct {
	OrderID        string          `json:"order_id"`
	RestaurantID   string          `json:"restaurant_id"`
	RestaurantName string          `json:"restaurant_name"`
	Items          []orderItemView `json:"items"`
	TotalAmount    json.Number     `json:"total_amount"`
	Status         string          `json:"status"`
	OrderDate      string          `json:"order_date,omitempty"`
}

func newOrderView(order orderintake.Order) orderView {
	items := make([]orderItemView, 0, len(order.OrderItems))
	for _, item := range order.OrderItems {
		items = append(items, orderItemView{
			MenuItemID: item.MenuItemID,
			Name:       item.Name,
			Quantity:   item.Quantity,
			Price:      money.Number(item.Price),
		})
	}
	return orderView{
		OrderID:        order.OrderID,
		RestaurantID:   order.RestaurantID,
		RestaurantName: order.RestaurantName,
		Items:          items,
		TotalAmount:    money.Number(order.TotalAmount),
		Status:         order.Status,
		OrderDate:      order.OrderDate,
	}
}
