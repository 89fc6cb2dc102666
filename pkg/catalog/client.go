package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/foodcart/pkg/errors"
)

const (
	serviceName                 = "catalog"
	defaultTimeout              = 10 * time.Second
	responseBodyReadLimit int64 = 1024
)

var errBaseURLRequired = errors.New("catalog base url is required")

// Client reads restaurants and menus from the remote catalog service.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// NewClient builds the catalog client for the given base URL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}

	client := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return client, nil
}

// Restaurant is a restaurant listed by the catalog.
type Restaurant struct {
	RestaurantID string  `json:"restaurantId"`
	Name         string  `json:"name"`
	Cuisine      string  `json:"cuisine,omitempty"`
	Rating       float64 `json:"rating,omitempty"`
	Address      string  `json:"address,omitempty"`
	Phone        string  `json:"phone,omitempty"`
	ImageURL     string  `json:"imageUrl,omitempty"`
}

// MenuItem is one item on a restaurant's menu.
type MenuItem struct {
	MenuItemID   string          `json:"menuItemId"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Category     string          `json:"category,omitempty"`
	ImageURL     string          `json:"imageUrl,omitempty"`
	RestaurantID string          `json:"restaurantId,omitempty"`
}

// ListRestaurants returns every restaurant known to the catalog.
func (c *Client) ListRestaurants(ctx context.Context) ([]Restaurant, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog client not configured")
	}

	var apiResp struct {
		Restaurants []Restaurant `json:"restaurants"`
	}
	if err := c.getJSON(ctx, c.buildURL("restaurants", nil), "list restaurants", &apiResp); err != nil {
		return nil, err
	}
	if apiResp.Restaurants == nil {
		return []Restaurant{}, nil
	}
	return apiResp.Restaurants, nil
}

// ListMenuItems returns the menu of one restaurant.
func (c *Client) ListMenuItems(ctx context.Context, restaurantID string) ([]MenuItem, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog client not configured")
	}
	trimmed := strings.TrimSpace(restaurantID)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "restaurant id is required")
	}

	var apiResp struct {
		MenuItems []MenuItem `json:"menuItems"`
	}
	query := url.Values{"restaurantId": []string{trimmed}}
	if err := c.getJSON(ctx, c.buildURL("menu", query), "list menu items", &apiResp); err != nil {
		return nil, err
	}

	items := make([]MenuItem, 0, len(apiResp.MenuItems))
	for _, item := range apiResp.MenuItems {
		if item.RestaurantID == "" {
			item.RestaurantID = trimmed
		}
		items = append(items, item)
	}
	return items, nil
}

func (c *Client) getJSON(ctx context.Context, target, op string, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("build %s request", op))
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("execute %s request", op))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return pkgerrors.FromUpstream(serviceName, resp.StatusCode, strings.TrimSpace(string(msg)), op+" request failed")
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("decode %s response", op))
	}
	return nil
}

func (c *Client) buildURL(path string, query url.Values) string {
	target := fmt.Sprintf("%s/%s", c.baseURL, strings.TrimLeft(path, "/"))
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return target
}
