package orderintake

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/foodcart/pkg/errors"
)

const (
	serviceName                 = "order-intake"
	defaultTimeout              = 10 * time.Second
	responseBodyReadLimit int64 = 1024

	// IdempotencyHeader carries the per-group key when idempotency keys are enabled.
	IdempotencyHeader = "Idempotency-Key"
)

var errBaseURLRequired = errors.New("order intake base url is required")

// Client creates and reads orders on the remote order-intake service.
type Client struct {
	httpClient      *http.Client
	baseURL         string
	idempotencyKeys bool
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

// WithIdempotencyKeys attaches a deterministic Idempotency-Key header to CreateOrder calls.
func WithIdempotencyKeys(enabled bool) Option {
	return func(c *Client) {
		c.idempotencyKeys = enabled
	}
}

// NewClient builds the order-intake client for the given base URL.
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

// CreateOrder submits one restaurant's order and returns the id assigned by the service.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResponse, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order intake client not configured")
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	headers := http.Header{}
	if c.idempotencyKeys {
		headers.Set(IdempotencyHeader, IdempotencyKey(req))
	}

	var apiResp CreateOrderResponse
	if err := c.doJSON(ctx, http.MethodPost, c.buildURL("orders", nil), req.wire(), headers, "create order", &apiResp); err != nil {
		return nil, err
	}
	if strings.TrimSpace(apiResp.OrderID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order intake returned no order id")
	}
	return &apiResp, nil
}

// ListOrders returns every order placed by customerID.
func (c *Client) ListOrders(ctx context.Context, customerID string) ([]Order, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order intake client not configured")
	}
	trimmed := strings.TrimSpace(customerID)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}

	var apiResp struct {
		Orders []Order `json:"orders"`
	}
	query := url.Values{"customerId": []string{trimmed}}
	if err := c.doJSON(ctx, http.MethodGet, c.buildURL("orders", query), nil, nil, "list orders", &apiResp); err != nil {
		return nil, err
	}
	if apiResp.Orders == nil {
		return []Order{}, nil
	}
	return apiResp.Orders, nil
}

// UpdateOrderStatus moves an order to the given status.
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "order intake client not configured")
	}
	orderID = strings.TrimSpace(orderID)
	status = strings.TrimSpace(status)
	if orderID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if status == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "status is required")
	}

	target := c.buildURL(fmt.Sprintf("orders/%s/status", url.PathEscape(orderID)), nil)
	body := map[string]string{"status": status}
	return c.doJSON(ctx, http.MethodPut, target, body, nil, "update order status", nil)
}

func (c *Client) doJSON(ctx context.Context, method, target string, body any, headers http.Header, op string, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("marshal %s request", op))
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("build %s request", op))
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for key, values := range headers {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("execute %s request", op))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return pkgerrors.FromUpstream(serviceName, resp.StatusCode, strings.TrimSpace(string(msg)), op+" request failed")
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil
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
