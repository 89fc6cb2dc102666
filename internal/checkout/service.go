package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/foodcart/internal/cart"
	"github.com/angelmondragon/foodcart/internal/checkout/helpers"
	pkgerrors "github.com/angelmondragon/foodcart/pkg/errors"
	"github.com/angelmondragon/foodcart/pkg/logger"
	"github.com/angelmondragon/foodcart/pkg/metrics"
	"github.com/angelmondragon/foodcart/pkg/orderintake"
)

const defaultMaxConcurrent = 4

type orderCreator interface {
	CreateOrder(ctx context.Context, req orderintake.CreateOrderRequest) (*orderintake.CreateOrderResponse, error)
}

type restaurantDirectory interface {
	Names(ctx context.Context) (map[string]string, error)
}

type checkoutMetrics interface {
	ObserveAttempt(outcome string, groupCount int)
	ObserveSubmission(result string, duration time.Duration)
}

// Service turns a session cart into one order per restaurant.
type Service interface {
	Execute(ctx context.Context, customerID string, store *cart.Store) (*Result, error)
}

// Config tunes the orchestrator.
type Config struct {
	MaxConcurrent int
	FallbackName  string
}

type service struct {
	orders    orderCreator
	directory restaurantDirectory
	metrics   checkoutMetrics
	logg      *logger.Logger
	cfg       Config
	now       func() time.Time
}

// NewService builds the checkout service.
func NewService(orders orderCreator, directory restaurantDirectory, recorder checkoutMetrics, logg *logger.Logger, cfg Config) (Service, error) {
	if orders == nil {
		return nil, fmt.Errorf("order creator required")
	}
	if directory == nil {
		return nil, fmt.Errorf("restaurant directory required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if recorder == nil {
		recorder = noopMetrics{}
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = defaultMaxConcurrent
	}
	if strings.TrimSpace(cfg.FallbackName) == "" {
		cfg.FallbackName = DefaultFallbackName
	}
	return &service{
		orders:    orders,
		directory: directory,
		metrics:   recorder,
		logg:      logg,
		cfg:       cfg,
		now:       time.Now,
	}, nil
}

// Execute submits every restaurant group in the cart. When all submissions succeed the
// cart is cleared. When any fails nothing is rolled back, the cart is kept, and the
// returned error carries the full Result alongside the Result itself.
func (s *service) Execute(ctx context.Context, customerID string, store *cart.Store) (*Result, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart store required")
	}
	customerID, err := helpers.ValidateCustomer(customerID)
	if err != nil {
		return nil, err
	}
	ctx = s.logg.WithCustomerID(ctx, customerID)

	snapshot := store.Snapshot()
	if snapshot.Empty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	if err := helpers.ValidateLines(snapshot.Items); err != nil {
		return nil, err
	}

	groups := Partition(snapshot, s.lookupNames(ctx), s.cfg.FallbackName)
	results := s.submitAll(ctx, customerID, groups, store)
	result := newResult(results)

	if result.Success {
		store.Clear()
		s.metrics.ObserveAttempt(outcomeFor(result), len(groups))
		s.logg.Info(s.logg.WithField(ctx, "order_count", len(result.OrderIDs)), "checkout completed")
		return result, nil
	}

	for _, group := range result.Succeeded() {
		store.RecordSubmitted(group.RestaurantID, group.OrderID)
	}
	s.metrics.ObserveAttempt(outcomeFor(result), len(groups))

	cause := result.Err()
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"failed_restaurant_ids": result.FailedRestaurantIDs,
		"order_ids":             result.OrderIDs,
		"duplicate_risk":        result.DuplicateRisk,
	})
	s.logg.Error(logCtx, "checkout did not complete", cause)

	code := pkgerrors.CodePartialBatch
	if len(result.OrderIDs) == 0 {
		code = pkgerrors.CodeDependency
	}
	return result, pkgerrors.Wrap(code, cause, failureMessage(result)).WithDetails(result)
}

func (s *service) lookupNames(ctx context.Context) RestaurantNames {
	names, err := s.directory.Names(ctx)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "restaurant directory unavailable; using fallback names")
		return RestaurantNames{}
	}
	return names
}

func outcomeFor(result *Result) string {
	switch {
	case result.Success:
		return metrics.CheckoutOutcomeSuccess
	case len(result.OrderIDs) > 0:
		return metrics.CheckoutOutcomePartial
	default:
		return metrics.CheckoutOutcomeFailure
	}
}

func failureMessage(result *Result) string {
	names := make([]string, 0, len(result.FailedRestaurantIDs))
	for _, group := range result.Groups {
		if group.Status == GroupStatusFailed {
			names = append(names, group.RestaurantName)
		}
	}
	return fmt.Sprintf("orders could not be placed for: %s", strings.Join(names, ", "))
}

type noopMetrics struct{}

func (noopMetrics) ObserveAttempt(string, int) {}

func (noopMetrics) ObserveSubmission(string, time.Duration) {}
