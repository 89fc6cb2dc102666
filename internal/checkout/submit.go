package checkout

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/foodcart/internal/cart"
	pkgerrors "github.com/angelmondragon/foodcart/pkg/errors"
	"github.com/angelmondragon/foodcart/pkg/metrics"
	"github.com/angelmondragon/foodcart/pkg/money"
	"github.com/angelmondragon/foodcart/pkg/orderintake"
)

// submitAll sends every group concurrently. Submissions are detached from the caller's
// cancellation: once checkout starts, a disconnecting client does not abort them.
func (s *service) submitAll(ctx context.Context, customerID string, groups []OrderGroup, store *cart.Store) []GroupResult {
	submitCtx := context.WithoutCancel(ctx)
	results := make([]GroupResult, len(groups))

	var g errgroup.Group
	g.SetLimit(s.cfg.MaxConcurrent)
	for i, group := range groups {
		previous, seen := store.SubmittedOrderID(group.RestaurantID)
		results[i] = GroupResult{
			RestaurantID:    group.RestaurantID,
			RestaurantName:  group.RestaurantName,
			TotalAmount:     money.Number(group.TotalAmount),
			DuplicateRisk:   seen,
			PreviousOrderID: previous,
		}
		g.Go(func() error {
			s.submitOne(submitCtx, customerID, group, &results[i])
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (s *service) submitOne(ctx context.Context, customerID string, group OrderGroup, out *GroupResult) {
	ctx = s.logg.WithRestaurantID(ctx, group.RestaurantID)
	started := s.now()
	resp, err := s.orders.CreateOrder(ctx, buildRequest(customerID, group))
	elapsed := s.now().Sub(started)

	if err != nil {
		s.metrics.ObserveSubmission(metrics.SubmissionResultFailure, elapsed)
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "order submission failed")
		out.Status = GroupStatusFailed
		out.Error = publicMessage(err)
		out.Retryable = pkgerrors.IsRetryable(err)
		out.err = err
		return
	}

	s.metrics.ObserveSubmission(metrics.SubmissionResultSuccess, elapsed)
	s.logg.Info(s.logg.WithField(ctx, "order_id", resp.OrderID), "order submitted")
	out.Status = GroupStatusSubmitted
	out.OrderID = resp.OrderID
}

func buildRequest(customerID string, group OrderGroup) orderintake.CreateOrderRequest {
	items := make([]orderintake.OrderItem, 0, len(group.Items))
	for _, item := range group.Items {
		items = append(items, orderintake.OrderItem{
			MenuItemID: item.MenuItemID,
			Name:       item.Name,
			Quantity:   item.Quantity,
			Price:      item.Price,
		})
	}
	return orderintake.CreateOrderRequest{
		CustomerID:     customerID,
		RestaurantID:   group.RestaurantID,
		RestaurantName: group.RestaurantName,
		OrderItems:     items,
		TotalAmount:    group.TotalAmount,
	}
}

func publicMessage(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Message()
	}
	return err.Error()
}
