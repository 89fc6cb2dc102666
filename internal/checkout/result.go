package checkout

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// GroupStatus is the submission state of one order group.
type GroupStatus string

const (
	GroupStatusSubmitted GroupStatus = "submitted"
	GroupStatusFailed    GroupStatus = "failed"
)

// GroupResult reports the outcome of one restaurant's submission.
type GroupResult struct {
	RestaurantID    string      `json:"restaurant_id"`
	RestaurantName  string      `json:"restaurant_name"`
	TotalAmount     json.Number `json:"total_amount"`
	Status          GroupStatus `json:"status"`
	OrderID         string      `json:"order_id,omitempty"`
	Error           string      `json:"error,omitempty"`
	Retryable       bool        `json:"retryable,omitempty"`
	DuplicateRisk   bool        `json:"duplicate_risk,omitempty"`
	PreviousOrderID string      `json:"previous_order_id,omitempty"`

	err error
}

// Result aggregates a checkout attempt. Success is true only when every group was submitted;
// otherwise the orders that were created stay created and the cart is kept for a retry.
type Result struct {
	Success             bool          `json:"success"`
	OrderIDs            []string      `json:"order_ids"`
	Groups              []GroupResult `json:"groups"`
	FailedRestaurantIDs []string      `json:"failed_restaurant_ids,omitempty"`
	DuplicateRisk       bool          `json:"duplicate_risk"`
}

// Err combines the per-group failures, or returns nil on success.
func (r *Result) Err() error {
	if r == nil {
		return nil
	}
	var combined error
	for _, group := range r.Groups {
		if group.Status != GroupStatusFailed {
			continue
		}
		cause := group.err
		if cause == nil {
			cause = errors.New(group.Error)
		}
		combined = multierr.Append(combined, fmt.Errorf("restaurant %s: %w", group.RestaurantID, cause))
	}
	return combined
}

// Succeeded returns the groups whose order was created.
func (r *Result) Succeeded() []GroupResult {
	if r == nil {
		return nil
	}
	out := make([]GroupResult, 0, len(r.Groups))
	for _, group := range r.Groups {
		if group.Status == GroupStatusSubmitted {
			out = append(out, group)
		}
	}
	return out
}

func newResult(groups []GroupResult) *Result {
	result := &Result{
		Success:  true,
		OrderIDs: make([]string, 0, len(groups)),
		Groups:   groups,
	}
	for _, group := range groups {
		if group.DuplicateRisk {
			result.DuplicateRisk = true
		}
		if group.Status == GroupStatusSubmitted {
			result.OrderIDs = append(result.OrderIDs, group.OrderID)
			continue
		}
		result.Success = false
		result.FailedRestaurantIDs = append(result.FailedRestaurantIDs, group.RestaurantID)
	}
	return result
}
