// Package purchase records completed orders: which viewer bought which movie,
// how they paid, and under which payment reference.
package purchase

import (
	"errors"
	"time"
)

// Payment methods recorded on a purchase.
const (
	MethodMobile = "mobile"
	MethodCard   = "card"
)

// ErrPurchaseNotFound is returned when the requested purchase does not exist.
var ErrPurchaseNotFound = errors.New("purchase not found")

// ErrPurchaseExists is returned when a purchase already exists for a payment
// reference. Fulfillment retries hit this and treat it as success.
var ErrPurchaseExists = errors.New("purchase already recorded for reference")

// Purchase is one completed order.
type Purchase struct {
	ID            string    `json:"id"`
	Reference     string    `json:"reference"`
	MovieID       string    `json:"movieId"`
	UserID        string    `json:"userId,omitempty"`
	Method        string    `json:"method"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	TransactionID string    `json:"transactionId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Validate checks the fields required before an order can be recorded.
func (p *Purchase) Validate() error {
	if p.Reference == "" {
		return errors.New("reference is required")
	}
	if p.MovieID == "" {
		return errors.New("movie id is required")
	}
	if p.Method != MethodMobile && p.Method != MethodCard {
		return errors.New("method must be mobile or card")
	}
	if p.Amount <= 0 {
		return errors.New("amount must be positive")
	}
	return nil
}
