package payment

import (
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
)

// CardCharge describes a one-shot card payment. Amount is in cents, as
// Stripe expects; PaymentMethodID is the tokenized card created by the
// browser, so raw card details never reach this service.
type CardCharge struct {
	Amount          int64
	Currency        string
	Description     string
	PaymentMethodID string
}

// CardClient is the interface for the card processor, mockable in tests.
type CardClient interface {
	Charge(charge *CardCharge) (*stripe.PaymentIntent, error)
}

// StripeClient implements CardClient using the Stripe SDK.
type StripeClient struct{}

// NewStripeClient creates a Stripe client with the given API key.
func NewStripeClient(apiKey string) *StripeClient {
	stripe.Key = apiKey
	return &StripeClient{}
}

// Charge creates and immediately confirms a PaymentIntent for the card
// payment. Unlike the mobile-money path this is a single synchronous call:
// the intent's status in the response is final for our purposes.
func (c *StripeClient) Charge(charge *CardCharge) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(charge.Amount),
		Currency:      stripe.String(charge.Currency),
		Description:   stripe.String(charge.Description),
		PaymentMethod: stripe.String(charge.PaymentMethodID),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:       stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}

	return paymentintent.New(params)
}
