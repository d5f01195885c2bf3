package payment

import "errors"

// Error taxonomy for the payment flows. The categories stay distinct end to
// end because each implies a different remediation for the user: fix the
// input, retry the payment later, or reconcile a charge that already went
// through.
var (
	// ErrValidation indicates missing or malformed input, rejected before any
	// network effect.
	ErrValidation = errors.New("missing or invalid payment fields")

	// ErrProviderTransport indicates a network or timeout failure talking to
	// the payment provider. Terminal for the attempt; no automatic retry.
	ErrProviderTransport = errors.New("provider request failed")

	// ErrProviderLogic indicates the provider was reachable but returned a
	// rejecting result or an incomplete response (such as a missing
	// transaction ID).
	ErrProviderLogic = errors.New("provider rejected the payment request")

	// ErrReconciliation indicates the payment was confirmed but local
	// fulfillment failed. This calls for manual reconciliation, not a payment
	// retry; collapsing it into a generic failure would double-charge users.
	ErrReconciliation = errors.New("payment confirmed but fulfillment failed")

	// ErrClientTimeout indicates no terminal status was observed within the
	// polling budget. The payment may still resolve out-of-band; the gateway
	// keeps recording webhooks for the reference.
	ErrClientTimeout = errors.New("no payment confirmation received in time")
)
