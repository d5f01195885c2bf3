// Package payment provides models, stores, and provider clients for the
// storefront payment flows (mobile money and card).
package payment

// Payment status values as reported to clients.
//
// Confirmed, Failed, and Cancelled are terminal: once a record reaches one of
// them, polling clients stop. Pending is the steady state between initiation
// and the provider's asynchronous callback.
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusFailed    = "FAILED"
	StatusCancelled = "CANCELLED"
	StatusUnknown   = "UNKNOWN"
)

// Well-known record field names shared with the mobile-money provider's
// payload shape.
const (
	FieldStatus        = "status"
	FieldCode          = "code"
	FieldReference     = "reference"
	FieldTransactionID = "transactionid"
	FieldDescription   = "description"
)

// Record is the evolving status record for one payment reference. Besides the
// well-known fields it carries arbitrary passthrough fields from the
// provider's webhook payload (amount, operator code, description), so it is
// modeled as a map rather than a closed struct.
type Record map[string]any

// Status returns the record's status string, or empty if unset.
func (r Record) Status() string {
	s, _ := r[FieldStatus].(string)
	return s
}

// TransactionID returns the provider-assigned transaction ID, or empty.
func (r Record) TransactionID() string {
	id, _ := r[FieldTransactionID].(string)
	return id
}

// Reference returns the record's payment reference, or empty.
func (r Record) Reference() string {
	ref, _ := r[FieldReference].(string)
	return ref
}

// Description returns the provider's description field, or empty.
func (r Record) Description() string {
	d, _ := r[FieldDescription].(string)
	return d
}

// Terminal reports whether the record's status is one after which polling
// clients stop.
func (r Record) Terminal() bool {
	switch r.Status() {
	case StatusConfirmed, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Clone returns a shallow copy of the record so callers cannot mutate stored
// state.
func (r Record) Clone() Record {
	copied := make(Record, len(r))
	for k, v := range r {
		copied[k] = v
	}
	return copied
}

// PendingRecord returns the synthetic record served for references that have
// no stored entry yet. Absence of a record is not an error; it is
// indistinguishable from "the webhook has not arrived yet".
func PendingRecord() Record {
	return Record{FieldStatus: StatusPending}
}

// DeriveStatus maps a provider payload to a status string. Result code "0"
// means confirmed and "1" means failed; any other code defers to the
// provider's own status string when present, else Unknown.
func DeriveStatus(payload map[string]any) string {
	switch code, _ := payload[FieldCode].(string); code {
	case "0":
		return StatusConfirmed
	case "1":
		return StatusFailed
	}
	if s, ok := payload[FieldStatus].(string); ok && s != "" {
		return s
	}
	return StatusUnknown
}

// Overlay merges a provider payload into the record: incoming fields
// overwrite existing ones (shallow overlay, not wholesale replacement) and
// the status is recomputed from the payload. Repeated delivery of the same
// terminal payload converges to the same state, which keeps webhook handling
// idempotent under the provider's at-least-once delivery.
func (r Record) Overlay(payload map[string]any) {
	for k, v := range payload {
		r[k] = v
	}
	r[FieldStatus] = DeriveStatus(payload)
}
