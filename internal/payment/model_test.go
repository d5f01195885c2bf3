package payment

import "testing"

// TestDeriveStatus verifies status derivation from provider result codes.
func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
		want    string
	}{
		{
			name:    "code zero is confirmed",
			payload: map[string]any{FieldCode: "0"},
			want:    StatusConfirmed,
		},
		{
			name:    "code one is failed",
			payload: map[string]any{FieldCode: "1"},
			want:    StatusFailed,
		},
		{
			name:    "other code passes through provider status",
			payload: map[string]any{FieldCode: "9", FieldStatus: StatusCancelled},
			want:    StatusCancelled,
		},
		{
			name:    "no code passes through provider status",
			payload: map[string]any{FieldStatus: "PROCESSING"},
			want:    "PROCESSING",
		},
		{
			name:    "no code and no status is unknown",
			payload: map[string]any{"operator": "M-PESA"},
			want:    StatusUnknown,
		},
		{
			name:    "confirmed code wins over provider status",
			payload: map[string]any{FieldCode: "0", FieldStatus: "PROCESSING"},
			want:    StatusConfirmed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveStatus(tt.payload); got != tt.want {
				t.Errorf("DeriveStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestOverlay_MergesNotReplaces verifies that incoming fields overwrite
// existing ones without dropping fields absent from the payload.
func TestOverlay_MergesNotReplaces(t *testing.T) {
	record := Record{
		FieldStatus:        StatusPending,
		FieldTransactionID: "T1",
		FieldReference:     "REF123",
		"operator":         "Airtel Money",
	}

	record.Overlay(map[string]any{
		FieldReference: "REF123",
		FieldCode:      "0",
		"amount":       12.50,
	})

	if record.Status() != StatusConfirmed {
		t.Errorf("expected status CONFIRMED, got %q", record.Status())
	}
	if record.TransactionID() != "T1" {
		t.Errorf("expected transaction id T1 preserved, got %q", record.TransactionID())
	}
	if record["operator"] != "Airtel Money" {
		t.Errorf("expected operator field preserved, got %v", record["operator"])
	}
	if record["amount"] != 12.50 {
		t.Errorf("expected amount merged, got %v", record["amount"])
	}
}

// TestOverlay_IdempotentUnderReplay verifies that applying the same terminal
// payload twice converges to the same state.
func TestOverlay_IdempotentUnderReplay(t *testing.T) {
	payload := map[string]any{
		FieldReference:     "REF9",
		FieldCode:          "0",
		FieldTransactionID: "T9",
	}

	record := Record{FieldStatus: StatusPending}
	record.Overlay(payload)
	first := record.Clone()

	record.Overlay(payload)

	if len(record) != len(first) {
		t.Fatalf("replay changed field count: %d vs %d", len(record), len(first))
	}
	for k, v := range first {
		if record[k] != v {
			t.Errorf("replay changed field %q: %v vs %v", k, record[k], v)
		}
	}
}

// TestTerminal verifies the terminal status set.
func TestTerminal(t *testing.T) {
	terminal := []string{StatusConfirmed, StatusFailed, StatusCancelled}
	for _, s := range terminal {
		if !(Record{FieldStatus: s}).Terminal() {
			t.Errorf("expected %q to be terminal", s)
		}
	}

	nonTerminal := []string{StatusPending, StatusUnknown, "", "PROCESSING"}
	for _, s := range nonTerminal {
		if (Record{FieldStatus: s}).Terminal() {
			t.Errorf("expected %q to be non-terminal", s)
		}
	}
}

// TestClone verifies mutation isolation between a record and its clone.
func TestClone(t *testing.T) {
	record := Record{FieldStatus: StatusPending}
	clone := record.Clone()
	clone[FieldStatus] = StatusConfirmed

	if record.Status() != StatusPending {
		t.Error("mutating a clone changed the original record")
	}
}
