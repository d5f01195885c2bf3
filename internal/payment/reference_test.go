package payment

import (
	"regexp"
	"testing"
)

// TestTimestampReference verifies the reference format: fixed prefix followed
// by digits.
func TestTimestampReference(t *testing.T) {
	ref := TimestampReference()

	pattern := regexp.MustCompile(`^REF\d+$`)
	if !pattern.MatchString(ref) {
		t.Errorf("reference %q does not match REF + digits", ref)
	}
}
