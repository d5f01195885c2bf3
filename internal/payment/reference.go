package payment

import (
	"fmt"
	"time"
)

// ReferencePrefix is the fixed prefix of generated payment references.
const ReferencePrefix = "REF"

// ReferenceGenerator produces a fresh payment reference for one initiation
// attempt. Injected into the initiation handler so tests can pin references.
type ReferenceGenerator func() string

// TimestampReference generates "REF" followed by the current Unix time in
// milliseconds. Uniqueness is best-effort: the suffix derives from wall-clock
// time with no randomness or sequence guard, so rapid concurrent initiations
// can collide. References are never reused or deleted once issued.
func TimestampReference() string {
	return fmt.Sprintf("%s%d", ReferencePrefix, time.Now().UnixMilli())
}
