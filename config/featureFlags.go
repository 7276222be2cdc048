package config

import (
	"os"
	"strings"
)

// StrictStockUnderflow controls what happens when a cut asks for more kg
// than a source stock item holds outside the guarded decrement path.
//
// Strict (default): the operation is rejected with an insufficient-stock error.
// Legacy: the stock item is clamped to zero, matching the behaviour the old
// warehouse endpoints had. The clamp silently loses the oversold remainder,
// so every clamp is logged at error level.
//
// Set via env:
// - STRICT_STOCK_UNDERFLOW=false to re-enable the legacy clamp
func StrictStockUnderflow() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("STRICT_STOCK_UNDERFLOW")))
	if v == "" {
		return true
	}
	return !(v == "0" || v == "false" || v == "no" || v == "n")
}

// AuditPubSubTopic returns the Pub/Sub topic audit entries are mirrored to,
// or "" when fan-out is disabled. Publishing is fire-and-forget; a missing
// or unreachable topic never fails the mutating operation.
//
// Set via env:
// - AUDIT_PUBSUB_TOPIC=films-audit
func AuditPubSubTopic() string {
	return strings.TrimSpace(os.Getenv("AUDIT_PUBSUB_TOPIC"))
}
