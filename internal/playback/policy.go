package playback

import (
	"fmt"
	"strings"
)

// PromotionPolicy decides when a pending playlist becomes the current one.
type PromotionPolicy int

const (
	// PromoteOnSuccess makes a playlist current only after enqueue and skip succeed.
	// A failed switch is retried on the next sync for the same mood.
	PromoteOnSuccess PromotionPolicy = iota

	// PromoteOnAttempt makes a playlist current as soon as a switch is attempted,
	// even if it failed. A failed switch is not retried until the mood changes.
	PromoteOnAttempt
)

func (p PromotionPolicy) String() string {
	switch p {
	case PromoteOnSuccess:
		return "success"
	case PromoteOnAttempt:
		return "attempt"
	default:
		return fmt.Sprintf("PromotionPolicy(%d)", int(p))
	}
}

// ParsePromotionPolicy parses "success" or "attempt".
func ParsePromotionPolicy(s string) (PromotionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "success":
		return PromoteOnSuccess, nil
	case "attempt":
		return PromoteOnAttempt, nil
	default:
		return 0, fmt.Errorf("unknown promotion policy %q", s)
	}
}
