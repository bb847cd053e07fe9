package timer

import "time"

// Urgency classifies how much of the pick clock is left, for display and
// autopick policy.
type Urgency string

const (
	UrgencyNormal   Urgency = "normal"
	UrgencyWarning  Urgency = "warning"
	UrgencyCritical Urgency = "critical"
)

// Thresholds carries the configured urgency boundaries. Rooms supply their
// own values so fast-mode rooms can scale the tiers down instead of reusing
// boundaries tuned for 30-second picks.
type Thresholds struct {
	Warning  time.Duration
	Critical time.Duration
}

// Classify maps remaining time onto an urgency tier.
func (t Thresholds) Classify(remaining time.Duration) Urgency {
	switch {
	case remaining <= t.Critical:
		return UrgencyCritical
	case remaining <= t.Warning:
		return UrgencyWarning
	default:
		return UrgencyNormal
	}
}
