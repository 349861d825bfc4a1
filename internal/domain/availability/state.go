package availability

import "time"

// Status is the tri-state vector availability.
type Status string

// Status constants.
const (
	Unknown     Status = "unknown"
	Available   Status = "available"
	Unavailable Status = "unavailable"
)

// State is an immutable snapshot of the last vector index probe.
// The probe replaces it whole; it is never mutated in place.
type State struct {
	status    Status
	checkedAt time.Time
	ttl       time.Duration
	reason    string
}

// NewUnknown returns the initial state. It is always expired.
func NewUnknown() State {
	return State{status: Unknown}
}

// NewAvailable creates a healthy state valid for ttl.
func NewAvailable(checkedAt time.Time, ttl time.Duration) State {
	return State{status: Available, checkedAt: checkedAt, ttl: ttl}
}

// NewUnavailable creates an unhealthy state valid for ttl.
func NewUnavailable(checkedAt time.Time, ttl time.Duration, reason string) State {
	return State{status: Unavailable, checkedAt: checkedAt, ttl: ttl, reason: reason}
}

// Status returns the probe result.
func (s State) Status() Status { return s.status }

// Available reports whether semantic capability may be used.
func (s State) Available() bool { return s.status == Available }

// CheckedAt returns when the probe ran.
func (s State) CheckedAt() time.Time { return s.checkedAt }

// TTL returns how long the state stays fresh.
func (s State) TTL() time.Duration { return s.ttl }

// Reason returns the failure description for unavailable states.
func (s State) Reason() string { return s.reason }

// Expired reports whether the state must be re-checked at now.
func (s State) Expired(now time.Time) bool {
	if s.status == Unknown {
		return true
	}
	return !now.Before(s.checkedAt.Add(s.ttl))
}
