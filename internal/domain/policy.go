package domain

// PolicyDecision is the answer of a booking policy guard.
type PolicyDecision struct {
	Allowed bool
	Reason  string
}

// Allow is a positive decision
func Allow() PolicyDecision {
	return PolicyDecision{Allowed: true}
}

// Deny is a negative decision with a reason shown to the user
func Deny(reason string) PolicyDecision {
	return PolicyDecision{Allowed: false, Reason: reason}
}
