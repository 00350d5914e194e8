package negotiate

import "errors"

// State is the current state of a negotiation session.
type State string

// Session states.
const (
	StateInit              State = "init"
	StateAcquiringBase     State = "acquiring-base"
	StateProbing           State = "probing"
	StateVerifying         State = "verifying"
	StateFallbackAcquiring State = "fallback-acquiring"
	StateFallbackVerifying State = "fallback-verifying"
	StateSucceeded         State = "succeeded"
	StateFailed            State = "failed"
)

// Reason explains a failed negotiation.
type Reason string

// Failure reasons.
const (
	ReasonDenied          Reason = "denied"
	ReasonUnsupported     Reason = "unsupported"
	ReasonNoTrack         Reason = "no-track"
	ReasonReacquireFailed Reason = "reacquire-failed"
	ReasonExhausted       Reason = "exhausted"
	ReasonCancelled       Reason = "cancelled"
)

// NegotiationError is the only error Negotiate returns. It carries the
// classified reason, never the device error that caused it.
type NegotiationError struct {
	Reason Reason
}

func (e *NegotiationError) Error() string {
	return "stream negotiation failed: " + string(e.Reason)
}

// ReasonOf returns the failure reason of err, or "" if err is not a
// *NegotiationError.
func ReasonOf(err error) Reason {
	var ne *NegotiationError
	if errors.As(err, &ne) {
		return ne.Reason
	}
	return ""
}
