package domain

// ConnState is the lifecycle of a realtime channel.
//
//	Idle -> Connecting -> Connected -> Closed
//	Connected -> Reconnecting -> Connected | Failed
type ConnState int

const (
	StateIdle ConnState = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateFailed
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions can happen.
func (s ConnState) Terminal() bool {
	return s == StateFailed || s == StateClosed
}
