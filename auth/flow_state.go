package auth

// FlowState is the position of a single login in the authorization code flow.
type FlowState int

const (
	NotStarted FlowState = iota
	AwaitingCallback
	Exchanging
	Established // terminal success
	Rejected    // terminal failure
)

func (s FlowState) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case AwaitingCallback:
		return "awaiting_callback"
	case Exchanging:
		return "exchanging"
	case Established:
		return "established"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can happen.
func (s FlowState) Terminal() bool {
	return s == Established || s == Rejected
}
