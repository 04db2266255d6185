package models

// State is the position of one transaction in the auth/exchange flow.
//
//	Idle -> AuthPending -> Authenticated -> ExchangePending -> Exchanged
//
// Failed is reachable from every non-terminal state.
type State string

const (
	StateIdle            State = "idle"
	StateAuthPending     State = "auth_pending"
	StateAuthenticated   State = "authenticated"
	StateExchangePending State = "exchange_pending"
	StateExchanged       State = "exchanged"
	StateFailed          State = "failed"
)

// IsTerminal reports whether no further transition is possible.
func (s State) IsTerminal() bool {
	return s == StateExchanged || s == StateFailed
}

// CanTransition reports whether next may follow s.
func (s State) CanTransition(next State) bool {
	if next == StateFailed {
		return !s.IsTerminal()
	}
	switch s {
	case StateIdle:
		return next == StateAuthPending
	case StateAuthPending:
		return next == StateAuthenticated
	case StateAuthenticated:
		return next == StateExchangePending
	case StateExchangePending:
		return next == StateExchanged
	default:
		return false
	}
}

func (s State) String() string {
	return string(s)
}
