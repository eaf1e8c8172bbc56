package session

// State of a Manager within one page load.
type State int

const (
	Idle State = iota
	AwaitingProviderRedirect
	ValidatingCallback
	Authenticated
	Unauthenticated
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingProviderRedirect:
		return "awaiting-provider-redirect"
	case ValidatingCallback:
		return "validating-callback"
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// IsTerminal returns true for the states that end a page load's flow.
func (s State) IsTerminal() bool {
	return s == Authenticated || s == Unauthenticated
}
