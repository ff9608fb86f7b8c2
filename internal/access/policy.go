package access

// Level is what a user is allowed to see.
type Level int

const (
	// None: not subscribed to the main channel.
	None Level = iota
	// Partial: subscribed but not in the verification group.
	Partial
	// FullAccess: both memberships confirmed.
	FullAccess
)

func (l Level) String() string {
	switch l {
	case FullAccess:
		return "full"
	case Partial:
		return "partial"
	default:
		return "none"
	}
}

// Evaluate maps the two stored flags to an access level.
func Evaluate(subscribed, verifJoined bool) Level {
	switch {
	case subscribed && verifJoined:
		return FullAccess
	case subscribed:
		return Partial
	default:
		return None
	}
}
