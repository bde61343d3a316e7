package domain

// Transitions is the single authority on legal status changes. For each
// current status it lists the statuses each side may move the request to.
// Statuses absent from the map (rejected, cancelled, completed) accept no
// transition at all.
var Transitions = map[Status]map[ActorSide][]Status{
	StatusPending: {
		SideFoundation: {StatusInReview, StatusInfoRequested, StatusPreapproved, StatusApproved, StatusRejected},
		SideAdopter:    {StatusCancelled},
	},
	StatusInReview: {
		SideFoundation: {StatusInfoRequested, StatusPreapproved, StatusApproved, StatusRejected},
		SideAdopter:    {StatusCancelled},
	},
	StatusInfoRequested: {
		// a foundation may still reject a request the adopter never answered
		SideFoundation: {StatusRejected},
		SideAdopter:    {StatusInReview, StatusCancelled},
	},
	StatusPreapproved: {
		SideFoundation: {StatusInfoRequested, StatusApproved, StatusRejected},
		SideAdopter:    {StatusCancelled},
	},
	StatusApproved: {
		SideFoundation: {StatusCompleted},
	},
}

// IsTerminal reports whether no further transition is possible. Approved is
// not terminal: it still moves to completed.
func IsTerminal(s Status) bool {
	switch s {
	case StatusRejected, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// CanTransition validates a requested status change for the acting side.
func CanTransition(from, to Status, side ActorSide) error {
	if IsTerminal(from) {
		return TerminalStateError{Status: from}
	}
	for _, s := range Transitions[from][side] {
		if s == to {
			return nil
		}
	}
	return InvalidTransitionError{From: from, To: to, Side: side}
}
