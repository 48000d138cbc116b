package merge

// Decide maps a conflict policy and the existence of a stored copy to an action.
// It performs no I/O so every branch can be tested on its own.
func Decide(policy Policy, exists bool) ActionType {
	if !exists {
		return ActionCreate
	}
	switch policy {
	case PolicyOverride:
		return ActionUpdate
	case PolicyAppend:
		return ActionMerge
	default:
		return ActionSkip
	}
}
