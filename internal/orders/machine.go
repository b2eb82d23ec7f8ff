package orders

import "github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/enums"

// transitions is the authoritative lifecycle graph. Completed and cancelled
// are terminal. The cart edge is only walked by checkout, never by the admin
// transition endpoint.
var transitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusCart:       {enums.OrderStatusProcessing},
	enums.OrderStatusProcessing: {enums.OrderStatusShipped, enums.OrderStatusCancelled},
	enums.OrderStatusShipped:    {enums.OrderStatusCompleted, enums.OrderStatusCancelled},
	enums.OrderStatusCompleted:  {},
	enums.OrderStatusCancelled:  {},
}

// CanTransition reports whether from may advance directly to to.
func CanTransition(from, to enums.OrderStatus) bool {
	for _, candidate := range transitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// NextStatuses lists the statuses reachable from the given status.
func NextStatuses(from enums.OrderStatus) []enums.OrderStatus {
	next := transitions[from]
	out := make([]enums.OrderStatus, len(next))
	copy(out, next)
	return out
}
