package domain

// OrderStatus captures the lifecycle of an order in the planning domain.
type OrderStatus string

const (
	StatusDraft     OrderStatus = "DRAFT"
	StatusPending   OrderStatus = "PENDING"
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusInProcess OrderStatus = "IN_PROCESS"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// forward holds the single legal forward transition per state. Cancellation
// is handled separately because it is reachable from every non-terminal state.
var forward = map[OrderStatus]OrderStatus{
	StatusDraft:     StatusPending,
	StatusPending:   StatusConfirmed,
	StatusConfirmed: StatusInProcess,
	StatusInProcess: StatusDelivered,
}

// IsValid reports whether the status is a known lifecycle state.
func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusConfirmed, StatusInProcess, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal indicates whether the order can no longer change state.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if !s.IsValid() || !next.IsValid() || s == next {
		return false
	}
	if s.IsTerminal() {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	return forward[s] == next
}
