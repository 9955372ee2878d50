package domain

// State is the lifecycle of a document before the tax authority.
//
// NOT_APPLICABLE is reserved for receipts, which never reach the
// authority. UNSUBMITTED documents have never been sent; PENDING ones
// were sent but have no final verdict; AUTHORIZED is terminal.
type State string

const (
	StateNotApplicable State = "NOT_APPLICABLE"
	StateUnsubmitted   State = "UNSUBMITTED"
	StatePending       State = "PENDING"
	StateAuthorized    State = "AUTHORIZED"
	StateRejected      State = "REJECTED"
)

// Resubmittable reports whether another emission attempt is allowed.
func (s State) Resubmittable() bool {
	return s == StateUnsubmitted || s == StatePending || s == StateRejected
}
