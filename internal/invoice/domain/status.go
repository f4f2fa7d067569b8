package domain

// Status is an invoice lifecycle state. Transitions only move forward.
type Status string

const (
	StatusDraft  Status = "DRAFT"
	StatusIssued Status = "ISSUED"
	StatusPaid   Status = "PAID"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusIssued, StatusPaid:
		return true
	}
	return false
}

// Transition names an operation that acts on an existing invoice.
type Transition string

const (
	TransitionUpdate   Transition = "update"
	TransitionIssue    Transition = "issue"
	TransitionMarkPaid Transition = "mark_paid"
	TransitionDelete   Transition = "delete"
	// TransitionSupersede settles an ISSUED invoice that was merged into
	// another one.
	TransitionSupersede Transition = "supersede"
)

// transitions lists every allowed (state, operation) pair and the state it
// leads to. Delete has no target state. PAID is terminal.
var transitions = map[Status]map[Transition]Status{
	StatusDraft: {
		TransitionUpdate: StatusDraft,
		TransitionIssue:  StatusIssued,
		TransitionDelete: "",
	},
	StatusIssued: {
		TransitionMarkPaid:  StatusPaid,
		TransitionSupersede: StatusPaid,
	},
	StatusPaid: {},
}

// Allows reports whether t may be applied to an invoice in state s.
func (s Status) Allows(t Transition) bool {
	_, ok := transitions[s][t]
	return ok
}

// Next returns the state reached by applying t to s.
func Next(s Status, t Transition) (Status, error) {
	to, ok := transitions[s][t]
	if !ok {
		return "", InvalidTransition(s, t)
	}
	return to, nil
}
