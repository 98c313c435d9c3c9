package workflow

// State is a stop in the expense-report approval lifecycle. Values match the
// status strings persisted on the report, so they double as wire values.
type State string

const (
	StateDraft               State = "Draft"
	StateSubmitted           State = "Submitted"
	StateFacultyApproved     State = "Faculty Approved"
	StateSchoolChairApproved State = "School Chair Approved"
	StateDeanSRICApproved    State = "Dean SRIC Approved"
	StateDirectorApproved    State = "Director Approved"
	StateAuditApproved       State = "Audit Approved"
	StateFinanceApproved     State = "Finance Approved"
	StateCompleted           State = "Completed"
	StateRejected            State = "Rejected"
)

var validStates = map[State]bool{
	StateDraft:               true,
	StateSubmitted:           true,
	StateFacultyApproved:     true,
	StateSchoolChairApproved: true,
	StateDeanSRICApproved:    true,
	StateDirectorApproved:    true,
	StateAuditApproved:       true,
	StateFinanceApproved:     true,
	StateCompleted:           true,
	StateRejected:            true,
}

// Rejected ends the chain; Finance Approved is the last approval and Completed
// exists for records that were closed out under the old system.
var terminalStates = map[State]bool{
	StateRejected:        true,
	StateFinanceApproved: true,
	StateCompleted:       true,
}

// IsValid reports whether s is one of the known lifecycle states.
func (s State) IsValid() bool {
	return validStates[s]
}

// IsTerminal reports whether no further transitions are accepted from s.
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

func (s State) String() string {
	return string(s)
}
