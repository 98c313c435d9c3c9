package workflow

// Trigger is an action requested against a report that may cause a transition.
type Trigger string

const (
	// TriggerSubmit moves a draft into the approval chain.
	TriggerSubmit Trigger = "SUBMIT"

	// TriggerApprove advances the report to the next stage on its route.
	TriggerApprove Trigger = "APPROVE"

	// TriggerReject terminates the report.
	TriggerReject Trigger = "REJECT"

	// TriggerSendBack returns the report to Draft for the submitter to revise.
	TriggerSendBack Trigger = "SENDBACK"
)

func (t Trigger) String() string {
	return string(t)
}
