// Package workflow builds the approval state machine for a given report and
// knows which role is expected to act at each point of the chain.
package workflow

import (
	"context"

	"github.com/sric-portal/expense-workflow/internal/domain/entity"
	domainwf "github.com/sric-portal/expense-workflow/internal/domain/workflow"
)

// BuildApprovalStateMachine configures the lifecycle machine for one report.
// The report's submitter role decides where a submit lands, and its fund type
// decides which of the three mid-chain paths it takes after School Chair
// approval. Guards read the report at fire time, so a fund type fixed during
// faculty approval routes correctly.
func BuildApprovalStateMachine(report *entity.ExpenseReport) domainwf.StateMachine {
	builder := domainwf.NewBuilder()

	fundIs := func(ft entity.FundType) domainwf.GuardFunc {
		return func(ctx context.Context) bool { return report.FundType == ft }
	}
	fundIn := func(fts ...entity.FundType) domainwf.GuardFunc {
		return func(ctx context.Context) bool {
			for _, ft := range fts {
				if report.FundType == ft {
					return true
				}
			}
			return false
		}
	}

	// A Faculty submitter enters the chain at Faculty Approved: the submitter
	// is the faculty reviewer, so the review stage would be a self-approval.
	builder.Configure(domainwf.StateDraft).
		PermitIf(domainwf.TriggerSubmit, domainwf.StateFacultyApproved,
			func(ctx context.Context) bool { return report.SubmitterRole == entity.RoleFaculty }).
		PermitIf(domainwf.TriggerSubmit, domainwf.StateSubmitted,
			func(ctx context.Context) bool { return report.SubmitterRole == entity.RoleStudent })

	builder.Configure(domainwf.StateSubmitted).
		Permit(domainwf.TriggerApprove, domainwf.StateFacultyApproved).
		Permit(domainwf.TriggerReject, domainwf.StateRejected).
		Permit(domainwf.TriggerSendBack, domainwf.StateDraft)

	builder.Configure(domainwf.StateFacultyApproved).
		Permit(domainwf.TriggerApprove, domainwf.StateSchoolChairApproved).
		Permit(domainwf.TriggerReject, domainwf.StateRejected).
		Permit(domainwf.TriggerSendBack, domainwf.StateDraft)

	// Fund-type fork.
	builder.Configure(domainwf.StateSchoolChairApproved).
		PermitIf(domainwf.TriggerApprove, domainwf.StateDeanSRICApproved, fundIs(entity.FundProject)).
		PermitIf(domainwf.TriggerApprove, domainwf.StateDirectorApproved, fundIs(entity.FundInstitute)).
		PermitIf(domainwf.TriggerApprove, domainwf.StateAuditApproved, fundIn(entity.FundDepartment, entity.FundPDA)).
		Permit(domainwf.TriggerReject, domainwf.StateRejected).
		Permit(domainwf.TriggerSendBack, domainwf.StateDraft)

	builder.Configure(domainwf.StateDeanSRICApproved).
		Permit(domainwf.TriggerApprove, domainwf.StateAuditApproved).
		Permit(domainwf.TriggerReject, domainwf.StateRejected).
		Permit(domainwf.TriggerSendBack, domainwf.StateDraft)

	builder.Configure(domainwf.StateDirectorApproved).
		Permit(domainwf.TriggerApprove, domainwf.StateAuditApproved).
		Permit(domainwf.TriggerReject, domainwf.StateRejected).
		Permit(domainwf.TriggerSendBack, domainwf.StateDraft)

	builder.Configure(domainwf.StateAuditApproved).
		Permit(domainwf.TriggerApprove, domainwf.StateFinanceApproved).
		Permit(domainwf.TriggerReject, domainwf.StateRejected).
		Permit(domainwf.TriggerSendBack, domainwf.StateDraft)

	// Rejected, Finance Approved and Completed are terminal.

	return builder.Build(report.Status)
}
