package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sric-portal/expense-workflow/internal/application/port"
	appwf "github.com/sric-portal/expense-workflow/internal/application/workflow"
	"github.com/sric-portal/expense-workflow/internal/domain/entity"
	domainwf "github.com/sric-portal/expense-workflow/internal/domain/workflow"
	"github.com/sric-portal/expense-workflow/pkg/utils"
)

// ItemInput is one expense line supplied by a submitter.
type ItemInput struct {
	Description   string           `json:"description"`
	Category      string           `json:"category"`
	Amount        decimal.Decimal  `json:"amount"`
	Currency      string           `json:"currency"`
	AmountINR     *decimal.Decimal `json:"amount_inr"`
	PaymentMethod string           `json:"payment_method"`
	ReceiptRef    string           `json:"receipt_ref"`
	ExpenseDate   *time.Time       `json:"expense_date"`
}

// CreateReportInput carries the fields accepted when opening a draft.
type CreateReportInput struct {
	Title                 string          `json:"title"`
	Department            string          `json:"department"`
	FundType              entity.FundType `json:"fund_type"`
	ProjectID             string          `json:"project_id"`
	FacultyID             string          `json:"faculty_id"`
	NonReimbursableAmount decimal.Decimal `json:"non_reimbursable_amount"`
	Items                 []ItemInput     `json:"items"`
}

// UpdateDraftInput carries the fields a submitter may revise while in Draft.
type UpdateDraftInput struct {
	Title                 *string          `json:"title"`
	FundType              *entity.FundType `json:"fund_type"`
	ProjectID             *string          `json:"project_id"`
	FacultyID             *string          `json:"faculty_id"`
	NonReimbursableAmount *decimal.Decimal `json:"non_reimbursable_amount"`
	Items                 []ItemInput      `json:"items"`
}

// ActionInput drives one workflow transition.
type ActionInput struct {
	Action    string          `json:"action"`
	Remarks   string          `json:"remarks"`
	FundType  entity.FundType `json:"fund_type"`
	ProjectID string          `json:"project_id"`
}

// ListScope names the role-specific slices of the report listing.
type ListScope string

const (
	ScopePending   ListScope = "pending"
	ScopeProcessed ListScope = "processed"
	ScopeReviewed  ListScope = "reviewed"
	ScopeAll       ListScope = "all"
)

// ReportService is the workflow engine: it owns the report lifecycle and
// decides, for a given report, actor and action, what transition results.
type ReportService interface {
	Create(ctx context.Context, actor entity.UserRef, in CreateReportInput) (*entity.ExpenseReport, error)
	Get(ctx context.Context, actor entity.UserRef, id uuid.UUID) (*entity.ExpenseReport, error)
	UpdateDraft(ctx context.Context, actor entity.UserRef, id uuid.UUID, in UpdateDraftInput) (*entity.ExpenseReport, error)
	Delete(ctx context.Context, actor entity.UserRef, id uuid.UUID) error
	Submit(ctx context.Context, actor entity.UserRef, id uuid.UUID) (*entity.ExpenseReport, error)
	Act(ctx context.Context, actor entity.UserRef, id uuid.UUID, in ActionInput) (*entity.ExpenseReport, error)
	List(ctx context.Context, actor entity.UserRef, scope ListScope) ([]*entity.ExpenseReport, error)
}

type reportService struct {
	reports   port.ReportRepository
	users     port.UserRepository
	registry  port.ApproverRegistry
	txManager port.TransactionManager
	logger    *zap.Logger
	now       func() time.Time
}

// NewReportService wires the workflow engine with its collaborators.
func NewReportService(
	reports port.ReportRepository,
	users port.UserRepository,
	registry port.ApproverRegistry,
	txManager port.TransactionManager,
	logger *zap.Logger,
) ReportService {
	return &reportService{
		reports:   reports,
		users:     users,
		registry:  registry,
		txManager: txManager,
		logger:    logger,
		now:       time.Now,
	}
}

// Create opens a Draft report owned by the actor.
func (s *reportService) Create(ctx context.Context, actor entity.UserRef, in CreateReportInput) (*entity.ExpenseReport, error) {
	if !actor.Role.CanSubmit() {
		return nil, forbiddenf("role %s cannot submit expense reports", actor.Role)
	}
	if in.Title == "" {
		return nil, validationf("title is required")
	}

	department := in.Department
	if department == "" {
		department = actor.Department
	}
	if !entity.IsValidDepartment(department) {
		return nil, validationf("unknown department %q", department)
	}

	items, err := buildItems(in.Items)
	if err != nil {
		return nil, err
	}

	report := &entity.ExpenseReport{
		ID:                    uuid.New(),
		Title:                 in.Title,
		SubmitterID:           actor.ID,
		SubmitterName:         actor.Name,
		SubmitterRole:         actor.Role,
		Department:            department,
		Status:                domainwf.StateDraft,
		Items:                 items,
		NonReimbursableAmount: in.NonReimbursableAmount,
		CreatedAt:             s.now(),
		UpdatedAt:             s.now(),
	}

	switch actor.Role {
	case entity.RoleFaculty:
		// A faculty submitter fixes the fund type up front.
		if in.FundType != "" {
			if !in.FundType.IsValid() {
				return nil, validationf("unknown fund type %q", in.FundType)
			}
			report.FundType = in.FundType
			report.ProjectID = in.ProjectID
		}
		report.FacultyID = actor.ID
		report.FacultyName = actor.Name
	case entity.RoleStudent:
		if in.FundType != "" {
			return nil, validationf("fund type is set by faculty, not by the student submitter")
		}
		if in.FacultyID != "" {
			faculty, err := s.requireFaculty(ctx, in.FacultyID)
			if err != nil {
				return nil, err
			}
			report.FacultyID = faculty.ID
			report.FacultyName = faculty.Name
		}
	}

	entity.RecalculateTotals(report)

	if err := s.reports.Create(ctx, report); err != nil {
		return nil, internal(err, "failed to create report")
	}
	report.RebuildStageApprovals()
	return report, nil
}

// Get returns the full aggregate, recomputing totals on the way out and
// persisting them when the stored values had drifted.
func (s *reportService) Get(ctx context.Context, actor entity.UserRef, id uuid.UUID) (*entity.ExpenseReport, error) {
	report, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canView(actor, report) {
		return nil, forbiddenf("not permitted to view this report")
	}

	total, card, personal, net := report.TotalAmount, report.UniversityCardAmount,
		report.PersonalAmount, report.NetReimbursement
	entity.RecalculateTotals(report)
	if !report.TotalAmount.Equal(total) || !report.UniversityCardAmount.Equal(card) ||
		!report.PersonalAmount.Equal(personal) || !report.NetReimbursement.Equal(net) {
		if err := s.reports.UpdateTotals(ctx, report); err != nil {
			s.logger.Warn("failed to heal stale totals",
				zap.String("report_id", report.ID.String()), zap.Error(err))
		}
	}

	report.RebuildStageApprovals()
	return report, nil
}

// UpdateDraft revises header fields and items while the report is editable.
func (s *reportService) UpdateDraft(ctx context.Context, actor entity.UserRef, id uuid.UUID, in UpdateDraftInput) (*entity.ExpenseReport, error) {
	report, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !report.IsOwnedBy(actor.ID) {
		return nil, forbiddenf("only the submitter may edit a report")
	}
	if !report.IsEditable() {
		return nil, forbiddenf("report in status %s can no longer be edited", report.Status)
	}

	if in.Title != nil {
		if *in.Title == "" {
			return nil, validationf("title is required")
		}
		report.Title = *in.Title
	}
	if in.FundType != nil {
		// Fund type is fixed by a Faculty actor. A faculty submitter may
		// revise it while drafting; once the report has been through any
		// stage it changes only at the next faculty approval.
		if report.SubmitterRole != entity.RoleFaculty {
			return nil, validationf("fund type is set by faculty, not by the student submitter")
		}
		if len(report.ApprovalHistory) > 0 {
			return nil, validationf("fund type can no longer be changed while revising")
		}
		if *in.FundType != "" && !in.FundType.IsValid() {
			return nil, validationf("unknown fund type %q", *in.FundType)
		}
		report.FundType = *in.FundType
	}
	if in.ProjectID != nil {
		report.ProjectID = *in.ProjectID
	}
	if in.FacultyID != nil && report.SubmitterRole == entity.RoleStudent {
		if *in.FacultyID == "" {
			report.FacultyID = ""
			report.FacultyName = ""
		} else {
			faculty, err := s.requireFaculty(ctx, *in.FacultyID)
			if err != nil {
				return nil, err
			}
			report.FacultyID = faculty.ID
			report.FacultyName = faculty.Name
		}
	}
	if in.NonReimbursableAmount != nil {
		report.NonReimbursableAmount = *in.NonReimbursableAmount
	}
	if in.Items != nil {
		items, err := buildItems(in.Items)
		if err != nil {
			return nil, err
		}
		for i := range items {
			items[i].ReportID = report.ID
		}
		report.Items = items
	}

	entity.RecalculateTotals(report)
	report.UpdatedAt = s.now()

	if err := s.reports.UpdateDraft(ctx, report); err != nil {
		return nil, internal(err, "failed to update report")
	}
	report.RebuildStageApprovals()
	return report, nil
}

// Delete removes a Draft report owned by the actor.
func (s *reportService) Delete(ctx context.Context, actor entity.UserRef, id uuid.UUID) error {
	report, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !report.IsOwnedBy(actor.ID) {
		return forbiddenf("only the submitter may delete a report")
	}
	if report.Status != domainwf.StateDraft {
		return forbiddenf("only draft reports can be deleted")
	}
	if err := s.reports.Delete(ctx, id); err != nil {
		return internal(err, "failed to delete report")
	}
	return nil
}

// Submit moves a Draft into the approval chain. A Student submission lands in
// Submitted; a Faculty submission enters at Faculty Approved directly.
func (s *reportService) Submit(ctx context.Context, actor entity.UserRef, id uuid.UUID) (*entity.ExpenseReport, error) {
	report, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !report.IsOwnedBy(actor.ID) {
		return nil, forbiddenf("only the submitter may submit a report")
	}
	if report.Status != domainwf.StateDraft {
		return nil, invalidTransitionf("report in status %s cannot be submitted", report.Status)
	}
	if len(report.Items) == 0 {
		return nil, validationf("at least one expense item is required")
	}
	if missing := report.MissingReceipts(); len(missing) > 0 {
		return nil, validationf("items missing receipts: %v", missing)
	}

	var entry *entity.ApprovalEntry
	switch report.SubmitterRole {
	case entity.RoleFaculty:
		if report.FundType == "" {
			return nil, validationf("fund type is required before submission")
		}
		if report.FundType.RequiresProject() {
			if report.ProjectID == "" {
				return nil, validationf("Project ID is required for Project Fund")
			}
			if err := utils.ValidateProjectID(report.ProjectID); err != nil {
				return nil, validationf("%v", err)
			}
		}
		report.FacultyID = actor.ID
		report.FacultyName = actor.Name
		entry = &entity.ApprovalEntry{
			ReportID:     report.ID,
			Stage:        entity.StageFaculty,
			Approved:     true,
			Action:       entity.ActionApprove,
			Date:         s.now(),
			Remarks:      "Submitted by faculty",
			ApprovedBy:   actor.Name,
			ApprovedByID: actor.ID,
		}
	case entity.RoleStudent:
		// School Chair routing follows the reviewing faculty's department,
		// not the student's.
		if report.FacultyID != "" {
			faculty, err := s.requireFaculty(ctx, report.FacultyID)
			if err != nil {
				return nil, err
			}
			report.FacultyName = faculty.Name
			if faculty.Department != "" {
				report.Department = faculty.Department
			}
		}
	default:
		return nil, forbiddenf("role %s cannot submit expense reports", report.SubmitterRole)
	}

	machine := appwf.BuildApprovalStateMachine(report)
	if err := machine.Fire(ctx, domainwf.TriggerSubmit); err != nil {
		return nil, invalidTransitionf("cannot submit: %v", err)
	}

	return s.commitTransition(ctx, report, machine.State(), entry)
}

// Act applies one approve/reject/sendback action. All validation happens
// before any mutation; the conditional status write plus history append is
// the single effectful step.
func (s *reportService) Act(ctx context.Context, actor entity.UserRef, id uuid.UUID, in ActionInput) (*entity.ExpenseReport, error) {
	trigger, err := triggerForAction(in.Action)
	if err != nil {
		return nil, err
	}
	if (in.Action == entity.ActionReject || in.Action == entity.ActionSendBack) && in.Remarks == "" {
		return nil, validationf("remarks are mandatory for %s", in.Action)
	}

	report, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if report.Status.IsTerminal() {
		return nil, invalidTransitionf("report in terminal status %s accepts no further actions", report.Status)
	}

	stage, ok := appwf.PendingStage(report.Status, report.FundType)
	if !ok {
		return nil, invalidTransitionf("report in status %s has no pending approver", report.Status)
	}
	if actor.Role != appwf.StageRole(stage) {
		return nil, invalidTransitionf("role %s cannot act on a report awaiting %s", actor.Role, stage)
	}

	if err := s.authorizeStage(ctx, actor, report, stage); err != nil {
		return nil, err
	}

	if in.Action == entity.ActionApprove && stage == entity.StageFaculty {
		if err := s.applyFacultyApproval(ctx, actor, report, in); err != nil {
			return nil, err
		}
	}

	machine := appwf.BuildApprovalStateMachine(report)
	if err := machine.Fire(ctx, trigger); err != nil {
		return nil, invalidTransitionf("%s not permitted from %s: %v", in.Action, report.Status, err)
	}

	entry := &entity.ApprovalEntry{
		ReportID:     report.ID,
		Stage:        stage,
		Approved:     in.Action == entity.ActionApprove,
		Action:       in.Action,
		Date:         s.now(),
		Remarks:      in.Remarks,
		ApprovedBy:   actor.Name,
		ApprovedByID: actor.ID,
	}

	return s.commitTransition(ctx, report, machine.State(), entry)
}

// commitTransition persists the status move and the history entry atomically,
// backfilling history from legacy per-stage snapshots first when needed. The
// version check rejects the slower of two racing approvers.
func (s *reportService) commitTransition(ctx context.Context, report *entity.ExpenseReport, newStatus domainwf.State, entry *entity.ApprovalEntry) (*entity.ExpenseReport, error) {
	expectedVersion := report.Version
	report.Status = newStatus
	report.UpdatedAt = s.now()

	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		backfilled, err := s.backfillLegacyHistory(ctx, report)
		if err != nil {
			return err
		}
		report.ApprovalHistory = append(report.ApprovalHistory, backfilled...)

		if err := s.reports.Transition(ctx, report, expectedVersion); err != nil {
			return err
		}
		if entry != nil {
			if err := s.reports.AppendHistory(ctx, entry); err != nil {
				return err
			}
			report.ApprovalHistory = append(report.ApprovalHistory, *entry)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, port.ErrStaleVersion) {
			return nil, invalidTransitionf("report was updated by another approver; reload and retry")
		}
		var svcErr *Error
		if errors.As(err, &svcErr) {
			return nil, svcErr
		}
		return nil, internal(err, "failed to persist transition")
	}

	report.Version = expectedVersion + 1
	report.RebuildStageApprovals()
	return report, nil
}

// backfillLegacyHistory synthesizes history entries from legacy per-stage
// snapshot fields for reports recorded before the history log existed. It is
// idempotent: snapshots already represented in history (matched by stage and
// timestamp) are skipped, so a partially-migrated report converges.
func (s *reportService) backfillLegacyHistory(ctx context.Context, report *entity.ExpenseReport) ([]entity.ApprovalEntry, error) {
	if len(report.StageApprovals) == 0 {
		return nil, nil
	}

	seen := make(map[string]bool)
	for _, e := range report.ApprovalHistory {
		seen[string(e.Stage)+e.Date.UTC().Format(time.RFC3339)] = true
	}

	var synthesized []entity.ApprovalEntry
	for stage, snapshot := range report.StageApprovals {
		if snapshot == nil {
			continue
		}
		if seen[string(stage)+snapshot.Date.UTC().Format(time.RFC3339)] {
			continue
		}
		synthesized = append(synthesized, entity.ApprovalEntry{
			ReportID:     report.ID,
			Stage:        stage,
			Approved:     snapshot.Approved,
			Action:       legacyAction(snapshot.Approved),
			Date:         snapshot.Date,
			Remarks:      snapshot.Remarks,
			ApprovedBy:   snapshot.ApprovedBy,
			ApprovedByID: snapshot.ApprovedByID,
		})
	}
	sort.Slice(synthesized, func(i, j int) bool {
		return synthesized[i].Date.Before(synthesized[j].Date)
	})

	for i := range synthesized {
		if err := s.reports.AppendHistory(ctx, &synthesized[i]); err != nil {
			return nil, internal(err, "failed to backfill approval history")
		}
	}
	if len(synthesized) > 0 {
		s.logger.Info("backfilled approval history from legacy stage fields",
			zap.String("report_id", report.ID.String()),
			zap.Int("entries", len(synthesized)))
	}
	return synthesized, nil
}

// authorizeStage verifies the acting user is the legitimate approver for the
// stage, beyond the role match already established.
func (s *reportService) authorizeStage(ctx context.Context, actor entity.UserRef, report *entity.ExpenseReport, stage entity.Stage) error {
	switch stage {
	case entity.StageFaculty:
		if report.FacultyID != "" && report.FacultyID != actor.ID {
			return forbiddenf("report is assigned to a different faculty reviewer")
		}
		if report.FacultyID == "" && report.SubmitterRole != entity.RoleStudent {
			return forbiddenf("no faculty reviewer is linked to this report")
		}
		return nil

	case entity.StageSchoolChair:
		chair, err := s.registry.GetSchoolChair(ctx, report.Department)
		if err != nil {
			return internal(err, "failed to look up school chair")
		}
		if chair == nil {
			return notFoundf("no school chair designated for %s", report.Department)
		}
		if chair.ID != actor.ID {
			return forbiddenf("not the designated school chair for %s", report.Department)
		}
		return nil

	case entity.StageDeanSRIC, entity.StageDirector:
		// Identity mismatches here are logged, not blocked: any holder of
		// the role may act while product owners settle strict enforcement.
		lookup := s.registry.GetDeanSRIC
		if stage == entity.StageDirector {
			lookup = s.registry.GetDirector
		}
		designated, err := lookup(ctx)
		if err != nil {
			return internal(err, "failed to look up designated approver")
		}
		if designated == nil || designated.ID != actor.ID {
			s.logger.Warn("actor is not the registry-designated approver",
				zap.String("stage", string(stage)),
				zap.String("actor_id", actor.ID),
				zap.String("report_id", report.ID.String()))
		}
		return nil

	case entity.StageAudit, entity.StageFinance:
		// Role membership is sufficient for institute-wide offices.
		return nil
	}
	return invalidTransitionf("unknown approval stage %s", stage)
}

// applyFacultyApproval fixes fund type, project linkage and department at the
// faculty review step of a student's report.
func (s *reportService) applyFacultyApproval(ctx context.Context, actor entity.UserRef, report *entity.ExpenseReport, in ActionInput) error {
	if in.FundType == "" {
		return validationf("fund type is required to approve at the Faculty stage")
	}
	if !in.FundType.IsValid() {
		return validationf("unknown fund type %q", in.FundType)
	}
	projectID := in.ProjectID
	if projectID == "" {
		projectID = report.ProjectID
	}
	if in.FundType.RequiresProject() {
		if projectID == "" {
			return validationf("Project ID is required for Project Fund")
		}
		if err := utils.ValidateProjectID(projectID); err != nil {
			return validationf("%v", err)
		}
	}

	report.FundType = in.FundType
	if in.FundType.RequiresProject() {
		report.ProjectID = projectID
	} else {
		report.ProjectID = ""
	}

	// First faculty touch: link the approver and pull routing onto their
	// department so the right School Chair sees it next.
	if report.FacultyID == "" {
		faculty, err := s.requireFaculty(ctx, actor.ID)
		if err != nil {
			return err
		}
		report.FacultyID = faculty.ID
		report.FacultyName = faculty.Name
		if faculty.Department != "" {
			report.Department = faculty.Department
		}
	}
	return nil
}

// List returns the role-specific slice of reports for the actor.
func (s *reportService) List(ctx context.Context, actor entity.UserRef, scope ListScope) ([]*entity.ExpenseReport, error) {
	filter, err := s.filterFor(actor, scope)
	if err != nil {
		return nil, err
	}
	reports, err := s.reports.List(ctx, filter)
	if err != nil {
		return nil, internal(err, "failed to list reports")
	}
	for _, report := range reports {
		entity.RecalculateTotals(report)
		report.RebuildStageApprovals()
	}
	return reports, nil
}

func (s *reportService) filterFor(actor entity.UserRef, scope ListScope) (port.ReportFilter, error) {
	if scope == "" {
		scope = ScopeAll
	}
	if scope == ScopeReviewed {
		// Reports the actor has personally recorded an action on, at any
		// stage and in any current status.
		return port.ReportFilter{ActedByID: actor.ID}, nil
	}

	statuses := func(states ...domainwf.State) []string {
		out := make([]string, len(states))
		for i, st := range states {
			out[i] = string(st)
		}
		return out
	}
	processedAndBeyond := func(first domainwf.State, rest ...domainwf.State) []string {
		return statuses(append([]domainwf.State{first}, rest...)...)
	}

	switch actor.Role {
	case entity.RoleStudent:
		return port.ReportFilter{SubmitterID: actor.ID}, nil

	case entity.RoleFaculty:
		switch scope {
		case ScopePending:
			return port.ReportFilter{
				Statuses:                 statuses(domainwf.StateSubmitted),
				FacultyID:                actor.ID,
				IncludeUnassignedFaculty: true,
			}, nil
		case ScopeProcessed:
			return port.ReportFilter{
				FacultyID: actor.ID,
				Statuses: processedAndBeyond(domainwf.StateFacultyApproved,
					domainwf.StateSchoolChairApproved, domainwf.StateDeanSRICApproved,
					domainwf.StateDirectorApproved, domainwf.StateAuditApproved,
					domainwf.StateFinanceApproved, domainwf.StateCompleted, domainwf.StateRejected),
			}, nil
		default:
			// A faculty's own submissions.
			return port.ReportFilter{SubmitterID: actor.ID}, nil
		}

	case entity.RoleSchoolChair:
		switch scope {
		case ScopePending:
			return port.ReportFilter{
				Statuses:   statuses(domainwf.StateFacultyApproved),
				Department: actor.Department,
			}, nil
		default:
			return port.ReportFilter{
				Department: actor.Department,
				Statuses: processedAndBeyond(domainwf.StateSchoolChairApproved,
					domainwf.StateDeanSRICApproved, domainwf.StateDirectorApproved,
					domainwf.StateAuditApproved, domainwf.StateFinanceApproved,
					domainwf.StateCompleted, domainwf.StateRejected),
			}, nil
		}

	case entity.RoleDeanSRIC:
		switch scope {
		case ScopePending:
			return port.ReportFilter{
				Statuses:  statuses(domainwf.StateSchoolChairApproved),
				FundTypes: []entity.FundType{entity.FundProject},
			}, nil
		default:
			return port.ReportFilter{
				FundTypes: []entity.FundType{entity.FundProject},
				Statuses: processedAndBeyond(domainwf.StateDeanSRICApproved,
					domainwf.StateAuditApproved, domainwf.StateFinanceApproved,
					domainwf.StateCompleted, domainwf.StateRejected),
			}, nil
		}

	case entity.RoleDirector:
		switch scope {
		case ScopePending:
			return port.ReportFilter{
				Statuses:  statuses(domainwf.StateSchoolChairApproved),
				FundTypes: []entity.FundType{entity.FundInstitute},
			}, nil
		default:
			return port.ReportFilter{
				FundTypes: []entity.FundType{entity.FundInstitute},
				Statuses: processedAndBeyond(domainwf.StateDirectorApproved,
					domainwf.StateAuditApproved, domainwf.StateFinanceApproved,
					domainwf.StateCompleted, domainwf.StateRejected),
			}, nil
		}

	case entity.RoleAudit:
		switch scope {
		case ScopePending:
			// Three routes converge on Audit; the department/PDA one arrives
			// straight from School Chair Approved.
			return port.ReportFilter{
				StatusFundPairs: []port.StatusFundPair{
					{Status: string(domainwf.StateDeanSRICApproved)},
					{Status: string(domainwf.StateDirectorApproved)},
					{
						Status:    string(domainwf.StateSchoolChairApproved),
						FundTypes: []entity.FundType{entity.FundDepartment, entity.FundPDA},
					},
				},
			}, nil
		default:
			return port.ReportFilter{
				Statuses: processedAndBeyond(domainwf.StateAuditApproved,
					domainwf.StateFinanceApproved, domainwf.StateCompleted, domainwf.StateRejected),
			}, nil
		}

	case entity.RoleFinance:
		switch scope {
		case ScopePending:
			return port.ReportFilter{Statuses: statuses(domainwf.StateAuditApproved)}, nil
		default:
			return port.ReportFilter{
				Statuses: statuses(domainwf.StateFinanceApproved, domainwf.StateCompleted),
			}, nil
		}

	case entity.RoleAdmin:
		return port.ReportFilter{}, nil
	}

	return port.ReportFilter{}, forbiddenf("role %s cannot list reports", actor.Role)
}

func (s *reportService) canView(actor entity.UserRef, report *entity.ExpenseReport) bool {
	if report.IsOwnedBy(actor.ID) || actor.Role == entity.RoleAdmin {
		return true
	}
	switch actor.Role {
	case entity.RoleFaculty, entity.RoleSchoolChair, entity.RoleDeanSRIC,
		entity.RoleDirector, entity.RoleAudit, entity.RoleFinance:
		return true
	}
	return false
}

func (s *reportService) load(ctx context.Context, id uuid.UUID) (*entity.ExpenseReport, error) {
	report, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, internal(err, "failed to load report")
	}
	if report == nil {
		return nil, notFoundf("report %s not found", id)
	}
	return report, nil
}

func (s *reportService) requireFaculty(ctx context.Context, id string) (*entity.UserRef, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, internal(err, "failed to look up faculty")
	}
	if user == nil {
		return nil, notFoundf("faculty %s not found", id)
	}
	if user.Role != entity.RoleFaculty {
		return nil, validationf("user %s does not hold the Faculty role", id)
	}
	return user, nil
}

func buildItems(inputs []ItemInput) ([]entity.ExpenseItem, error) {
	items := make([]entity.ExpenseItem, 0, len(inputs))
	for i, in := range inputs {
		if in.Description == "" {
			return nil, validationf("item %d: description is required", i+1)
		}
		if !in.Amount.IsPositive() {
			return nil, validationf("item %d: amount must be positive", i+1)
		}
		if in.ReceiptRef == "" {
			return nil, validationf("item %d: receipt reference is required", i+1)
		}
		currency := in.Currency
		if currency == "" {
			currency = "INR"
		}
		if err := utils.ValidateCurrency(currency); err != nil {
			return nil, validationf("item %d: %v", i+1, err)
		}
		items = append(items, entity.ExpenseItem{
			ID:            uuid.New(),
			Description:   in.Description,
			Category:      in.Category,
			Amount:        in.Amount,
			Currency:      currency,
			AmountINR:     in.AmountINR,
			PaymentMethod: in.PaymentMethod,
			ReceiptRef:    in.ReceiptRef,
			ExpenseDate:   in.ExpenseDate,
		})
	}
	return items, nil
}

func triggerForAction(action string) (domainwf.Trigger, error) {
	switch action {
	case entity.ActionApprove:
		return domainwf.TriggerApprove, nil
	case entity.ActionReject:
		return domainwf.TriggerReject, nil
	case entity.ActionSendBack:
		return domainwf.TriggerSendBack, nil
	}
	return "", validationf("unknown action %q", action)
}

func legacyAction(approved bool) string {
	if approved {
		return entity.ActionApprove
	}
	return entity.ActionReject
}
