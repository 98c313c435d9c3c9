package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sric-portal/expense-workflow/internal/application/port"
	"github.com/sric-portal/expense-workflow/internal/domain/entity"
	domainwf "github.com/sric-portal/expense-workflow/internal/domain/workflow"
)

// Mock repositories in the func-field style.

type mockReportRepo struct {
	createFunc       func(ctx context.Context, report *entity.ExpenseReport) error
	getByIDFunc      func(ctx context.Context, id uuid.UUID) (*entity.ExpenseReport, error)
	updateDraftFunc  func(ctx context.Context, report *entity.ExpenseReport) error
	updateTotalsFunc func(ctx context.Context, report *entity.ExpenseReport) error
	transitionFunc   func(ctx context.Context, report *entity.ExpenseReport, expectedVersion int64) error
	appendFunc       func(ctx context.Context, entry *entity.ApprovalEntry) error
	deleteFunc       func(ctx context.Context, id uuid.UUID) error
	listFunc         func(ctx context.Context, filter port.ReportFilter) ([]*entity.ExpenseReport, error)

	appended []entity.ApprovalEntry
}

func (m *mockReportRepo) Create(ctx context.Context, report *entity.ExpenseReport) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, report)
	}
	return nil
}

func (m *mockReportRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.ExpenseReport, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockReportRepo) UpdateDraft(ctx context.Context, report *entity.ExpenseReport) error {
	if m.updateDraftFunc != nil {
		return m.updateDraftFunc(ctx, report)
	}
	return nil
}

func (m *mockReportRepo) UpdateTotals(ctx context.Context, report *entity.ExpenseReport) error {
	if m.updateTotalsFunc != nil {
		return m.updateTotalsFunc(ctx, report)
	}
	return nil
}

func (m *mockReportRepo) Transition(ctx context.Context, report *entity.ExpenseReport, expectedVersion int64) error {
	if m.transitionFunc != nil {
		return m.transitionFunc(ctx, report, expectedVersion)
	}
	return nil
}

func (m *mockReportRepo) AppendHistory(ctx context.Context, entry *entity.ApprovalEntry) error {
	m.appended = append(m.appended, *entry)
	if m.appendFunc != nil {
		return m.appendFunc(ctx, entry)
	}
	return nil
}

func (m *mockReportRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockReportRepo) List(ctx context.Context, filter port.ReportFilter) ([]*entity.ExpenseReport, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter)
	}
	return nil, nil
}

type mockUserRepo struct {
	users map[string]*entity.UserRef
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*entity.UserRef, error) {
	return m.users[id], nil
}

type mockRegistry struct {
	chairs   map[string]*entity.UserRef
	deanSRIC *entity.UserRef
	director *entity.UserRef
}

func (m *mockRegistry) GetSchoolChair(ctx context.Context, department string) (*entity.UserRef, error) {
	return m.chairs[department], nil
}

func (m *mockRegistry) GetDeanSRIC(ctx context.Context) (*entity.UserRef, error) {
	return m.deanSRIC, nil
}

func (m *mockRegistry) GetDirector(ctx context.Context) (*entity.UserRef, error) {
	return m.director, nil
}

type mockTxManager struct{}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

const (
	deptSCEE = "School of Computing and Electrical Engineering"
	deptSBS  = "School of Basic Sciences"
)

var (
	student  = entity.UserRef{ID: "u-stu", Name: "Asha Verma", Role: entity.RoleStudent, Department: deptSCEE}
	faculty  = entity.UserRef{ID: "u-fac", Name: "Dr. Meera Rao", Role: entity.RoleFaculty, Department: deptSBS}
	chair    = entity.UserRef{ID: "u-chair", Name: "Prof. Nikhil Iyer", Role: entity.RoleSchoolChair, Department: deptSBS}
	deanSRIC = entity.UserRef{ID: "u-dean", Name: "Prof. Leena Das", Role: entity.RoleDeanSRIC}
	director = entity.UserRef{ID: "u-dir", Name: "Prof. R. Krishnan", Role: entity.RoleDirector}
	auditor  = entity.UserRef{ID: "u-aud", Name: "S. Gupta", Role: entity.RoleAudit}
	finance  = entity.UserRef{ID: "u-fin", Name: "K. Menon", Role: entity.RoleFinance}
)

func newTestService(repo *mockReportRepo, users *mockUserRepo, registry *mockRegistry) ReportService {
	if users == nil {
		users = &mockUserRepo{users: map[string]*entity.UserRef{faculty.ID: &faculty}}
	}
	if registry == nil {
		registry = &mockRegistry{
			chairs:   map[string]*entity.UserRef{deptSBS: &chair, deptSCEE: {ID: "u-chair2", Role: entity.RoleSchoolChair}},
			deanSRIC: &deanSRIC,
			director: &director,
		}
	}
	return NewReportService(repo, users, registry, &mockTxManager{}, zap.NewNop())
}

func draftReport(submitter entity.UserRef) *entity.ExpenseReport {
	return &entity.ExpenseReport{
		ID:            uuid.New(),
		Title:         "Conference travel",
		SubmitterID:   submitter.ID,
		SubmitterName: submitter.Name,
		SubmitterRole: submitter.Role,
		Department:    submitter.Department,
		Status:        domainwf.StateDraft,
		Items: []entity.ExpenseItem{
			{Description: "flight", Amount: decimal.NewFromInt(8000), Currency: "INR", PaymentMethod: entity.PaymentPersonalFunds, ReceiptRef: "rcpt-1"},
		},
	}
}

func repoHolding(report *entity.ExpenseReport) *mockReportRepo {
	return &mockReportRepo{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*entity.ExpenseReport, error) {
			if id == report.ID {
				return report, nil
			}
			return nil, nil
		},
	}
}

func TestCreate_StudentCannotSetFundType(t *testing.T) {
	svc := newTestService(&mockReportRepo{}, nil, nil)

	_, err := svc.Create(context.Background(), student, CreateReportInput{
		Title:    "trip",
		FundType: entity.FundProject,
		Items:    []ItemInput{{Description: "bus", Amount: decimal.NewFromInt(100), ReceiptRef: "r1"}},
	})
	if CodeOf(err) != CodeValidation {
		t.Fatalf("error code = %s, want VALIDATION_ERROR (err=%v)", CodeOf(err), err)
	}
}

func TestCreate_ItemWithoutReceiptRejected(t *testing.T) {
	svc := newTestService(&mockReportRepo{}, nil, nil)

	_, err := svc.Create(context.Background(), student, CreateReportInput{
		Title: "trip",
		Items: []ItemInput{{Description: "bus", Amount: decimal.NewFromInt(100)}},
	})
	if CodeOf(err) != CodeValidation {
		t.Fatalf("error code = %s, want VALIDATION_ERROR", CodeOf(err))
	}
}

func TestSubmit_StudentLandsInSubmittedAndDepartmentFollowsFaculty(t *testing.T) {
	report := draftReport(student)
	report.FacultyID = faculty.ID
	repo := repoHolding(report)
	svc := newTestService(repo, nil, nil)

	got, err := svc.Submit(context.Background(), student, report.ID)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if got.Status != domainwf.StateSubmitted {
		t.Errorf("status = %s, want Submitted", got.Status)
	}
	if got.Department != deptSBS {
		t.Errorf("department = %s, want the faculty's %s", got.Department, deptSBS)
	}
}

func TestSubmit_FacultySkipsReviewStage(t *testing.T) {
	report := draftReport(faculty)
	report.FundType = entity.FundDepartment
	repo := repoHolding(report)
	svc := newTestService(repo, nil, nil)

	got, err := svc.Submit(context.Background(), faculty, report.ID)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if got.Status != domainwf.StateFacultyApproved {
		t.Errorf("status = %s, want Faculty Approved", got.Status)
	}
	if got.FacultyID != faculty.ID {
		t.Errorf("facultyId = %s, want self-link %s", got.FacultyID, faculty.ID)
	}
	if len(repo.appended) != 1 || repo.appended[0].Stage != entity.StageFaculty {
		t.Errorf("expected one Faculty history entry, got %+v", repo.appended)
	}
}

func TestSubmit_FacultyRequiresFundType(t *testing.T) {
	report := draftReport(faculty)
	svc := newTestService(repoHolding(report), nil, nil)

	_, err := svc.Submit(context.Background(), faculty, report.ID)
	if CodeOf(err) != CodeValidation {
		t.Fatalf("error code = %s, want VALIDATION_ERROR", CodeOf(err))
	}
}

func TestSubmit_MissingReceiptBlocks(t *testing.T) {
	report := draftReport(student)
	report.Items = append(report.Items, entity.ExpenseItem{
		Description: "hotel", Amount: decimal.NewFromInt(3000), PaymentMethod: entity.PaymentPersonalFunds,
	})
	svc := newTestService(repoHolding(report), nil, nil)

	_, err := svc.Submit(context.Background(), student, report.ID)
	if CodeOf(err) != CodeValidation {
		t.Fatalf("error code = %s, want VALIDATION_ERROR", CodeOf(err))
	}
}

func TestAct_FacultyApprovalRequiresFundType(t *testing.T) {
	report := draftReport(student)
	report.Status = domainwf.StateSubmitted
	svc := newTestService(repoHolding(report), nil, nil)

	_, err := svc.Act(context.Background(), faculty, report.ID, ActionInput{Action: entity.ActionApprove})
	if CodeOf(err) != CodeValidation {
		t.Fatalf("error code = %s, want VALIDATION_ERROR", CodeOf(err))
	}
}

func TestAct_ProjectFundRequiresProjectID(t *testing.T) {
	report := draftReport(student)
	report.Status = domainwf.StateSubmitted
	svc := newTestService(repoHolding(report), nil, nil)

	_, err := svc.Act(context.Background(), faculty, report.ID, ActionInput{
		Action:   entity.ActionApprove,
		FundType: entity.FundProject,
	})
	if CodeOf(err) != CodeValidation {
		t.Fatalf("error code = %s, want VALIDATION_ERROR", CodeOf(err))
	}
	if MessageOf(err) != "Project ID is required for Project Fund" {
		t.Errorf("message = %q", MessageOf(err))
	}

	// Retried with a project reference the approval goes through.
	got, err := svc.Act(context.Background(), faculty, report.ID, ActionInput{
		Action:    entity.ActionApprove,
		FundType:  entity.FundProject,
		ProjectID: "PRJ-1",
	})
	if err != nil {
		t.Fatalf("Act() error = %v", err)
	}
	if got.Status != domainwf.StateFacultyApproved {
		t.Errorf("status = %s, want Faculty Approved", got.Status)
	}
	if got.FundType != entity.FundProject || got.ProjectID != "PRJ-1" {
		t.Errorf("fund routing = (%s, %s)", got.FundType, got.ProjectID)
	}
}

func TestAct_FirstFacultyTouchLinksAndReroutes(t *testing.T) {
	report := draftReport(student)
	report.Status = domainwf.StateSubmitted
	svc := newTestService(repoHolding(report), nil, nil)

	got, err := svc.Act(context.Background(), faculty, report.ID, ActionInput{
		Action:   entity.ActionApprove,
		FundType: entity.FundDepartment,
	})
	if err != nil {
		t.Fatalf("Act() error = %v", err)
	}
	if got.FacultyID != faculty.ID {
		t.Errorf("facultyId = %s, want %s", got.FacultyID, faculty.ID)
	}
	if got.Department != deptSBS {
		t.Errorf("department = %s, want faculty's %s", got.Department, deptSBS)
	}
}

func TestAct_LinkedFacultyOnlyReviewer(t *testing.T) {
	report := draftReport(student)
	report.Status = domainwf.StateSubmitted
	report.FacultyID = "someone-else"
	svc := newTestService(repoHolding(report), nil, nil)

	_, err := svc.Act(context.Background(), faculty, report.ID, ActionInput{
		Action:   entity.ActionApprove,
		FundType: entity.FundDepartment,
	})
	if CodeOf(err) != CodeForbidden {
		t.Fatalf("error code = %s, want FORBIDDEN", CodeOf(err))
	}
}

func TestAct_SchoolChairIdentityEnforced(t *testing.T) {
	report := draftReport(student)
	report.Status = domainwf.StateFacultyApproved
	report.Department = deptSBS
	svc := newTestService(repoHolding(report), nil, nil)

	impostor := entity.UserRef{ID: "u-fake", Role: entity.RoleSchoolChair, Department: deptSBS}
	_, err := svc.Act(context.Background(), impostor, report.ID, ActionInput{Action: entity.ActionApprove})
	if CodeOf(err) != CodeForbidden {
		t.Fatalf("error code = %s, want FORBIDDEN", CodeOf(err))
	}

	got, err := svc.Act(context.Background(), chair, report.ID, ActionInput{Action: entity.ActionApprove})
	if err != nil {
		t.Fatalf("Act() by designated chair error = %v", err)
	}
	if got.Status != domainwf.StateSchoolChairApproved {
		t.Errorf("status = %s, want School Chair Approved", got.Status)
	}
}

func TestAct_NoDesignatedChairIsNotFound(t *testing.T) {
	report := draftReport(student)
	report.Status = domainwf.StateFacultyApproved
	registry := &mockRegistry{chairs: map[string]*entity.UserRef{}, deanSRIC: &deanSRIC, director: &director}
	svc := newTestService(repoHolding(report), nil, registry)

	_, err := svc.Act(context.Background(), chair, report.ID, ActionInput{Action: entity.ActionApprove})
	if CodeOf(err) != CodeNotFound {
		t.Fatalf("error code = %s, want NOT_FOUND", CodeOf(err))
	}
}

func TestAct_FundTypeRoutingDeterminism(t *testing.T) {
	// Project Fund at School Chair Approved: only Dean SRIC may advance it.
	report := draftReport(student)
	report.Status = domainwf.StateSchoolChairApproved
	report.FundType = entity.FundProject
	svc := newTestService(repoHolding(report), nil, nil)

	_, err := svc.Act(context.Background(), director, report.ID, ActionInput{Action: entity.ActionApprove})
	if CodeOf(err) != CodeInvalidTransition {
		t.Fatalf("director on project fund: code = %s, want INVALID_STATE_TRANSITION", CodeOf(err))
	}

	got, err := svc.Act(context.Background(), deanSRIC, report.ID, ActionInput{Action: entity.ActionApprove})
	if err != nil {
		t.Fatalf("dean sric approve error = %v", err)
	}
	if got.Status != domainwf.StateDeanSRICApproved {
		t.Errorf("status = %s, want Dean SRIC Approved", got.Status)
	}
}

func TestAct_DeanSRICMismatchIsPermitted(t *testing.T) {
	// Registry mismatch at Dean SRIC is logged but not blocked.
	report := draftReport(student)
	report.Status = domainwf.StateSchoolChairApproved
	report.FundType = entity.FundProject
	otherDean := entity.UserRef{ID: "u-dean2", Name: "Prof. B", Role: entity.RoleDeanSRIC}
	svc := newTestService(repoHolding(report), nil, nil)

	got, err := svc.Act(context.Background(), otherDean, report.ID, ActionInput{Action: entity.ActionApprove})
	if err != nil {
		t.Fatalf("Act() error = %v", err)
	}
	if got.Status != domainwf.StateDeanSRICApproved {
		t.Errorf("status = %s, want Dean SRIC Approved", got.Status)
	}
}

func TestAct_DepartmentFundChainToFinance(t *testing.T) {
	report := draftReport(faculty)
	report.Status = domainwf.StateSchoolChairApproved
	report.FundType = entity.FundDepartment
	repo := repoHolding(report)
	svc := newTestService(repo, nil, nil)

	got, err := svc.Act(context.Background(), auditor, report.ID, ActionInput{Action: entity.ActionApprove})
	if err != nil {
		t.Fatalf("audit approve error = %v", err)
	}
	if got.Status != domainwf.StateAuditApproved {
		t.Errorf("status = %s, want Audit Approved", got.Status)
	}

	got, err = svc.Act(context.Background(), finance, report.ID, ActionInput{Action: entity.ActionApprove})
	if err != nil {
		t.Fatalf("finance approve error = %v", err)
	}
	if got.Status != domainwf.StateFinanceApproved {
		t.Errorf("status = %s, want Finance Approved", got.Status)
	}
	if len(repo.appended) != 2 {
		t.Errorf("history grew by %d entries, want 2", len(repo.appended))
	}
}

func TestAct_FinanceSendBackReturnsToDraft(t *testing.T) {
	report := draftReport(student)
	report.Status = domainwf.StateAuditApproved
	report.FundType = entity.FundDepartment
	repo := repoHolding(report)
	svc := newTestService(repo, nil, nil)

	got, err := svc.Act(context.Background(), finance, report.ID, ActionInput{
		Action:  entity.ActionSendBack,
		Remarks: "missing invoice",
	})
	if err != nil {
		t.Fatalf("Act() error = %v", err)
	}
	if got.Status != domainwf.StateDraft {
		t.Errorf("status = %s, want Draft", got.Status)
	}

	last := repo.appended[len(repo.appended)-1]
	if last.Stage != entity.StageFinance || last.Approved || last.Action != entity.ActionSendBack || last.Remarks != "missing invoice" {
		t.Errorf("history entry = %+v", last)
	}
}

func TestAct_RemarksMandatoryForRejectAndSendBack(t *testing.T) {
	for _, action := range []string{entity.ActionReject, entity.ActionSendBack} {
		t.Run(action, func(t *testing.T) {
			report := draftReport(student)
			report.Status = domainwf.StateAuditApproved
			report.FundType = entity.FundPDA
			svc := newTestService(repoHolding(report), nil, nil)

			_, err := svc.Act(context.Background(), finance, report.ID, ActionInput{Action: action})
			if CodeOf(err) != CodeValidation {
				t.Fatalf("error code = %s, want VALIDATION_ERROR", CodeOf(err))
			}
		})
	}
}

func TestAct_TerminalStatesAbsorb(t *testing.T) {
	for _, status := range []domainwf.State{domainwf.StateRejected, domainwf.StateFinanceApproved, domainwf.StateCompleted} {
		t.Run(string(status), func(t *testing.T) {
			report := draftReport(student)
			report.Status = status
			report.FundType = entity.FundDepartment
			svc := newTestService(repoHolding(report), nil, nil)

			_, err := svc.Act(context.Background(), finance, report.ID, ActionInput{
				Action: entity.ActionApprove, Remarks: "x",
			})
			if CodeOf(err) != CodeInvalidTransition {
				t.Fatalf("error code = %s, want INVALID_STATE_TRANSITION", CodeOf(err))
			}
		})
	}
}

func TestAct_StaleVersionRejected(t *testing.T) {
	report := draftReport(student)
	report.Status = domainwf.StateAuditApproved
	report.FundType = entity.FundPDA
	repo := repoHolding(report)
	repo.transitionFunc = func(ctx context.Context, r *entity.ExpenseReport, expectedVersion int64) error {
		return port.ErrStaleVersion
	}
	svc := newTestService(repo, nil, nil)

	_, err := svc.Act(context.Background(), finance, report.ID, ActionInput{Action: entity.ActionApprove})
	if CodeOf(err) != CodeInvalidTransition {
		t.Fatalf("error code = %s, want INVALID_STATE_TRANSITION", CodeOf(err))
	}
}

func TestAct_UnknownReportNotFound(t *testing.T) {
	svc := newTestService(&mockReportRepo{}, nil, nil)

	_, err := svc.Act(context.Background(), finance, uuid.New(), ActionInput{Action: entity.ActionApprove})
	if CodeOf(err) != CodeNotFound {
		t.Fatalf("error code = %s, want NOT_FOUND", CodeOf(err))
	}
}

func TestAct_BackfillsLegacyStageFields(t *testing.T) {
	later := time.Date(2023, 8, 3, 9, 0, 0, 0, time.UTC)

	report := draftReport(student)
	report.Status = domainwf.StateFacultyApproved
	report.Department = deptSBS
	report.StageApprovals = map[entity.Stage]*entity.StageApproval{
		entity.StageFaculty: {Approved: true, Date: later, ApprovedBy: "Dr. Meera Rao", ApprovedByID: faculty.ID},
	}

	repo := repoHolding(report)
	svc := newTestService(repo, nil, nil)

	_, err := svc.Act(context.Background(), chair, report.ID, ActionInput{Action: entity.ActionApprove})
	if err != nil {
		t.Fatalf("Act() error = %v", err)
	}

	// One synthesized Faculty entry plus the chair's new entry.
	if len(repo.appended) != 2 {
		t.Fatalf("appended %d entries, want 2: %+v", len(repo.appended), repo.appended)
	}
	if repo.appended[0].Stage != entity.StageFaculty || !repo.appended[0].Date.Equal(later) {
		t.Errorf("backfilled entry = %+v", repo.appended[0])
	}
	if repo.appended[1].Stage != entity.StageSchoolChair {
		t.Errorf("new entry = %+v", repo.appended[1])
	}
}

func TestDelete_OnlyDraftByOwner(t *testing.T) {
	report := draftReport(student)
	svc := newTestService(repoHolding(report), nil, nil)

	if err := svc.Delete(context.Background(), faculty, report.ID); CodeOf(err) != CodeForbidden {
		t.Errorf("delete by non-owner: code = %s, want FORBIDDEN", CodeOf(err))
	}

	report.Status = domainwf.StateSubmitted
	if err := svc.Delete(context.Background(), student, report.ID); CodeOf(err) != CodeForbidden {
		t.Errorf("delete of submitted report: code = %s, want FORBIDDEN", CodeOf(err))
	}

	report.Status = domainwf.StateDraft
	if err := svc.Delete(context.Background(), student, report.ID); err != nil {
		t.Errorf("delete of own draft failed: %v", err)
	}
}

func TestUpdateDraft_BlockedAfterSubmission(t *testing.T) {
	report := draftReport(student)
	report.Status = domainwf.StateSubmitted
	svc := newTestService(repoHolding(report), nil, nil)

	title := "new title"
	_, err := svc.UpdateDraft(context.Background(), student, report.ID, UpdateDraftInput{Title: &title})
	if CodeOf(err) != CodeForbidden {
		t.Fatalf("error code = %s, want FORBIDDEN", CodeOf(err))
	}
}

func TestList_PendingSlicesPerRole(t *testing.T) {
	var captured port.ReportFilter
	repo := &mockReportRepo{
		listFunc: func(ctx context.Context, filter port.ReportFilter) ([]*entity.ExpenseReport, error) {
			captured = filter
			return nil, nil
		},
	}
	svc := newTestService(repo, nil, nil)

	tests := []struct {
		name  string
		actor entity.UserRef
		check func(t *testing.T, f port.ReportFilter)
	}{
		{"faculty sees submitted", faculty, func(t *testing.T, f port.ReportFilter) {
			if len(f.Statuses) != 1 || f.Statuses[0] != string(domainwf.StateSubmitted) {
				t.Errorf("statuses = %v", f.Statuses)
			}
			if !f.IncludeUnassignedFaculty {
				t.Error("faculty pending should include unassigned reports")
			}
		}},
		{"chair scoped to department", chair, func(t *testing.T, f port.ReportFilter) {
			if f.Department != deptSBS {
				t.Errorf("department = %q", f.Department)
			}
		}},
		{"dean sric scoped to project fund", deanSRIC, func(t *testing.T, f port.ReportFilter) {
			if len(f.FundTypes) != 1 || f.FundTypes[0] != entity.FundProject {
				t.Errorf("fundTypes = %v", f.FundTypes)
			}
		}},
		{"director scoped to institute fund", director, func(t *testing.T, f port.ReportFilter) {
			if len(f.FundTypes) != 1 || f.FundTypes[0] != entity.FundInstitute {
				t.Errorf("fundTypes = %v", f.FundTypes)
			}
		}},
		{"audit sees all three inbound routes", auditor, func(t *testing.T, f port.ReportFilter) {
			if len(f.StatusFundPairs) != 3 {
				t.Fatalf("statusFundPairs = %v", f.StatusFundPairs)
			}
			byStatus := make(map[string][]entity.FundType)
			for _, pair := range f.StatusFundPairs {
				byStatus[pair.Status] = pair.FundTypes
			}
			if _, ok := byStatus[string(domainwf.StateDeanSRICApproved)]; !ok {
				t.Error("missing Dean SRIC Approved route")
			}
			if _, ok := byStatus[string(domainwf.StateDirectorApproved)]; !ok {
				t.Error("missing Director Approved route")
			}
			funds, ok := byStatus[string(domainwf.StateSchoolChairApproved)]
			if !ok {
				t.Fatal("missing School Chair Approved route for department/PDA funds")
			}
			if len(funds) != 2 || funds[0] != entity.FundDepartment || funds[1] != entity.FundPDA {
				t.Errorf("school chair route funds = %v", funds)
			}
		}},
		{"finance sees audit approved", finance, func(t *testing.T, f port.ReportFilter) {
			if len(f.Statuses) != 1 || f.Statuses[0] != string(domainwf.StateAuditApproved) {
				t.Errorf("statuses = %v", f.Statuses)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.List(context.Background(), tt.actor, ScopePending); err != nil {
				t.Fatalf("List() error = %v", err)
			}
			tt.check(t, captured)
		})
	}
}

func TestList_ReviewedScopeFiltersByActor(t *testing.T) {
	var captured port.ReportFilter
	repo := &mockReportRepo{
		listFunc: func(ctx context.Context, filter port.ReportFilter) ([]*entity.ExpenseReport, error) {
			captured = filter
			return nil, nil
		},
	}
	svc := newTestService(repo, nil, nil)

	if _, err := svc.List(context.Background(), auditor, ScopeReviewed); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if captured.ActedByID != auditor.ID {
		t.Errorf("actedByID = %q, want %q", captured.ActedByID, auditor.ID)
	}
	if len(captured.Statuses) != 0 || len(captured.StatusFundPairs) != 0 {
		t.Errorf("reviewed slice should not constrain status, got %v / %v",
			captured.Statuses, captured.StatusFundPairs)
	}
}

func TestGet_HealsDriftedPaymentSplit(t *testing.T) {
	report := draftReport(student)
	// Stored split contradicts the items while the grand total still matches.
	report.TotalAmount = decimal.NewFromInt(8000)
	report.UniversityCardAmount = decimal.NewFromInt(8000)
	report.PersonalAmount = decimal.Zero
	report.NetReimbursement = decimal.Zero

	repo := repoHolding(report)
	healed := false
	repo.updateTotalsFunc = func(ctx context.Context, r *entity.ExpenseReport) error {
		healed = true
		return nil
	}
	svc := newTestService(repo, nil, nil)

	got, err := svc.Get(context.Background(), student, report.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !healed {
		t.Error("drifted payment split was not written back")
	}
	if !got.PersonalAmount.Equal(decimal.NewFromInt(8000)) || !got.UniversityCardAmount.IsZero() {
		t.Errorf("split = card %s / personal %s", got.UniversityCardAmount, got.PersonalAmount)
	}
}
