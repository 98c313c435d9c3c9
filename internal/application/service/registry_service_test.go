package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/sric-portal/expense-workflow/internal/domain/entity"
)

type mockApproverRepo struct {
	records map[string]*entity.DesignatedApprover
}

func key(role entity.Role, department string) string {
	return string(role) + "|" + department
}

func (m *mockApproverRepo) Get(ctx context.Context, role entity.Role, department string) (*entity.DesignatedApprover, error) {
	return m.records[key(role, department)], nil
}

func (m *mockApproverRepo) Upsert(ctx context.Context, approver *entity.DesignatedApprover) error {
	if m.records == nil {
		m.records = make(map[string]*entity.DesignatedApprover)
	}
	m.records[key(approver.Role, approver.Department)] = approver
	return nil
}

func (m *mockApproverRepo) List(ctx context.Context) ([]*entity.DesignatedApprover, error) {
	var out []*entity.DesignatedApprover
	for _, r := range m.records {
		out = append(out, r)
	}
	return out, nil
}

var admin = entity.UserRef{ID: "u-admin", Name: "Admin", Role: entity.RoleAdmin}

func newTestRegistry(users map[string]*entity.UserRef) (RegistryService, *mockApproverRepo) {
	repo := &mockApproverRepo{records: make(map[string]*entity.DesignatedApprover)}
	return NewRegistryService(repo, &mockUserRepo{users: users}, zap.NewNop()), repo
}

func TestAssign_RequiresAdmin(t *testing.T) {
	svc, _ := newTestRegistry(map[string]*entity.UserRef{faculty.ID: &faculty})

	_, err := svc.Assign(context.Background(), chair, entity.RoleSchoolChair, deptSBS, faculty.ID)
	if CodeOf(err) != CodeForbidden {
		t.Fatalf("error code = %s, want FORBIDDEN", CodeOf(err))
	}
}

func TestAssign_SchoolChairMustBeFacultyInDepartment(t *testing.T) {
	outsider := entity.UserRef{ID: "u-out", Name: "Dr. Out", Role: entity.RoleFaculty, Department: deptSCEE}
	svc, _ := newTestRegistry(map[string]*entity.UserRef{
		faculty.ID: &faculty,
		outsider.ID: &outsider,
		student.ID:  &student,
	})

	if _, err := svc.Assign(context.Background(), admin, entity.RoleSchoolChair, deptSBS, outsider.ID); CodeOf(err) != CodeValidation {
		t.Errorf("wrong department: code = %s, want VALIDATION_ERROR", CodeOf(err))
	}
	if _, err := svc.Assign(context.Background(), admin, entity.RoleSchoolChair, deptSBS, student.ID); CodeOf(err) != CodeValidation {
		t.Errorf("student assignee: code = %s, want VALIDATION_ERROR", CodeOf(err))
	}
	if _, err := svc.Assign(context.Background(), admin, entity.RoleSchoolChair, "No Such School", faculty.ID); CodeOf(err) != CodeValidation {
		t.Errorf("bad department: code = %s, want VALIDATION_ERROR", CodeOf(err))
	}

	record, err := svc.Assign(context.Background(), admin, entity.RoleSchoolChair, deptSBS, faculty.ID)
	if err != nil {
		t.Fatalf("Assign() error = %v", err)
	}
	if record.UserID != faculty.ID || record.Department != deptSBS {
		t.Errorf("record = %+v", record)
	}
}

func TestAssign_SingletonsUseInstituteKey(t *testing.T) {
	svc, repo := newTestRegistry(map[string]*entity.UserRef{faculty.ID: &faculty})

	if _, err := svc.Assign(context.Background(), admin, entity.RoleDeanSRIC, "ignored", faculty.ID); err != nil {
		t.Fatalf("Assign(DeanSRIC) error = %v", err)
	}
	if repo.records[key(entity.RoleDeanSRIC, entity.InstituteKey)] == nil {
		t.Error("dean sric record not stored under the Institute key")
	}

	got, err := svc.GetDeanSRIC(context.Background())
	if err != nil || got == nil || got.ID != faculty.ID {
		t.Errorf("GetDeanSRIC() = %+v, %v", got, err)
	}
}

func TestAssign_ReassignmentUpserts(t *testing.T) {
	other := entity.UserRef{ID: "u-fac2", Name: "Dr. Two", Role: entity.RoleFaculty, Department: deptSBS}
	svc, repo := newTestRegistry(map[string]*entity.UserRef{faculty.ID: &faculty, other.ID: &other})

	if _, err := svc.Assign(context.Background(), admin, entity.RoleSchoolChair, deptSBS, faculty.ID); err != nil {
		t.Fatalf("first Assign() error = %v", err)
	}
	if _, err := svc.Assign(context.Background(), admin, entity.RoleSchoolChair, deptSBS, other.ID); err != nil {
		t.Fatalf("second Assign() error = %v", err)
	}

	if got := repo.records[key(entity.RoleSchoolChair, deptSBS)]; got.UserID != other.ID {
		t.Errorf("chair = %s, want replacement %s", got.UserID, other.ID)
	}
	if len(repo.records) != 1 {
		t.Errorf("records = %d, want 1 after upsert", len(repo.records))
	}
}

func TestGetSchoolChair_AbsentIsNil(t *testing.T) {
	svc, _ := newTestRegistry(nil)

	got, err := svc.GetSchoolChair(context.Background(), deptSCEE)
	if err != nil || got != nil {
		t.Errorf("GetSchoolChair() = %+v, %v; want nil, nil", got, err)
	}
}
