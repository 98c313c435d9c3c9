package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sric-portal/expense-workflow/internal/application/port"
	"github.com/sric-portal/expense-workflow/internal/domain/entity"
)

// RegistryService manages designated-approver records and serves as the
// lookup abstraction the workflow engine authorizes against.
type RegistryService interface {
	port.ApproverRegistry

	// Assign records userID as the designated holder of the post. Only
	// Admins may assign; re-assignment upserts by department/singleton key.
	Assign(ctx context.Context, actor entity.UserRef, role entity.Role, department, userID string) (*entity.DesignatedApprover, error)

	// List returns all current designated-approver records.
	List(ctx context.Context, actor entity.UserRef) ([]*entity.DesignatedApprover, error)
}

type registryService struct {
	approvers port.ApproverRepository
	users     port.UserRepository
	logger    *zap.Logger
	now       func() time.Time
}

// NewRegistryService creates the designated-approver registry service.
func NewRegistryService(approvers port.ApproverRepository, users port.UserRepository, logger *zap.Logger) RegistryService {
	return &registryService{
		approvers: approvers,
		users:     users,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *registryService) GetSchoolChair(ctx context.Context, department string) (*entity.UserRef, error) {
	return s.lookup(ctx, entity.RoleSchoolChair, department)
}

func (s *registryService) GetDeanSRIC(ctx context.Context) (*entity.UserRef, error) {
	return s.lookup(ctx, entity.RoleDeanSRIC, entity.InstituteKey)
}

func (s *registryService) GetDirector(ctx context.Context) (*entity.UserRef, error) {
	return s.lookup(ctx, entity.RoleDirector, entity.InstituteKey)
}

func (s *registryService) lookup(ctx context.Context, role entity.Role, department string) (*entity.UserRef, error) {
	record, err := s.approvers.Get(ctx, role, department)
	if err != nil {
		return nil, internal(err, "failed to read approver registry")
	}
	if record == nil {
		return nil, nil
	}
	return &entity.UserRef{
		ID:         record.UserID,
		Name:       record.UserName,
		Role:       role,
		Department: record.Department,
	}, nil
}

func (s *registryService) Assign(ctx context.Context, actor entity.UserRef, role entity.Role, department, userID string) (*entity.DesignatedApprover, error) {
	if actor.Role != entity.RoleAdmin {
		return nil, forbiddenf("only admins may assign designated approvers")
	}

	switch role {
	case entity.RoleSchoolChair:
		if !entity.IsValidDepartment(department) {
			return nil, validationf("unknown department %q", department)
		}
	case entity.RoleDeanSRIC, entity.RoleDirector:
		department = entity.InstituteKey
	default:
		return nil, validationf("%s is not an assignable approver post", role)
	}

	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, internal(err, "failed to look up assignee")
	}
	if target == nil {
		return nil, notFoundf("user %s not found", userID)
	}
	// Assignees come from the faculty pool; the current holder keeps the
	// post role in the directory, so re-assignment of the incumbent passes.
	if target.Role != entity.RoleFaculty && target.Role != role {
		return nil, validationf("assignee must hold the Faculty role")
	}
	if role == entity.RoleSchoolChair && target.Department != department {
		return nil, validationf("school chair must belong to %s", department)
	}

	record := &entity.DesignatedApprover{
		Role:       role,
		Department: department,
		UserID:     target.ID,
		UserName:   target.Name,
		UpdatedAt:  s.now(),
	}
	if err := s.approvers.Upsert(ctx, record); err != nil {
		return nil, internal(err, "failed to save approver assignment")
	}

	s.logger.Info("designated approver assigned",
		zap.String("role", string(role)),
		zap.String("department", department),
		zap.String("user_id", target.ID))
	return record, nil
}

func (s *registryService) List(ctx context.Context, actor entity.UserRef) ([]*entity.DesignatedApprover, error) {
	records, err := s.approvers.List(ctx)
	if err != nil {
		return nil, internal(err, "failed to list designated approvers")
	}
	return records, nil
}
