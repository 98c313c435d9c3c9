package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/sric-portal/expense-workflow/internal/application/port"
	"github.com/sric-portal/expense-workflow/internal/domain/entity"
	"github.com/sric-portal/expense-workflow/internal/infrastructure/persistence/sqlite"
)

// ApproverRepository implements port.ApproverRepository over the
// designated_approvers table, keyed by (role, department).
type ApproverRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewApproverRepository creates a new approver repository.
func NewApproverRepository(db *sql.DB, logger *zap.Logger) port.ApproverRepository {
	return &ApproverRepository{db: db, logger: logger}
}

// Get returns the current holder of the post, or nil when nobody is
// designated.
func (r *ApproverRepository) Get(ctx context.Context, role entity.Role, department string) (*entity.DesignatedApprover, error) {
	query := `
		SELECT role, department, user_id, user_name, updated_at
		FROM designated_approvers
		WHERE role = ? AND department = ?
	`

	var (
		approver entity.DesignatedApprover
		roleStr  string
	)
	err := r.getExecutor(ctx).QueryRowContext(ctx, query, string(role), department).Scan(
		&roleStr, &approver.Department, &approver.UserID, &approver.UserName,
		&approver.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get designated approver",
			zap.String("role", string(role)),
			zap.String("department", department),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get designated approver: %w", err)
	}
	approver.Role = entity.Role(roleStr)
	return &approver, nil
}

// Upsert replaces the holder of the post.
func (r *ApproverRepository) Upsert(ctx context.Context, approver *entity.DesignatedApprover) error {
	query := `
		INSERT INTO designated_approvers (role, department, user_id, user_name, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (role, department) DO UPDATE SET
			user_id = excluded.user_id,
			user_name = excluded.user_name,
			updated_at = excluded.updated_at
	`

	_, err := r.getExecutor(ctx).ExecContext(ctx, query,
		string(approver.Role),
		approver.Department,
		approver.UserID,
		approver.UserName,
		approver.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to upsert designated approver",
			zap.String("role", string(approver.Role)),
			zap.String("department", approver.Department),
			zap.Error(err))
		return fmt.Errorf("failed to upsert designated approver: %w", err)
	}
	return nil
}

// List returns all designated approvers, ordered for stable display.
func (r *ApproverRepository) List(ctx context.Context) ([]*entity.DesignatedApprover, error) {
	query := `
		SELECT role, department, user_id, user_name, updated_at
		FROM designated_approvers
		ORDER BY role, department
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list designated approvers", zap.Error(err))
		return nil, fmt.Errorf("failed to list designated approvers: %w", err)
	}
	defer rows.Close()

	var approvers []*entity.DesignatedApprover
	for rows.Next() {
		var (
			approver entity.DesignatedApprover
			roleStr  string
		)
		if err := rows.Scan(&roleStr, &approver.Department, &approver.UserID,
			&approver.UserName, &approver.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan designated approver: %w", err)
		}
		approver.Role = entity.Role(roleStr)
		approvers = append(approvers, &approver)
	}
	return approvers, rows.Err()
}

func (r *ApproverRepository) getExecutor(ctx context.Context) executor {
	if tx := sqlite.ExtractTx(ctx); tx != nil {
		return tx
	}
	return r.db
}

var _ port.ApproverRepository = (*ApproverRepository)(nil)
