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

// UserRepository implements port.UserRepository over the users table.
type UserRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *sql.DB, logger *zap.Logger) port.UserRepository {
	return &UserRepository{db: db, logger: logger}
}

// GetByID returns the user or nil when no such user exists.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.UserRef, error) {
	query := "SELECT id, name, role, department FROM users WHERE id = ?"

	var (
		user entity.UserRef
		role string
	)
	err := r.getExecutor(ctx).QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Name, &role, &user.Department,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get user", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user.Role = entity.Role(role)
	return &user, nil
}

func (r *UserRepository) getExecutor(ctx context.Context) executor {
	if tx := sqlite.ExtractTx(ctx); tx != nil {
		return tx
	}
	return r.db
}

var _ port.UserRepository = (*UserRepository)(nil)
