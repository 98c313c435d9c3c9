// Package port declares the persistence and directory interfaces consumed by
// the application services. Concrete implementations live under
// internal/infrastructure.
package port

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/sric-portal/expense-workflow/internal/domain/entity"
)

// ErrStaleVersion is returned by ReportRepository.Transition when the stored
// report version no longer matches the one the caller read: another approver
// acted first.
var ErrStaleVersion = errors.New("report version is stale")

// StatusFundPair admits reports in Status whose fund type is one of
// FundTypes; an empty FundTypes matches any fund type. Pairs OR-combine,
// unlike the top-level filter fields.
type StatusFundPair struct {
	Status    string
	FundTypes []entity.FundType
}

// ReportFilter selects a role-specific slice of reports.
type ReportFilter struct {
	// SubmitterID restricts to reports owned by the user.
	SubmitterID string

	// Statuses restricts to reports in any of the listed statuses.
	Statuses []string

	// StatusFundPairs restricts to reports matching any listed pair. Needed
	// where a pending slice spans routes with different fund types, such as
	// Audit's three inbound routes.
	StatusFundPairs []StatusFundPair

	// ActedByID restricts to reports carrying a history entry recorded by
	// the user.
	ActedByID string

	// FundTypes restricts to reports with any of the listed fund types.
	FundTypes []entity.FundType

	// Department restricts to reports routed to the department.
	Department string

	// FacultyID restricts to reports linked to the faculty reviewer.
	FacultyID string

	// IncludeUnassignedFaculty also admits Submitted reports from Student
	// submitters that have no faculty linked yet.
	IncludeUnassignedFaculty bool

	Limit  int
	Offset int
}

// ReportRepository persists the ExpenseReport aggregate.
type ReportRepository interface {
	// Create inserts the report header and its items.
	Create(ctx context.Context, report *entity.ExpenseReport) error

	// GetByID loads the full aggregate (header, items, history) or returns
	// nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*entity.ExpenseReport, error)

	// UpdateDraft rewrites the header fields and items of a Draft report.
	UpdateDraft(ctx context.Context, report *entity.ExpenseReport) error

	// UpdateTotals persists the derived totals (self-healing writes on read).
	UpdateTotals(ctx context.Context, report *entity.ExpenseReport) error

	// Transition conditionally writes status, routing fields and bumps the
	// version. It returns ErrStaleVersion when expectedVersion no longer
	// matches the stored row.
	Transition(ctx context.Context, report *entity.ExpenseReport, expectedVersion int64) error

	// AppendHistory inserts one approval history entry.
	AppendHistory(ctx context.Context, entry *entity.ApprovalEntry) error

	// Delete removes the report with its items and history.
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns report headers matching the filter, newest first.
	List(ctx context.Context, filter ReportFilter) ([]*entity.ExpenseReport, error)
}

// UserRepository reads the external role/identity directory.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.UserRef, error)
}

// ApproverRepository stores designated-approver records: School Chair keyed by
// department, Dean SRIC and Director as institute-wide singletons.
type ApproverRepository interface {
	Get(ctx context.Context, role entity.Role, department string) (*entity.DesignatedApprover, error)
	Upsert(ctx context.Context, approver *entity.DesignatedApprover) error
	List(ctx context.Context) ([]*entity.DesignatedApprover, error)
}

// TransactionManager runs a function inside a storage transaction. Nested
// calls reuse the outer transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
