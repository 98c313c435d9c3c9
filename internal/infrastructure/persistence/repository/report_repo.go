// Package repository contains the sqlite implementations of the persistence
// ports. Repositories honor a transaction carried on the context.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sric-portal/expense-workflow/internal/application/port"
	"github.com/sric-portal/expense-workflow/internal/domain/entity"
	"github.com/sric-portal/expense-workflow/internal/domain/workflow"
	"github.com/sric-portal/expense-workflow/internal/infrastructure/persistence/sqlite"
)

// executor covers both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// ReportRepository implements port.ReportRepository.
type ReportRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewReportRepository creates a new report repository.
func NewReportRepository(db *sql.DB, logger *zap.Logger) port.ReportRepository {
	return &ReportRepository{db: db, logger: logger}
}

const reportColumns = `id, title, submitter_id, submitter_name, submitter_role,
	department, fund_type, project_id, faculty_id, faculty_name, status,
	total_amount, university_card_amount, personal_amount,
	non_reimbursable_amount, net_reimbursement, legacy_stage_approvals,
	version, created_at, updated_at`

// Create inserts the report header and its items.
func (r *ReportRepository) Create(ctx context.Context, report *entity.ExpenseReport) error {
	query := `
		INSERT INTO expense_reports (
			id, title, submitter_id, submitter_name, submitter_role,
			department, fund_type, project_id, faculty_id, faculty_name, status,
			total_amount, university_card_amount, personal_amount,
			non_reimbursable_amount, net_reimbursement, version,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.getExecutor(ctx).ExecContext(ctx, query,
		report.ID.String(),
		report.Title,
		report.SubmitterID,
		report.SubmitterName,
		string(report.SubmitterRole),
		report.Department,
		string(report.FundType),
		report.ProjectID,
		report.FacultyID,
		report.FacultyName,
		string(report.Status),
		report.TotalAmount.String(),
		report.UniversityCardAmount.String(),
		report.PersonalAmount.String(),
		report.NonReimbursableAmount.String(),
		report.NetReimbursement.String(),
		report.Version,
		report.CreatedAt,
		report.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create report", zap.Error(err))
		return fmt.Errorf("failed to create report: %w", err)
	}

	return r.insertItems(ctx, report.ID, report.Items)
}

// GetByID loads the full aggregate or returns nil when absent.
func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.ExpenseReport, error) {
	query := fmt.Sprintf("SELECT %s FROM expense_reports WHERE id = ?", reportColumns)

	report, err := r.scanReport(r.getExecutor(ctx).QueryRowContext(ctx, query, id.String()))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get report", zap.String("id", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	if report.Items, err = r.loadItems(ctx, id); err != nil {
		return nil, err
	}
	if report.ApprovalHistory, err = r.loadHistory(ctx, id); err != nil {
		return nil, err
	}
	return report, nil
}

// UpdateDraft rewrites header fields and items of a Draft report.
func (r *ReportRepository) UpdateDraft(ctx context.Context, report *entity.ExpenseReport) error {
	query := `
		UPDATE expense_reports SET
			title = ?, fund_type = ?, project_id = ?,
			faculty_id = ?, faculty_name = ?,
			total_amount = ?, university_card_amount = ?, personal_amount = ?,
			non_reimbursable_amount = ?, net_reimbursement = ?,
			updated_at = ?
		WHERE id = ? AND status = 'Draft'
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		report.Title,
		string(report.FundType),
		report.ProjectID,
		report.FacultyID,
		report.FacultyName,
		report.TotalAmount.String(),
		report.UniversityCardAmount.String(),
		report.PersonalAmount.String(),
		report.NonReimbursableAmount.String(),
		report.NetReimbursement.String(),
		report.UpdatedAt,
		report.ID.String(),
	)
	if err != nil {
		r.logger.Error("Failed to update draft", zap.String("id", report.ID.String()), zap.Error(err))
		return fmt.Errorf("failed to update draft: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("report %s is not a draft", report.ID)
	}

	del := "DELETE FROM expense_items WHERE report_id = ?"
	if _, err := r.getExecutor(ctx).ExecContext(ctx, del, report.ID.String()); err != nil {
		return fmt.Errorf("failed to clear items: %w", err)
	}
	return r.insertItems(ctx, report.ID, report.Items)
}

// UpdateTotals persists the derived totals only.
func (r *ReportRepository) UpdateTotals(ctx context.Context, report *entity.ExpenseReport) error {
	query := `
		UPDATE expense_reports SET
			total_amount = ?, university_card_amount = ?, personal_amount = ?,
			net_reimbursement = ?
		WHERE id = ?
	`

	_, err := r.getExecutor(ctx).ExecContext(ctx, query,
		report.TotalAmount.String(),
		report.UniversityCardAmount.String(),
		report.PersonalAmount.String(),
		report.NetReimbursement.String(),
		report.ID.String(),
	)
	if err != nil {
		r.logger.Error("Failed to update totals", zap.String("id", report.ID.String()), zap.Error(err))
		return fmt.Errorf("failed to update totals: %w", err)
	}
	return nil
}

// Transition conditionally writes the status and routing fields. The version
// predicate rejects the slower of two racing approvers.
func (r *ReportRepository) Transition(ctx context.Context, report *entity.ExpenseReport, expectedVersion int64) error {
	query := `
		UPDATE expense_reports SET
			status = ?, fund_type = ?, project_id = ?,
			faculty_id = ?, faculty_name = ?, department = ?,
			version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		string(report.Status),
		string(report.FundType),
		report.ProjectID,
		report.FacultyID,
		report.FacultyName,
		report.Department,
		report.UpdatedAt,
		report.ID.String(),
		expectedVersion,
	)
	if err != nil {
		r.logger.Error("Failed to transition report", zap.String("id", report.ID.String()), zap.Error(err))
		return fmt.Errorf("failed to transition report: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	} else if n == 0 {
		return port.ErrStaleVersion
	}
	return nil
}

// AppendHistory inserts one approval history entry. Entries are never
// updated or deleted.
func (r *ReportRepository) AppendHistory(ctx context.Context, entry *entity.ApprovalEntry) error {
	query := `
		INSERT INTO approval_history (
			report_id, stage, approved, action, date, remarks,
			approved_by, approved_by_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		entry.ReportID.String(),
		string(entry.Stage),
		entry.Approved,
		entry.Action,
		entry.Date,
		entry.Remarks,
		entry.ApprovedBy,
		entry.ApprovedByID,
	)
	if err != nil {
		r.logger.Error("Failed to append history", zap.Error(err))
		return fmt.Errorf("failed to append history: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		entry.ID = id
	}
	return nil
}

// Delete removes the report; items and history cascade.
func (r *ReportRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.getExecutor(ctx).ExecContext(ctx,
		"DELETE FROM expense_reports WHERE id = ?", id.String())
	if err != nil {
		r.logger.Error("Failed to delete report", zap.String("id", id.String()), zap.Error(err))
		return fmt.Errorf("failed to delete report: %w", err)
	}
	return nil
}

// List returns report headers matching the filter, newest first. Items are
// loaded per report; history is left to GetByID.
func (r *ReportRepository) List(ctx context.Context, filter port.ReportFilter) ([]*entity.ExpenseReport, error) {
	var (
		conditions []string
		args       []interface{}
	)

	if filter.SubmitterID != "" {
		conditions = append(conditions, "submitter_id = ?")
		args = append(args, filter.SubmitterID)
	}
	if len(filter.Statuses) > 0 {
		placeholders := strings.Repeat("?,", len(filter.Statuses))
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", placeholders[:len(placeholders)-1]))
		for _, s := range filter.Statuses {
			args = append(args, s)
		}
	}
	if len(filter.StatusFundPairs) > 0 {
		var pairClauses []string
		for _, pair := range filter.StatusFundPairs {
			if len(pair.FundTypes) == 0 {
				pairClauses = append(pairClauses, "status = ?")
				args = append(args, pair.Status)
				continue
			}
			placeholders := strings.Repeat("?,", len(pair.FundTypes))
			pairClauses = append(pairClauses,
				fmt.Sprintf("(status = ? AND fund_type IN (%s))", placeholders[:len(placeholders)-1]))
			args = append(args, pair.Status)
			for _, ft := range pair.FundTypes {
				args = append(args, string(ft))
			}
		}
		conditions = append(conditions, "("+strings.Join(pairClauses, " OR ")+")")
	}
	if filter.ActedByID != "" {
		conditions = append(conditions,
			"EXISTS (SELECT 1 FROM approval_history h WHERE h.report_id = expense_reports.id AND h.approved_by_id = ?)")
		args = append(args, filter.ActedByID)
	}
	if len(filter.FundTypes) > 0 {
		placeholders := strings.Repeat("?,", len(filter.FundTypes))
		conditions = append(conditions, fmt.Sprintf("fund_type IN (%s)", placeholders[:len(placeholders)-1]))
		for _, ft := range filter.FundTypes {
			args = append(args, string(ft))
		}
	}
	if filter.Department != "" {
		conditions = append(conditions, "department = ?")
		args = append(args, filter.Department)
	}
	if filter.FacultyID != "" {
		if filter.IncludeUnassignedFaculty {
			conditions = append(conditions, "(faculty_id = ? OR (faculty_id = '' AND submitter_role = 'Student'))")
		} else {
			conditions = append(conditions, "faculty_id = ?")
		}
		args = append(args, filter.FacultyID)
	}

	query := fmt.Sprintf("SELECT %s FROM expense_reports", reportColumns)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list reports", zap.Error(err))
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var reports []*entity.ExpenseReport
	for rows.Next() {
		report, err := r.scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, report := range reports {
		if report.Items, err = r.loadItems(ctx, report.ID); err != nil {
			return nil, err
		}
	}
	return reports, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *ReportRepository) scanReport(row rowScanner) (*entity.ExpenseReport, error) {
	var (
		report                               entity.ExpenseReport
		idStr, role, fundType, status        string
		total, card, personal, nonReimb, net string
		legacyJSON                           sql.NullString
	)

	err := row.Scan(
		&idStr, &report.Title, &report.SubmitterID, &report.SubmitterName, &role,
		&report.Department, &fundType, &report.ProjectID, &report.FacultyID,
		&report.FacultyName, &status,
		&total, &card, &personal, &nonReimb, &net, &legacyJSON,
		&report.Version, &report.CreatedAt, &report.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if report.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("invalid report id %q: %w", idStr, err)
	}
	report.SubmitterRole = entity.Role(role)
	report.FundType = entity.FundType(fundType)
	report.Status = workflow.State(status)

	if report.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("invalid total amount %q: %w", total, err)
	}
	if report.UniversityCardAmount, err = decimal.NewFromString(card); err != nil {
		return nil, fmt.Errorf("invalid card amount %q: %w", card, err)
	}
	if report.PersonalAmount, err = decimal.NewFromString(personal); err != nil {
		return nil, fmt.Errorf("invalid personal amount %q: %w", personal, err)
	}
	if report.NonReimbursableAmount, err = decimal.NewFromString(nonReimb); err != nil {
		return nil, fmt.Errorf("invalid non-reimbursable amount %q: %w", nonReimb, err)
	}
	if report.NetReimbursement, err = decimal.NewFromString(net); err != nil {
		return nil, fmt.Errorf("invalid net reimbursement %q: %w", net, err)
	}

	// Legacy per-stage snapshots survive only for pre-history records; they
	// are read for backfill and never written back.
	if legacyJSON.Valid && legacyJSON.String != "" {
		snapshots := make(map[entity.Stage]*entity.StageApproval)
		if err := json.Unmarshal([]byte(legacyJSON.String), &snapshots); err != nil {
			r.logger.Warn("Ignoring malformed legacy stage approvals",
				zap.String("report_id", idStr), zap.Error(err))
		} else {
			report.StageApprovals = snapshots
		}
	}

	return &report, nil
}

func (r *ReportRepository) insertItems(ctx context.Context, reportID uuid.UUID, items []entity.ExpenseItem) error {
	query := `
		INSERT INTO expense_items (
			id, report_id, description, category, amount, currency,
			amount_inr, payment_method, receipt_ref, expense_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	for _, item := range items {
		var inr interface{}
		if item.AmountINR != nil {
			inr = item.AmountINR.String()
		}
		_, err := r.getExecutor(ctx).ExecContext(ctx, query,
			item.ID.String(),
			reportID.String(),
			item.Description,
			item.Category,
			item.Amount.String(),
			item.Currency,
			inr,
			item.PaymentMethod,
			item.ReceiptRef,
			item.ExpenseDate,
		)
		if err != nil {
			r.logger.Error("Failed to insert item", zap.Error(err))
			return fmt.Errorf("failed to insert item: %w", err)
		}
	}
	return nil
}

func (r *ReportRepository) loadItems(ctx context.Context, reportID uuid.UUID) ([]entity.ExpenseItem, error) {
	query := `
		SELECT id, report_id, description, category, amount, currency,
			amount_inr, payment_method, receipt_ref, expense_date, created_at
		FROM expense_items
		WHERE report_id = ?
		ORDER BY created_at, id
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, reportID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	defer rows.Close()

	var items []entity.ExpenseItem
	for rows.Next() {
		var (
			item        entity.ExpenseItem
			idStr, rid  string
			amount      string
			inr         sql.NullString
			expenseDate sql.NullTime
		)
		if err := rows.Scan(
			&idStr, &rid, &item.Description, &item.Category, &amount,
			&item.Currency, &inr, &item.PaymentMethod, &item.ReceiptRef,
			&expenseDate, &item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		if item.ID, err = uuid.Parse(idStr); err != nil {
			return nil, fmt.Errorf("invalid item id %q: %w", idStr, err)
		}
		if item.ReportID, err = uuid.Parse(rid); err != nil {
			return nil, fmt.Errorf("invalid item report id %q: %w", rid, err)
		}
		if item.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("invalid item amount %q: %w", amount, err)
		}
		if inr.Valid {
			d, err := decimal.NewFromString(inr.String)
			if err != nil {
				return nil, fmt.Errorf("invalid item INR amount %q: %w", inr.String, err)
			}
			item.AmountINR = &d
		}
		if expenseDate.Valid {
			item.ExpenseDate = &expenseDate.Time
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *ReportRepository) loadHistory(ctx context.Context, reportID uuid.UUID) ([]entity.ApprovalEntry, error) {
	query := `
		SELECT id, report_id, stage, approved, action, date, remarks,
			approved_by, approved_by_id
		FROM approval_history
		WHERE report_id = ?
		ORDER BY date, id
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, reportID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer rows.Close()

	var entries []entity.ApprovalEntry
	for rows.Next() {
		var (
			entry entity.ApprovalEntry
			rid   string
			stage string
		)
		if err := rows.Scan(
			&entry.ID, &rid, &stage, &entry.Approved, &entry.Action,
			&entry.Date, &entry.Remarks, &entry.ApprovedBy, &entry.ApprovedByID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		if entry.ReportID, err = uuid.Parse(rid); err != nil {
			return nil, fmt.Errorf("invalid history report id %q: %w", rid, err)
		}
		entry.Stage = entity.Stage(stage)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// getExecutor returns the context transaction when present.
func (r *ReportRepository) getExecutor(ctx context.Context) executor {
	if tx := sqlite.ExtractTx(ctx); tx != nil {
		return tx
	}
	return r.db
}

var _ port.ReportRepository = (*ReportRepository)(nil)
