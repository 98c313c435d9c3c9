package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sric-portal/expense-workflow/internal/domain/workflow"
)

// ExpenseReport is one reimbursement claim: header fields, line items and an
// ordered append-only approval history. It is the aggregate the workflow
// engine operates on.
type ExpenseReport struct {
	ID            uuid.UUID      `json:"id"`
	Title         string         `json:"title"`
	SubmitterID   string         `json:"submitter_id"`
	SubmitterName string         `json:"submitter_name"`
	SubmitterRole Role           `json:"submitter_role"`
	Department    string         `json:"department"`
	FundType      FundType       `json:"fund_type,omitempty"`
	ProjectID     string         `json:"project_id,omitempty"`
	FacultyID     string         `json:"faculty_id,omitempty"`
	FacultyName   string         `json:"faculty_name,omitempty"`
	Status        workflow.State `json:"status"`

	Items []ExpenseItem `json:"items"`

	// Derived totals, owned by RecalculateTotals. Never set by callers.
	TotalAmount           decimal.Decimal `json:"total_amount"`
	UniversityCardAmount  decimal.Decimal `json:"university_card_amount"`
	PersonalAmount        decimal.Decimal `json:"personal_amount"`
	NonReimbursableAmount decimal.Decimal `json:"non_reimbursable_amount"`
	NetReimbursement      decimal.Decimal `json:"net_reimbursement"`

	ApprovalHistory []ApprovalEntry `json:"approval_history"`

	// Legacy per-stage snapshots: last history entry per stage, kept for old
	// clients. ApprovalHistory is the source of truth.
	StageApprovals map[Stage]*StageApproval `json:"stage_approvals,omitempty"`

	// Version guards against two approvers racing on the same report; every
	// status-changing write is conditional on it.
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ExpenseItem is a single expense line on a report.
type ExpenseItem struct {
	ID            uuid.UUID        `json:"id"`
	ReportID      uuid.UUID        `json:"report_id"`
	Description   string           `json:"description"`
	Category      string           `json:"category,omitempty"`
	Amount        decimal.Decimal  `json:"amount"`
	Currency      string           `json:"currency"`
	AmountINR     *decimal.Decimal `json:"amount_inr,omitempty"`
	PaymentMethod string           `json:"payment_method"`
	ReceiptRef    string           `json:"receipt_ref"`
	ExpenseDate   *time.Time       `json:"expense_date,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// EffectiveAmount is the INR-converted amount, falling back to the raw amount
// when no conversion was recorded.
func (i ExpenseItem) EffectiveAmount() decimal.Decimal {
	if i.AmountINR != nil {
		return *i.AmountINR
	}
	return i.Amount
}

// ApprovalEntry is one workflow transition in the report's history. Entries
// are append-only and never mutated after being recorded.
type ApprovalEntry struct {
	ID           int64     `json:"id,omitempty"`
	ReportID     uuid.UUID `json:"report_id"`
	Stage        Stage     `json:"stage"`
	Approved     bool      `json:"approved"`
	Action       string    `json:"action,omitempty"`
	Date         time.Time `json:"date"`
	Remarks      string    `json:"remarks,omitempty"`
	ApprovedBy   string    `json:"approved_by"`
	ApprovedByID string    `json:"approved_by_id"`
}

// StageApproval is the legacy last-written-entry cache for one stage.
type StageApproval struct {
	Approved     bool      `json:"approved"`
	Date         time.Time `json:"date"`
	Remarks      string    `json:"remarks,omitempty"`
	ApprovedBy   string    `json:"approved_by"`
	ApprovedByID string    `json:"approved_by_id"`
}

// IsEditable reports whether header and items may still be changed.
func (r *ExpenseReport) IsEditable() bool {
	return r.Status == workflow.StateDraft
}

// IsOwnedBy reports whether the user is the report's submitter.
func (r *ExpenseReport) IsOwnedBy(userID string) bool {
	return r.SubmitterID == userID
}

// MissingReceipts returns the descriptions of items that lack a receipt
// reference. Submission is blocked while any are missing.
func (r *ExpenseReport) MissingReceipts() []string {
	var missing []string
	for _, item := range r.Items {
		if item.ReceiptRef == "" {
			missing = append(missing, item.Description)
		}
	}
	return missing
}

// LastEntryForStage returns the most recent history entry for the stage, or
// nil if the stage has never acted on this report.
func (r *ExpenseReport) LastEntryForStage(stage Stage) *ApprovalEntry {
	for i := len(r.ApprovalHistory) - 1; i >= 0; i-- {
		if r.ApprovalHistory[i].Stage == stage {
			return &r.ApprovalHistory[i]
		}
	}
	return nil
}

// RebuildStageApprovals recomputes the legacy snapshot map from history.
func (r *ExpenseReport) RebuildStageApprovals() {
	snapshots := make(map[Stage]*StageApproval)
	for _, e := range r.ApprovalHistory {
		snapshots[e.Stage] = &StageApproval{
			Approved:     e.Approved,
			Date:         e.Date,
			Remarks:      e.Remarks,
			ApprovedBy:   e.ApprovedBy,
			ApprovedByID: e.ApprovedByID,
		}
	}
	r.StageApprovals = snapshots
}

// UserRef identifies a user held in the external directory.
type UserRef struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Role       Role   `json:"role"`
	Department string `json:"department,omitempty"`
}

// DesignatedApprover records which individual currently holds an approver
// post: School Chair per department, Dean SRIC and Director institute-wide
// (Department = InstituteKey).
type DesignatedApprover struct {
	Role       Role      `json:"role"`
	Department string    `json:"department"`
	UserID     string    `json:"user_id"`
	UserName   string    `json:"user_name"`
	UpdatedAt  time.Time `json:"updated_at"`
}
