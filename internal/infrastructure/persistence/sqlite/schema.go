package sqlite

import "github.com/sric-portal/expense-workflow/pkg/database"

// Migrations is the full schema history of the expense workflow store.
// Monetary columns are TEXT holding decimal strings.
var Migrations = []database.Migration{
	{
		Version: 1,
		Name:    "create_users",
		SQL: `
			CREATE TABLE IF NOT EXISTS users (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				email TEXT NOT NULL DEFAULT '',
				role TEXT NOT NULL,
				department TEXT NOT NULL DEFAULT '',
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_users_role ON users(role);
		`,
	},
	{
		Version: 2,
		Name:    "create_designated_approvers",
		SQL: `
			CREATE TABLE IF NOT EXISTS designated_approvers (
				role TEXT NOT NULL,
				department TEXT NOT NULL,
				user_id TEXT NOT NULL,
				user_name TEXT NOT NULL DEFAULT '',
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				PRIMARY KEY (role, department)
			);
		`,
	},
	{
		Version: 3,
		Name:    "create_expense_reports",
		SQL: `
			CREATE TABLE IF NOT EXISTS expense_reports (
				id TEXT PRIMARY KEY,
				title TEXT NOT NULL,
				submitter_id TEXT NOT NULL,
				submitter_name TEXT NOT NULL DEFAULT '',
				submitter_role TEXT NOT NULL,
				department TEXT NOT NULL,
				fund_type TEXT NOT NULL DEFAULT '',
				project_id TEXT NOT NULL DEFAULT '',
				faculty_id TEXT NOT NULL DEFAULT '',
				faculty_name TEXT NOT NULL DEFAULT '',
				status TEXT NOT NULL,
				total_amount TEXT NOT NULL DEFAULT '0',
				university_card_amount TEXT NOT NULL DEFAULT '0',
				personal_amount TEXT NOT NULL DEFAULT '0',
				non_reimbursable_amount TEXT NOT NULL DEFAULT '0',
				net_reimbursement TEXT NOT NULL DEFAULT '0',
				legacy_stage_approvals TEXT,
				version INTEGER NOT NULL DEFAULT 0,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_reports_submitter ON expense_reports(submitter_id);
			CREATE INDEX IF NOT EXISTS idx_reports_status ON expense_reports(status);
			CREATE INDEX IF NOT EXISTS idx_reports_department ON expense_reports(department);
			CREATE INDEX IF NOT EXISTS idx_reports_faculty ON expense_reports(faculty_id);
		`,
	},
	{
		Version: 4,
		Name:    "create_expense_items",
		SQL: `
			CREATE TABLE IF NOT EXISTS expense_items (
				id TEXT PRIMARY KEY,
				report_id TEXT NOT NULL REFERENCES expense_reports(id) ON DELETE CASCADE,
				description TEXT NOT NULL,
				category TEXT NOT NULL DEFAULT '',
				amount TEXT NOT NULL,
				currency TEXT NOT NULL DEFAULT 'INR',
				amount_inr TEXT,
				payment_method TEXT NOT NULL DEFAULT '',
				receipt_ref TEXT NOT NULL DEFAULT '',
				expense_date DATETIME,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_items_report ON expense_items(report_id);
		`,
	},
	{
		Version: 5,
		Name:    "create_approval_history",
		SQL: `
			CREATE TABLE IF NOT EXISTS approval_history (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				report_id TEXT NOT NULL REFERENCES expense_reports(id) ON DELETE CASCADE,
				stage TEXT NOT NULL,
				approved INTEGER NOT NULL,
				action TEXT NOT NULL DEFAULT '',
				date DATETIME NOT NULL,
				remarks TEXT NOT NULL DEFAULT '',
				approved_by TEXT NOT NULL DEFAULT '',
				approved_by_id TEXT NOT NULL DEFAULT ''
			);
			CREATE INDEX IF NOT EXISTS idx_history_report ON approval_history(report_id);
		`,
	},
}
