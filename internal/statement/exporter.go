// Package statement renders finance-approved expense reports into an Excel
// statement for the finance office.
package statement

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/sric-portal/expense-workflow/internal/domain/entity"
)

// Exporter builds reimbursement statement workbooks
type Exporter struct {
	instituteName string
	sheetName     string
	logger        *zap.Logger
}

// NewExporter creates a new statement exporter
func NewExporter(instituteName, sheetName string, logger *zap.Logger) *Exporter {
	if sheetName == "" {
		sheetName = "Reimbursements"
	}
	return &Exporter{
		instituteName: instituteName,
		sheetName:     sheetName,
		logger:        logger,
	}
}

var columns = []string{
	"Report ID", "Title", "Submitter", "Role", "Department", "Fund Type",
	"Project ID", "Faculty", "Total", "University Card", "Personal",
	"Non-Reimbursable", "Net Reimbursement", "Status", "Finance Approved On",
}

// Export writes one row per report and returns the workbook bytes.
func (e *Exporter) Export(reports []*entity.ExpenseReport, generatedAt time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(e.sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if e.sheetName != "Sheet1" {
		f.DeleteSheet("Sheet1")
	}

	e.setCell(f, "A1", fmt.Sprintf("%s Reimbursement Statement", e.instituteName))
	e.setCell(f, "A2", fmt.Sprintf("Generated %s", generatedAt.Format("2006-01-02 15:04")))

	headerRow := 4
	for i, title := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, headerRow)
		if err != nil {
			return nil, fmt.Errorf("failed to name header cell: %w", err)
		}
		e.setCell(f, cell, title)
	}

	for row, report := range reports {
		values := []interface{}{
			report.ID.String(),
			report.Title,
			report.SubmitterName,
			string(report.SubmitterRole),
			report.Department,
			string(report.FundType),
			report.ProjectID,
			report.FacultyName,
			report.TotalAmount.StringFixed(2),
			report.UniversityCardAmount.StringFixed(2),
			report.PersonalAmount.StringFixed(2),
			report.NonReimbursableAmount.StringFixed(2),
			report.NetReimbursement.StringFixed(2),
			string(report.Status),
			financeApprovedOn(report),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, headerRow+1+row)
			if err != nil {
				return nil, fmt.Errorf("failed to name data cell: %w", err)
			}
			e.setCell(f, cell, value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Info("statement exported", zap.Int("reports", len(reports)))
	return buf.Bytes(), nil
}

func (e *Exporter) setCell(f *excelize.File, cell string, value interface{}) {
	if err := f.SetCellValue(e.sheetName, cell, value); err != nil {
		e.logger.Warn("Failed to set cell value",
			zap.String("cell", cell),
			zap.Error(err))
	}
}

// financeApprovedOn returns the date of the Finance stage entry, empty when
// the report has not cleared Finance.
func financeApprovedOn(report *entity.ExpenseReport) string {
	entry := report.LastEntryForStage(entity.StageFinance)
	if entry == nil || !entry.Approved {
		return ""
	}
	return entry.Date.Format("2006-01-02")
}
