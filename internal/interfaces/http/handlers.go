package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sric-portal/expense-workflow/internal/application/service"
	"github.com/sric-portal/expense-workflow/internal/domain/entity"
	"github.com/sric-portal/expense-workflow/internal/statement"
	"github.com/sric-portal/expense-workflow/pkg/utils"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	reportService   service.ReportService
	registryService service.RegistryService
	exporter        *statement.Exporter
	logger          *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	reportService service.ReportService,
	registryService service.RegistryService,
	exporter *statement.Exporter,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		reportService:   reportService,
		registryService: registryService,
		exporter:        exporter,
		logger:          logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// AssignApproverRequest carries a designated-approver assignment.
type AssignApproverRequest struct {
	UserID     string `json:"user_id" binding:"required"`
	Department string `json:"department"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// CreateReport handles POST /api/expense-reports
func (h *Handlers) CreateReport(c *gin.Context) {
	actor, ok := CurrentUser(c)
	if !ok {
		abortUnauthorized(c, "missing identity")
		return
	}

	var in service.CreateReportInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}
	in.Title = utils.SanitizeString(in.Title)
	sanitizeItems(in.Items)

	report, err := h.reportService.Create(c.Request.Context(), actor, in)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: report})
}

// ListReports handles GET /api/expense-reports
func (h *Handlers) ListReports(c *gin.Context) {
	actor, ok := CurrentUser(c)
	if !ok {
		abortUnauthorized(c, "missing identity")
		return
	}

	scope := service.ScopeAll
	switch {
	case c.Query("pending") == "true":
		scope = service.ScopePending
	case c.Query("processed") == "true":
		scope = service.ScopeProcessed
	case c.Query("reviewed") == "true":
		scope = service.ScopeReviewed
	}

	reports, err := h.reportService.List(c.Request.Context(), actor, scope)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	if reports == nil {
		reports = []*entity.ExpenseReport{}
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: reports})
}

// GetReport handles GET /api/expense-reports/:id
func (h *Handlers) GetReport(c *gin.Context) {
	actor, ok := CurrentUser(c)
	if !ok {
		abortUnauthorized(c, "missing identity")
		return
	}
	id, ok := h.reportID(c)
	if !ok {
		return
	}

	report, err := h.reportService.Get(c.Request.Context(), actor, id)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: report})
}

// UpdateDraft handles PATCH /api/expense-reports/:id
func (h *Handlers) UpdateDraft(c *gin.Context) {
	actor, ok := CurrentUser(c)
	if !ok {
		abortUnauthorized(c, "missing identity")
		return
	}
	id, ok := h.reportID(c)
	if !ok {
		return
	}

	var in service.UpdateDraftInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}
	if in.Title != nil {
		sanitized := utils.SanitizeString(*in.Title)
		in.Title = &sanitized
	}
	sanitizeItems(in.Items)

	report, err := h.reportService.UpdateDraft(c.Request.Context(), actor, id, in)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: report})
}

// DeleteReport handles DELETE /api/expense-reports/:id
func (h *Handlers) DeleteReport(c *gin.Context) {
	actor, ok := CurrentUser(c)
	if !ok {
		abortUnauthorized(c, "missing identity")
		return
	}
	id, ok := h.reportID(c)
	if !ok {
		return
	}

	if err := h.reportService.Delete(c.Request.Context(), actor, id); err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// SubmitReport handles PATCH /api/expense-reports/:id/submit
func (h *Handlers) SubmitReport(c *gin.Context) {
	actor, ok := CurrentUser(c)
	if !ok {
		abortUnauthorized(c, "missing identity")
		return
	}
	id, ok := h.reportID(c)
	if !ok {
		return
	}

	report, err := h.reportService.Submit(c.Request.Context(), actor, id)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: report})
}

// ActOnReport handles PATCH /api/expense-reports/:id/approve
func (h *Handlers) ActOnReport(c *gin.Context) {
	actor, ok := CurrentUser(c)
	if !ok {
		abortUnauthorized(c, "missing identity")
		return
	}
	id, ok := h.reportID(c)
	if !ok {
		return
	}

	var in service.ActionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}
	in.Remarks = utils.SanitizeString(in.Remarks)

	report, err := h.reportService.Act(c.Request.Context(), actor, id, in)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: report})
}

// ExportStatement handles GET /api/expense-reports/statement
func (h *Handlers) ExportStatement(c *gin.Context) {
	actor, ok := CurrentUser(c)
	if !ok {
		abortUnauthorized(c, "missing identity")
		return
	}
	if actor.Role != entity.RoleFinance && actor.Role != entity.RoleAdmin {
		c.JSON(http.StatusForbidden, Response{
			Success: false,
			Error:   "only finance may export the statement",
			Code:    string(service.CodeForbidden),
		})
		return
	}

	reports, err := h.reportService.List(c.Request.Context(), actor, service.ScopeProcessed)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	data, err := h.exporter.Export(reports, time.Now())
	if err != nil {
		h.logger.Error("Failed to export statement", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to export statement",
			Code:    string(service.CodeInternal),
		})
		return
	}

	filename := "reimbursement-statement-" + time.Now().Format("2006-01-02") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// ListApprovers handles GET /api/approvers
func (h *Handlers) ListApprovers(c *gin.Context) {
	actor, ok := CurrentUser(c)
	if !ok {
		abortUnauthorized(c, "missing identity")
		return
	}

	approvers, err := h.registryService.List(c.Request.Context(), actor)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	if approvers == nil {
		approvers = []*entity.DesignatedApprover{}
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: approvers})
}

// AssignSchoolChair handles PUT /api/approvers/school-chair
func (h *Handlers) AssignSchoolChair(c *gin.Context) {
	h.assign(c, entity.RoleSchoolChair)
}

// AssignDeanSRIC handles PUT /api/approvers/dean-sric
func (h *Handlers) AssignDeanSRIC(c *gin.Context) {
	h.assign(c, entity.RoleDeanSRIC)
}

// AssignDirector handles PUT /api/approvers/director
func (h *Handlers) AssignDirector(c *gin.Context) {
	h.assign(c, entity.RoleDirector)
}

func (h *Handlers) assign(c *gin.Context, role entity.Role) {
	actor, ok := CurrentUser(c)
	if !ok {
		abortUnauthorized(c, "missing identity")
		return
	}

	var req AssignApproverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "user_id is required")
		return
	}

	record, err := h.registryService.Assign(c.Request.Context(), actor, role, req.Department, req.UserID)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: record})
}

func (h *Handlers) reportID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.badRequest(c, "invalid report ID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handlers) badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Error:   message,
		Code:    string(service.CodeValidation),
	})
}

// serviceError maps the service taxonomy onto HTTP statuses.
func (h *Handlers) serviceError(c *gin.Context, err error) {
	code := service.CodeOf(err)
	status := http.StatusInternalServerError
	switch code {
	case service.CodeValidation:
		status = http.StatusBadRequest
	case service.CodeInvalidTransition:
		status = http.StatusConflict
	case service.CodeForbidden:
		status = http.StatusForbidden
	case service.CodeNotFound:
		status = http.StatusNotFound
	}

	if code == service.CodeInternal {
		h.logger.Error("Request failed", zap.Error(err))
	}

	c.JSON(status, Response{
		Success: false,
		Error:   service.MessageOf(err),
		Code:    string(code),
	})
}

func sanitizeItems(items []service.ItemInput) {
	for i := range items {
		items[i].Description = utils.SanitizeString(items[i].Description)
		items[i].Category = utils.SanitizeString(items[i].Category)
	}
}
