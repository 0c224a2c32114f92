package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-admission-api/internal/models"
	"github.com/noah-isme/sma-admission-api/internal/service"
	appErrors "github.com/noah-isme/sma-admission-api/pkg/errors"
	"github.com/noah-isme/sma-admission-api/pkg/response"
)

type admissionService interface {
	Create(ctx context.Context, schoolID string, req service.CreateApplicationRequest) (*service.CreateApplicationResult, error)
	UpdateStep(ctx context.Context, schoolID, appID string, req service.UpdateStepRequest) (*models.Application, error)
	Get(ctx context.Context, schoolID, appID string) (*models.Application, error)
	List(ctx context.Context, schoolID string, filter models.ApplicationFilter) ([]models.Application, *models.Pagination, error)
	Delete(ctx context.Context, schoolID, appID string) error
	Assign(ctx context.Context, schoolID, appID string, req service.AssignmentRequest) (*models.Application, error)
	Submit(ctx context.Context, schoolID, appID string) (*models.Application, error)
	Decide(ctx context.Context, schoolID, appID string, req service.DecisionRequest) (*models.Application, error)
	Stats(ctx context.Context, schoolID string) (*models.AdmissionStats, error)
	ExportCSV(ctx context.Context, schoolID string) ([]byte, error)
	SummaryPDF(ctx context.Context, schoolID, appID string) ([]byte, error)
}

// AdmissionHandler exposes the admission application endpoints.
type AdmissionHandler struct {
	admissions admissionService
	metrics    *service.MetricsService
}

// NewAdmissionHandler constructs AdmissionHandler. metrics may be nil.
func NewAdmissionHandler(admissions admissionService, metrics *service.MetricsService) *AdmissionHandler {
	return &AdmissionHandler{admissions: admissions, metrics: metrics}
}

// Create godoc
// @Summary Start an admission application (step 0)
// @Tags Admissions
// @Accept json
// @Produce json
// @Param payload body service.CreateApplicationRequest true "Identity payload"
// @Success 201 {object} response.Envelope
// @Router /admissions [post]
func (h *AdmissionHandler) Create(c *gin.Context) {
	school := schoolFromContext(c)
	if school == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.admissions.Create(c.Request.Context(), school, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Update godoc
// @Summary Submit one admission step
// @Tags Admissions
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body service.UpdateStepRequest true "Step payload"
// @Success 200 {object} response.Envelope
// @Router /admissions/{id} [patch]
func (h *AdmissionHandler) Update(c *gin.Context) {
	var req service.UpdateStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	app, err := h.admissions.UpdateStep(c.Request.Context(), schoolFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil && req.Step != nil {
		h.metrics.RecordStepSaved(*req.Step)
	}
	response.JSON(c, http.StatusOK, app, nil)
}

// Get godoc
// @Summary Read one application with its nested collections
// @Tags Admissions
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /admissions/{id} [get]
func (h *AdmissionHandler) Get(c *gin.Context) {
	app, err := h.admissions.Get(c.Request.Context(), schoolFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}

// List godoc
// @Summary List applications for the back office
// @Tags Admissions
// @Produce json
// @Param status query string false "Filter by status"
// @Param classId query string false "Filter by class"
// @Param minProgress query int false "Minimum progress"
// @Param maxProgress query int false "Maximum progress"
// @Param search query string false "Name or email search"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admissions [get]
func (h *AdmissionHandler) List(c *gin.Context) {
	var filter models.ApplicationFilter
	filter.Status = models.ApplicationStatus(strings.ToUpper(c.Query("status")))
	filter.ClassID = c.Query("classId")
	if raw := c.Query("minProgress"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			filter.MinProgress = &v
		}
	}
	if raw := c.Query("maxProgress"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			filter.MaxProgress = &v
		}
	}
	filter.Search = c.Query("search")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	apps, pagination, err := h.admissions.List(c.Request.Context(), schoolFromContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, apps, pagination)
}

// Delete godoc
// @Summary Delete an application and its nested collections
// @Tags Admissions
// @Produce json
// @Param id path string true "Application ID"
// @Success 204 "No Content"
// @Router /admissions/{id} [delete]
func (h *AdmissionHandler) Delete(c *gin.Context) {
	if err := h.admissions.Delete(c.Request.Context(), schoolFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Assign godoc
// @Summary Bind an application to a class and capacity-checked grade
// @Tags Admissions
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body service.AssignmentRequest true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Router /admissions/{id}/assignment [put]
func (h *AdmissionHandler) Assign(c *gin.Context) {
	var req service.AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	app, err := h.admissions.Assign(c.Request.Context(), schoolFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}

// Submit godoc
// @Summary Finalize a complete draft
// @Tags Admissions
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /admissions/{id}/submit [post]
func (h *AdmissionHandler) Submit(c *gin.Context) {
	app, err := h.admissions.Submit(c.Request.Context(), schoolFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}

// Decide godoc
// @Summary Accept or reject a submitted application
// @Tags Admissions
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body service.DecisionRequest true "Decision payload"
// @Success 200 {object} response.Envelope
// @Router /admissions/{id}/decision [post]
func (h *AdmissionHandler) Decide(c *gin.Context) {
	var req service.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	app, err := h.admissions.Decide(c.Request.Context(), schoolFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}

// Stats godoc
// @Summary Admission aggregates for the back-office dashboard
// @Tags Admissions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admissions/stats [get]
func (h *AdmissionHandler) Stats(c *gin.Context) {
	school := schoolFromContext(c)
	if school == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	stats, err := h.admissions.Stats(c.Request.Context(), school)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// ExportCSV godoc
// @Summary Export applications as CSV
// @Tags Admissions
// @Produce text/csv
// @Success 200 {string} string "CSV content"
// @Router /admissions/export [get]
func (h *AdmissionHandler) ExportCSV(c *gin.Context) {
	school := schoolFromContext(c)
	if school == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	out, err := h.admissions.ExportCSV(c.Request.Context(), school)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="applications.csv"`)
	c.Data(http.StatusOK, "text/csv", out)
}

// SummaryPDF godoc
// @Summary Render a one-page application summary
// @Tags Admissions
// @Produce application/pdf
// @Param id path string true "Application ID"
// @Success 200 {string} string "PDF content"
// @Router /admissions/{id}/summary.pdf [get]
func (h *AdmissionHandler) SummaryPDF(c *gin.Context) {
	out, err := h.admissions.SummaryPDF(c.Request.Context(), schoolFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Data(http.StatusOK, "application/pdf", out)
}
