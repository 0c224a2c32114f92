package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-admission-api/internal/service"
	appErrors "github.com/noah-isme/sma-admission-api/pkg/errors"
	"github.com/noah-isme/sma-admission-api/pkg/response"
)

// ClassHandler exposes class/grade reference data for admission flows.
type ClassHandler struct {
	classes *service.ClassService
}

// NewClassHandler constructs ClassHandler.
func NewClassHandler(classes *service.ClassService) *ClassHandler {
	return &ClassHandler{classes: classes}
}

// List godoc
// @Summary List classes for the caller's school
// @Tags Classes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *ClassHandler) List(c *gin.Context) {
	school := schoolFromContext(c)
	if school == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	classes, err := h.classes.List(c.Request.Context(), school)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, nil)
}

// Grades godoc
// @Summary List a class's grades with live enrollment counts
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Param available query bool false "Only grades below capacity"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/grades [get]
func (h *ClassHandler) Grades(c *gin.Context) {
	school := schoolFromContext(c)
	if school == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	class, err := h.classes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if class.SchoolID != school {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "class not found"))
		return
	}
	grades := class.Grades
	if c.Query("available") == "1" || c.Query("available") == "true" {
		grades = h.classes.AvailableGrades(class)
	}
	response.JSON(c, http.StatusOK, grades, nil)
}
