package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hyowon-dev/sugang-api/internal/models"
	"github.com/hyowon-dev/sugang-api/internal/service"
	"github.com/hyowon-dev/sugang-api/pkg/response"
)

// CatalogHandler exposes the browsable lecture catalog.
type CatalogHandler struct {
	service *service.CatalogService
}

// NewCatalogHandler creates a new handler.
func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: svc}
}

// Departments godoc
// @Summary List departments
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /departments [get]
func (h *CatalogHandler) Departments(c *gin.Context) {
	departments, err := h.service.Departments(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, departments)
}

// Professors godoc
// @Summary List professors
// @Tags Catalog
// @Produce json
// @Param dept query string false "Department code"
// @Success 200 {object} response.Envelope
// @Router /professors [get]
func (h *CatalogHandler) Professors(c *gin.Context) {
	professors, err := h.service.Professors(c.Request.Context(), c.Query("dept"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, professors)
}

// Lectures godoc
// @Summary Search the lecture catalog
// @Description List lectures with live seat occupancy, filtered by department, professor, or name
// @Tags Catalog
// @Produce json
// @Param dept query string false "Department code"
// @Param professor query string false "Professor name (partial match)"
// @Param name query string false "Lecture name (partial match)"
// @Success 200 {object} response.Envelope
// @Router /lectures [get]
func (h *CatalogHandler) Lectures(c *gin.Context) {
	filter := models.LectureFilter{
		DepartmentCode: c.Query("dept"),
		ProfessorName:  c.Query("professor"),
		Name:           c.Query("name"),
		AcademicYear:   c.Query("year"),
		Term:           c.Query("term"),
	}

	lectures, err := h.service.Lectures(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lectures)
}
