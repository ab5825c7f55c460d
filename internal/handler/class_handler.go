package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-roster-api/internal/dto"
	"github.com/noah-isme/school-roster-api/internal/models"
	"github.com/noah-isme/school-roster-api/pkg/response"
)

type classService interface {
	ListLevels(ctx context.Context, schoolRef string) ([]models.ClassLevel, error)
	CreateLevel(ctx context.Context, schoolRef string, req dto.CreateClassLevelRequest) (*models.ClassLevel, error)
	List(ctx context.Context, schoolRef string) (*dto.ClassListResponse, error)
	Create(ctx context.Context, schoolRef string, req dto.CreateClassRequest) (*models.ClassTarget, error)
	Get(ctx context.Context, schoolRef, classID string) (*models.ClassDetailView, error)
	Update(ctx context.Context, schoolRef, classID string, req dto.UpdateClassRequest) (*models.ClassDetailView, error)
	Delete(ctx context.Context, schoolRef, classID string, force bool) (*dto.DeleteClassResponse, error)
}

// ClassHandler exposes class level, class and class arm endpoints.
type ClassHandler struct {
	service classService
}

// NewClassHandler constructs a ClassHandler.
func NewClassHandler(service classService) *ClassHandler {
	return &ClassHandler{service: service}
}

// ListLevels godoc
// @Summary List class levels
// @Tags Classes
// @Produce json
// @Param schoolId path string true "School ID or subdomain"
// @Success 200 {object} response.Envelope
// @Router /schools/{schoolId}/class-levels [get]
func (h *ClassHandler) ListLevels(c *gin.Context) {
	levels, err := h.service.ListLevels(c.Request.Context(), schoolRef(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, levels, nil)
}

// CreateLevel godoc
// @Summary Create a class level
// @Tags Classes
// @Accept json
// @Produce json
// @Param schoolId path string true "School ID or subdomain"
// @Param payload body dto.CreateClassLevelRequest true "Class level payload"
// @Success 201 {object} response.Envelope
// @Router /schools/{schoolId}/class-levels [post]
func (h *ClassHandler) CreateLevel(c *gin.Context) {
	var req dto.CreateClassLevelRequest
	if !bindJSON(c, &req, "invalid class level payload") {
		return
	}
	level, err := h.service.CreateLevel(c.Request.Context(), schoolRef(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, level)
}

// List godoc
// @Summary List classes and class arms
// @Tags Classes
// @Produce json
// @Param schoolId path string true "School ID or subdomain"
// @Success 200 {object} response.Envelope
// @Router /schools/{schoolId}/classes [get]
func (h *ClassHandler) List(c *gin.Context) {
	result, err := h.service.List(c.Request.Context(), schoolRef(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Create godoc
// @Summary Create a class arm (with classLevelId) or a standalone class
// @Tags Classes
// @Accept json
// @Produce json
// @Param schoolId path string true "School ID or subdomain"
// @Param payload body dto.CreateClassRequest true "Class payload"
// @Success 201 {object} response.Envelope
// @Router /schools/{schoolId}/classes [post]
func (h *ClassHandler) Create(c *gin.Context) {
	var req dto.CreateClassRequest
	if !bindJSON(c, &req, "invalid class payload") {
		return
	}
	target, err := h.service.Create(c.Request.Context(), schoolRef(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, target)
}

// Get godoc
// @Summary Get a class with its teachers
// @Tags Classes
// @Produce json
// @Param schoolId path string true "School ID or subdomain"
// @Param classId path string true "Class or class arm ID"
// @Success 200 {object} response.Envelope
// @Router /schools/{schoolId}/classes/{classId} [get]
func (h *ClassHandler) Get(c *gin.Context) {
	detail, err := h.service.Get(c.Request.Context(), schoolRef(c), c.Param("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Update godoc
// @Summary Update a class
// @Tags Classes
// @Accept json
// @Produce json
// @Param schoolId path string true "School ID or subdomain"
// @Param classId path string true "Class or class arm ID"
// @Param payload body dto.UpdateClassRequest true "Class payload"
// @Success 200 {object} response.Envelope
// @Router /schools/{schoolId}/classes/{classId} [patch]
func (h *ClassHandler) Update(c *gin.Context) {
	var req dto.UpdateClassRequest
	if !bindJSON(c, &req, "invalid class payload") {
		return
	}
	detail, err := h.service.Update(c.Request.Context(), schoolRef(c), c.Param("classId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Delete godoc
// @Summary Delete a class
// @Description Refused while students are enrolled unless force=true, which closes their enrollments first.
// @Tags Classes
// @Produce json
// @Param schoolId path string true "School ID or subdomain"
// @Param classId path string true "Class or class arm ID"
// @Param force query bool false "Close active enrollments and delete"
// @Success 200 {object} response.Envelope
// @Router /schools/{schoolId}/classes/{classId} [delete]
func (h *ClassHandler) Delete(c *gin.Context) {
	force, ok := boolQuery(c, "force")
	if !ok {
		return
	}
	result, err := h.service.Delete(c.Request.Context(), schoolRef(c), c.Param("classId"), force)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
