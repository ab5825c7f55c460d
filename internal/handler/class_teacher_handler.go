package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-roster-api/internal/dto"
	"github.com/noah-isme/school-roster-api/internal/models"
	"github.com/noah-isme/school-roster-api/pkg/response"
)

type classTeacherService interface {
	List(ctx context.Context, schoolRef, classID string) (*models.ClassDetailView, error)
	Assign(ctx context.Context, schoolRef, classID string, req dto.AssignTeacherRequest) (*models.ClassDetailView, error)
	Remove(ctx context.Context, schoolRef, classID, teacherID string, subject *string) (*models.ClassDetailView, error)
}

// ClassTeacherHandler manages teacher assignments on classes and arms.
type ClassTeacherHandler struct {
	service classTeacherService
}

// NewClassTeacherHandler constructs a ClassTeacherHandler.
func NewClassTeacherHandler(service classTeacherService) *ClassTeacherHandler {
	return &ClassTeacherHandler{service: service}
}

// List godoc
// @Summary List teachers of a class
// @Tags ClassTeachers
// @Produce json
// @Param schoolId path string true "School ID or subdomain"
// @Param classId path string true "Class or class arm ID"
// @Success 200 {object} response.Envelope
// @Router /schools/{schoolId}/classes/{classId}/teachers [get]
func (h *ClassTeacherHandler) List(c *gin.Context) {
	detail, err := h.service.List(c.Request.Context(), schoolRef(c), c.Param("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Assign godoc
// @Summary Assign a teacher to a class
// @Tags ClassTeachers
// @Accept json
// @Produce json
// @Param schoolId path string true "School ID or subdomain"
// @Param classId path string true "Class or class arm ID"
// @Param payload body dto.AssignTeacherRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schools/{schoolId}/classes/{classId}/teachers [post]
func (h *ClassTeacherHandler) Assign(c *gin.Context) {
	var req dto.AssignTeacherRequest
	if !bindJSON(c, &req, "invalid assignment payload") {
		return
	}
	detail, err := h.service.Assign(c.Request.Context(), schoolRef(c), c.Param("classId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, detail)
}

// Remove godoc
// @Summary Remove a teacher from a class
// @Tags ClassTeachers
// @Produce json
// @Param schoolId path string true "School ID or subdomain"
// @Param classId path string true "Class or class arm ID"
// @Param teacherId path string true "Teacher ID"
// @Param subject query string false "Subject of the assignment to remove"
// @Success 200 {object} response.Envelope
// @Router /schools/{schoolId}/classes/{classId}/teachers/{teacherId} [delete]
func (h *ClassTeacherHandler) Remove(c *gin.Context) {
	detail, err := h.service.Remove(c.Request.Context(), schoolRef(c), c.Param("classId"), c.Param("teacherId"), optionalQuery(c, "subject"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}
