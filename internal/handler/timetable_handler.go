package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-roster-api/internal/dto"
	"github.com/noah-isme/school-roster-api/internal/service"
	"github.com/noah-isme/school-roster-api/pkg/response"
)

type timetableService interface {
	List(ctx context.Context, schoolRef, classID, termID string) (*dto.TimetableView, error)
	AutoFill(ctx context.Context, schoolRef, classID string, req dto.AutoFillRequest) (*dto.AutoFillResponse, error)
	InsertSpecialRow(ctx context.Context, schoolRef, classID string, req dto.InsertSpecialRowRequest) (*dto.TimetableView, error)
	Save(ctx context.Context, schoolRef, classID string, req dto.SaveTimetableRequest) (*dto.TimetableView, error)
	Export(ctx context.Context, schoolRef, classID, termID, format string) (*service.ExportedFile, error)
}

// TimetableHandler exposes class timetable endpoints.
type TimetableHandler struct {
	service timetableService
}

// NewTimetableHandler constructs a TimetableHandler.
func NewTimetableHandler(service timetableService) *TimetableHandler {
	return &TimetableHandler{service: service}
}

// Get godoc
// @Summary Get the timetable of a class
// @Tags Timetable
// @Produce json
// @Param schoolId path string true "School ID or subdomain"
// @Param classId path string true "Class or class arm ID"
// @Param termId query string false "Term ID"
// @Success 200 {object} response.Envelope
// @Router /schools/{schoolId}/classes/{classId}/timetable [get]
func (h *TimetableHandler) Get(c *gin.Context) {
	view, err := h.service.List(c.Request.Context(), schoolRef(c), c.Param("classId"), c.Query("termId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Save godoc
// @Summary Replace the timetable of a class
// @Tags Timetable
// @Accept json
// @Produce json
// @Param schoolId path string true "School ID or subdomain"
// @Param classId path string true "Class or class arm ID"
// @Param payload body dto.SaveTimetableRequest true "Timetable rows"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schools/{schoolId}/classes/{classId}/timetable [put]
func (h *TimetableHandler) Save(c *gin.Context) {
	var req dto.SaveTimetableRequest
	if !bindJSON(c, &req, "invalid timetable payload") {
		return
	}
	view, err := h.service.Save(c.Request.Context(), schoolRef(c), c.Param("classId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// AutoFill godoc
// @Summary Generate an unsaved timetable preview
// @Tags Timetable
// @Accept json
// @Produce json
// @Param schoolId path string true "School ID or subdomain"
// @Param classId path string true "Class or class arm ID"
// @Param payload body dto.AutoFillRequest true "Subject pool and optional grid"
// @Success 200 {object} response.Envelope
// @Router /schools/{schoolId}/classes/{classId}/timetable/autofill [post]
func (h *TimetableHandler) AutoFill(c *gin.Context) {
	var req dto.AutoFillRequest
	if !bindJSON(c, &req, "invalid autofill payload") {
		return
	}
	result, err := h.service.AutoFill(c.Request.Context(), schoolRef(c), c.Param("classId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// InsertRow godoc
// @Summary Insert a break, lunch or assembly row on every weekday
// @Tags Timetable
// @Accept json
// @Produce json
// @Param schoolId path string true "School ID or subdomain"
// @Param classId path string true "Class or class arm ID"
// @Param payload body dto.InsertSpecialRowRequest true "Row payload"
// @Success 201 {object} response.Envelope
// @Router /schools/{schoolId}/classes/{classId}/timetable/rows [post]
func (h *TimetableHandler) InsertRow(c *gin.Context) {
	var req dto.InsertSpecialRowRequest
	if !bindJSON(c, &req, "invalid timetable row payload") {
		return
	}
	view, err := h.service.InsertSpecialRow(c.Request.Context(), schoolRef(c), c.Param("classId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, view)
}

// Export godoc
// @Summary Download the timetable of a class
// @Tags Timetable
// @Produce text/csv
// @Produce application/pdf
// @Param schoolId path string true "School ID or subdomain"
// @Param classId path string true "Class or class arm ID"
// @Param termId query string false "Term ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /schools/{schoolId}/classes/{classId}/timetable/export [get]
func (h *TimetableHandler) Export(c *gin.Context) {
	file, err := h.service.Export(c.Request.Context(), schoolRef(c), c.Param("classId"), c.Query("termId"), c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.ContentType, file.Filename, file.Body)
}
