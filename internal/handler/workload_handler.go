package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-roster-api/internal/dto"
	"github.com/noah-isme/school-roster-api/internal/middleware"
	appErrors "github.com/noah-isme/school-roster-api/pkg/errors"
	"github.com/noah-isme/school-roster-api/pkg/response"
)

type workloadService interface {
	Rank(ctx context.Context, schoolRef string, query dto.WorkloadQuery) (*dto.WorkloadResponse, error)
}

// WorkloadHandler serves the teacher workload ranking.
type WorkloadHandler struct {
	service workloadService
}

// NewWorkloadHandler constructs a WorkloadHandler.
func NewWorkloadHandler(service workloadService) *WorkloadHandler {
	return &WorkloadHandler{service: service}
}

// Rank godoc
// @Summary Rank teachers by weekly periods
// @Tags Workload
// @Produce json
// @Param schoolId path string true "School ID or subdomain"
// @Param subject query string false "Only teachers competent in this subject"
// @Param termId query string false "Term ID"
// @Success 200 {object} response.Envelope
// @Router /schools/{schoolId}/teachers/workload [get]
func (h *WorkloadHandler) Rank(c *gin.Context) {
	var query dto.WorkloadQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid workload query"))
		return
	}
	result, err := h.service.Rank(c.Request.Context(), schoolRef(c), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, result.Cached)
	response.JSON(c, http.StatusOK, result, nil, middleware.ExtractMeta(c))
}
