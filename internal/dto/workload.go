package dto

import "github.com/noah-isme/school-roster-api/internal/models"

// WorkloadQuery narrows the workload ranking.
type WorkloadQuery struct {
	Subject string `form:"subject" json:"subject"`
	TermID  string `form:"termId" json:"termId"`
}

// WorkloadResponse is the ranked candidate list for a class assignment picker.
type WorkloadResponse struct {
	SchoolID string                   `json:"schoolId"`
	Subject  string                   `json:"subject,omitempty"`
	TermID   string                   `json:"termId,omitempty"`
	Teachers []models.TeacherWorkload `json:"teachers"`
	Cached   bool                     `json:"cached"`
}
