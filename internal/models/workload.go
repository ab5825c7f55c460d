package models

import (
	"strings"

	"github.com/lib/pq"
)

// WorkloadBand classifies how many lesson periods a teacher carries.
type WorkloadBand string

const (
	WorkloadLow        WorkloadBand = "LOW"
	WorkloadNormal     WorkloadBand = "NORMAL"
	WorkloadHigh       WorkloadBand = "HIGH"
	WorkloadOverloaded WorkloadBand = "OVERLOADED"
)

// TeacherWorkload is one row of the workload ranking.
type TeacherWorkload struct {
	TeacherID   string         `db:"teacher_id" json:"teacherId"`
	FirstName   string         `db:"first_name" json:"firstName"`
	LastName    string         `db:"last_name" json:"lastName"`
	Email       string         `db:"email" json:"email"`
	Subjects    pq.StringArray `db:"subjects" json:"subjects"`
	PeriodCount int            `db:"period_count" json:"periodCount"`
	Band        WorkloadBand   `db:"-" json:"band"`
	Recommended bool           `db:"-" json:"recommended"`
	Warning     string         `db:"-" json:"warning,omitempty"`
}

// FullName joins first and last name.
func (w *TeacherWorkload) FullName() string {
	return strings.TrimSpace(w.FirstName + " " + w.LastName)
}
