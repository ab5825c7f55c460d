package models

import "time"

// Enrollment places a student in a class or class arm for an academic year.
// Enrollments are closed, never hard-deleted.
type Enrollment struct {
	ID           string     `db:"id" json:"id"`
	StudentID    string     `db:"student_id" json:"studentId"`
	ClassID      *string    `db:"class_id" json:"classId,omitempty"`
	ClassArmID   *string    `db:"class_arm_id" json:"classArmId,omitempty"`
	AcademicYear string     `db:"academic_year" json:"academicYear"`
	IsActive     bool       `db:"is_active" json:"isActive"`
	StartDate    time.Time  `db:"start_date" json:"startDate"`
	EndDate      *time.Time `db:"end_date" json:"endDate,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}
