package models

import "time"

// ClassLevel groups class arms of one year within a school, e.g. "JSS 1".
type ClassLevel struct {
	ID        string     `db:"id" json:"id"`
	SchoolID  string     `db:"school_id" json:"schoolId"`
	Name      string     `db:"name" json:"name"`
	Type      SchoolType `db:"type" json:"type"`
	// Level orders levels within a school, e.g. 1 for "JSS 1".
	Level     int        `db:"level" json:"level"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time  `db:"updated_at" json:"updatedAt"`
}

// ClassArm is a stream of a class level, e.g. "Gold" in "JSS 1 Gold".
type ClassArm struct {
	ID           string    `db:"id" json:"id"`
	ClassLevelID string    `db:"class_level_id" json:"classLevelId"`
	Name         string    `db:"name" json:"name"`
	AcademicYear *string   `db:"academic_year" json:"academicYear,omitempty"`
	IsActive     bool      `db:"is_active" json:"isActive"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// ClassArmDetail is a ClassArm joined with its level.
type ClassArmDetail struct {
	ClassArm
	SchoolID       string     `db:"school_id" json:"schoolId"`
	ClassLevelName string     `db:"class_level_name" json:"classLevelName"`
	Type           SchoolType `db:"type" json:"type"`
}

// DisplayName renders "<level> <arm>".
func (a *ClassArmDetail) DisplayName() string {
	return a.ClassLevelName + " " + a.Name
}

// Class is the legacy flat class record owned directly by a school.
type Class struct {
	ID           string     `db:"id" json:"id"`
	SchoolID     string     `db:"school_id" json:"schoolId"`
	Name         string     `db:"name" json:"name"`
	Type         SchoolType `db:"type" json:"type"`
	ClassLevelID *string    `db:"class_level_id" json:"classLevelId,omitempty"`
	AcademicYear *string    `db:"academic_year" json:"academicYear,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}

// ClassDetail extends Class with the optional level name.
type ClassDetail struct {
	Class
	ClassLevelName *string `db:"class_level_name" json:"classLevelName,omitempty"`
}
