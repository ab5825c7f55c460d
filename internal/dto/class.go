package dto

import "github.com/noah-isme/school-roster-api/internal/models"

// CreateClassLevelRequest registers a class level for a school.
type CreateClassLevelRequest struct {
	Name  string            `json:"name" validate:"required,max=100"`
	Type  models.SchoolType `json:"type" validate:"required,oneof=PRIMARY SECONDARY TERTIARY"`
	Level int               `json:"level" validate:"min=0,max=100"`
}

// CreateClassRequest creates a class arm when ClassLevelID is set, a legacy class otherwise.
// IsActive applies to arms and defaults to true.
type CreateClassRequest struct {
	Name         string             `json:"name" validate:"required,max=100"`
	ClassLevelID *string            `json:"classLevelId" validate:"omitempty,min=1"`
	Type         *models.SchoolType `json:"type" validate:"omitempty,oneof=PRIMARY SECONDARY TERTIARY"`
	AcademicYear *string            `json:"academicYear" validate:"omitempty,max=20"`
	IsActive     *bool              `json:"isActive"`
}

// UpdateClassRequest patches a class or arm. Arms accept Name only.
type UpdateClassRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=100"`
	ClassLevelID *string `json:"classLevelId" validate:"omitempty,min=1"`
	AcademicYear *string `json:"academicYear" validate:"omitempty,max=20"`
}

// ClassListResponse lists both class arms and legacy classes of a school.
type ClassListResponse struct {
	Arms    []models.ClassTarget `json:"arms"`
	Classes []models.ClassTarget `json:"classes"`
}

// DeleteClassResponse reports what a delete did.
type DeleteClassResponse struct {
	ID                string            `json:"id"`
	Kind              models.TargetKind `json:"kind"`
	ClosedEnrollments int64             `json:"closedEnrollments"`
}
