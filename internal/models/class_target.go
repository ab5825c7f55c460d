package models

// TargetKind tells which record a class id resolved to.
type TargetKind string

const (
	TargetClassArm TargetKind = "CLASS_ARM"
	TargetClass    TargetKind = "CLASS"
)

// ClassScope selects rows belonging to one class or one arm. Exactly one side is set.
type ClassScope struct {
	ClassID    *string
	ClassArmID *string
}

// ClassTarget is a class id resolved against a school.
type ClassTarget struct {
	Kind           TargetKind `json:"kind"`
	ID             string     `json:"id"`
	SchoolID       string     `json:"schoolId"`
	DisplayName    string     `json:"displayName"`
	Type           SchoolType `json:"type"`
	AcademicYear   *string    `json:"academicYear,omitempty"`
	IsActive       *bool      `json:"isActive,omitempty"`
	ClassLevelID   *string    `json:"classLevelId,omitempty"`
	ClassLevelName *string    `json:"classLevelName,omitempty"`
}

// IsArm reports whether the target is a class arm.
func (t *ClassTarget) IsArm() bool {
	return t.Kind == TargetClassArm
}

// Scope returns the column filter for rows attached to this target.
func (t *ClassTarget) Scope() ClassScope {
	id := t.ID
	if t.IsArm() {
		return ClassScope{ClassArmID: &id}
	}
	return ClassScope{ClassID: &id}
}
