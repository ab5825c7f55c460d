package dto

// AssignTeacherRequest attaches a teacher to a class or arm.
type AssignTeacherRequest struct {
	TeacherID string  `json:"teacherId" validate:"required"`
	Subject   *string `json:"subject" validate:"omitempty,max=120"`
	IsPrimary bool    `json:"isPrimary"`
}
