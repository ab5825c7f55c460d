package models

import "time"

// ClassTeacher links a teacher to exactly one class or class arm.
type ClassTeacher struct {
	ID         string    `db:"id" json:"id"`
	TeacherID  string    `db:"teacher_id" json:"teacherId"`
	ClassID    *string   `db:"class_id" json:"classId,omitempty"`
	ClassArmID *string   `db:"class_arm_id" json:"classArmId,omitempty"`
	Subject    *string   `db:"subject" json:"subject,omitempty"`
	IsPrimary  bool      `db:"is_primary" json:"isPrimary"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// ClassTeacherDetail is a ClassTeacher with teacher identity for responses.
type ClassTeacherDetail struct {
	ClassTeacher
	TeacherFirstName string `db:"teacher_first_name" json:"teacherFirstName"`
	TeacherLastName  string `db:"teacher_last_name" json:"teacherLastName"`
	TeacherEmail     string `db:"teacher_email" json:"teacherEmail"`
}

// PrimaryPlacement describes a teacher's existing row on some PRIMARY class or arm.
type PrimaryPlacement struct {
	ClassTeacherID string  `db:"class_teacher_id"`
	ClassID        *string `db:"class_id"`
	ClassArmID     *string `db:"class_arm_id"`
	DisplayName    string  `db:"display_name"`
}

// ClassDetailView is returned by class reads and assignment changes.
type ClassDetailView struct {
	ClassTarget
	Teachers          []ClassTeacherDetail `json:"teachers"`
	ActiveEnrollments int                  `json:"activeEnrollments"`
}
