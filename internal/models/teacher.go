package models

import (
	"strings"
	"time"

	"github.com/lib/pq"
)

// Teacher is a staff member of one school.
type Teacher struct {
	ID        string         `db:"id" json:"id"`
	SchoolID  string         `db:"school_id" json:"schoolId"`
	FirstName string         `db:"first_name" json:"firstName"`
	LastName  string         `db:"last_name" json:"lastName"`
	Email     string         `db:"email" json:"email"`
	Subjects  pq.StringArray `db:"subjects" json:"subjects"`
	Active    bool           `db:"active" json:"active"`
	CreatedAt time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time      `db:"updated_at" json:"updatedAt"`
}

// FullName joins first and last name.
func (t *Teacher) FullName() string {
	return strings.TrimSpace(t.FirstName + " " + t.LastName)
}

// Teaches reports whether subject is one of the teacher's registered subjects, ignoring case.
func (t *Teacher) Teaches(subject string) bool {
	subject = strings.TrimSpace(subject)
	for _, s := range t.Subjects {
		if strings.EqualFold(strings.TrimSpace(s), subject) {
			return true
		}
	}
	return false
}
