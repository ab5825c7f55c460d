package models

import (
	"time"

	"github.com/lib/pq"
)

// SchoolType drives which assignment and timetable rules apply to a class.
type SchoolType string

const (
	SchoolTypePrimary   SchoolType = "PRIMARY"
	SchoolTypeSecondary SchoolType = "SECONDARY"
	SchoolTypeTertiary  SchoolType = "TERTIARY"
)

// Valid reports whether t is a known school type.
func (t SchoolType) Valid() bool {
	switch t {
	case SchoolTypePrimary, SchoolTypeSecondary, SchoolTypeTertiary:
		return true
	}
	return false
}

// UsesCourses reports whether lessons reference courses instead of subjects.
func (t SchoolType) UsesCourses() bool {
	return t == SchoolTypeTertiary
}

// School is the tenant every class, teacher and timetable belongs to.
type School struct {
	ID          string         `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	Subdomain   string         `db:"subdomain" json:"subdomain"`
	SchoolTypes pq.StringArray `db:"school_types" json:"schoolTypes"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updatedAt"`
}

// Offers reports whether the school runs classes of the given type.
func (s *School) Offers(t SchoolType) bool {
	for _, raw := range s.SchoolTypes {
		if SchoolType(raw) == t {
			return true
		}
	}
	return false
}
