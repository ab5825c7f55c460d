package models

import "time"

// DayOfWeek is stored upper-case, e.g. MONDAY.
type DayOfWeek string

const (
	Monday    DayOfWeek = "MONDAY"
	Tuesday   DayOfWeek = "TUESDAY"
	Wednesday DayOfWeek = "WEDNESDAY"
	Thursday  DayOfWeek = "THURSDAY"
	Friday    DayOfWeek = "FRIDAY"
	Saturday  DayOfWeek = "SATURDAY"
	Sunday    DayOfWeek = "SUNDAY"
)

// Weekdays lists the school days timetables are generated for.
var Weekdays = []DayOfWeek{Monday, Tuesday, Wednesday, Thursday, Friday}

// Valid reports whether d names a day of the week.
func (d DayOfWeek) Valid() bool {
	switch d {
	case Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday:
		return true
	}
	return false
}

// IsWeekday reports whether d is Monday to Friday.
func (d DayOfWeek) IsWeekday() bool {
	return d.Valid() && d != Saturday && d != Sunday
}

// PeriodType tags a timetable row.
type PeriodType string

const (
	PeriodLesson   PeriodType = "LESSON"
	PeriodBreak    PeriodType = "BREAK"
	PeriodLunch    PeriodType = "LUNCH"
	PeriodAssembly PeriodType = "ASSEMBLY"
)

// Valid reports whether p is a known period type.
func (p PeriodType) Valid() bool {
	switch p {
	case PeriodLesson, PeriodBreak, PeriodLunch, PeriodAssembly:
		return true
	}
	return false
}

// IsSpecial reports whether p is a non-lesson row.
func (p PeriodType) IsSpecial() bool {
	return p == PeriodBreak || p == PeriodLunch || p == PeriodAssembly
}

// TimetablePeriod is one slot of a class or arm timetable. Times are HH:MM.
type TimetablePeriod struct {
	ID         string     `db:"id" json:"id,omitempty"`
	SchoolID   string     `db:"school_id" json:"schoolId,omitempty"`
	ClassID    *string    `db:"class_id" json:"classId,omitempty"`
	ClassArmID *string    `db:"class_arm_id" json:"classArmId,omitempty"`
	TermID     string     `db:"term_id" json:"termId,omitempty"`
	DayOfWeek  DayOfWeek  `db:"day_of_week" json:"dayOfWeek"`
	StartTime  string     `db:"start_time" json:"startTime"`
	EndTime    string     `db:"end_time" json:"endTime"`
	Type       PeriodType `db:"type" json:"type"`
	SubjectID  *string    `db:"subject_id" json:"subjectId,omitempty"`
	CourseID   *string    `db:"course_id" json:"courseId,omitempty"`
	TeacherID  *string    `db:"teacher_id" json:"teacherId,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt,omitempty"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updatedAt,omitempty"`
}

// IsEmptyLesson reports whether the period is a lesson with nothing assigned.
func (p *TimetablePeriod) IsEmptyLesson() bool {
	return p.Type == PeriodLesson && isBlank(p.SubjectID) && isBlank(p.CourseID)
}

// TeacherClash is another class's lesson booking the same teacher.
type TeacherClash struct {
	TeacherID  string    `db:"teacher_id"`
	DayOfWeek  DayOfWeek `db:"day_of_week"`
	StartTime  string    `db:"start_time"`
	EndTime    string    `db:"end_time"`
	ClassID    *string   `db:"class_id"`
	ClassArmID *string   `db:"class_arm_id"`
}

func isBlank(v *string) bool {
	return v == nil || *v == ""
}
