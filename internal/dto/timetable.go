package dto

import "github.com/noah-isme/school-roster-api/internal/models"

// DaySlot is one row of a day layout.
type DaySlot struct {
	StartTime string            `json:"startTime" yaml:"startTime" validate:"required,len=5"`
	EndTime   string            `json:"endTime" yaml:"endTime" validate:"required,len=5"`
	Type      models.PeriodType `json:"type" yaml:"type" validate:"required,oneof=LESSON BREAK LUNCH ASSEMBLY"`
}

// PoolSubject is a subject or course the generator may place.
type PoolSubject struct {
	ID        string  `json:"id" yaml:"id" validate:"required"`
	Name      string  `json:"name,omitempty" yaml:"name"`
	Core      bool    `json:"core" yaml:"core"`
	TeacherID *string `json:"teacherId,omitempty" yaml:"teacherId"`
}

// PeriodPayload is a timetable row supplied by a client.
type PeriodPayload struct {
	DayOfWeek models.DayOfWeek  `json:"dayOfWeek" yaml:"dayOfWeek" validate:"required"`
	StartTime string            `json:"startTime" yaml:"startTime" validate:"required,len=5"`
	EndTime   string            `json:"endTime" yaml:"endTime" validate:"required,len=5"`
	Type      models.PeriodType `json:"type" yaml:"type" validate:"required,oneof=LESSON BREAK LUNCH ASSEMBLY"`
	SubjectID *string           `json:"subjectId,omitempty" yaml:"subjectId"`
	CourseID  *string           `json:"courseId,omitempty" yaml:"courseId"`
	TeacherID *string           `json:"teacherId,omitempty" yaml:"teacherId"`
}

// AutoFillRequest asks for a generated preview. Periods override the stored grid when present.
type AutoFillRequest struct {
	TermID      string          `json:"termId" yaml:"termId"`
	Pool        []PoolSubject   `json:"pool" yaml:"pool" validate:"required,min=1,dive"`
	Periods     []PeriodPayload `json:"periods,omitempty" yaml:"periods" validate:"omitempty,dive"`
	Layout      []DaySlot       `json:"layout,omitempty" yaml:"layout" validate:"omitempty,dive"`
	FreePeriods *int            `json:"freePeriods,omitempty" yaml:"freePeriods" validate:"omitempty,min=1,max=2"`
	Seed        *int64          `json:"seed,omitempty" yaml:"seed"`
}

// AutoFillResponse is the generated, unsaved timetable.
type AutoFillResponse struct {
	Target    models.ClassTarget       `json:"target"`
	TermID    string                   `json:"termId,omitempty"`
	Periods   []models.TimetablePeriod `json:"periods"`
	Generated int                      `json:"generated"`
	FreeSlots int                      `json:"freeSlots"`
	Warnings  []string                 `json:"warnings,omitempty"`
	Seed      int64                    `json:"seed"`
}

// InsertSpecialRowRequest adds a break, lunch or assembly row across the school week.
type InsertSpecialRowRequest struct {
	TermID    string            `json:"termId"`
	Type      models.PeriodType `json:"type" validate:"required,oneof=BREAK LUNCH ASSEMBLY"`
	StartTime string            `json:"startTime" validate:"required,len=5"`
	EndTime   string            `json:"endTime" validate:"required,len=5"`
}

// SaveTimetableRequest replaces the stored timetable of a class for one term.
type SaveTimetableRequest struct {
	TermID  string          `json:"termId"`
	Periods []PeriodPayload `json:"periods" validate:"dive"`
}

// TimetableView is the stored timetable of a class for one term.
type TimetableView struct {
	Target  models.ClassTarget       `json:"target"`
	TermID  string                   `json:"termId,omitempty"`
	Periods []models.TimetablePeriod `json:"periods"`
}
