package models

import (
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestClassTargetScope(t *testing.T) {
	arm := &ClassTarget{Kind: TargetClassArm, ID: "arm-1"}
	scope := arm.Scope()
	if assert.NotNil(t, scope.ClassArmID) {
		assert.Equal(t, "arm-1", *scope.ClassArmID)
	}
	assert.Nil(t, scope.ClassID)

	class := &ClassTarget{Kind: TargetClass, ID: "class-1"}
	scope = class.Scope()
	if assert.NotNil(t, scope.ClassID) {
		assert.Equal(t, "class-1", *scope.ClassID)
	}
	assert.Nil(t, scope.ClassArmID)
}

func TestSchoolOffers(t *testing.T) {
	school := &School{SchoolTypes: pq.StringArray{"PRIMARY", "SECONDARY"}}
	assert.True(t, school.Offers(SchoolTypeSecondary))
	assert.False(t, school.Offers(SchoolTypeTertiary))
}

func TestTeacherTeachesIgnoresCase(t *testing.T) {
	teacher := &Teacher{FirstName: "Ada", LastName: "Obi", Subjects: pq.StringArray{"Mathematics", " Physics "}}
	assert.True(t, teacher.Teaches("mathematics"))
	assert.True(t, teacher.Teaches("PHYSICS"))
	assert.False(t, teacher.Teaches("Chemistry"))
	assert.Equal(t, "Ada Obi", teacher.FullName())
}

func TestIsEmptyLesson(t *testing.T) {
	blank := ""
	subject := "math"
	assert.True(t, (&TimetablePeriod{Type: PeriodLesson}).IsEmptyLesson())
	assert.True(t, (&TimetablePeriod{Type: PeriodLesson, SubjectID: &blank}).IsEmptyLesson())
	assert.False(t, (&TimetablePeriod{Type: PeriodLesson, SubjectID: &subject}).IsEmptyLesson())
	assert.False(t, (&TimetablePeriod{Type: PeriodBreak}).IsEmptyLesson())
}

func TestDayOfWeek(t *testing.T) {
	assert.True(t, Friday.IsWeekday())
	assert.False(t, Saturday.IsWeekday())
	assert.False(t, DayOfWeek("FUNDAY").Valid())
}
