package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-roster-api/internal/models"
)

type schoolStub struct {
	items map[string]*models.School
}

func (s *schoolStub) FindByIDOrSubdomain(_ context.Context, ref string) (*models.School, error) {
	for _, school := range s.items {
		if school.ID == ref || school.Subdomain == ref {
			cp := *school
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

type armStub struct {
	items map[string]*models.ClassArmDetail
	err   error
}

func (s *armStub) FindDetailByID(_ context.Context, id string) (*models.ClassArmDetail, error) {
	if s.err != nil {
		return nil, s.err
	}
	if arm, ok := s.items[id]; ok {
		cp := *arm
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

type classStub struct {
	items map[string]*models.ClassDetail
}

func (s *classStub) FindBySchool(_ context.Context, schoolID, id string) (*models.ClassDetail, error) {
	if class, ok := s.items[id]; ok && class.SchoolID == schoolID {
		cp := *class
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

type teacherStub struct {
	items map[string]*models.Teacher
}

func (s *teacherStub) FindByID(_ context.Context, id string) (*models.Teacher, error) {
	if teacher, ok := s.items[id]; ok {
		cp := *teacher
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

// rosterFixture is a school with one PRIMARY, one SECONDARY and one TERTIARY arm plus a legacy class.
type rosterFixture struct {
	school   *models.School
	other    *models.School
	schools  *schoolStub
	arms     *armStub
	classes  *classStub
	teachers *teacherStub
	resolver *ClassResolver
}

func newRosterFixture() *rosterFixture {
	school := &models.School{ID: "s1", Name: "Hill Academy", Subdomain: "hill", SchoolTypes: []string{"PRIMARY", "SECONDARY", "TERTIARY"}}
	other := &models.School{ID: "s2", Name: "Vale School", Subdomain: "vale", SchoolTypes: []string{"PRIMARY"}}
	year := "2024/2025"
	arms := &armStub{items: map[string]*models.ClassArmDetail{
		"p1a": {ClassArm: models.ClassArm{ID: "p1a", ClassLevelID: "lp1", Name: "A", IsActive: true}, SchoolID: "s1", ClassLevelName: "Primary 1", Type: models.SchoolTypePrimary},
		"p1b": {ClassArm: models.ClassArm{ID: "p1b", ClassLevelID: "lp1", Name: "B", IsActive: true}, SchoolID: "s1", ClassLevelName: "Primary 1", Type: models.SchoolTypePrimary},
		"j1g": {ClassArm: models.ClassArm{ID: "j1g", ClassLevelID: "lj1", Name: "Gold", AcademicYear: &year, IsActive: true}, SchoolID: "s1", ClassLevelName: "JSS 1", Type: models.SchoolTypeSecondary},
		"y1x": {ClassArm: models.ClassArm{ID: "y1x", ClassLevelID: "ly1", Name: "X", IsActive: true}, SchoolID: "s1", ClassLevelName: "Year 1", Type: models.SchoolTypeTertiary},
		"v1a": {ClassArm: models.ClassArm{ID: "v1a", ClassLevelID: "lv1", Name: "A", IsActive: true}, SchoolID: "s2", ClassLevelName: "Basic 1", Type: models.SchoolTypePrimary},
	}}
	classes := &classStub{items: map[string]*models.ClassDetail{
		"c1":  {Class: models.Class{ID: "c1", SchoolID: "s1", Name: "Basic 2", Type: models.SchoolTypePrimary, AcademicYear: &year}},
		"v1a": {Class: models.Class{ID: "v1a", SchoolID: "s1", Name: "Legacy V1A", Type: models.SchoolTypeSecondary}},
	}}
	teachers := &teacherStub{items: map[string]*models.Teacher{
		"t1": {ID: "t1", SchoolID: "s1", FirstName: "Ada", LastName: "Obi", Email: "ada@example.com", Subjects: []string{"Mathematics"}, Active: true},
		"t2": {ID: "t2", SchoolID: "s1", FirstName: "Bola", LastName: "Ade", Email: "bola@example.com", Subjects: []string{"English"}, Active: true},
		"t3": {ID: "t3", SchoolID: "s1", FirstName: "Chi", LastName: "Eze", Email: "chi@example.com", Active: false},
		"t9": {ID: "t9", SchoolID: "s2", FirstName: "Dayo", LastName: "Ola", Email: "dayo@example.com", Active: true},
	}}
	schools := &schoolStub{items: map[string]*models.School{"s1": school, "s2": other}}
	return &rosterFixture{
		school:   school,
		other:    other,
		schools:  schools,
		arms:     arms,
		classes:  classes,
		teachers: teachers,
		resolver: NewClassResolver(schools, arms, classes, nil),
	}
}

func (f *rosterFixture) target(id string) *models.ClassTarget {
	if arm, ok := f.arms.items[id]; ok && arm.SchoolID == f.school.ID {
		return TargetFromArm(arm)
	}
	return TargetFromClass(f.classes.items[id])
}

// memClassTeachers is an in-memory class_teachers table.
type memClassTeachers struct {
	fixture   *rosterFixture
	rows      []models.ClassTeacher
	createErr error
	seq       int
}

func newMemClassTeachers(f *rosterFixture) *memClassTeachers {
	return &memClassTeachers{fixture: f}
}

func scopeKey(scope models.ClassScope) string {
	if scope.ClassArmID != nil {
		return "arm:" + *scope.ClassArmID
	}
	if scope.ClassID != nil {
		return "class:" + *scope.ClassID
	}
	return ""
}

func rowScope(row models.ClassTeacher) models.ClassScope {
	return models.ClassScope{ClassID: row.ClassID, ClassArmID: row.ClassArmID}
}

func sameSubject(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (m *memClassTeachers) rowTarget(row models.ClassTeacher) *models.ClassTarget {
	if row.ClassArmID != nil {
		return m.fixture.target(*row.ClassArmID)
	}
	return m.fixture.target(*row.ClassID)
}

func (m *memClassTeachers) FindExact(_ context.Context, _ sqlx.ExtContext, teacherID string, scope models.ClassScope, subject *string) (*models.ClassTeacher, error) {
	for _, row := range m.rows {
		if row.TeacherID == teacherID && scopeKey(rowScope(row)) == scopeKey(scope) && sameSubject(row.Subject, subject) {
			cp := row
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memClassTeachers) FindForTeacher(_ context.Context, _ sqlx.ExtContext, teacherID string, scope models.ClassScope, subject *string) (*models.ClassTeacher, error) {
	for _, row := range m.rows {
		if row.TeacherID != teacherID || scopeKey(rowScope(row)) != scopeKey(scope) {
			continue
		}
		if subject == nil || sameSubject(row.Subject, subject) {
			cp := row
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memClassTeachers) FindPrimaryPlacementElsewhere(_ context.Context, _ sqlx.ExtContext, teacherID string, scope models.ClassScope) (*models.PrimaryPlacement, error) {
	for _, row := range m.rows {
		if row.TeacherID != teacherID || scopeKey(rowScope(row)) == scopeKey(scope) {
			continue
		}
		target := m.rowTarget(row)
		if target.Type == models.SchoolTypePrimary {
			return &models.PrimaryPlacement{ClassTeacherID: row.ID, ClassID: row.ClassID, ClassArmID: row.ClassArmID, DisplayName: target.DisplayName}, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memClassTeachers) CountByScope(_ context.Context, _ sqlx.ExtContext, scope models.ClassScope) (int, error) {
	count := 0
	for _, row := range m.rows {
		if scopeKey(rowScope(row)) == scopeKey(scope) {
			count++
		}
	}
	return count, nil
}

func (m *memClassTeachers) FindPrimaryHolder(_ context.Context, _ sqlx.ExtContext, scope models.ClassScope, excludeTeacherID string) (*models.ClassTeacher, error) {
	for _, row := range m.rows {
		if scopeKey(rowScope(row)) == scopeKey(scope) && row.IsPrimary && row.TeacherID != excludeTeacherID {
			cp := row
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memClassTeachers) FindSubjectHolder(_ context.Context, _ sqlx.ExtContext, scope models.ClassScope, subject, excludeTeacherID string) (*models.ClassTeacher, error) {
	for _, row := range m.rows {
		if scopeKey(rowScope(row)) == scopeKey(scope) && row.Subject != nil && *row.Subject == subject && row.TeacherID != excludeTeacherID {
			cp := row
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memClassTeachers) DemotePrimaries(_ context.Context, _ sqlx.ExtContext, scope models.ClassScope) (int64, error) {
	var demoted int64
	for i := range m.rows {
		if scopeKey(rowScope(m.rows[i])) == scopeKey(scope) && m.rows[i].IsPrimary {
			m.rows[i].IsPrimary = false
			demoted++
		}
	}
	return demoted, nil
}

func (m *memClassTeachers) Create(_ context.Context, _ sqlx.ExtContext, row *models.ClassTeacher) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.seq++
	row.ID = fmt.Sprintf("ct%d", m.seq)
	row.CreatedAt = time.Date(2024, 9, 1, 8, 0, m.seq, 0, time.UTC)
	m.rows = append(m.rows, *row)
	return nil
}

func (m *memClassTeachers) Delete(_ context.Context, _ sqlx.ExtContext, id string) error {
	for i, row := range m.rows {
		if row.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *memClassTeachers) ListByScope(_ context.Context, _ sqlx.ExtContext, scope models.ClassScope) ([]models.ClassTeacherDetail, error) {
	var out []models.ClassTeacherDetail
	for _, row := range m.rows {
		if scopeKey(rowScope(row)) != scopeKey(scope) {
			continue
		}
		detail := models.ClassTeacherDetail{ClassTeacher: row}
		if teacher, ok := m.fixture.teachers.items[row.TeacherID]; ok {
			detail.TeacherFirstName = teacher.FirstName
			detail.TeacherLastName = teacher.LastName
			detail.TeacherEmail = teacher.Email
		}
		out = append(out, detail)
	}
	return out, nil
}

// seed inserts a row directly, bypassing validation.
func (m *memClassTeachers) seed(teacherID, targetID string, subject string, primary bool) {
	target := m.fixture.target(targetID)
	scope := target.Scope()
	row := models.ClassTeacher{TeacherID: teacherID, ClassID: scope.ClassID, ClassArmID: scope.ClassArmID, IsPrimary: primary}
	if strings.TrimSpace(subject) != "" {
		row.Subject = &subject
	}
	_ = m.Create(context.Background(), nil, &row)
}

type enrollmentCounterStub struct {
	counts map[string]int
	closed map[string]int64
}

func (s *enrollmentCounterStub) CountActiveByScope(_ context.Context, _ sqlx.ExtContext, scope models.ClassScope) (int, error) {
	return s.counts[scopeKey(scope)], nil
}

func (s *enrollmentCounterStub) CloseActiveByScope(_ context.Context, _ sqlx.ExtContext, scope models.ClassScope, _ time.Time) (int64, error) {
	n := int64(s.counts[scopeKey(scope)])
	if s.closed == nil {
		s.closed = map[string]int64{}
	}
	s.closed[scopeKey(scope)] += n
	s.counts[scopeKey(scope)] = 0
	return n, nil
}

type notifierStub struct {
	assigned []AssignmentEvent
	removed  []AssignmentEvent
}

func (n *notifierStub) NotifyAssigned(_ context.Context, evt AssignmentEvent) {
	n.assigned = append(n.assigned, evt)
}

func (n *notifierStub) NotifyRemoved(_ context.Context, evt AssignmentEvent) {
	n.removed = append(n.removed, evt)
}
