package service

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/school-roster-api/internal/dto"
	"github.com/noah-isme/school-roster-api/internal/models"
	"github.com/noah-isme/school-roster-api/pkg/export"
)

type timetableStore interface {
	ListByScope(ctx context.Context, exec sqlx.ExtContext, scope models.ClassScope, termID string) ([]models.TimetablePeriod, error)
	DeleteByScope(ctx context.Context, exec sqlx.ExtContext, scope models.ClassScope, termID string) (int64, error)
	InsertMany(ctx context.Context, exec sqlx.ExtContext, periods []models.TimetablePeriod) error
	FindTeacherClashes(ctx context.Context, exec sqlx.ExtContext, schoolID, termID string, scope models.ClassScope, teacherIDs []string) ([]models.TeacherClash, error)
}

type workloadInvalidator interface {
	InvalidateSchool(ctx context.Context, schoolID string)
}

// ExportedFile is a rendered download.
type ExportedFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// TimetableService reads, generates and stores class timetables.
type TimetableService struct {
	resolver  targetResolver
	periods   timetableStore
	generator *TimetableGenerator
	workload  workloadInvalidator
	db        txProvider
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimetableService wires the service. workload and db may be nil.
func NewTimetableService(
	resolver targetResolver,
	periods timetableStore,
	generator *TimetableGenerator,
	workload workloadInvalidator,
	db txProvider,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *TimetableService {
	if generator == nil {
		generator = NewTimetableGenerator(0)
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{
		resolver:  resolver,
		periods:   periods,
		generator: generator,
		workload:  workload,
		db:        db,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// List returns the stored timetable of a class for one term.
func (s *TimetableService) List(ctx context.Context, schoolRef, classID, termID string) (*dto.TimetableView, error) {
	target, err := s.resolver.Resolve(ctx, schoolRef, classID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, target, strings.TrimSpace(termID))
}

// AutoFill generates a preview without persisting it.
func (s *TimetableService) AutoFill(ctx context.Context, schoolRef, classID string, req dto.AutoFillRequest) (*dto.AutoFillResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid autofill payload")
	}
	target, err := s.resolver.Resolve(ctx, schoolRef, classID)
	if err != nil {
		return nil, err
	}

	var stored []models.TimetablePeriod
	if len(req.Periods) == 0 {
		stored, err = s.periods.ListByScope(ctx, nil, target.Scope(), strings.TrimSpace(req.TermID))
		if err != nil {
			return nil, internalError(err, "failed to load timetable")
		}
	}

	start := time.Now()
	resp, err := PreviewTimetable(s.generator, target, req, stored)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordTimetableGeneration(resp.Generated, time.Since(start))

	s.logger.Debug("timetable generated",
		zap.String("class_id", target.ID),
		zap.Int("generated", resp.Generated),
		zap.Int("free", resp.FreeSlots),
		zap.Int64("seed", resp.Seed))
	return resp, nil
}

// PreviewTimetable fills the grid of target without touching storage. Periods in req take
// precedence over stored. A missing seed is taken from the clock and echoed back.
func PreviewTimetable(generator *TimetableGenerator, target *models.ClassTarget, req dto.AutoFillRequest, stored []models.TimetablePeriod) (*dto.AutoFillResponse, error) {
	termID := strings.TrimSpace(req.TermID)
	existing := stored
	if len(req.Periods) > 0 {
		var err error
		existing, err = periodsFromPayload(req.Periods, target, termID)
		if err != nil {
			return nil, err
		}
	}

	seed := time.Now().UnixNano()
	if req.Seed != nil {
		seed = *req.Seed
	}
	opts := GenerateOptions{Rand: rand.New(rand.NewSource(seed))}
	if req.FreePeriods != nil {
		opts.FreePeriods = *req.FreePeriods
	}

	result, err := generator.Generate(existing, req.Pool, target.Type, req.Layout, opts)
	if err != nil {
		return nil, err
	}
	stampPeriods(result.Periods, target, termID)

	return &dto.AutoFillResponse{
		Target:    *target,
		TermID:    termID,
		Periods:   result.Periods,
		Generated: result.Generated,
		FreeSlots: result.FreeSlots,
		Warnings:  result.Warnings,
		Seed:      seed,
	}, nil
}

// InsertSpecialRow stores a BREAK, LUNCH or ASSEMBLY row on every weekday.
func (s *TimetableService) InsertSpecialRow(ctx context.Context, schoolRef, classID string, req dto.InsertSpecialRowRequest) (*dto.TimetableView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid special row payload")
	}
	if err := validateRange(req.StartTime, req.EndTime); err != nil {
		return nil, badRequest(err.Error())
	}
	target, err := s.resolver.Resolve(ctx, schoolRef, classID)
	if err != nil {
		return nil, err
	}
	termID := strings.TrimSpace(req.TermID)

	rows := make([]models.TimetablePeriod, 0, len(models.Weekdays))
	for _, day := range models.Weekdays {
		rows = append(rows, models.TimetablePeriod{DayOfWeek: day, StartTime: req.StartTime, EndTime: req.EndTime, Type: req.Type})
	}
	stampPeriods(rows, target, termID)

	err = runInTx(ctx, s.db, func(exec sqlx.ExtContext) error {
		stored, err := s.periods.ListByScope(ctx, exec, target.Scope(), termID)
		if err != nil {
			return internalError(err, "failed to load timetable")
		}
		for _, p := range stored {
			if p.DayOfWeek.IsWeekday() && overlaps(p.StartTime, p.EndTime, req.StartTime, req.EndTime) {
				return conflict(fmt.Sprintf("%s %s-%s already holds a %s period", p.DayOfWeek, p.StartTime, p.EndTime, p.Type))
			}
		}
		if err := s.periods.InsertMany(ctx, exec, rows); err != nil {
			if mapped := mapConstraintError(err, fmt.Sprintf("A period already overlaps %s-%s", req.StartTime, req.EndTime)); mapped != nil {
				return mapped
			}
			return internalError(err, "failed to insert special row")
		}
		return nil
	})
	if err != nil {
		return nil, passThrough(err, "failed to insert special row")
	}
	return s.view(ctx, target, termID)
}

// Save replaces the stored timetable of a class for one term.
func (s *TimetableService) Save(ctx context.Context, schoolRef, classID string, req dto.SaveTimetableRequest) (*dto.TimetableView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid timetable payload")
	}
	target, err := s.resolver.Resolve(ctx, schoolRef, classID)
	if err != nil {
		return nil, err
	}
	termID := strings.TrimSpace(req.TermID)

	periods, err := periodsFromPayload(req.Periods, target, termID)
	if err != nil {
		return nil, err
	}
	if err := checkLessonKinds(periods, target.Type); err != nil {
		return nil, err
	}

	err = runInTx(ctx, s.db, func(exec sqlx.ExtContext) error {
		if err := s.checkTeacherClashes(ctx, exec, target, termID, periods); err != nil {
			return err
		}
		if _, err := s.periods.DeleteByScope(ctx, exec, target.Scope(), termID); err != nil {
			return internalError(err, "failed to clear timetable")
		}
		if len(periods) == 0 {
			return nil
		}
		if err := s.periods.InsertMany(ctx, exec, periods); err != nil {
			if mapped := mapConstraintError(err, "Timetable has conflicting periods"); mapped != nil {
				return mapped
			}
			return internalError(err, "failed to save timetable")
		}
		return nil
	})
	if err != nil {
		return nil, passThrough(err, "failed to save timetable")
	}

	if s.workload != nil {
		s.workload.InvalidateSchool(ctx, target.SchoolID)
	}
	s.logger.Info("timetable saved", zap.String("class_id", target.ID), zap.String("term_id", termID), zap.Int("periods", len(periods)))

	SortPeriods(periods)
	return &dto.TimetableView{Target: *target, TermID: termID, Periods: periods}, nil
}

// Export renders the stored timetable as a day-by-time grid.
func (s *TimetableService) Export(ctx context.Context, schoolRef, classID, termID, format string) (*ExportedFile, error) {
	renderer, err := export.ForFormat(format)
	if err != nil {
		return nil, badRequest(err.Error())
	}
	view, err := s.List(ctx, schoolRef, classID, termID)
	if err != nil {
		return nil, err
	}
	body, err := renderer.Render(timetableDataset(view))
	if err != nil {
		return nil, internalError(err, "failed to render timetable")
	}
	name := strings.ToLower(strings.ReplaceAll(view.Target.DisplayName, " ", "-"))
	if view.TermID != "" {
		name += "-" + view.TermID
	}
	return &ExportedFile{
		Filename:    fmt.Sprintf("timetable-%s.%s", name, renderer.Extension()),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}

func (s *TimetableService) view(ctx context.Context, target *models.ClassTarget, termID string) (*dto.TimetableView, error) {
	periods, err := s.periods.ListByScope(ctx, nil, target.Scope(), termID)
	if err != nil {
		return nil, internalError(err, "failed to load timetable")
	}
	if periods == nil {
		periods = []models.TimetablePeriod{}
	}
	return &dto.TimetableView{Target: *target, TermID: termID, Periods: periods}, nil
}

func (s *TimetableService) checkTeacherClashes(ctx context.Context, exec sqlx.ExtContext, target *models.ClassTarget, termID string, periods []models.TimetablePeriod) error {
	booked := make(map[string]struct{})
	var teacherIDs []string
	for _, p := range periods {
		if p.Type != models.PeriodLesson || p.TeacherID == nil {
			continue
		}
		if _, ok := booked[*p.TeacherID]; !ok {
			teacherIDs = append(teacherIDs, *p.TeacherID)
		}
		booked[*p.TeacherID] = struct{}{}
	}
	if len(teacherIDs) == 0 {
		return nil
	}
	clashes, err := s.periods.FindTeacherClashes(ctx, exec, target.SchoolID, termID, target.Scope(), teacherIDs)
	if err != nil {
		return internalError(err, "failed to check teacher availability")
	}
	for _, p := range periods {
		if p.Type != models.PeriodLesson || p.TeacherID == nil {
			continue
		}
		for _, c := range clashes {
			if c.TeacherID == *p.TeacherID && c.DayOfWeek == p.DayOfWeek && overlaps(c.StartTime, c.EndTime, p.StartTime, p.EndTime) {
				return conflict(fmt.Sprintf("Teacher %s is already booked on %s at %s in another class", *p.TeacherID, p.DayOfWeek, c.StartTime))
			}
		}
	}
	return nil
}

// periodsFromPayload converts and validates client periods.
func periodsFromPayload(payload []dto.PeriodPayload, target *models.ClassTarget, termID string) ([]models.TimetablePeriod, error) {
	seen := make(map[string]struct{}, len(payload))
	periods := make([]models.TimetablePeriod, 0, len(payload))
	for _, item := range payload {
		day := models.DayOfWeek(strings.ToUpper(strings.TrimSpace(string(item.DayOfWeek))))
		if !day.Valid() {
			return nil, badRequest(fmt.Sprintf("Invalid day of week %q", item.DayOfWeek))
		}
		if !item.Type.Valid() {
			return nil, badRequest(fmt.Sprintf("Invalid period type %q", item.Type))
		}
		if err := validateRange(item.StartTime, item.EndTime); err != nil {
			return nil, badRequest(fmt.Sprintf("%s: %s", day, err.Error()))
		}
		key := string(day) + "|" + item.StartTime
		if _, dup := seen[key]; dup {
			return nil, badRequest(fmt.Sprintf("Two periods start on %s at %s", day, item.StartTime))
		}
		seen[key] = struct{}{}

		period := models.TimetablePeriod{
			DayOfWeek: day,
			StartTime: item.StartTime,
			EndTime:   item.EndTime,
			Type:      item.Type,
		}
		if item.Type == models.PeriodLesson {
			period.SubjectID = trimmedOrNil(item.SubjectID)
			period.CourseID = trimmedOrNil(item.CourseID)
			period.TeacherID = trimmedOrNil(item.TeacherID)
		}
		periods = append(periods, period)
	}
	if a, b, found := firstOverlap(periods); found {
		return nil, badRequest(fmt.Sprintf("%s %s-%s overlaps %s-%s", a.DayOfWeek, a.StartTime, a.EndTime, b.StartTime, b.EndTime))
	}
	stampPeriods(periods, target, termID)
	return periods, nil
}

// checkLessonKinds rejects subjects on course-based classes and courses on subject-based ones.
func checkLessonKinds(periods []models.TimetablePeriod, schoolType models.SchoolType) error {
	for _, p := range periods {
		if p.Type != models.PeriodLesson {
			continue
		}
		if schoolType.UsesCourses() && p.SubjectID != nil {
			return badRequest(fmt.Sprintf("%s %s: %s classes schedule courses, not subjects", p.DayOfWeek, p.StartTime, schoolType))
		}
		if !schoolType.UsesCourses() && p.CourseID != nil {
			return badRequest(fmt.Sprintf("%s %s: %s classes schedule subjects, not courses", p.DayOfWeek, p.StartTime, schoolType))
		}
	}
	return nil
}

func stampPeriods(periods []models.TimetablePeriod, target *models.ClassTarget, termID string) {
	scope := target.Scope()
	for i := range periods {
		periods[i].SchoolID = target.SchoolID
		periods[i].ClassID = scope.ClassID
		periods[i].ClassArmID = scope.ClassArmID
		periods[i].TermID = termID
	}
}

var exportDays = []struct {
	day    models.DayOfWeek
	header string
}{
	{models.Monday, "Monday"},
	{models.Tuesday, "Tuesday"},
	{models.Wednesday, "Wednesday"},
	{models.Thursday, "Thursday"},
	{models.Friday, "Friday"},
}

func timetableDataset(view *dto.TimetableView) export.Dataset {
	headers := []string{"Time"}
	for _, d := range exportDays {
		headers = append(headers, d.header)
	}

	rowsBySlot := make(map[string]map[string]string)
	var slots []string
	for _, p := range view.Periods {
		if !p.DayOfWeek.IsWeekday() {
			continue
		}
		slot := p.StartTime + "-" + p.EndTime
		row, ok := rowsBySlot[slot]
		if !ok {
			row = map[string]string{"Time": slot}
			rowsBySlot[slot] = row
			slots = append(slots, slot)
		}
		for _, d := range exportDays {
			if d.day == p.DayOfWeek {
				row[d.header] = periodLabel(p)
			}
		}
		if p.Type.IsSpecial() {
			row[export.ShadeKey] = "1"
		}
	}
	sort.Strings(slots)

	rows := make([]map[string]string, 0, len(slots))
	for _, slot := range slots {
		rows = append(rows, rowsBySlot[slot])
	}
	title := "Timetable " + view.Target.DisplayName
	if view.TermID != "" {
		title += " (" + view.TermID + ")"
	}
	return export.Dataset{Title: title, Headers: headers, Rows: rows}
}

func periodLabel(p models.TimetablePeriod) string {
	if p.Type.IsSpecial() {
		return string(p.Type)
	}
	label := "Free"
	switch {
	case p.SubjectID != nil:
		label = *p.SubjectID
	case p.CourseID != nil:
		label = *p.CourseID
	}
	if p.TeacherID != nil {
		label += " (" + *p.TeacherID + ")"
	}
	return label
}
