package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/school-roster-api/internal/dto"
	"github.com/noah-isme/school-roster-api/internal/models"
)

// Operation labels for class_teacher_operations_total.
const (
	operationAssign = "assign"
	operationRemove = "remove"
)

type targetResolver interface {
	ResolveSchool(ctx context.Context, ref string) (*models.School, error)
	Resolve(ctx context.Context, schoolRef, classID string) (*models.ClassTarget, error)
	ResolveInSchool(ctx context.Context, school *models.School, classID string) (*models.ClassTarget, error)
}

type teacherFinder interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

type classTeacherLister interface {
	ListByScope(ctx context.Context, exec sqlx.ExtContext, scope models.ClassScope) ([]models.ClassTeacherDetail, error)
}

type classTeacherStore interface {
	assignmentLookup
	classTeacherLister
	FindForTeacher(ctx context.Context, exec sqlx.ExtContext, teacherID string, scope models.ClassScope, subject *string) (*models.ClassTeacher, error)
	DemotePrimaries(ctx context.Context, exec sqlx.ExtContext, scope models.ClassScope) (int64, error)
	Create(ctx context.Context, exec sqlx.ExtContext, row *models.ClassTeacher) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id string) error
}

type activeEnrollmentCounter interface {
	CountActiveByScope(ctx context.Context, exec sqlx.ExtContext, scope models.ClassScope) (int, error)
}

// AssignmentNotifier receives assignment changes after they commit.
type AssignmentNotifier interface {
	NotifyAssigned(ctx context.Context, evt AssignmentEvent)
	NotifyRemoved(ctx context.Context, evt AssignmentEvent)
}

// ClassTeacherService assigns teachers to classes and arms.
type ClassTeacherService struct {
	resolver    targetResolver
	teachers    teacherFinder
	rows        classTeacherStore
	enrollments activeEnrollmentCounter
	db          txProvider
	rules       *AssignmentValidator
	notifier    AssignmentNotifier
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewClassTeacherService wires the service. db and notifier may be nil.
func NewClassTeacherService(
	resolver targetResolver,
	teachers teacherFinder,
	rows classTeacherStore,
	enrollments activeEnrollmentCounter,
	db txProvider,
	notifier AssignmentNotifier,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *ClassTeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassTeacherService{
		resolver:    resolver,
		teachers:    teachers,
		rows:        rows,
		enrollments: enrollments,
		db:          db,
		rules:       NewAssignmentValidator(rows),
		notifier:    notifier,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
	}
}

// List returns the resolved class with its teachers.
func (s *ClassTeacherService) List(ctx context.Context, schoolRef, classID string) (*models.ClassDetailView, error) {
	target, err := s.resolver.Resolve(ctx, schoolRef, classID)
	if err != nil {
		return nil, err
	}
	return loadClassDetail(ctx, s.rows, s.enrollments, target)
}

// Assign places a teacher on a class or arm and returns the updated class.
func (s *ClassTeacherService) Assign(ctx context.Context, schoolRef, classID string, req dto.AssignTeacherRequest) (*models.ClassDetailView, error) {
	view, err := s.assign(ctx, schoolRef, classID, req)
	s.metrics.RecordClassTeacherOperation(operationAssign, outcomeOf(err))
	return view, err
}

func (s *ClassTeacherService) assign(ctx context.Context, schoolRef, classID string, req dto.AssignTeacherRequest) (*models.ClassDetailView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid assignment payload")
	}
	target, err := s.resolver.Resolve(ctx, schoolRef, classID)
	if err != nil {
		return nil, err
	}
	teacher, err := s.loadTeacher(ctx, target.SchoolID, req.TeacherID)
	if err != nil {
		return nil, err
	}
	if !teacher.Active {
		return nil, badRequest("Teacher is inactive")
	}

	subject := trimmedOrNil(req.Subject)
	scope := target.Scope()
	row := &models.ClassTeacher{
		TeacherID:  teacher.ID,
		ClassID:    scope.ClassID,
		ClassArmID: scope.ClassArmID,
		Subject:    subject,
		IsPrimary:  req.IsPrimary,
	}

	err = runInTx(ctx, s.db, func(exec sqlx.ExtContext) error {
		if err := s.rules.Validate(ctx, exec, target, teacher.ID, AssignmentOptions{Subject: subject, IsPrimary: req.IsPrimary}); err != nil {
			return err
		}
		if req.IsPrimary && target.Type == models.SchoolTypePrimary {
			demoted, err := s.rows.DemotePrimaries(ctx, exec, scope)
			if err != nil {
				return internalError(err, "failed to demote form teacher")
			}
			if demoted > 0 {
				s.logger.Info("form teacher replaced", zap.String("class_id", target.ID), zap.Int64("demoted", demoted))
			}
		}
		if err := s.rows.Create(ctx, exec, row); err != nil {
			if mapped := mapConstraintError(err, fmt.Sprintf("Teacher is already assigned to %s%s", target.DisplayName, subjectSuffix(subject))); mapped != nil {
				return mapped
			}
			return internalError(err, "failed to assign teacher")
		}
		return nil
	})
	if err != nil {
		s.logger.Debug("assignment rejected",
			zap.String("teacher_id", teacher.ID),
			zap.String("class_id", target.ID),
			zap.Error(err))
		return nil, passThrough(err, "failed to assign teacher")
	}

	s.logger.Info("teacher assigned",
		zap.String("teacher_id", teacher.ID),
		zap.String("class_id", target.ID),
		zap.String("kind", string(target.Kind)),
		zap.Bool("is_primary", req.IsPrimary))
	if s.notifier != nil {
		s.notifier.NotifyAssigned(ctx, newAssignmentEvent(teacher, target, row))
	}
	return loadClassDetail(ctx, s.rows, s.enrollments, target)
}

// Remove deletes a teacher placement. A nil subject removes the teacher's oldest row on the class.
func (s *ClassTeacherService) Remove(ctx context.Context, schoolRef, classID, teacherID string, subject *string) (*models.ClassDetailView, error) {
	view, err := s.remove(ctx, schoolRef, classID, teacherID, subject)
	s.metrics.RecordClassTeacherOperation(operationRemove, outcomeOf(err))
	return view, err
}

func (s *ClassTeacherService) remove(ctx context.Context, schoolRef, classID, teacherID string, subject *string) (*models.ClassDetailView, error) {
	target, err := s.resolver.Resolve(ctx, schoolRef, classID)
	if err != nil {
		return nil, err
	}
	row, err := s.rows.FindForTeacher(ctx, nil, teacherID, target.Scope(), trimmedOrNil(subject))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("Teacher assignment not found")
		}
		return nil, internalError(err, "failed to load teacher assignment")
	}
	if err := s.rows.Delete(ctx, nil, row.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("Teacher assignment not found")
		}
		return nil, internalError(err, "failed to remove teacher assignment")
	}
	s.logger.Info("teacher removed", zap.String("teacher_id", teacherID), zap.String("class_id", target.ID))

	if s.notifier != nil {
		teacher, err := s.teachers.FindByID(ctx, teacherID)
		if err != nil {
			s.logger.Warn("skipping removal notification", zap.String("teacher_id", teacherID), zap.Error(err))
		} else {
			s.notifier.NotifyRemoved(ctx, newAssignmentEvent(teacher, target, row))
		}
	}
	return loadClassDetail(ctx, s.rows, s.enrollments, target)
}

func (s *ClassTeacherService) loadTeacher(ctx context.Context, schoolID, teacherID string) (*models.Teacher, error) {
	teacher, err := s.teachers.FindByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("Teacher not found")
		}
		return nil, internalError(err, "failed to load teacher")
	}
	if teacher.SchoolID != schoolID {
		return nil, notFound("Teacher not found")
	}
	return teacher, nil
}

// loadClassDetail reads the teachers and active enrollment count of a resolved target.
func loadClassDetail(ctx context.Context, rows classTeacherLister, enrollments activeEnrollmentCounter, target *models.ClassTarget) (*models.ClassDetailView, error) {
	scope := target.Scope()
	teachers, err := rows.ListByScope(ctx, nil, scope)
	if err != nil {
		return nil, internalError(err, "failed to list class teachers")
	}
	if teachers == nil {
		teachers = []models.ClassTeacherDetail{}
	}
	view := &models.ClassDetailView{ClassTarget: *target, Teachers: teachers}
	if enrollments != nil {
		count, err := enrollments.CountActiveByScope(ctx, nil, scope)
		if err != nil {
			return nil, internalError(err, "failed to count enrollments")
		}
		view.ActiveEnrollments = count
	}
	return view, nil
}

func newAssignmentEvent(teacher *models.Teacher, target *models.ClassTarget, row *models.ClassTeacher) AssignmentEvent {
	evt := AssignmentEvent{
		TeacherID:    teacher.ID,
		TeacherName:  teacher.FullName(),
		TeacherEmail: teacher.Email,
		SchoolID:     target.SchoolID,
		ClassID:      target.ID,
		ClassName:    target.DisplayName,
		Kind:         target.Kind,
		IsPrimary:    row.IsPrimary,
	}
	if row.Subject != nil {
		evt.Subject = *row.Subject
	}
	return evt
}
