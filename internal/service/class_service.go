package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/school-roster-api/internal/dto"
	"github.com/noah-isme/school-roster-api/internal/models"
)

type classLevelStore interface {
	ListBySchool(ctx context.Context, schoolID string) ([]models.ClassLevel, error)
	FindByID(ctx context.Context, schoolID, id string) (*models.ClassLevel, error)
	Create(ctx context.Context, level *models.ClassLevel) error
}

type classArmStore interface {
	ListBySchool(ctx context.Context, schoolID string) ([]models.ClassArmDetail, error)
	Create(ctx context.Context, arm *models.ClassArm) error
	UpdateName(ctx context.Context, id, name string) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id string) error
}

type classStore interface {
	ListBySchool(ctx context.Context, schoolID string) ([]models.ClassDetail, error)
	FindBySchool(ctx context.Context, schoolID, id string) (*models.ClassDetail, error)
	Create(ctx context.Context, class *models.Class) error
	Update(ctx context.Context, class *models.Class) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id string) error
}

type enrollmentStore interface {
	activeEnrollmentCounter
	CloseActiveByScope(ctx context.Context, exec sqlx.ExtContext, scope models.ClassScope, at time.Time) (int64, error)
}

// ClassService manages class levels, class arms and legacy classes of a school.
type ClassService struct {
	resolver    targetResolver
	levels      classLevelStore
	arms        classArmStore
	classes     classStore
	teachers    classTeacherLister
	enrollments enrollmentStore
	workload    workloadInvalidator
	db          txProvider
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewClassService constructs a class service. workload and db may be nil.
func NewClassService(
	resolver targetResolver,
	levels classLevelStore,
	arms classArmStore,
	classes classStore,
	teachers classTeacherLister,
	enrollments enrollmentStore,
	workload workloadInvalidator,
	db txProvider,
	validate *validator.Validate,
	logger *zap.Logger,
) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{
		resolver:    resolver,
		levels:      levels,
		arms:        arms,
		classes:     classes,
		teachers:    teachers,
		enrollments: enrollments,
		workload:    workload,
		db:          db,
		validator:   validate,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// ListLevels returns the class levels of a school.
func (s *ClassService) ListLevels(ctx context.Context, schoolRef string) ([]models.ClassLevel, error) {
	school, err := s.resolver.ResolveSchool(ctx, schoolRef)
	if err != nil {
		return nil, err
	}
	levels, err := s.levels.ListBySchool(ctx, school.ID)
	if err != nil {
		return nil, internalError(err, "failed to list class levels")
	}
	if levels == nil {
		levels = []models.ClassLevel{}
	}
	return levels, nil
}

// CreateLevel adds a class level of a type the school offers.
func (s *ClassService) CreateLevel(ctx context.Context, schoolRef string, req dto.CreateClassLevelRequest) (*models.ClassLevel, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid class level payload")
	}
	school, err := s.resolver.ResolveSchool(ctx, schoolRef)
	if err != nil {
		return nil, err
	}
	if !school.Offers(req.Type) {
		return nil, badRequest(fmt.Sprintf("School does not offer %s classes", req.Type))
	}
	level := &models.ClassLevel{SchoolID: school.ID, Name: strings.TrimSpace(req.Name), Type: req.Type, Level: req.Level}
	if err := s.levels.Create(ctx, level); err != nil {
		if mapped := mapConstraintError(err, fmt.Sprintf("Class level %s already exists", level.Name)); mapped != nil {
			return nil, mapped
		}
		return nil, internalError(err, "failed to create class level")
	}
	return level, nil
}

// List returns the school's class arms and legacy classes.
func (s *ClassService) List(ctx context.Context, schoolRef string) (*dto.ClassListResponse, error) {
	school, err := s.resolver.ResolveSchool(ctx, schoolRef)
	if err != nil {
		return nil, err
	}
	arms, err := s.arms.ListBySchool(ctx, school.ID)
	if err != nil {
		return nil, internalError(err, "failed to list class arms")
	}
	classes, err := s.classes.ListBySchool(ctx, school.ID)
	if err != nil {
		return nil, internalError(err, "failed to list classes")
	}
	resp := &dto.ClassListResponse{
		Arms:    make([]models.ClassTarget, 0, len(arms)),
		Classes: make([]models.ClassTarget, 0, len(classes)),
	}
	for i := range arms {
		resp.Arms = append(resp.Arms, *TargetFromArm(&arms[i]))
	}
	for i := range classes {
		resp.Classes = append(resp.Classes, *TargetFromClass(&classes[i]))
	}
	return resp, nil
}

// Create adds a class arm under a level, or a legacy class when no level is given.
func (s *ClassService) Create(ctx context.Context, schoolRef string, req dto.CreateClassRequest) (*models.ClassTarget, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid class payload")
	}
	school, err := s.resolver.ResolveSchool(ctx, schoolRef)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)

	if req.ClassLevelID != nil {
		level, err := s.loadLevel(ctx, school.ID, *req.ClassLevelID)
		if err != nil {
			return nil, err
		}
		arm := &models.ClassArm{ClassLevelID: level.ID, Name: name, AcademicYear: trimmedOrNil(req.AcademicYear), IsActive: true}
		if req.IsActive != nil {
			arm.IsActive = *req.IsActive
		}
		if err := s.arms.Create(ctx, arm); err != nil {
			if mapped := mapConstraintError(err, fmt.Sprintf("%s %s already exists", level.Name, name)); mapped != nil {
				return nil, mapped
			}
			return nil, internalError(err, "failed to create class arm")
		}
		s.logger.Info("class arm created", zap.String("school_id", school.ID), zap.String("class_arm_id", arm.ID))
		return TargetFromArm(&models.ClassArmDetail{ClassArm: *arm, SchoolID: school.ID, ClassLevelName: level.Name, Type: level.Type}), nil
	}

	if req.Type == nil {
		return nil, badRequest("Type is required when no class level is given")
	}
	if !school.Offers(*req.Type) {
		return nil, badRequest(fmt.Sprintf("School does not offer %s classes", *req.Type))
	}
	class := &models.Class{SchoolID: school.ID, Name: name, Type: *req.Type, AcademicYear: trimmedOrNil(req.AcademicYear)}
	if err := s.classes.Create(ctx, class); err != nil {
		if mapped := mapConstraintError(err, fmt.Sprintf("Class %s already exists", name)); mapped != nil {
			return nil, mapped
		}
		return nil, internalError(err, "failed to create class")
	}
	s.logger.Info("class created", zap.String("school_id", school.ID), zap.String("class_id", class.ID))
	return TargetFromClass(&models.ClassDetail{Class: *class}), nil
}

// Get returns the class with its teachers and active enrollment count.
func (s *ClassService) Get(ctx context.Context, schoolRef, classID string) (*models.ClassDetailView, error) {
	target, err := s.resolver.Resolve(ctx, schoolRef, classID)
	if err != nil {
		return nil, err
	}
	return loadClassDetail(ctx, s.teachers, s.enrollments, target)
}

// Update renames an arm, or patches name, level and academic year of a legacy class.
func (s *ClassService) Update(ctx context.Context, schoolRef, classID string, req dto.UpdateClassRequest) (*models.ClassDetailView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid class payload")
	}
	target, err := s.resolver.Resolve(ctx, schoolRef, classID)
	if err != nil {
		return nil, err
	}

	if target.IsArm() {
		if req.ClassLevelID != nil || req.AcademicYear != nil {
			return nil, badRequest("Only the name of a class arm can be changed")
		}
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if err := s.arms.UpdateName(ctx, target.ID, name); err != nil {
				return nil, s.writeError(err, fmt.Sprintf("%s %s already exists", derefOr(target.ClassLevelName, ""), name), "failed to update class arm")
			}
			target.DisplayName = strings.TrimSpace(derefOr(target.ClassLevelName, "") + " " + name)
		}
		return loadClassDetail(ctx, s.teachers, s.enrollments, target)
	}

	class, err := s.classes.FindBySchool(ctx, target.SchoolID, target.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("Class or ClassArm not found")
		}
		return nil, internalError(err, "failed to load class")
	}
	if req.Name != nil {
		class.Name = strings.TrimSpace(*req.Name)
	}
	if req.ClassLevelID != nil {
		level, err := s.loadLevel(ctx, target.SchoolID, *req.ClassLevelID)
		if err != nil {
			return nil, err
		}
		class.ClassLevelID = &level.ID
		class.ClassLevelName = &level.Name
	}
	if req.AcademicYear != nil {
		class.AcademicYear = trimmedOrNil(req.AcademicYear)
	}
	if err := s.classes.Update(ctx, &class.Class); err != nil {
		return nil, s.writeError(err, fmt.Sprintf("Class %s already exists", class.Name), "failed to update class")
	}
	return loadClassDetail(ctx, s.teachers, s.enrollments, TargetFromClass(class))
}

// Delete removes a class or arm. Active enrollments block the delete unless force is set,
// in which case they are closed in the same transaction.
func (s *ClassService) Delete(ctx context.Context, schoolRef, classID string, force bool) (*dto.DeleteClassResponse, error) {
	target, err := s.resolver.Resolve(ctx, schoolRef, classID)
	if err != nil {
		return nil, err
	}
	scope := target.Scope()
	resp := &dto.DeleteClassResponse{ID: target.ID, Kind: target.Kind}

	err = runInTx(ctx, s.db, func(exec sqlx.ExtContext) error {
		active, err := s.enrollments.CountActiveByScope(ctx, exec, scope)
		if err != nil {
			return internalError(err, "failed to count enrollments")
		}
		if active > 0 {
			if !force {
				return badRequest(fmt.Sprintf("%s has %d active enrollments; delete with force=true to close them", target.DisplayName, active))
			}
			closed, err := s.enrollments.CloseActiveByScope(ctx, exec, scope, s.now())
			if err != nil {
				return internalError(err, "failed to close enrollments")
			}
			resp.ClosedEnrollments = closed
		}
		if target.IsArm() {
			err = s.arms.Delete(ctx, exec, target.ID)
		} else {
			err = s.classes.Delete(ctx, exec, target.ID)
		}
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return notFound("Class or ClassArm not found")
			}
			if mapped := mapConstraintError(err, "Class is still referenced"); mapped != nil {
				return mapped
			}
			return internalError(err, "failed to delete class")
		}
		return nil
	})
	if err != nil {
		return nil, passThrough(err, "failed to delete class")
	}
	// timetable periods of the class are gone with it
	if s.workload != nil {
		s.workload.InvalidateSchool(ctx, target.SchoolID)
	}
	s.logger.Info("class deleted",
		zap.String("class_id", target.ID),
		zap.String("kind", string(target.Kind)),
		zap.Int64("closed_enrollments", resp.ClosedEnrollments))
	return resp, nil
}

func (s *ClassService) loadLevel(ctx context.Context, schoolID, levelID string) (*models.ClassLevel, error) {
	level, err := s.levels.FindByID(ctx, schoolID, strings.TrimSpace(levelID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("Class level not found")
		}
		return nil, internalError(err, "failed to load class level")
	}
	return level, nil
}

func (s *ClassService) writeError(err error, conflictMessage, internalMessage string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound("Class or ClassArm not found")
	}
	if mapped := mapConstraintError(err, conflictMessage); mapped != nil {
		return mapped
	}
	return internalError(err, internalMessage)
}

// trimmedOrNil trims value and maps blank to nil.
func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func derefOr(value *string, fallback string) string {
	if value == nil {
		return fallback
	}
	return *value
}
