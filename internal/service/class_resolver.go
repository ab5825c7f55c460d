package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/school-roster-api/internal/models"
)

type schoolFinder interface {
	FindByIDOrSubdomain(ctx context.Context, ref string) (*models.School, error)
}

type classArmFinder interface {
	FindDetailByID(ctx context.Context, id string) (*models.ClassArmDetail, error)
}

type classFinder interface {
	FindBySchool(ctx context.Context, schoolID, id string) (*models.ClassDetail, error)
}

// ClassResolver turns a (school reference, class id) pair into a ClassTarget.
// A class id is tried as a class arm first and then as a legacy class of the same school.
type ClassResolver struct {
	schools schoolFinder
	arms    classArmFinder
	classes classFinder
	logger  *zap.Logger
}

// NewClassResolver constructs the resolver.
func NewClassResolver(schools schoolFinder, arms classArmFinder, classes classFinder, logger *zap.Logger) *ClassResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassResolver{schools: schools, arms: arms, classes: classes, logger: logger}
}

// ResolveSchool loads the school by id or subdomain.
func (r *ClassResolver) ResolveSchool(ctx context.Context, ref string) (*models.School, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, notFound("School not found")
	}
	school, err := r.schools.FindByIDOrSubdomain(ctx, ref)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("School not found")
		}
		return nil, internalError(err, "failed to load school")
	}
	return school, nil
}

// Resolve returns the class arm or class identified by classID within the school.
func (r *ClassResolver) Resolve(ctx context.Context, schoolRef, classID string) (*models.ClassTarget, error) {
	school, err := r.ResolveSchool(ctx, schoolRef)
	if err != nil {
		return nil, err
	}
	return r.ResolveInSchool(ctx, school, classID)
}

// ResolveInSchool resolves classID against an already loaded school.
func (r *ClassResolver) ResolveInSchool(ctx context.Context, school *models.School, classID string) (*models.ClassTarget, error) {
	classID = strings.TrimSpace(classID)
	if classID == "" {
		return nil, notFound("Class or ClassArm not found")
	}

	arm, err := r.arms.FindDetailByID(ctx, classID)
	switch {
	case err == nil:
		if arm.SchoolID == school.ID {
			return TargetFromArm(arm), nil
		}
		r.logger.Debug("class arm belongs to another school",
			zap.String("class_arm_id", classID),
			zap.String("school_id", school.ID))
	case !errors.Is(err, sql.ErrNoRows):
		return nil, internalError(err, "failed to load class arm")
	}

	class, err := r.classes.FindBySchool(ctx, school.ID, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("Class or ClassArm not found")
		}
		return nil, internalError(err, "failed to load class")
	}
	return TargetFromClass(class), nil
}

// TargetFromArm builds the target view of a class arm.
func TargetFromArm(arm *models.ClassArmDetail) *models.ClassTarget {
	levelID := arm.ClassLevelID
	levelName := arm.ClassLevelName
	active := arm.IsActive
	return &models.ClassTarget{
		Kind:           models.TargetClassArm,
		ID:             arm.ID,
		SchoolID:       arm.SchoolID,
		DisplayName:    arm.DisplayName(),
		Type:           arm.Type,
		AcademicYear:   arm.AcademicYear,
		IsActive:       &active,
		ClassLevelID:   &levelID,
		ClassLevelName: &levelName,
	}
}

// TargetFromClass builds the target view of a legacy class.
func TargetFromClass(class *models.ClassDetail) *models.ClassTarget {
	return &models.ClassTarget{
		Kind:           models.TargetClass,
		ID:             class.ID,
		SchoolID:       class.SchoolID,
		DisplayName:    class.Name,
		Type:           class.Type,
		AcademicYear:   class.AcademicYear,
		ClassLevelID:   class.ClassLevelID,
		ClassLevelName: class.ClassLevelName,
	}
}
