package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-roster-api/internal/models"
)

type assignmentLookup interface {
	FindExact(ctx context.Context, exec sqlx.ExtContext, teacherID string, scope models.ClassScope, subject *string) (*models.ClassTeacher, error)
	FindPrimaryPlacementElsewhere(ctx context.Context, exec sqlx.ExtContext, teacherID string, scope models.ClassScope) (*models.PrimaryPlacement, error)
	CountByScope(ctx context.Context, exec sqlx.ExtContext, scope models.ClassScope) (int, error)
	FindPrimaryHolder(ctx context.Context, exec sqlx.ExtContext, scope models.ClassScope, excludeTeacherID string) (*models.ClassTeacher, error)
	FindSubjectHolder(ctx context.Context, exec sqlx.ExtContext, scope models.ClassScope, subject, excludeTeacherID string) (*models.ClassTeacher, error)
}

// AssignmentOptions carries the optional parts of an assignment.
type AssignmentOptions struct {
	Subject   *string
	IsPrimary bool
}

// AssignmentValidator applies the per school type placement rules before a ClassTeacher row is written.
type AssignmentValidator struct {
	rows assignmentLookup
}

// NewAssignmentValidator constructs the validator.
func NewAssignmentValidator(rows assignmentLookup) *AssignmentValidator {
	return &AssignmentValidator{rows: rows}
}

// Validate returns nil when the assignment may be inserted, or a BAD_REQUEST/CONFLICT error otherwise.
// exec lets the checks run inside the caller's transaction.
func (v *AssignmentValidator) Validate(ctx context.Context, exec sqlx.ExtContext, target *models.ClassTarget, teacherID string, opts AssignmentOptions) error {
	subject := trimmedOrNil(opts.Subject)
	scope := target.Scope()

	existing, err := v.rows.FindExact(ctx, exec, teacherID, scope, subject)
	if err == nil && existing != nil {
		return conflict(fmt.Sprintf("Teacher is already assigned to %s%s", target.DisplayName, subjectSuffix(subject)))
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return internalError(err, "failed to check existing assignment")
	}

	switch target.Type {
	case models.SchoolTypePrimary:
		return v.validatePrimary(ctx, exec, target, teacherID, opts.IsPrimary)
	case models.SchoolTypeSecondary:
		return v.validateSecondary(ctx, exec, target, teacherID, subject, opts.IsPrimary)
	default:
		return nil
	}
}

func (v *AssignmentValidator) validatePrimary(ctx context.Context, exec sqlx.ExtContext, target *models.ClassTarget, teacherID string, isPrimary bool) error {
	scope := target.Scope()

	placement, err := v.rows.FindPrimaryPlacementElsewhere(ctx, exec, teacherID, scope)
	if err == nil && placement != nil {
		return conflict(fmt.Sprintf("Teacher is already assigned to primary class %s", placement.DisplayName))
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return internalError(err, "failed to check primary placements")
	}

	count, err := v.rows.CountByScope(ctx, exec, scope)
	if err != nil {
		return internalError(err, "failed to count class teachers")
	}
	if count > 0 && !isPrimary {
		return badRequest(fmt.Sprintf("%s already has a teacher; primary classes allow one teacher, assign as form teacher to replace", target.DisplayName))
	}
	return nil
}

func (v *AssignmentValidator) validateSecondary(ctx context.Context, exec sqlx.ExtContext, target *models.ClassTarget, teacherID string, subject *string, isPrimary bool) error {
	scope := target.Scope()

	if isPrimary {
		holder, err := v.rows.FindPrimaryHolder(ctx, exec, scope, teacherID)
		if err == nil && holder != nil {
			return conflict(fmt.Sprintf("%s already has a form teacher", target.DisplayName))
		}
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return internalError(err, "failed to check form teacher")
		}
		return nil
	}

	if subject == nil {
		return badRequest("Subject is required for subject teacher assignments")
	}
	holder, err := v.rows.FindSubjectHolder(ctx, exec, scope, *subject, teacherID)
	if err == nil && holder != nil {
		return conflict(fmt.Sprintf("%s is already taught in %s by another teacher", *subject, target.DisplayName))
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return internalError(err, "failed to check subject teacher")
	}
	return nil
}

func subjectSuffix(subject *string) string {
	if subject == nil {
		return ""
	}
	return " for " + *subject
}
