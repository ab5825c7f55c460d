package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-roster-api/internal/models"
	appErrors "github.com/noah-isme/school-roster-api/pkg/errors"
	"github.com/noah-isme/school-roster-api/pkg/response"
)

// Role groups used by the router.
var (
	Admins      = []models.UserRole{models.RoleSuperAdmin, models.RoleSchoolAdmin}
	SchoolStaff = []models.UserRole{models.RoleSuperAdmin, models.RoleSchoolAdmin, models.RoleTeacher}
)

// RequireRoles rejects requests whose token role is not in roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claims := ClaimsFromContext(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			return
		}
		c.Next()
	}
}
