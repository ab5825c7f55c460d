package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-roster-api/internal/models"
	appErrors "github.com/noah-isme/school-roster-api/pkg/errors"
	"github.com/noah-isme/school-roster-api/pkg/response"
)

// SchoolParam is the route parameter holding a school id or subdomain.
const SchoolParam = "schoolId"

// TenantGuard keeps school-scoped tokens inside their own school.
// SUPER_ADMIN tokens may address any school; other tokens must name the school in the path
// by id or subdomain.
func TenantGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := ClaimsFromContext(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			return
		}
		if claims.Role == models.RoleSuperAdmin {
			c.Next()
			return
		}
		ref := strings.TrimSpace(c.Param(SchoolParam))
		if ref == "" || (ref != claims.SchoolID && !strings.EqualFold(ref, claims.Subdomain)) {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "token is not valid for this school"))
			return
		}
		c.Next()
	}
}
