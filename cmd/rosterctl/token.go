package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/school-roster-api/internal/models"
	"github.com/noah-isme/school-roster-api/internal/service"
)

func tokenCmd(app *cliContext) *cobra.Command {
	var (
		claims models.JWTClaims
		role   string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token signed with JWT_SECRET for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.load(); err != nil {
				return err
			}
			claims.Role = models.UserRole(strings.ToUpper(role))
			switch claims.Role {
			case models.RoleSuperAdmin, models.RoleSchoolAdmin, models.RoleTeacher:
			default:
				return fmt.Errorf("unknown role %q", role)
			}
			if claims.Role != models.RoleSuperAdmin && claims.SchoolID == "" {
				return fmt.Errorf("--school is required for %s", claims.Role)
			}
			signed, err := service.NewTokenVerifier(app.cfg.JWT.Secret, app.cfg.JWT.Issuer).Sign(claims, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}
	cmd.Flags().StringVar(&claims.UserID, "user", "rosterctl", "user id claim")
	cmd.Flags().StringVar(&claims.Email, "email", "", "email claim")
	cmd.Flags().StringVar(&claims.SchoolID, "school", "", "school id claim")
	cmd.Flags().StringVar(&claims.Subdomain, "subdomain", "", "school subdomain claim")
	cmd.Flags().StringVar(&role, "role", string(models.RoleSchoolAdmin), "SUPER_ADMIN, SCHOOL_ADMIN or TEACHER")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}
