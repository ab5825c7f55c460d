package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/school-roster-api/pkg/database"
)

func migrateCmd(app *cliContext) *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				migrations, err := database.Migrations()
				if err != nil {
					return err
				}
				for _, m := range migrations {
					fmt.Fprintln(cmd.OutOrStdout(), m.Version)
				}
				return nil
			}

			if err := app.load(); err != nil {
				return err
			}
			db, err := database.NewPostgres(app.cfg.Database)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer db.Close() //nolint:errcheck

			applied, err := database.Migrate(cmd.Context(), db, app.logger)
			if err != nil {
				return err
			}
			app.logger.Info("migrations complete", zap.Strings("applied", applied))
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", len(applied))
			return nil
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "print embedded migration versions without connecting")
	return cmd
}
