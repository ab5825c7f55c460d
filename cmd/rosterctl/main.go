package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/school-roster-api/pkg/config"
	"github.com/noah-isme/school-roster-api/pkg/logger"
)

// cliContext holds lazily loaded dependencies shared by subcommands.
type cliContext struct {
	cfg    *config.Config
	logger *zap.Logger
}

func (c *cliContext) load() error {
	if c.cfg != nil {
		return nil
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	c.cfg = cfg
	c.logger = logr
	return nil
}

func newRootCmd() *cobra.Command {
	app := &cliContext{}
	root := &cobra.Command{
		Use:           "rosterctl",
		Short:         "Operator tooling for the school roster API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.logger != nil {
				_ = app.logger.Sync()
			}
		},
	}
	root.AddCommand(migrateCmd(app))
	root.AddCommand(autofillCmd())
	root.AddCommand(tokenCmd(app))
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
