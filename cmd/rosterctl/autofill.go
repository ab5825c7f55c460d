package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/school-roster-api/internal/dto"
	"github.com/noah-isme/school-roster-api/internal/models"
	"github.com/noah-isme/school-roster-api/internal/service"
)

// gridFile is the YAML input of the autofill command.
type gridFile struct {
	Class               string            `yaml:"class"`
	SchoolType          models.SchoolType `yaml:"schoolType"`
	dto.AutoFillRequest `yaml:",inline"`
}

func autofillCmd() *cobra.Command {
	var (
		seed        int64
		freePeriods int
	)
	cmd := &cobra.Command{
		Use:   "autofill <grid.yaml>",
		Short: "Preview a generated timetable from a YAML grid file",
		Long: `Reads a class grid and subject pool from YAML and prints the generated
timetable as JSON. Nothing is written to the database. Use "-" to read stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			grid, err := readGridFile(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("seed") {
				grid.Seed = &seed
			}
			if cmd.Flags().Changed("free") {
				grid.FreePeriods = &freePeriods
			}
			resp, err := previewGrid(grid)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for a reproducible preview")
	cmd.Flags().IntVar(&freePeriods, "free", 0, "free periods per day (1 or 2)")
	return cmd
}

func readGridFile(path string, stdin io.Reader) (*gridFile, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read grid file: %w", err)
	}
	var grid gridFile
	if err := yaml.Unmarshal(raw, &grid); err != nil {
		return nil, fmt.Errorf("parse grid file: %w", err)
	}
	grid.SchoolType = models.SchoolType(strings.ToUpper(string(grid.SchoolType)))
	if !grid.SchoolType.Valid() {
		return nil, fmt.Errorf("grid file: unknown schoolType %q", grid.SchoolType)
	}
	return &grid, nil
}

func previewGrid(grid *gridFile) (*dto.AutoFillResponse, error) {
	name := grid.Class
	if name == "" {
		name = "preview"
	}
	target := &models.ClassTarget{
		Kind:        models.TargetClass,
		ID:          name,
		DisplayName: name,
		Type:        grid.SchoolType,
	}
	return service.PreviewTimetable(service.NewTimetableGenerator(0), target, grid.AutoFillRequest, nil)
}
