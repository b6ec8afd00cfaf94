package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rybla/sva-engine/pkg/adventure"
)

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [files...]",
		Short: "Validate world seed files",
		Long:  "Parse and build the given world seed YAML files, reporting any structural problems. With no arguments, validates every seed under DATA_DIR/worlds.",
		RunE:  runValidate,
	}
	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	files := args
	if len(files) == 0 {
		dataDir := os.Getenv("DATA_DIR")
		if dataDir == "" {
			dataDir = "./data"
		}
		matches, err := filepath.Glob(filepath.Join(dataDir, "worlds", "*.y*ml"))
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			return fmt.Errorf("no seed files found under %s", filepath.Join(dataDir, "worlds"))
		}
		files = matches
	}

	failures := 0
	for _, file := range files {
		if err := validateSeedFile(file); err != nil {
			fmt.Fprintf(os.Stdout, "  - %s: %v\n", file, err)
			failures++
			continue
		}
		fmt.Fprintf(os.Stdout, "  - %s: ok\n", file)
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d seed files failed validation", failures, len(files))
	}
	return nil
}

func validateSeedFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	seed, err := adventure.ParseSeed(data)
	if err != nil {
		return err
	}
	if _, err := seed.Build(); err != nil {
		return err
	}
	return nil
}
