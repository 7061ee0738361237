package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pt-run/pt/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter pt.toml in the current directory",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing pt.toml")
	rootCmd.AddCommand(initCmd)
}

const starterProject = `[project]
name = "my-project"
default_profile = "dev"

[env]
PYTHONUNBUFFERED = "1"

[tasks.hello]
cmd = "echo hello from pt"
description = "Sanity-check task"
tags = ["example"]

[profiles.dev]
[profiles.dev.env]
ENVIRONMENT = "development"
`

func runInit(cmd *cobra.Command, args []string) error {
	dir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	path := filepath.Join(dir, config.ProjectFileName)
	if !initForce {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	if err := os.WriteFile(path, []byte(starterProject), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	fmt.Printf("Created %s\n", path)
	fmt.Println("Run: pt run hello")
	return nil
}
