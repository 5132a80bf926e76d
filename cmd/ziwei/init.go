package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"ziwei/internal/config"
)

const exampleProfile = `---
title: Example Person
type: profile
birth_date: 1990-01-27
birth_time: "00:30"
gender: female
tags: [example]
---

Replace this file with real birth records.
`

func initCmd() *cobra.Command {
	var projectName string
	var dsn string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a new ziwei project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(projectName) == "" {
				return fmt.Errorf("--name is required")
			}
			if err := runInit(".", projectName, dsn); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s and profiles/.\n", config.DefaultPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&projectName, "name", "", "Project name")
	cmd.Flags().StringVar(&dsn, "dsn", "sqlite://./ziwei.db", "Database DSN (sqlite:// or postgres://)")
	return cmd
}

func runInit(dir, projectName, dsn string) error {
	configPath := filepath.Join(dir, config.DefaultPath)
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("%s already exists", configPath)
	}

	configContents := fmt.Sprintf(`project: %s
version: 1

database:
  dsn: %s

chart:
  main_star_layout: fixed_offset

knowledge_base:
  paths: []

log:
  level: info

profiles:
  paths:
    - ./profiles/
  exclude:
    - ./profiles/archive/

batch:
  concurrency: 4
`, projectName, dsn)
	if err := os.WriteFile(configPath, []byte(configContents), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", configPath, err)
	}

	profilesDir := filepath.Join(dir, "profiles")
	if err := os.MkdirAll(profilesDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", profilesDir, err)
	}
	examplePath := filepath.Join(profilesDir, "example.md")
	if _, err := os.Stat(examplePath); err == nil {
		return nil
	}
	if err := os.WriteFile(examplePath, []byte(exampleProfile), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", examplePath, err)
	}
	return nil
}
