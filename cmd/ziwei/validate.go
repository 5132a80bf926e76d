package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"ziwei/internal/config"
	"ziwei/internal/validate"
)

func validateCmd() *cobra.Command {
	var kbOnly bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check stored profiles chart cleanly and report knowledge base gaps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cfg, err := loadOptionalConfig()
			if err != nil {
				return err
			}
			kb, err := loadKnowledgeBase(cfg)
			if err != nil {
				return err
			}

			var profiles validate.ProfileSource
			if !kbOnly {
				if cfg == nil {
					return fmt.Errorf("no %s found; pass --config or --kb-only", config.DefaultPath)
				}
				db, err := openDB(ctx, cfg)
				if err != nil {
					return err
				}
				defer db.Close(ctx)
				profiles = db
			}

			report, err := validate.Run(ctx, newEngine(cfg), profiles, kb)
			if err != nil {
				return err
			}
			return printReport(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().BoolVar(&kbOnly, "kb-only", false, "Only check the knowledge base")
	return cmd
}

func printReport(w io.Writer, report *validate.Report) error {
	var errorIssues []validate.Issue
	var warnIssues []validate.Issue
	for _, issue := range report.Issues {
		switch issue.Severity {
		case validate.SeverityError:
			errorIssues = append(errorIssues, issue)
		case validate.SeverityWarn:
			warnIssues = append(warnIssues, issue)
		}
	}

	if len(errorIssues) == 0 && len(warnIssues) == 0 {
		fmt.Fprintf(w, "No issues found in %d profiles.\n", report.Profiles)
		return nil
	}

	if len(errorIssues) > 0 {
		fmt.Fprintf(w, "Errors (%d):\n", len(errorIssues))
		printIssues(w, errorIssues)
	}
	if len(warnIssues) > 0 {
		if len(errorIssues) > 0 {
			fmt.Fprintln(w, "")
		}
		fmt.Fprintf(w, "Warnings (%d):\n", len(warnIssues))
		printIssues(w, warnIssues)
	}

	if len(errorIssues) > 0 {
		return fmt.Errorf("validation found errors")
	}
	return nil
}

func printIssues(w io.Writer, issues []validate.Issue) {
	for _, issue := range issues {
		location := issue.Profile
		if location == "" {
			location = "knowledge base"
		}
		if issue.FilePath != "" {
			location = fmt.Sprintf("%s (%s)", location, issue.FilePath)
		}
		fmt.Fprintf(w, "  - %s: %s (%s)\n", location, issue.Message, issue.Code)
	}
}
