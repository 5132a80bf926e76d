package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"ziwei/internal/ingest"
)

func importCmd() *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Synchronise stored profiles with profile markdown files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := openDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close(ctx)

			result, err := ingest.Run(ctx, cfg, db, ingest.Options{Full: full, Logger: logger})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "Import complete.")
			fmt.Fprintf(w, "  Profiles upserted: %d\n", result.ProfilesUpserted)
			fmt.Fprintf(w, "  Profiles removed:  %d\n", result.ProfilesRemoved)
			fmt.Fprintf(w, "  Files skipped:     %d\n", result.FilesSkipped)

			if len(result.Errors) > 0 {
				fmt.Fprintf(w, "\nErrors (%d):\n", len(result.Errors))
				for _, item := range result.Errors {
					fmt.Fprintf(w, "  - %v\n", item)
				}
				return fmt.Errorf("import completed with errors")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "Re-import every file, ignoring stored hashes")
	return cmd
}
