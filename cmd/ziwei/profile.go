package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ziwei/internal/store"
)

func profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage stored birth profiles",
	}
	cmd.AddCommand(profileAddCmd())
	cmd.AddCommand(profileListCmd())
	cmd.AddCommand(profileShowCmd())
	cmd.AddCommand(profileDeleteCmd())
	cmd.AddCommand(profileSearchCmd())
	return cmd
}

// withDB loads the project config, opens the store and runs fn.
func withDB(fn func(ctx context.Context, db store.Store) error) error {
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

	return fn(ctx, db)
}

func profileAddCmd() *cobra.Command {
	var flags birthFlags
	var tags []string
	var notes string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Store a birth profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if name == "" {
				return fmt.Errorf("name is required")
			}
			birth, err := flags.birth()
			if err != nil {
				return err
			}
			return withDB(func(ctx context.Context, db store.Store) error {
				if err := db.UpsertProfile(ctx, store.ProfileInput{
					Name:  name,
					Birth: birth,
					Tags:  tags,
					Notes: notes,
				}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s.\n", name)
				return nil
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Tag to attach (repeatable)")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes")
	return cmd
}

func profileListCmd() *cobra.Command {
	var tag string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(ctx context.Context, db store.Store) error {
				profiles, err := db.ListProfiles(ctx, tag)
				if err != nil {
					return err
				}
				if len(profiles) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No profiles found.")
					return nil
				}
				tw := newTable(cmd.OutOrStdout())
				fmt.Fprintln(tw, "NAME\tCALENDAR\tDATE\tTAGS")
				for _, p := range profiles {
					fmt.Fprintf(tw, "%s\t%s\t%04d-%02d-%02d\t%s\n",
						p.Name, p.Calendar, p.Year, p.Month, p.Day, orDash(strings.Join(p.Tags, ",")))
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&tag, "tag", "", "Only list profiles with this tag")
	return cmd
}

func profileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show a stored profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(ctx context.Context, db store.Store) error {
				p, err := db.GetProfile(ctx, args[0])
				if err != nil {
					return fmt.Errorf("profile %q: %w", args[0], err)
				}
				w := cmd.OutOrStdout()
				b := p.Birth
				leap := ""
				if b.LeapMonth {
					leap = " (leap month)"
				}
				fmt.Fprintf(w, "Name:     %s\n", p.Name)
				fmt.Fprintf(w, "Birth:    %04d-%02d-%02d %s%s\n", b.Year, b.Month, b.Day, b.Calendar, leap)
				fmt.Fprintf(w, "Hour:     %d\n", b.HourBranch)
				fmt.Fprintf(w, "Gender:   %s\n", b.Gender)
				fmt.Fprintf(w, "Tags:     %s\n", orDash(strings.Join(p.Tags, ", ")))
				if p.SourceFile != "" {
					fmt.Fprintf(w, "Source:   %s\n", p.SourceFile)
				}
				if p.Notes != "" {
					fmt.Fprintf(w, "\n%s\n", p.Notes)
				}
				return nil
			})
		},
	}
}

func profileDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a stored profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(ctx context.Context, db store.Store) error {
				deleted, err := db.DeleteProfile(ctx, args[0])
				if err != nil {
					return err
				}
				if !deleted {
					return fmt.Errorf("profile %q: %w", args[0], store.ErrNotFound)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s.\n", args[0])
				return nil
			})
		},
	}
}

func profileSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <text>",
		Short: "Search profiles by name, tags and notes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return withDB(func(ctx context.Context, db store.Store) error {
				results, err := db.SearchProfiles(ctx, query)
				if err != nil {
					return err
				}
				if len(results) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No matches found.")
					return nil
				}
				for _, r := range results {
					fmt.Fprintf(cmd.OutOrStdout(), "%s [%s] score=%.2f\n", r.Name, strings.Join(r.Tags, ","), r.Score)
					if r.Snippet != "" {
						fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", r.Snippet)
					}
				}
				return nil
			})
		},
	}
}
