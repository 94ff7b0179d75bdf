package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newCreateCmd() *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "create <table> [column=value ...]",
		Short: "Create a row",
		Long: `Create inserts a row and prints its id. Values are parsed according to
the column type; "null" stores NULL. Targets of denormalized relations are
updated after the row commits.

Example:
  denorm create products title=Widget
  denorm create suppliers --id 1 name=Acme status=1 product_id=<product id>`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := parseAssignments(args[1:])
			if err != nil {
				return err
			}
			return withSession(cmd, func(ctx context.Context, s *session) error {
				table, err := s.table(args[0])
				if err != nil {
					return err
				}
				if id != "" {
					if _, err := table.Get(ctx, id); err == nil {
						return fmt.Errorf("%w: %s %s already exists", errUsage, args[0], id)
					}
				}
				got, err := table.Set(ctx, id, data)
				if got != "" {
					printID(cmd, got)
				}
				return err
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "row id (default: generated UUID v7)")
	return cmd
}

func newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update <table> <id> column=value [column=value ...]",
		Short: "Update a row",
		Long: `Update changes columns of an existing row. When the row is the current
source of a denormalized target, the target is refreshed after the commit.

Example:
  denorm update suppliers 1 name="Acme Corp" status=2`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := parseAssignments(args[2:])
			if err != nil {
				return err
			}
			return withSession(cmd, func(ctx context.Context, s *session) error {
				table, err := s.table(args[0])
				if err != nil {
					return err
				}
				if _, err := table.Get(ctx, args[1]); err != nil {
					return fmt.Errorf("%s %s: %w", args[0], args[1], err)
				}
				got, err := table.Set(ctx, args[1], data)
				if got != "" {
					printID(cmd, got)
				}
				return err
			})
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <table> <id>",
		Short: "Delete a row",
		Long: `Delete removes a row. When the row is the current source of a
denormalized target, the newest remaining opted-in sibling takes its place, or
the target's denormalized columns are cleared. If that fails the row is kept.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *session) error {
				table, err := s.table(args[0])
				if err != nil {
					return err
				}
				if err := table.Delete(ctx, args[1]); err != nil {
					return fmt.Errorf("%s %s: %w", args[0], args[1], err)
				}
				printID(cmd, args[1])
				return nil
			})
		},
	}
}
