package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/denormalize/internal/sqlite"
)

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <table> <id>",
		Short: "Get a row by id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *session) error {
				table, err := s.table(args[0])
				if err != nil {
					return err
				}
				e, err := table.Get(ctx, args[1])
				if err != nil {
					return fmt.Errorf("%s %s: %w", args[0], args[1], err)
				}
				return printRecord(cmd, e.(*sqlite.Record))
			})
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <table> [column=value ...]",
		Short: "List rows, oldest first",
		Long: `List prints the rows of a table whose columns equal every filter,
oldest first. "null" matches NULL.

Example:
  denorm list suppliers product_id=<product id>`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseAssignments(args[1:])
			if err != nil {
				return err
			}
			return withSession(cmd, func(ctx context.Context, s *session) error {
				table, err := s.table(args[0])
				if err != nil {
					return err
				}
				rows, err := table.Fetch(ctx, filter)
				if err != nil {
					return err
				}
				records := make([]*sqlite.Record, len(rows))
				for i, e := range rows {
					records[i] = e.(*sqlite.Record)
				}
				return printRecords(cmd, records)
			})
		},
	}
}

func newMappingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mapping <source table>",
		Short: "Print the denormalized column mapping of a source table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *session) error {
				m, err := s.engine.Mapping(args[0])
				if err != nil {
					return err
				}
				return printMapping(cmd, m)
			})
		},
	}
}
