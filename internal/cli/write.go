package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sqlhelper/internal/querysql"
	"github.com/roach88/sqlhelper/internal/store"
)

// WriteOptions holds flags for the insert, update and delete commands.
type WriteOptions struct {
	*RootOptions
	Values     string
	ValuesFile string
	Where      string
	WhereFile  string
}

// WriteResult is the outcome of a write command.
type WriteResult struct {
	Table    string `json:"table"`
	ID       *int64 `json:"id,omitempty"`
	Affected *int64 `json:"affected,omitempty"`
}

func (o *WriteOptions) addValueFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Values, "values", "", "inline column/value mapping (YAML or JSON)")
	cmd.Flags().StringVar(&o.ValuesFile, "values-file", "", "column/value mapping file")
}

func (o *WriteOptions) addWhereFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Where, "where", "", "inline filter document (YAML or JSON)")
	cmd.Flags().StringVar(&o.WhereFile, "where-file", "", "filter document file")
}

// NewInsertCommand creates the insert command.
func NewInsertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WriteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "insert <table>",
		Short: "Insert one row and print its id",
		Long: `Insert one row. Values are a mapping of column to scalar; column order
follows the document.

Example:
  sqlhelper insert company --db app.db --values '{name: acme, postal: 70000}'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInsert(opts, args[0], cmd)
		},
	}
	opts.addValueFlags(cmd)
	return cmd
}

func runInsert(opts *WriteOptions, table string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	fields, err := LoadValues(opts.Values, opts.ValuesFile)
	if err != nil {
		return outputError(formatter, err)
	}

	st, err := openStore(opts.RootOptions, formatter)
	if err != nil {
		return err
	}
	defer closeStore(opts.RootOptions, st)

	if err := checkColumns(cmd.Context(), st, table, fields); err != nil {
		return outputError(formatter, err)
	}

	id, err := st.Insert(cmd.Context(), table, fields)
	if err != nil {
		return outputError(formatter, err)
	}
	return formatter.Done(WriteResult{Table: table, ID: &id}, "Inserted into %s, id %d", table, id)
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WriteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update <table>",
		Short: "Update rows matching a filter",
		Long: `Update rows. Without a filter every row is updated.

Example:
  sqlhelper update company --db app.db --values '{name: renamed}' \
    --where '{left: id, op: equals, right: 3}'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(opts, args[0], cmd)
		},
	}
	opts.addValueFlags(cmd)
	opts.addWhereFlags(cmd)
	return cmd
}

func runUpdate(opts *WriteOptions, table string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	fields, err := LoadValues(opts.Values, opts.ValuesFile)
	if err != nil {
		return outputError(formatter, err)
	}
	filter, err := LoadFilter(opts.Where, opts.WhereFile)
	if err != nil {
		return outputError(formatter, err)
	}

	st, err := openStore(opts.RootOptions, formatter)
	if err != nil {
		return err
	}
	defer closeStore(opts.RootOptions, st)

	if err := checkColumns(cmd.Context(), st, table, fields); err != nil {
		return outputError(formatter, err)
	}

	n, err := st.Update(cmd.Context(), table, fields, filter)
	if err != nil {
		return outputError(formatter, err)
	}
	return formatter.Done(WriteResult{Table: table, Affected: &n}, "Updated %d row(s) in %s", n, table)
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WriteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "delete <table>",
		Short: "Delete rows matching a filter",
		Long: `Delete rows. A filter is required; there is no unfiltered delete.

Example:
  sqlhelper delete company --db app.db --where '{left: id, op: in, right: [1, 2]}'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(opts, args[0], cmd)
		},
	}
	opts.addWhereFlags(cmd)
	return cmd
}

func runDelete(opts *WriteOptions, table string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	filter, err := LoadFilter(opts.Where, opts.WhereFile)
	if err != nil {
		return outputError(formatter, err)
	}
	if filter == nil {
		return outputError(formatter, fmt.Errorf("delete from %s: %w", table, querysql.ErrMissingFilter))
	}

	st, err := openStore(opts.RootOptions, formatter)
	if err != nil {
		return err
	}
	defer closeStore(opts.RootOptions, st)

	n, err := st.Delete(cmd.Context(), table, filter)
	if err != nil {
		return outputError(formatter, err)
	}
	return formatter.Done(WriteResult{Table: table, Affected: &n}, "Deleted %d row(s) from %s", n, table)
}

// checkColumns rejects values for columns the table does not have. Tables
// that cannot be described are left to the database to reject.
func checkColumns(ctx context.Context, st *store.Store, table string, fields querysql.Fields) error {
	names, err := st.GetColumnNames(ctx, table)
	if err != nil || len(names) == 0 {
		return nil
	}

	known := make(map[string]bool, len(names))
	for _, n := range names {
		known[strings.ToLower(n)] = true
	}
	var unknown []string
	for _, name := range fields.Names() {
		if !known[strings.ToLower(strings.TrimSpace(name))] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return &LoadError{
			Code:    ErrCodeUnknownColumn,
			Message: fmt.Sprintf("table %s has no column(s): %s", table, strings.Join(unknown, ", ")),
		}
	}
	return nil
}
