package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/sqlhelper/internal/querysql"
)

// SelectOptions holds flags for the select command.
type SelectOptions struct {
	*RootOptions
	Fields    []string
	Where     string
	WhereFile string
	OrderBy   string
	Limit     int
	Offset    int
}

// NewSelectCommand creates the select command.
func NewSelectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SelectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "select <table>",
		Short: "Select rows matching a filter",
		Long: `Select rows from a table.

Example:
  sqlhelper select company --db app.db --fields id,name \
    --where '{left: postal, op: greater_than, right: 60000}' \
    --order-by 'name ASC' --limit 10`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelect(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Fields, "fields", nil, "columns to return (default *)")
	cmd.Flags().StringVar(&opts.Where, "where", "", "inline filter document (YAML or JSON)")
	cmd.Flags().StringVar(&opts.WhereFile, "where-file", "", "filter document file")
	cmd.Flags().StringVar(&opts.OrderBy, "order-by", "", "ORDER BY clause, with or without the keyword")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum rows (0 for no limit)")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "rows to skip")

	return cmd
}

func runSelect(opts *SelectOptions, table string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	filter, err := LoadFilter(opts.Where, opts.WhereFile)
	if err != nil {
		return outputError(formatter, err)
	}

	q := querysql.SelectQuery{
		Table:   table,
		Fields:  opts.Fields,
		Filter:  filter,
		OrderBy: opts.OrderBy,
		Limit:   opts.Limit,
	}
	if cmd.Flags().Changed("offset") {
		q.Offset = querysql.Offset(opts.Offset)
	}

	st, err := openStore(opts.RootOptions, formatter)
	if err != nil {
		return err
	}
	defer closeStore(opts.RootOptions, st)

	result, err := st.Select(cmd.Context(), q)
	if err != nil {
		return outputError(formatter, err)
	}
	formatter.VerboseLog("%d row(s)", result.Len())
	return formatter.Table(result)
}

// GetOptions holds flags for the get command.
type GetOptions struct {
	*RootOptions
	IDField string
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "get <table> <id>",
		Short:         "Fetch one row by id",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.IDField, "id-field", "", "id column (default: the table's primary key)")

	return cmd
}

func runGet(opts *GetOptions, table, id string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	st, err := openStore(opts.RootOptions, formatter)
	if err != nil {
		return err
	}
	defer closeStore(opts.RootOptions, st)

	idField := opts.IDField
	if idField == "" {
		idField, err = st.GetPrimaryKeyColumn(cmd.Context(), table)
		if err != nil {
			return outputError(formatter, err)
		}
		formatter.VerboseLog("Primary key of %s: %q", table, idField)
	}

	result, err := st.GetUniqueObjectByID(cmd.Context(), table, idField, id)
	if err != nil {
		return outputError(formatter, err)
	}
	return formatter.Table(result)
}
