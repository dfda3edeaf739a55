package cli

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/roach88/sqlhelper/internal/schema"
	"github.com/roach88/sqlhelper/internal/store"
)

// NewTablesCommand creates the tables command.
func NewTablesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tables",
		Short:         "List user tables",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTables(rootOpts, cmd)
		},
	}
	return cmd
}

func runTables(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	st, err := openStore(opts, formatter)
	if err != nil {
		return err
	}
	defer closeStore(opts, st)

	tables, err := st.ListTables(cmd.Context())
	if err != nil {
		return outputError(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]any{"tables": tables})
	}
	if len(tables) == 0 {
		fmt.Fprintln(formatter.Writer, "(no tables)")
		return nil
	}
	for _, t := range tables {
		fmt.Fprintln(formatter.Writer, t)
	}
	return nil
}

// NewDescribeCommand creates the describe command.
func NewDescribeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe [table]",
		Short: "Describe the columns of one table or of every table",
		Long: `Describe table columns: name, data type, primary key and nullability.

Declared types are mapped onto SQLite affinities (Integer, Text, Blob, Real,
Numeric). Without a table argument every user table is described.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			table := ""
			if len(args) == 1 {
				table = args[0]
			}
			return runDescribe(rootOpts, table, cmd)
		},
	}
	return cmd
}

func runDescribe(opts *RootOptions, table string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	st, err := openStore(opts, formatter)
	if err != nil {
		return err
	}
	defer closeStore(opts, st)

	var tables []store.TableDescription
	if table != "" {
		columns, err := st.DescribeTable(cmd.Context(), table)
		if err != nil {
			return outputError(formatter, err)
		}
		if len(columns) == 0 {
			return outputErrorCode(formatter, ErrCodeNotFound, fmt.Errorf("table not found: %s", table))
		}
		tables = []store.TableDescription{{Name: table, Columns: columns}}
	} else {
		tables, err = st.DescribeDatabase(cmd.Context())
		if err != nil {
			return outputError(formatter, err)
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(tables)
	}
	if len(tables) == 0 {
		fmt.Fprintln(formatter.Writer, "(no tables)")
		return nil
	}

	data := pterm.TableData{{"Table", "Column", "Type", "PK", "Nullable"}}
	for _, t := range tables {
		for _, c := range t.Columns {
			data = append(data, []string{
				t.Name,
				c.Name,
				c.Type.String(),
				strconv.FormatBool(c.PrimaryKey),
				strconv.FormatBool(c.Nullable),
			})
		}
	}
	return formatter.renderTable(data)
}

// CreateTableOptions holds flags for the create-table command.
type CreateTableOptions struct {
	*RootOptions
	Schema string
}

// NewCreateTableCommand creates the create-table command.
func NewCreateTableCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateTableOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create-table <name>",
		Short: "Create a table from a schema file",
		Long: `Create a table (if it does not exist) from a schema file.

The schema file lists columns with name, type, primary_key and nullable.
CUE (.cue), YAML (.yaml, .yml) and JSON (.json) files are accepted:

  columns: [
    {name: "id", type: "integer", primary_key: true},
    {name: "name", type: "text", nullable: true},
  ]`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreateTable(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Schema, "schema", "", "schema file (required)")
	_ = cmd.MarkFlagRequired("schema")

	return cmd
}

func runCreateTable(opts *CreateTableOptions, table string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	columns, errs := LoadSchema(opts.Schema)
	if len(errs) > 0 {
		return outputLoadErrors(formatter, errs)
	}
	for _, c := range columns {
		formatter.VerboseLog("Column %s", c)
	}

	// Validate the statement before opening the database.
	if _, err := schema.BuildCreateTable(table, columns); err != nil {
		return outputError(formatter, err)
	}

	st, err := openStore(opts.RootOptions, formatter)
	if err != nil {
		return err
	}
	defer closeStore(opts.RootOptions, st)

	if err := st.CreateTable(cmd.Context(), table, columns); err != nil {
		return outputError(formatter, err)
	}
	return formatter.Done(store.TableDescription{Name: table, Columns: columns},
		"Created table %s (%d column(s))", table, len(columns))
}

// NewDropTableCommand creates the drop-table command.
func NewDropTableCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "drop-table <name>",
		Short:         "Drop a table if it exists",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDropTable(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runDropTable(opts *RootOptions, table string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	st, err := openStore(opts, formatter)
	if err != nil {
		return err
	}
	defer closeStore(opts, st)

	if err := st.DropTable(cmd.Context(), table); err != nil {
		return outputError(formatter, err)
	}
	return formatter.Done(map[string]string{"dropped": table}, "Dropped table %s", table)
}
