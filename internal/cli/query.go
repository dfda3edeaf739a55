package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Scalar bool
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <sql> [args...]",
		Short: "Run raw SQL and print the result",
		Long: `Run a raw SQL statement. Extra arguments are bound to ? placeholders in
order. The text is passed to SQLite unchanged.

Example:
  sqlhelper query --db app.db 'SELECT count(*) FROM company' --scalar
  sqlhelper query --db app.db 'SELECT * FROM company WHERE name = ?' acme`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Scalar, "scalar", false, "print only the first column of the first row")

	return cmd
}

func runQuery(opts *QueryOptions, query string, rawArgs []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	args := make([]any, len(rawArgs))
	for i, a := range rawArgs {
		args[i] = a
	}

	st, err := openStore(opts.RootOptions, formatter)
	if err != nil {
		return err
	}
	defer closeStore(opts.RootOptions, st)

	if opts.Scalar {
		v, err := st.QueryScalar(cmd.Context(), query, args...)
		if err != nil {
			return outputError(formatter, err)
		}
		if formatter.Format == "json" {
			return formatter.Success(map[string]any{"value": v})
		}
		fmt.Fprintln(formatter.Writer, cellText(v))
		return nil
	}

	result, err := st.Query(cmd.Context(), query, args...)
	if err != nil {
		return outputError(formatter, err)
	}
	return formatter.Table(result)
}
