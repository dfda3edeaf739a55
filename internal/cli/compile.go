package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sqlhelper/internal/querysql"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Where     string
	WhereFile string
	Bind      bool
}

// CompilationResult is the compiled WHERE text and its bound arguments.
type CompilationResult struct {
	SQL  string `json:"sql"`
	Args []any  `json:"args,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile a filter document to WHERE text",
		Long: `Compile a {left, op, right} filter document to the text of a WHERE clause.

No database is opened. By default values are inlined as escaped literals;
--bind emits ? placeholders and prints the arguments in order.

Example:
  sqlhelper compile --where '{left: postal, op: between, right: [50000, 70000]}'
  sqlhelper compile --where-file filter.yaml --bind --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Where, "where", "", "inline filter document (YAML or JSON)")
	cmd.Flags().StringVar(&opts.WhereFile, "where-file", "", "filter document file")
	cmd.Flags().BoolVar(&opts.Bind, "bind", false, "emit ? placeholders and bound arguments")

	return cmd
}

func runCompile(opts *CompileOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	filter, err := LoadFilter(opts.Where, opts.WhereFile)
	if err != nil {
		return outputError(formatter, err)
	}
	if filter == nil {
		return outputErrorCode(formatter, ErrCodeMissingArgument, fmt.Errorf("a filter is required: --where or --where-file"))
	}
	formatter.VerboseLog("Filter: %s", filter)

	compiler := querysql.NewSQLCompiler()
	compiler.Bind = opts.Bind
	sql, params, err := compiler.Compile(filter)
	if err != nil {
		return outputError(formatter, err)
	}

	result := CompilationResult{SQL: sql, Args: params}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintln(formatter.Writer, result.SQL)
	if opts.Bind {
		for i, arg := range result.Args {
			fmt.Fprintf(formatter.Writer, "  $%d = %s\n", i+1, cellText(arg))
		}
	}
	return nil
}
