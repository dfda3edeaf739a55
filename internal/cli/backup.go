package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/sqlhelper/internal/store"
)

// NewBackupCommand creates the backup command.
func NewBackupCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup [dest]",
		Short: "Copy the database file",
		Long: `Copy the database file while holding the write lock.

Without a destination the copy is written next to the database as
<db>.<uuid>.bak, using a time-ordered UUIDv7 so backups sort by age.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dest := ""
			if len(args) == 1 {
				dest = args[0]
			}
			return runBackup(rootOpts, dest, cmd)
		},
	}
	return cmd
}

func runBackup(opts *RootOptions, dest string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	st, err := openStore(opts, formatter)
	if err != nil {
		return err
	}
	defer closeStore(opts, st)

	if dest == "" {
		dest, err = defaultBackupName(st.Path())
		if err != nil {
			return outputError(formatter, err)
		}
	}
	formatter.VerboseLog("Backing up %s to %s", st.Path(), dest)

	if err := st.Backup(cmd.Context(), dest); err != nil {
		if errors.Is(err, store.ErrNoDatabaseFile) {
			return outputError(formatter, err)
		}
		return outputErrorCode(formatter, ErrCodeWriteFailed, err)
	}
	return formatter.Done(map[string]string{"backup": dest}, "Backed up to %s", dest)
}

// defaultBackupName returns <path>.<uuidv7>.bak, with any file: prefix and
// query string removed from path.
func defaultBackupName(path string) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate backup id: %w", err)
	}
	path = strings.TrimPrefix(path, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return fmt.Sprintf("%s.%s.bak", path, id), nil
}
