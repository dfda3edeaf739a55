package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/afero"

	"github.com/roach88/sqlhelper/internal/queryir"
)

// Backup copies the database file to dest.
//
// A pinned connection takes the write lock with BEGIN IMMEDIATE, the file
// is copied, and the transaction is rolled back. Readers continue during
// the copy; writers wait on the busy timeout.
func (s *Store) Backup(ctx context.Context, dest string) error {
	src, err := databaseFile(s.path)
	if err != nil {
		return err
	}
	if dest == "" {
		return fmt.Errorf("%w: backup destination", queryir.ErrMissingArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	if _, err := s.exec(ctx, conn, "BEGIN IMMEDIATE;", nil); err != nil {
		return fmt.Errorf("lock database: %w", err)
	}
	defer func() {
		// The context may be done by now; the lock must still be released.
		if _, err := s.exec(context.WithoutCancel(ctx), conn, "ROLLBACK;", nil); err != nil {
			s.logger.Warn("release backup lock", "error", err)
		}
	}()

	if err := copyFile(s.fs, src, dest); err != nil {
		return fmt.Errorf("backup to %s: %w", dest, err)
	}
	return nil
}

// databaseFile extracts the file path from a path or file: DSN.
func databaseFile(dsn string) (string, error) {
	path := strings.TrimPrefix(dsn, "file:")
	query := ""
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path, query = path[:i], path[i+1:]
	}
	if path == "" || path == ":memory:" || strings.Contains(query, "mode=memory") {
		return "", ErrNoDatabaseFile
	}
	return path, nil
}

func copyFile(fs afero.Fs, src, dest string) error {
	in, err := fs.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := fs.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy: %w", err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return fmt.Errorf("sync: %w", err)
	}
	return out.Close()
}
