// Package sqlite implements the embedded warehouse backend on
// modernc.org/sqlite.
package sqlite

import (
	"os"
	"path/filepath"
	"strings"
)

// Config holds SQLite repository configuration derived from storage.Config.
type Config struct {
	// DSN is a file path, ":memory:", or a "file:" URI, e.g.:
	//   "data/warehouse/salesdw.db"
	//   "file:salesdw.db?_pragma=busy_timeout(5000)"
	DSN string
}

// ensureParentDir creates the directory holding a file-backed database.
// In-memory DSNs are left alone.
func ensureParentDir(dsn string) error {
	path := dsn
	if strings.HasPrefix(path, "file:") {
		path = strings.TrimPrefix(path, "file:")
		if i := strings.IndexByte(path, '?'); i >= 0 {
			if strings.Contains(path[i:], "mode=memory") {
				return nil
			}
			path = path[:i]
		}
	}
	if path == "" || path == ":memory:" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
