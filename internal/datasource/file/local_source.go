// Package file reads raw input tables from CSV files in a local directory.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Local is a datasource.Source for one file on the local disk.
type Local struct{ path string }

// NewLocal returns a Local bound to path.
func NewLocal(path string) *Local { return &Local{path: path} }

// ForInput returns the Local for the logical input name in dir, i.e.
// dir/<name>.csv.
func ForInput(dir, name string) *Local {
	return NewLocal(filepath.Join(dir, name+".csv"))
}

// Path returns the file path.
func (l *Local) Path() string { return l.path }

// Open opens the file. A context that is already done short-circuits
// without touching the filesystem. Errors wrap the path and keep
// errors.Is(err, os.ErrNotExist) working.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return f, nil
}
