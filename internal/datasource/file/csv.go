package file

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"salesdw/internal/datasource"
	"salesdw/internal/table"
)

// maxParallelReads bounds concurrently open inputs.
const maxParallelReads = 4

// ReadCSV decodes a CSV stream with a header row into a table. A leading
// byte-order mark is honoured (UTF-8 or UTF-16) and stripped. Every cell is
// kept as a string except empty cells, which become null.
func ReadCSV(r io.Reader) (*table.Table, error) {
	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return table.New(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	out := table.New(append([]string(nil), header...))

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		row := make([]any, len(rec))
		for i, cell := range rec {
			if cell != "" {
				row[i] = cell
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// Load reads one input with src.
func Load(ctx context.Context, src datasource.Source) (*table.Table, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return ReadCSV(rc)
}

// LoadDir reads <name>.csv from dir for each name. See LoadInputs.
func LoadDir(ctx context.Context, dir string, names []string) (map[string]*table.Table, error) {
	return LoadInputs(ctx, names, func(name string) datasource.Source { return ForInput(dir, name) })
}

// LoadInputs reads every named input concurrently through the source
// locate returns for it. An empty names reads every datasource.Inputs
// entry. A source reporting fs.ErrNotExist is skipped and its name is
// absent from the result; any other error fails the whole load.
func LoadInputs(ctx context.Context, names []string, locate func(name string) datasource.Source) (map[string]*table.Table, error) {
	if len(names) == 0 {
		names = datasource.Inputs
	}
	log := zerolog.Ctx(ctx)

	var (
		mu  sync.Mutex
		out = make(map[string]*table.Table, len(names))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelReads)
	for _, name := range names {
		g.Go(func() error {
			t, err := Load(gctx, locate(name))
			if errors.Is(err, fs.ErrNotExist) {
				log.Warn().Str("input", name).Err(err).Msg("input missing; skipped")
				return nil
			}
			if err != nil {
				return fmt.Errorf("input %s: %w", name, err)
			}
			log.Debug().Str("input", name).Int("rows", t.Len()).Msg("input read")

			mu.Lock()
			out[name] = t
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
