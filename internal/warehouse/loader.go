// Package warehouse materializes transformed tables into the warehouse.
//
// A Loader owns one storage.Repository for the duration of a run. The
// connection is opened lazily on first use and released by Close. Every
// table load is a wholesale replace; there is no upsert or merge.
package warehouse

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"salesdw/internal/metrics"
	"salesdw/internal/schema"
	"salesdw/internal/storage"
	"salesdw/internal/table"
)

// Table name prefixes that decide load order.
const (
	DimPrefix  = "dim_"
	FactPrefix = "fact_"
)

// ErrUnclassifiedTable marks a table whose name has neither DimPrefix nor
// FactPrefix. Such tables are reported as failed and never loaded.
var ErrUnclassifiedTable = errors.New("table name has neither dim_ nor fact_ prefix")

// Option configures a Loader.
type Option func(*Loader)

// WithContracts replaces schema.Warehouse() as the declared schema.
func WithContracts(cs []schema.Contract) Option {
	return func(l *Loader) { l.contracts = cs }
}

// WithJob sets the job label used for metrics.
func WithJob(job string) Option {
	return func(l *Loader) { l.job = job }
}

// WithOpener replaces storage.New as the way the repository is opened.
func WithOpener(open func(context.Context, storage.Config) (storage.Repository, error)) Option {
	return func(l *Loader) { l.open = open }
}

// Loader loads tables into one warehouse. It is not safe for concurrent use.
type Loader struct {
	cfg       storage.Config
	log       zerolog.Logger
	job       string
	contracts []schema.Contract
	open      func(context.Context, storage.Config) (storage.Repository, error)

	repo storage.Repository
}

// NewLoader returns a Loader for cfg. No connection is made until the first
// operation that needs one. The backend logs through log; cfg.Logger is
// overwritten.
func NewLoader(cfg storage.Config, log zerolog.Logger, opts ...Option) *Loader {
	l := &Loader{
		cfg:       cfg,
		log:       log,
		job:       "salesdw",
		contracts: schema.Warehouse(),
		open:      storage.New,
	}
	for _, o := range opts {
		o(l)
	}
	l.cfg.Logger = log.With().Str("kind", cfg.Kind).Logger()
	return l
}

// Connect opens the repository if it is not open yet.
func (l *Loader) Connect(ctx context.Context) (storage.Repository, error) {
	if l.repo != nil {
		return l.repo, nil
	}
	repo, err := l.open(ctx, l.cfg)
	if err != nil {
		l.log.Error().Err(err).Str("kind", l.cfg.Kind).Msg("warehouse connection failed")
		return nil, fmt.Errorf("connect %s warehouse: %w", l.cfg.Kind, err)
	}
	l.log.Debug().Str("kind", l.cfg.Kind).Msg("warehouse connected")
	l.repo = repo
	return repo, nil
}

// Close releases the connection. It is safe to call more than once and on a
// Loader that never connected.
func (l *Loader) Close() {
	if l.repo == nil {
		return
	}
	l.repo.Close()
	l.repo = nil
}

// Contract returns the declared contract for name, inferring one from t when
// the name is not declared.
func (l *Loader) Contract(name string, t *table.Table) schema.Contract {
	for _, c := range l.contracts {
		if c.Name == name {
			return c
		}
	}
	return schema.Infer(name, t)
}

// EnsureSchema creates or replaces every declared table, empty. Calling it
// repeatedly leaves the same tables and columns.
func (l *Loader) EnsureSchema(ctx context.Context) error {
	repo, err := l.Connect(ctx)
	if err != nil {
		return err
	}
	for _, c := range l.contracts {
		if _, err := repo.ReplaceTable(ctx, c, c.Names(), nil); err != nil {
			l.log.Error().Err(err).Str("table", c.Name).Msg("ensure schema failed")
			return fmt.Errorf("ensure schema %s: %w", c.Name, err)
		}
	}
	l.log.Info().Int("tables", len(l.contracts)).Msg("warehouse schema ensured")
	return nil
}

// Columns returns the persisted columns of a table, empty when it does not
// exist.
func (l *Loader) Columns(ctx context.Context, name string) ([]string, error) {
	repo, err := l.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return repo.Columns(ctx, name)
}

// TableResult is the outcome of loading one table.
type TableResult struct {
	Table    string
	Rows     int64
	Duration time.Duration
	Err      error
}

// OK reports whether the table loaded.
func (r TableResult) OK() bool { return r.Err == nil }

// LoadTable replaces the persisted table name with the contents of t.
// Failures, panics included, are logged and returned in the result; they
// never escape as errors so one table cannot abort a batch.
func (l *Loader) LoadTable(ctx context.Context, t *table.Table, name string) (res TableResult) {
	res.Table = name
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			res.Err = fmt.Errorf("load %s: panic: %v", name, p)
		}
		res.Duration = time.Since(start)
		metrics.RecordTable(l.job, name, res.Rows, res.Err)
		if res.Err != nil {
			l.log.Error().Err(res.Err).Str("table", name).Msg("table load failed")
			return
		}
		l.log.Info().Str("table", name).Int64("rows", res.Rows).Dur("took", res.Duration).Msg("table loaded")
	}()

	if t == nil {
		res.Err = fmt.Errorf("load %s: nil table", name)
		return res
	}
	repo, err := l.Connect(ctx)
	if err != nil {
		res.Err = err
		return res
	}

	c := l.Contract(name, t)
	for _, col := range t.Columns {
		if _, ok := c.Field(col); !ok {
			res.Err = fmt.Errorf("load %s: column %q is not in the warehouse schema", name, col)
			return res
		}
	}

	n, err := repo.ReplaceTable(ctx, c, t.Columns, t.Rows)
	if err != nil {
		res.Err = fmt.Errorf("load %s: %w", name, err)
		return res
	}
	res.Rows = n
	return res
}

// Summary aggregates the results of LoadAll.
type Summary struct {
	Results []TableResult
	Loaded  int
	Total   int
}

// Success reports whether every table in the batch loaded.
func (s Summary) Success() bool { return s.Loaded == s.Total }

// Failed returns the results that did not load.
func (s Summary) Failed() []TableResult {
	var out []TableResult
	for _, r := range s.Results {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}

// LoadAll ensures the schema and then loads every dim_ table before any
// fact_ table, each group in name order. Tables with neither prefix are
// reported as failed with ErrUnclassifiedTable.
//
// The returned error is non-nil only when the warehouse is unreachable or
// the schema cannot be created; per-table failures are in the Summary.
func (l *Loader) LoadAll(ctx context.Context, tables map[string]*table.Table) (Summary, error) {
	sum := Summary{Total: len(tables)}
	if err := l.EnsureSchema(ctx); err != nil {
		return sum, err
	}

	dims, facts, other := classify(tables)
	for _, name := range append(dims, facts...) {
		res := l.LoadTable(ctx, tables[name], name)
		if res.OK() {
			sum.Loaded++
		}
		sum.Results = append(sum.Results, res)
	}
	for _, name := range other {
		err := fmt.Errorf("load %s: %w", name, ErrUnclassifiedTable)
		l.log.Error().Err(err).Str("table", name).Msg("table skipped")
		metrics.RecordTable(l.job, name, 0, err)
		sum.Results = append(sum.Results, TableResult{Table: name, Err: err})
	}

	ev := l.log.Info()
	if !sum.Success() {
		ev = l.log.Warn()
	}
	ev.Int("loaded", sum.Loaded).Int("total", sum.Total).Msg("warehouse load finished")
	return sum, nil
}

func classify(tables map[string]*table.Table) (dims, facts, other []string) {
	for name := range tables {
		switch {
		case strings.HasPrefix(name, DimPrefix):
			dims = append(dims, name)
		case strings.HasPrefix(name, FactPrefix):
			facts = append(facts, name)
		default:
			other = append(other, name)
		}
	}
	sort.Strings(dims)
	sort.Strings(facts)
	sort.Strings(other)
	return dims, facts, other
}
