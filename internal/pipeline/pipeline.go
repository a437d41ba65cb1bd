package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"salesdw/internal/config"
	"salesdw/internal/datasource"
	"salesdw/internal/datasource/file"
	"salesdw/internal/datasource/httpds"
	"salesdw/internal/metrics"
	"salesdw/internal/storage"
	"salesdw/internal/table"
	"salesdw/internal/warehouse"
)

// Step names used for metrics and logs.
const (
	StepExtract   = "extract"
	StepTransform = "transform"
	StepLoad      = "load"
)

// Extractor reads the raw input tables keyed by logical name.
type Extractor func(ctx context.Context) (map[string]*table.Table, error)

// Loader is the part of *warehouse.Loader a run needs.
type Loader interface {
	LoadAll(ctx context.Context, tables map[string]*table.Table) (warehouse.Summary, error)
	Close()
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithExtractor replaces the extractor derived from config.Source.
func WithExtractor(e Extractor) Option { return func(p *Pipeline) { p.extract = e } }

// WithLoader replaces the warehouse loader factory. It is called once per run.
func WithLoader(newLoader func() Loader) Option { return func(p *Pipeline) { p.newLoader = newLoader } }

// WithClock replaces time.Now for audit timestamps and report times.
func WithClock(now func() time.Time) Option { return func(p *Pipeline) { p.now = now } }

// Pipeline runs extract, transform and load once per Run call. Runs on one
// Pipeline must not overlap; the warehouse is replaced wholesale.
type Pipeline struct {
	cfg       config.Config
	log       zerolog.Logger
	now       func() time.Time
	extract   Extractor
	newLoader func() Loader
}

// New returns a Pipeline for cfg.
func New(cfg config.Config, log zerolog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{cfg: cfg, log: log, now: time.Now}
	p.extract = SourceExtractor(cfg.Source, log)
	p.newLoader = func() Loader {
		return warehouse.NewLoader(StorageConfig(cfg.Storage), p.log, warehouse.WithJob(cfg.Job))
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// SourceExtractor returns the extractor for the configured source kind.
// Kind "http" reads <url>/<name>.csv; anything else reads <dir>/<name>.csv.
func SourceExtractor(src config.Source, log zerolog.Logger) Extractor {
	if src.Kind == "http" {
		c := httpds.NewClient(httpds.Config{
			MaxRetries:         src.Retries,
			InsecureSkipVerify: src.Insecure,
			Logger:             log.With().Str("source", src.URL).Logger(),
		})
		return func(ctx context.Context) (map[string]*table.Table, error) {
			return file.LoadInputs(ctx, src.Inputs, func(name string) datasource.Source {
				return httpds.ForInput(c, src.URL, name)
			})
		}
	}
	return func(ctx context.Context) (map[string]*table.Table, error) {
		return file.LoadDir(ctx, src.Dir, src.Inputs)
	}
}

// StorageConfig maps the storage section of the config onto storage.Config.
func StorageConfig(s config.Storage) storage.Config {
	return storage.Config{
		Kind:      s.Kind,
		DSN:       s.DSN,
		BatchSize: s.Options.Int("batch_size", 0),
	}
}

// Report describes one run.
type Report struct {
	RunID    string
	Started  time.Time
	Finished time.Time

	// Inputs are the raw inputs that were found, sorted.
	Inputs []string

	// Tables holds one result per table handed to the loader.
	Tables []warehouse.TableResult
	Loaded int
	Total  int

	// TransformErr joins the failures of builders whose table was skipped.
	TransformErr error
}

// Success reports whether every table handed to the loader was loaded.
func (r Report) Success() bool { return r.Loaded == r.Total }

// Run executes one full rebuild of the warehouse. The returned error is
// non-nil only for failures that stop the run: unreadable inputs or an
// unreachable warehouse. Per-table problems are in the Report.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	rep := Report{RunID: uuid.NewString(), Started: p.now()}
	log := p.log.With().Str("run_id", rep.RunID).Str("job", p.cfg.Job).Logger()
	ctx = log.WithContext(ctx)
	log.Info().Msg("run started")

	step := func(name string, fn func() error) error {
		start := time.Now()
		err := fn()
		metrics.RecordStep(p.cfg.Job, name, err, time.Since(start))
		return err
	}

	var raw map[string]*table.Table
	if err := step(StepExtract, func() (err error) {
		raw, err = p.extract(ctx)
		return err
	}); err != nil {
		log.Error().Err(err).Msg("extract failed")
		return p.finish(rep), fmt.Errorf("extract: %w", err)
	}
	for name := range raw {
		rep.Inputs = append(rep.Inputs, name)
	}
	sort.Strings(rep.Inputs)

	var tables map[string]*table.Table
	_ = step(StepTransform, func() error {
		tables, rep.TransformErr = NewTransformer(p.cfg.Transform, log, p.now).TransformAll(raw)
		return rep.TransformErr
	})
	if rep.TransformErr != nil {
		metrics.RecordTransformErrors(p.cfg.Job, countJoined(rep.TransformErr))
	}

	loader := p.newLoader()
	defer loader.Close()

	var sum warehouse.Summary
	err := step(StepLoad, func() (err error) {
		sum, err = loader.LoadAll(ctx, tables)
		return err
	})
	rep.Tables, rep.Loaded, rep.Total = sum.Results, sum.Loaded, sum.Total
	if err != nil {
		log.Error().Err(err).Msg("load failed")
		return p.finish(rep), fmt.Errorf("load: %w", err)
	}

	rep = p.finish(rep)
	ev := log.Info()
	if !rep.Success() || rep.TransformErr != nil {
		ev = log.Warn()
	}
	ev.Int("loaded", rep.Loaded).Int("total", rep.Total).
		Dur("took", rep.Finished.Sub(rep.Started)).Msg("run finished")
	return rep, nil
}

func (p *Pipeline) finish(r Report) Report {
	r.Finished = p.now()
	return r
}

// countJoined counts the errors wrapped by an errors.Join chain.
func countJoined(err error) int {
	for err != nil {
		if j, ok := err.(interface{ Unwrap() []error }); ok {
			return len(j.Unwrap())
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return 1
}
