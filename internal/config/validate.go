package config

import (
	"fmt"
	"net/url"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a finding that should be surfaced to users but
	// does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding.
//
// Path is a dotted path into the config (e.g. "storage.kind"). Message is
// human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate performs static validation of c. It does not mutate c; callers
// decide whether warnings are fatal.
func Validate(c Config) []Issue {
	var issues []Issue

	if strings.TrimSpace(c.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling and identifying runs",
		})
	}
	issues = append(issues, validateSource(c.Source)...)
	issues = append(issues, validateTransform(c.Transform)...)
	issues = append(issues, validateStorage(c.Storage)...)
	issues = append(issues, validateLogging(c.Logging)...)
	issues = append(issues, validateMetrics(c.Metrics)...)
	return issues
}

func validateSource(s Source) []Issue {
	var issues []Issue
	switch s.Kind {
	case "":
		issues = append(issues, Issue{SeverityError, "source.kind", "source.kind must not be empty"})
	case "file":
		if strings.TrimSpace(s.Dir) == "" {
			issues = append(issues, Issue{SeverityError, "source.dir", "file source requires a non-empty dir"})
		}
	case "http":
		u, err := url.Parse(s.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			issues = append(issues, Issue{SeverityError, "source.url", fmt.Sprintf("http source requires an absolute http(s) url, got %q", s.URL)})
		}
		if s.Retries < 0 {
			issues = append(issues, Issue{SeverityError, "source.retries", "retries must be >= 0"})
		}
		if s.Insecure {
			issues = append(issues, Issue{SeverityWarning, "source.insecure", "TLS certificate verification is disabled"})
		}
	default:
		issues = append(issues, Issue{SeverityError, "source.kind", fmt.Sprintf("unknown source kind %q", s.Kind)})
	}
	return issues
}

func validateTransform(t Transform) []Issue {
	var issues []Issue

	if t.FiscalStartMonth < 1 || t.FiscalStartMonth > 12 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "transform.fiscal_start_month",
			Message:  fmt.Sprintf("fiscal_start_month must be 1..12, got %d", t.FiscalStartMonth),
		})
	}

	start, end, err := t.DateRange()
	switch {
	case err != nil:
		issues = append(issues, Issue{SeverityError, "transform.date_start", err.Error()})
	case end.Before(start):
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "transform.date_end",
			Message:  fmt.Sprintf("date_end %s is before date_start %s", t.DateEnd, t.DateStart),
		})
	}

	switch t.Conversion {
	case ConversionSingle:
	case ConversionDouble:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "transform.conversion",
			Message:  "double conversion multiplies monetary metrics by rate_to_usd twice",
		})
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "transform.conversion",
			Message:  fmt.Sprintf("conversion must be %q or %q, got %q", ConversionSingle, ConversionDouble, t.Conversion),
		})
	}

	switch t.DedupPolicy {
	case "", "none":
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "transform.dedup_policy",
			Message:  "no dedup: a dimension with a repeated natural key (e.g. a discount category listed for several periods) fails its load; set keep-first, keep-last or most-complete to keep one row per key",
		})
	case "keep-first", "keep-last", "most-complete":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "transform.dedup_policy",
			Message:  fmt.Sprintf("unknown dedup policy %q", t.DedupPolicy),
		})
	}
	return issues
}

func validateStorage(s Storage) []Issue {
	var issues []Issue

	kind := strings.TrimSpace(s.Kind)
	if kind == "" {
		return append(issues, Issue{SeverityError, "storage.kind", "storage.kind must not be empty"})
	}
	known := map[string]struct{}{
		"sqlite":   {},
		"postgres": {},
		"mssql":    {},
		"mysql":    {},
	}
	if _, ok := known[kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; ensure a matching implementation is registered", kind),
		})
	}
	if strings.TrimSpace(s.DSN) == "" {
		issues = append(issues, Issue{SeverityError, "storage.dsn", "storage.dsn must not be empty"})
	}
	if n := s.Options.Int("batch_size", 0); n < 0 {
		issues = append(issues, Issue{SeverityError, "storage.options.batch_size", "batch_size must be >= 0"})
	}
	return issues
}

func validateLogging(l Logging) []Issue {
	var issues []Issue
	switch strings.ToLower(l.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		issues = append(issues, Issue{SeverityWarning, "logging.level", fmt.Sprintf("unknown level %q; info is used", l.Level)})
	}
	switch strings.ToLower(l.Format) {
	case "", "console", "json":
	default:
		issues = append(issues, Issue{SeverityWarning, "logging.format", fmt.Sprintf("unknown format %q; console is used", l.Format)})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue
	switch m.Backend {
	case "", "none":
	case "pushgateway":
		if m.PushgatewayURL == "" {
			issues = append(issues, Issue{SeverityError, "metrics.pushgateway_url", "pushgateway backend requires pushgateway_url"})
		}
	case "datadog":
		if m.DatadogAddr == "" {
			issues = append(issues, Issue{SeverityWarning, "metrics.datadog_addr", "datadog_addr is empty; the statsd default address is used"})
		}
	default:
		issues = append(issues, Issue{SeverityError, "metrics.backend", fmt.Sprintf("unknown metrics backend %q", m.Backend)})
	}
	return issues
}
