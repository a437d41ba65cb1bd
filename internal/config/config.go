// Package config defines the JSON-serializable configuration for a warehouse
// run. Values are decoded once at startup and passed explicitly into the
// components that need them; nothing in this package is global or mutable.
//
// Example (trimmed):
//
//	{
//	  "job":       "salesdw",
//	  "source":    { "kind": "file", "dir": "data/raw" },
//	  "transform": { "fiscal_start_month": 10, "conversion": "single" },
//	  "storage":   { "kind": "sqlite", "dsn": "data/warehouse.db" },
//	  "logging":   { "level": "info", "format": "console" }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// Currency conversion modes for the fact builder.
const (
	// ConversionSingle applies rate_to_usd once to every monetary metric.
	ConversionSingle = "single"
	// ConversionDouble multiplies the already converted unit price by
	// rate_to_usd a second time, matching the historical reports.
	ConversionDouble = "double"
)

// DateLayout is the layout of the date range bounds.
const DateLayout = "2006-01-02"

// Config is the top-level object decoded from a config file.
type Config struct {
	// Job names the run for metrics and logs.
	Job string `json:"job"`

	Source    Source    `json:"source"`
	Transform Transform `json:"transform"`
	Storage   Storage   `json:"storage"`
	Logging   Logging   `json:"logging"`
	Metrics   Metrics   `json:"metrics"`
	Schedule  Schedule  `json:"schedule"`
}

// Source identifies where raw tables are read from: kind "file" reads
// Dir, kind "http" reads URL.
type Source struct {
	Kind string `json:"kind"`

	// Dir holds one <name>.csv per logical input.
	Dir string `json:"dir"`

	// URL is the base serving one <name>.csv per logical input.
	URL string `json:"url"`

	// Retries bounds re-attempts of a transient HTTP failure.
	Retries int `json:"retries"`

	// Insecure skips TLS certificate verification.
	Insecure bool `json:"insecure"`

	// Inputs restricts the logical inputs read. Empty means all known inputs.
	Inputs []string `json:"inputs"`
}

// Transform carries the knobs of the dimension and fact builders.
type Transform struct {
	// FiscalStartMonth is the 1-12 month the fiscal year starts in.
	FiscalStartMonth int `json:"fiscal_start_month"`

	// DateStart and DateEnd bound the date dimension, inclusive, as
	// YYYY-MM-DD.
	DateStart string `json:"date_start"`
	DateEnd   string `json:"date_end"`

	// Conversion is "single" or "double".
	Conversion string `json:"conversion"`

	// DedupPolicy enables distinct-by-key on dimensions: "none" (default),
	// "keep-first", "keep-last" or "most-complete".
	DedupPolicy string `json:"dedup_policy"`
}

// Storage selects the warehouse backend.
type Storage struct {
	// Kind is one of the registered storage kinds (sqlite, postgres, mssql,
	// mysql).
	Kind string `json:"kind"`

	// DSN is the backend connection string. For sqlite it is a file path or
	// ":memory:".
	DSN string `json:"dsn"`

	// Options is a free-form bag for backend tuning (e.g. "batch_size").
	Options Options `json:"options"`
}

// Logging configures the process logger.
type Logging struct {
	// Level is debug, info, warn or error.
	Level string `json:"level"`
	// Format is console or json.
	Format string `json:"format"`
}

// Metrics selects a metrics backend. Backend "" or "none" disables metrics.
type Metrics struct {
	Backend        string `json:"backend"`
	PushgatewayURL string `json:"pushgateway_url"`
	DatadogAddr    string `json:"datadog_addr"`
}

// Schedule configures the scheduled mode of the CLI.
type Schedule struct {
	// Interval is a Go duration string such as "24h".
	Interval string `json:"interval"`
}

// Default returns the configuration used when no file is given and the base
// that config files are decoded over.
func Default() Config {
	return Config{
		Job:    "salesdw",
		Source: Source{Kind: "file", Dir: "data/raw", Retries: 3},
		Transform: Transform{
			FiscalStartMonth: 10,
			DateStart:        "2023-01-01",
			DateEnd:          "2025-12-31",
			Conversion:       ConversionSingle,
			DedupPolicy:      "none",
		},
		Storage:  Storage{Kind: "sqlite", DSN: "data/warehouse/salesdw.db", Options: Options{}},
		Logging:  Logging{Level: "info", Format: "console"},
		Schedule: Schedule{Interval: "24h"},
	}
}

// Load decodes a JSON config from r over Default(). Unknown fields are
// rejected so typos surface early.
func Load(r io.Reader) (Config, error) {
	cfg := Default()
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// LoadFile opens path and decodes it with Load.
func LoadFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// DateRange parses the date dimension bounds.
func (t Transform) DateRange() (start, end time.Time, err error) {
	if start, err = time.Parse(DateLayout, t.DateStart); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("transform.date_start: %w", err)
	}
	if end, err = time.Parse(DateLayout, t.DateEnd); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("transform.date_end: %w", err)
	}
	return start, end, nil
}

// Every parses the schedule interval.
func (s Schedule) Every() (time.Duration, error) {
	d, err := time.ParseDuration(s.Interval)
	if err != nil {
		return 0, fmt.Errorf("schedule.interval: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("schedule.interval must be positive, got %s", d)
	}
	return d, nil
}
