package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"salesdw/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "salesdw.json")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestRun_Validate(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer
	if code := run(context.Background(), []string{"-validate"}, &out, &errOut); code != exitOK {
		t.Fatalf("code = %d, stderr = %s", code, errOut.String())
	}
	if !strings.Contains(out.String(), "valid") {
		t.Fatalf("stdout = %q", out.String())
	}

	bad := writeConfig(t, `{"transform": {"fiscal_start_month": 0}}`)
	errOut.Reset()
	if code := run(context.Background(), []string{"-config", bad, "-validate"}, &out, &errOut); code != exitFailure {
		t.Fatalf("code = %d, want failure", code)
	}
	if !strings.Contains(errOut.String(), "transform.fiscal_start_month") {
		t.Fatalf("stderr = %q", errOut.String())
	}
}

func TestRun_DDL(t *testing.T) {
	t.Parallel()

	for _, kind := range []string{"sqlite", "postgres", "mssql", "mysql"} {
		cfg := writeConfig(t, `{"storage": {"kind": "`+kind+`", "dsn": "x"}}`)
		var out, errOut bytes.Buffer
		if code := run(context.Background(), []string{"-config", cfg, "-ddl"}, &out, &errOut); code != exitOK {
			t.Fatalf("%s: code = %d, stderr = %s", kind, code, errOut.String())
		}
		if n := strings.Count(out.String(), "CREATE TABLE"); n != 7 {
			t.Fatalf("%s: %d CREATE TABLE statements, want 7", kind, n)
		}
	}
}

func TestRun_UnknownModeAndBadFlags(t *testing.T) {
	t.Parallel()

	cfg := writeConfig(t, `{"storage": {"kind": "sqlite", "dsn": ":memory:"}}`)
	var out, errOut bytes.Buffer
	if code := run(context.Background(), []string{"-config", cfg, "-mode", "weekly"}, &out, &errOut); code != exitFailure {
		t.Fatalf("code = %d", code)
	}
	if code := run(context.Background(), []string{"-nope"}, &out, &errOut); code != exitFailure {
		t.Fatalf("code = %d", code)
	}
	if code := run(context.Background(), []string{"-config", filepath.Join(t.TempDir(), "missing.json")}, &out, &errOut); code != exitFailure {
		t.Fatalf("code = %d", code)
	}
}

func TestRun_OnceWithEmptyInputDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := writeConfig(t, `{
	  "source":  {"kind": "file", "dir": "`+filepath.ToSlash(filepath.Join(dir, "raw"))+`"},
	  "storage": {"kind": "sqlite", "dsn": "`+filepath.ToSlash(filepath.Join(dir, "dw", "salesdw.db"))+`"},
	  "logging": {"level": "error"}
	}`)
	var out, errOut bytes.Buffer
	if code := run(context.Background(), []string{"-config", cfg}, &out, &errOut); code != exitOK {
		t.Fatalf("code = %d, stderr = %s", code, errOut.String())
	}
	if _, err := os.Stat(filepath.Join(dir, "dw", "salesdw.db")); err != nil {
		t.Fatalf("warehouse file not created: %v", err)
	}
}

func TestSetupMetrics(t *testing.T) {
	cfg := config.Default()
	flush, err := setupMetrics(cfg)
	if err != nil || flush == nil {
		t.Fatalf("none backend: %v", err)
	}
	flush(zerolog.Nop())

	cfg.Metrics.Backend = "graphite"
	if flush, err := setupMetrics(cfg); err == nil || flush == nil {
		t.Fatal("unknown backend must fail with a usable flush func")
	}
}

func TestRunScheduled_RunsImmediatelyAndStops(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var runs atomic.Int32
	err := runScheduled(ctx, time.Hour, func(context.Context) {
		runs.Add(1)
		cancel()
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("runScheduled: %v", err)
	}
	if runs.Load() != 1 {
		t.Fatalf("runs = %d, want 1", runs.Load())
	}
}
