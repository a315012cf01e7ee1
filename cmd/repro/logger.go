package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/sznuper/repro/internal/config"
)

// defaultLogFile receives the logs while the progress display owns stderr.
const defaultLogFile = "repro.log"

// setupLogger builds the process logger. Console output goes to stderr unless
// quiet is set; --log-file adds a second sink, and a quiet logger without one
// writes to defaultLogFile. The returned func closes the log file.
func setupLogger(cfg *config.Config, quiet bool) (*slog.Logger, func(), error) {
	level, err := parseLevel(firstNonEmpty(logLevel, os.Getenv("REPRO_LOG_LEVEL"), "info"))
	if err != nil {
		return nil, nil, err
	}

	var sinks []io.Writer
	if !quiet {
		sinks = append(sinks, os.Stderr)
	}

	closer := func() {}
	if path := logPath(quiet); path != "" {
		if !filepath.IsAbs(path) {
			path = filepath.Join(cfg.Options.LogsDir, path)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("creating log dir: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		sinks = append(sinks, f)
		closer = func() { f.Close() }
	}

	var w io.Writer = io.Discard
	if len(sinks) > 0 {
		w = io.MultiWriter(sinks...)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closer, nil
}

func logPath(quiet bool) string {
	if logFile == "" && quiet {
		return defaultLogFile
	}
	return logFile
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return l, fmt.Errorf("invalid log level %q", s)
	}
	return l, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
