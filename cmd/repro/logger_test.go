package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sznuper/repro/internal/config"
)

func loggerConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Options.LogsDir = filepath.Join(t.TempDir(), "logs")
	return &cfg
}

func TestSetupLogger_QuietWritesDefaultFile(t *testing.T) {
	logFile, logLevel = "", ""
	cfg := loggerConfig(t)

	logger, closeLog, err := setupLogger(cfg, true)
	if err != nil {
		t.Fatal(err)
	}
	logger.Error("collect failed", "figure", "figure18")
	closeLog()

	data, err := os.ReadFile(filepath.Join(cfg.Options.LogsDir, defaultLogFile))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "collect failed") || !strings.Contains(string(data), "figure=figure18") {
		t.Errorf("log file = %q", data)
	}
}

func TestSetupLogger_ExplicitLogFile(t *testing.T) {
	logFile, logLevel = "run.log", "debug"
	t.Cleanup(func() { logFile, logLevel = "", "" })
	cfg := loggerConfig(t)

	logger, closeLog, err := setupLogger(cfg, true)
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("running command")
	closeLog()

	if _, err := os.Stat(filepath.Join(cfg.Options.LogsDir, defaultLogFile)); !os.IsNotExist(err) {
		t.Errorf("default log file written alongside --log-file: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(cfg.Options.LogsDir, "run.log"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "running command") {
		t.Errorf("log file = %q", data)
	}
}

func TestLogPath(t *testing.T) {
	logFile = ""
	if got := logPath(false); got != "" {
		t.Errorf("console logger path = %q, want none", got)
	}
	if got := logPath(true); got != defaultLogFile {
		t.Errorf("quiet logger path = %q, want %q", got, defaultLogFile)
	}
}
