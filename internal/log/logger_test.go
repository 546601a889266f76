package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/amoeba/ac-pcap-parser/internal/config"
)

func TestInitValidLevelAndFormat(t *testing.T) {
	if err := Init(config.LogConfig{Level: "debug", Format: "json"}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if Logger().GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %v, want debug", Logger().GetLevel())
	}
}

func TestInitWithFileOutput(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")
	cfg := config.LogConfig{
		Level:  "info",
		Format: "text",
		File: config.LogFileConfig{
			Enabled:    true,
			Path:       logPath,
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
	}

	if err := Init(cfg); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	Logger().Info("test message")

	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		t.Errorf("log file was not created at %s", logPath)
	}
}

func TestInitWithInvalidLevel(t *testing.T) {
	err := Init(config.LogConfig{Level: "invalid", Format: "json"})
	if err == nil || !strings.Contains(err.Error(), "invalid log level") {
		t.Errorf("err = %v, want invalid log level", err)
	}
}

func TestInitWithInvalidFormat(t *testing.T) {
	err := Init(config.LogConfig{Level: "info", Format: "xml"})
	if err == nil || !strings.Contains(err.Error(), "unsupported log format") {
		t.Errorf("err = %v, want unsupported log format", err)
	}
}

func TestInitWithMissingFilePath(t *testing.T) {
	cfg := config.LogConfig{
		Level:  "info",
		Format: "json",
		File:   config.LogFileConfig{Enabled: true},
	}
	err := Init(cfg)
	if err == nil || !strings.Contains(err.Error(), "path") {
		t.Errorf("err = %v, want mention of path", err)
	}
}
