package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"dashboard/internal/config"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		env  string
		want logrus.Level
	}{
		{config.EnvLocal, logrus.DebugLevel},
		{config.EnvDev, logrus.InfoLevel},
		{config.EnvProd, logrus.WarnLevel},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			if got := New(tt.env, config.LoggingConfig{}).GetLevel(); got != tt.want {
				t.Errorf("level = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "dashboard.log")
	log := New(config.EnvDev, config.LoggingConfig{File: path, MaxSizeMB: 1, MaxBackups: 1, MaxAgeDays: 1})
	log.Info("hello")

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("log file not created: %v", err)
	}
	if info.Size() == 0 {
		t.Error("log file is empty")
	}
}
