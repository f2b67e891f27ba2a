package testutil

import (
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"tasktracker/internal/config"
	"tasktracker/internal/storage"
	"tasktracker/internal/task"
)

// NewConfig returns a Config rooted in a fresh temp dir, with its data file
// inside that dir and a null logger whose entries the returned hook records.
func NewConfig(t *testing.T, quiet bool) (*config.Config, *test.Hook) {
	t.Helper()
	dir := t.TempDir()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(log.DebugLevel)
	return &config.Config{
		Dir:      dir,
		DataFile: filepath.Join(dir, "data", config.DataFile),
		Listen:   config.DefaultListen,
		Quiet:    quiet,
		Log:      logger,
	}, hook
}

// Seed saves tasks into the config's data file.
func Seed(t *testing.T, cfg *config.Config, tasks ...task.Task) {
	t.Helper()
	l := task.List{Tasks: tasks}
	if err := storage.New(cfg.DataPath(), cfg.Logger()).Save(l); err != nil {
		t.Fatalf("failed to seed tasks: %v", err)
	}
}

// Stored loads the tasks currently in the config's data file.
func Stored(t *testing.T, cfg *config.Config) []task.Task {
	t.Helper()
	return storage.New(cfg.DataPath(), cfg.Logger()).Load().Tasks
}

// ReadData returns the raw data file content, or "" when it does not exist.
func ReadData(t *testing.T, cfg *config.Config) string {
	t.Helper()
	data, err := os.ReadFile(cfg.DataPath())
	if err != nil {
		if os.IsNotExist(err) {
			return ""
		}
		t.Fatalf("failed to read data file: %v", err)
	}
	return string(data)
}
