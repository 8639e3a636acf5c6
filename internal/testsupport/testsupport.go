// Package testsupport provides shared helpers for package tests: temp-dir
// configurations, record stores, and account fixtures.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"inkwell/internal/config"
	"inkwell/internal/queue"
	"inkwell/internal/store"
)

// NewConfig returns a configuration rooted in a per-test temp directory with
// every path created.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(root, "data")
	cfg.Paths.OutputDir = filepath.Join(root, "output")
	cfg.Paths.LogDir = filepath.Join(root, "logs")
	cfg.Paths.AccountsDir = filepath.Join(root, "accounts")
	cfg.Paths.TrendsDir = filepath.Join(root, "trends")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.AccountsDir, cfg.Paths.TrendsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("create %s: %v", dir, err)
		}
	}
	return &cfg
}

// NewStore opens a record store over the test configuration's data dir.
func NewStore(t *testing.T, cfg *config.Config) *store.Store {
	t.Helper()
	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return st
}

// NewQueue returns a task queue file store under the data dir.
func NewQueue(t *testing.T, cfg *config.Config) *queue.FileStore {
	t.Helper()
	return queue.NewFileStore(filepath.Join(cfg.Paths.DataDir, "pending_tasks.json"))
}

// WriteAccount drops a YAML account profile fixture into the accounts dir.
func WriteAccount(t *testing.T, cfg *config.Config, accountID, body string) {
	t.Helper()
	path := filepath.Join(cfg.Paths.AccountsDir, accountID+".yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write account fixture: %v", err)
	}
}
