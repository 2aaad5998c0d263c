package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ReadsDotEnv(t *testing.T) {
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(cwd) }()

	d := t.TempDir()
	if err := os.WriteFile(filepath.Join(d, ".env"), []byte("FORUMSETUP_STATE=/tmp/board-state.sqlite\nFORUMSETUP_LOG_LEVEL=debug\nFORUMSETUP_MEMORY_LIMIT_MB=64\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(d); err != nil {
		t.Fatal(err)
	}

	for _, k := range []string{"FORUMSETUP_STATE", "FORUMSETUP_LOG_LEVEL", "FORUMSETUP_MEMORY_LIMIT_MB"} {
		k := k
		old, had := os.LookupEnv(k)
		_ = os.Unsetenv(k)
		t.Cleanup(func() {
			if had {
				_ = os.Setenv(k, old)
			} else {
				_ = os.Unsetenv(k)
			}
		})
	}

	cfg := Load()
	if cfg.StatePath != "/tmp/board-state.sqlite" {
		t.Fatalf("expected FORUMSETUP_STATE from .env, got %q", cfg.StatePath)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected FORUMSETUP_LOG_LEVEL from .env, got %q", cfg.LogLevel)
	}
	if cfg.MemoryLimitMB != 64 {
		t.Fatalf("expected memory limit 64, got %d", cfg.MemoryLimitMB)
	}
}

func TestLoad_EnvironmentWinsOverDotEnv(t *testing.T) {
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(cwd) }()

	d := t.TempDir()
	if err := os.WriteFile(filepath.Join(d, ".env"), []byte("FORUMSETUP_MAX_EXECUTION_TIME=5s\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(d); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FORUMSETUP_MAX_EXECUTION_TIME", "2m")

	cfg := Load()
	if cfg.MaxExecutionTime != "2m" {
		t.Fatalf("expected environment value, got %q", cfg.MaxExecutionTime)
	}
}
