package runs

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/mmrzaf/forumsetup/internal/domain"
	"github.com/mmrzaf/forumsetup/internal/install/state"
)

func newRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	s := state.NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "state.sqlite"))
	if err := s.Init(); err != nil {
		t.Fatalf("init state: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	repo := NewSQLiteRepository(s.DB())
	if err := repo.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	return repo
}

func TestRunLifecycle(t *testing.T) {
	repo := newRepo(t)

	started := time.Now().Add(-time.Minute)
	run := &domain.InstallRun{InstallID: "inst-1", ConfigHash: "abc", Status: domain.RunStatusRunning, StartedAt: started}
	if err := repo.Create(run); err != nil {
		t.Fatal(err)
	}
	if run.ID == "" {
		t.Fatal("expected generated id")
	}

	done := time.Now()
	run.Status = domain.RunStatusMoreWork
	run.Completed = []string{"create_schema", "add_default_data"}
	run.NextTask = "add_bots"
	run.CompletedAt = &done
	if err := repo.Update(run); err != nil {
		t.Fatal(err)
	}

	got, err := repo.Get(run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != domain.RunStatusMoreWork || got.NextTask != "add_bots" || len(got.Completed) != 2 {
		t.Fatalf("unexpected run: %+v", got)
	}
	if got.CompletedAt == nil || !got.StartedAt.Equal(started.UTC().Truncate(time.Nanosecond)) {
		t.Fatalf("unexpected timestamps: %+v", got)
	}

	second := &domain.InstallRun{InstallID: "inst-1", ConfigHash: "abc", Status: domain.RunStatusCompleted, StartedAt: time.Now()}
	if err := repo.Create(second); err != nil {
		t.Fatal(err)
	}

	all, err := repo.List(0, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].ID != second.ID {
		t.Fatalf("expected newest first, got %d runs", len(all))
	}

	completed, err := repo.List(10, string(domain.RunStatusCompleted))
	if err != nil {
		t.Fatal(err)
	}
	if len(completed) != 1 {
		t.Fatalf("expected one completed run, got %d", len(completed))
	}
}
