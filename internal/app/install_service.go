package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmrzaf/forumsetup/internal/dbparams"
	"github.com/mmrzaf/forumsetup/internal/domain"
	"github.com/mmrzaf/forumsetup/internal/forum/lang"
	"github.com/mmrzaf/forumsetup/internal/forum/passwords"
	"github.com/mmrzaf/forumsetup/internal/hashing"
	"github.com/mmrzaf/forumsetup/internal/infra/repos/runs"
	"github.com/mmrzaf/forumsetup/internal/install"
	"github.com/mmrzaf/forumsetup/internal/install/state"
	"github.com/mmrzaf/forumsetup/internal/install/tasks"
	"github.com/mmrzaf/forumsetup/internal/logging"
	"github.com/mmrzaf/forumsetup/internal/validation"
)

// ErrConfigChanged is returned when an install is resumed with a different
// install file than the one it was started with.
var ErrConfigChanged = errors.New("install file changed since the install started")

type RunOptions struct {
	StatePath        string
	MaxExecutionTime time.Duration
	MemoryLimit      int64
	MaxPasses        int
	// Once stops after a single pass, leaving the rest for a later invocation.
	Once             bool
	Force            bool
}

type Report struct {
	InstallID  string               `json:"install_id" yaml:"install_id"`
	ConfigHash string               `json:"config_hash" yaml:"config_hash"`
	Passes     int                  `json:"passes" yaml:"passes"`
	Done       bool                 `json:"done" yaml:"done"`
	Tasks      []domain.TaskStatus  `json:"tasks" yaml:"tasks"`
	Messages   []install.Message    `json:"messages,omitempty" yaml:"messages,omitempty"`
	Runs       []*domain.InstallRun `json:"runs,omitempty" yaml:"runs,omitempty"`
}

type InstallService struct {
	logger     *logging.Logger
	extensions dbparams.Extensions
	languages  lang.Scanner
	passwords  *passwords.Manager
	now        func() time.Time
}

func NewInstallService(logger *logging.Logger, ext dbparams.Extensions) *InstallService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &InstallService{
		logger:     logger.WithComponent("install"),
		extensions: ext,
		passwords:  passwords.NewManager(),
		now:        time.Now,
	}
}

// WithLanguages replaces the directory scan named in the install file.
func (s *InstallService) WithLanguages(l lang.Scanner) *InstallService {
	s.languages = l
	return s
}

func (s *InstallService) WithPasswordCost(cost int) *InstallService {
	s.passwords = &passwords.Manager{Cost: cost}
	return s
}

// Params validates cfg and resolves its connection parameters.
func (s *InstallService) Params(cfg *domain.InstallConfig) (dbparams.Params, error) {
	if err := validation.ValidateInstallConfig(cfg); err != nil {
		return dbparams.Params{}, fmt.Errorf("invalid install file: %w", err)
	}
	return dbparams.NewAdapter(s.extensions).GetParams(&cfg.Database)
}

func (s *InstallService) openState(path string) (*state.SQLiteStore, *runs.SQLiteRepository, error) {
	store := state.NewSQLiteStore(path)
	if err := store.Init(); err != nil {
		return nil, nil, fmt.Errorf("open install state: %w", err)
	}
	repo := runs.NewSQLiteRepository(store.DB())
	if err := repo.Init(); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("open run history: %w", err)
	}
	return store, repo, nil
}

func (s *InstallService) deps(cfg *domain.InstallConfig, p dbparams.Params) tasks.Deps {
	return tasks.Deps{
		Connect:   tasks.ParamsConnector(p),
		Tables:    domain.NewTables(cfg.Board.TablePrefix),
		Install:   *cfg,
		Languages: s.languages,
		Passwords: s.passwords,
		Now:       s.now,
	}
}

// Run drives the task sequence until it is done, the pass limit is hit, or
// after one pass when opts.Once is set. Each pass gets a fresh budget.
func (s *InstallService) Run(ctx context.Context, cfg *domain.InstallConfig, opts RunOptions) (*Report, error) {
	p, err := s.Params(cfg)
	if err != nil {
		return nil, err
	}
	hash, err := hashing.HashInstallConfig(cfg)
	if err != nil {
		return nil, err
	}

	store, repo, err := s.openState(opts.StatePath)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	prev, err := store.GetString(tasks.KeyConfigChecksum, "")
	if err != nil {
		return nil, err
	}
	if prev != "" && prev != hash && !opts.Force {
		return nil, fmt.Errorf("%w (state %s)", ErrConfigChanged, opts.StatePath)
	}
	if err := store.Set(tasks.KeyConfigChecksum, hash); err != nil {
		return nil, err
	}
	installID, err := store.GetString(tasks.KeyInstallID, "")
	if err != nil {
		return nil, err
	}
	if installID == "" {
		installID = uuid.NewString()
		if err := store.Set(tasks.KeyInstallID, installID); err != nil {
			return nil, err
		}
	}

	logger := s.logger.With(map[string]any{"install_id": installID})
	logger.Infow("install.start", map[string]any{"driver": p.Driver, "config_hash": hash})

	runner := install.NewRunner(logger, tasks.Sequence(s.deps(cfg, p))...)
	var current *domain.InstallRun
	runner.OnPassStart(func(_ int, started time.Time) {
		current = s.startPass(repo, logger, installID, hash, started)
	})
	runner.OnPass(func(_ int, _ time.Time, prog *install.Progress, err error) {
		s.finishPass(repo, logger, current, prog, err)
		current = nil
	})

	env := install.Env{State: store, Messages: install.NewMessages(logger), Logger: logger}
	maxPasses := opts.MaxPasses
	if opts.Once {
		maxPasses = 1
	}
	passes, runErr := runner.RunToCompletion(ctx, env, func() state.Budget {
		return state.NewRuntimeBudget(opts.MaxExecutionTime, opts.MemoryLimit)
	}, maxPasses)

	status, err := runner.Status(store)
	if err != nil {
		return nil, errors.Join(runErr, err)
	}
	report := &Report{
		InstallID:  installID,
		ConfigHash: hash,
		Passes:     passes,
		Tasks:      status,
		Messages:   env.Messages.All(),
	}
	report.Done = allDone(report.Tasks)
	if runErr != nil {
		if opts.Once && errors.Is(runErr, install.ErrWorkRemaining) {
			return report, nil
		}
		return report, runErr
	}
	return report, nil
}

// startPass records a running pass. A nil return means the row could not be
// written and the pass goes unrecorded.
func (s *InstallService) startPass(repo runs.Repository, logger *logging.Logger, installID, hash string, started time.Time) *domain.InstallRun {
	run := &domain.InstallRun{
		InstallID:  installID,
		ConfigHash: hash,
		Status:     domain.RunStatusRunning,
		StartedAt:  started,
	}
	if err := repo.Create(run); err != nil {
		logger.Warnw("run.record_failed", map[string]any{"error": err.Error()})
		return nil
	}
	return run
}

func (s *InstallService) finishPass(repo runs.Repository, logger *logging.Logger, run *domain.InstallRun, prog *install.Progress, err error) {
	if run == nil {
		return
	}
	finished := s.now()
	run.CompletedAt = &finished
	if prog != nil {
		run.Completed = prog.Completed
		run.NextTask = prog.Task
	}
	switch {
	case err != nil:
		run.Status = domain.RunStatusFailed
		run.Error = err.Error()
	case prog != nil && prog.Done:
		run.Status = domain.RunStatusCompleted
	default:
		run.Status = domain.RunStatusMoreWork
	}
	if err := repo.Update(run); err != nil {
		logger.Warnw("run.record_failed", map[string]any{"run_id": run.ID, "error": err.Error()})
	}
}

// Status reports task progress and recent passes without touching the
// forum database.
func (s *InstallService) Status(cfg *domain.InstallConfig, statePath string, limit int) (*Report, error) {
	store, repo, err := s.openState(statePath)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	d := tasks.Deps{Tables: domain.NewTables(cfg.Board.TablePrefix), Install: *cfg}
	runner := install.NewRunner(s.logger, tasks.Sequence(d)...)

	history, err := repo.List(limit, "")
	if err != nil {
		return nil, err
	}
	installID, err := store.GetString(tasks.KeyInstallID, "")
	if err != nil {
		return nil, err
	}
	hash, err := store.GetString(tasks.KeyConfigChecksum, "")
	if err != nil {
		return nil, err
	}
	status, err := runner.Status(store)
	if err != nil {
		return nil, err
	}
	report := &Report{
		InstallID:  installID,
		ConfigHash: hash,
		Tasks:      status,
		Runs:       history,
	}
	report.Done = allDone(report.Tasks)
	return report, nil
}

// Pass looks up one recorded pass by id.
func (s *InstallService) Pass(statePath, id string) (*domain.InstallRun, error) {
	store, repo, err := s.openState(statePath)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	run, err := repo.Get(id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no recorded pass %s", id)
	}
	return run, err
}

// Reset forgets all progress so the next run starts from the first task.
// The forum database is left as it is.
func (s *InstallService) Reset(statePath string) error {
	store, _, err := s.openState(statePath)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Reset(); err != nil {
		return err
	}
	s.logger.Infow("install.reset", map[string]any{"state": statePath})
	return nil
}

func allDone(st []domain.TaskStatus) bool {
	for _, t := range st {
		if !t.Done {
			return false
		}
	}
	return len(st) > 0
}
