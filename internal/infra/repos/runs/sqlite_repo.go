package runs

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/mmrzaf/forumsetup/internal/domain"
)

// fixed width so text order is time order
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository shares the state store's handle.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Init() error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS install_runs (
		id TEXT PRIMARY KEY,
		install_id TEXT NOT NULL,
		config_hash TEXT NOT NULL,
		status TEXT NOT NULL,
		completed_tasks TEXT,
		next_task TEXT,
		started_at TEXT NOT NULL,
		completed_at TEXT,
		error TEXT
	)`

	_, err := r.db.Exec(createTableSQL)
	return err
}

func (r *SQLiteRepository) Create(run *domain.InstallRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}

	completed, err := json.Marshal(run.Completed)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO install_runs (
			id, install_id, config_hash, status, completed_tasks, next_task,
			started_at, completed_at, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		run.ID, run.InstallID, run.ConfigHash, run.Status, string(completed), run.NextTask,
		run.StartedAt.UTC().Format(timeLayout), formatTime(run.CompletedAt), run.Error,
	)
	return err
}

func (r *SQLiteRepository) Update(run *domain.InstallRun) error {
	completed, err := json.Marshal(run.Completed)
	if err != nil {
		return err
	}

	query := `
		UPDATE install_runs SET
			status = ?, completed_tasks = ?, next_task = ?, completed_at = ?, error = ?
		WHERE id = ?
	`

	_, err = r.db.Exec(query, run.Status, string(completed), run.NextTask, formatTime(run.CompletedAt), run.Error, run.ID)
	return err
}

const selectColumns = `
	SELECT id, install_id, config_hash, status, completed_tasks, next_task,
	       started_at, completed_at, error
	FROM install_runs`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*domain.InstallRun, error) {
	var run domain.InstallRun
	var status, startedAtStr string
	var completedStr, nextTask, completedAtStr, errorStr sql.NullString

	if err := s.Scan(&run.ID, &run.InstallID, &run.ConfigHash, &status, &completedStr, &nextTask,
		&startedAtStr, &completedAtStr, &errorStr); err != nil {
		return nil, err
	}

	run.Status = domain.RunStatus(status)
	run.StartedAt, _ = time.Parse(timeLayout, startedAtStr)
	if completedStr.Valid {
		_ = json.Unmarshal([]byte(completedStr.String), &run.Completed)
	}
	run.NextTask = nextTask.String
	if completedAtStr.Valid && completedAtStr.String != "" {
		t, _ := time.Parse(timeLayout, completedAtStr.String)
		run.CompletedAt = &t
	}
	run.Error = errorStr.String
	return &run, nil
}

func (r *SQLiteRepository) Get(id string) (*domain.InstallRun, error) {
	return scanRun(r.db.QueryRow(selectColumns+` WHERE id = ?`, id))
}

func (r *SQLiteRepository) List(limit int, status string) ([]*domain.InstallRun, error) {
	query := selectColumns

	args := make([]any, 0)
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}

	query += " ORDER BY started_at DESC"

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*domain.InstallRun, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, run)
	}

	return list, rows.Err()
}

func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(timeLayout)
}
