package app

import (
	"context"
	"fmt"
	"time"

	"github.com/mmrzaf/forumsetup/internal/dbconn"
	"github.com/mmrzaf/forumsetup/internal/domain"
	"github.com/mmrzaf/forumsetup/internal/forum/search"
)

// Capabilities are the statements the installer needs the database user to
// be allowed to run.
type Capabilities struct {
	CanCreate bool `json:"can_create" yaml:"can_create"`
	CanInsert bool `json:"can_insert" yaml:"can_insert"`
	CanDrop   bool `json:"can_drop" yaml:"can_drop"`
}

type CheckReport struct {
	Database     *dbconn.CheckResult `json:"database" yaml:"database"`
	Capabilities Capabilities        `json:"capabilities" yaml:"capabilities"`
	Search       string              `json:"search_backend" yaml:"search_backend"`
	SearchVer    string              `json:"search_version,omitempty" yaml:"search_version,omitempty"`
	SearchError  string              `json:"search_error,omitempty" yaml:"search_error,omitempty"`
}

// Check connects to the forum database, probes what the configured user may
// do and, for an external search backend, asks it for its version.
func (s *InstallService) Check(ctx context.Context, cfg *domain.InstallConfig) (*CheckReport, error) {
	p, err := s.Params(cfg)
	if err != nil {
		return nil, err
	}

	report := &CheckReport{Search: cfg.Search.Backend}
	if report.Search == "" {
		report.Search = search.BackendNative
	}
	res, err := dbconn.Check(ctx, p)
	report.Database = res
	if err != nil {
		return report, err
	}

	conn, err := dbconn.MakeConnection(ctx, p)
	if err != nil {
		return report, err
	}
	defer conn.Close()
	prefix := cfg.Board.TablePrefix
	if prefix == "" {
		prefix = domain.DefaultTablePrefix
	}
	report.Capabilities = probeCapabilities(ctx, conn, prefix)

	if report.Search == search.BackendElasticsearch {
		es := search.NewElasticsearchIndexer(cfg.Search.URL, "")
		ver, err := es.ServerVersion(ctx)
		if err != nil {
			report.SearchError = err.Error()
			return report, fmt.Errorf("search backend: %w", err)
		}
		report.SearchVer = ver
	}
	return report, nil
}

func probeCapabilities(ctx context.Context, conn *dbconn.Conn, prefix string) Capabilities {
	table := fmt.Sprintf("%sinstall_check_%d", prefix, time.Now().UnixNano())

	var caps Capabilities
	if _, err := conn.Exec(ctx, `CREATE TABLE `+table+` (id INTEGER NOT NULL)`); err != nil {
		return caps
	}
	caps.CanCreate = true

	if _, err := conn.Exec(ctx, `INSERT INTO `+table+` (id) VALUES (?)`, 1); err == nil {
		caps.CanInsert = true
	}

	if _, err := conn.Exec(ctx, `DROP TABLE `+table); err != nil {
		return caps
	}
	caps.CanDrop = true
	return caps
}
