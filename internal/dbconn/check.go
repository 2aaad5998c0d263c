package dbconn

import (
	"context"
	"time"

	"github.com/mmrzaf/forumsetup/internal/dbparams"
)

type CheckResult struct {
	OK        bool      `json:"ok" yaml:"ok"`
	Driver    string    `json:"driver" yaml:"driver"`
	ServerVer string    `json:"server_version,omitempty" yaml:"server_version,omitempty"`
	LatencyMS int64     `json:"latency_ms" yaml:"latency_ms"`
	CheckedAt time.Time `json:"checked_at" yaml:"checked_at"`
	Error     string    `json:"error,omitempty" yaml:"error,omitempty"`
}

// Check connects once and reports the server version.
func Check(ctx context.Context, p dbparams.Params) (*CheckResult, error) {
	res := &CheckResult{Driver: p.Driver, CheckedAt: time.Now().UTC()}
	start := time.Now()
	conn, err := MakeConnection(ctx, p)
	res.LatencyMS = time.Since(start).Milliseconds()
	if err != nil {
		res.Error = err.Error()
		return res, err
	}
	defer conn.Close()

	res.OK = true
	if ver, err := conn.ServerVersion(ctx); err == nil {
		res.ServerVer = ver
	}
	return res, nil
}

func (c *Conn) ServerVersion(ctx context.Context) (string, error) {
	var query string
	switch {
	case c.IsPostgres():
		query = "SHOW server_version"
	case c.IsSQLite():
		query = "SELECT sqlite_version()"
	case c.IsMySQL():
		query = "SELECT VERSION()"
	default:
		query = "SELECT @@VERSION"
	}
	var version string
	if err := c.QueryRow(ctx, query).Scan(&version); err != nil {
		return "", err
	}
	return version, nil
}
