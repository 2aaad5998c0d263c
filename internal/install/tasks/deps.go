// Package tasks holds the installer's data-seeding steps, in the order the
// installer runs them.
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mmrzaf/forumsetup/internal/dbconn"
	"github.com/mmrzaf/forumsetup/internal/dbparams"
	"github.com/mmrzaf/forumsetup/internal/domain"
	"github.com/mmrzaf/forumsetup/internal/forum/lang"
	"github.com/mmrzaf/forumsetup/internal/forum/passwords"
	"github.com/mmrzaf/forumsetup/internal/forum/search"
	"github.com/mmrzaf/forumsetup/internal/forum/users"
	"github.com/mmrzaf/forumsetup/internal/install"
)

// Installer state keys.
const (
	KeyBotsGroupID    = "bots_group_id"
	KeyAddBotIndex    = "add_bot_index"
	KeyCorrectCount   = "correct_user_and_post_data_count"
	KeyInstallTime    = "install_time"
	KeyInstallID      = "install_id"
	KeyConfigChecksum = "install_config_hash"
)

// Messages raised by tasks.
const (
	MsgNoGroup         = "NO_GROUP"
	MsgInsertBotFailed = "CONV_ERROR_INSERT_BOT"
	MsgDBError         = "INST_ERR_DB"
)

// Connector opens a fresh connection for one task invocation.
type Connector func(ctx context.Context) (*dbconn.Conn, error)

func ParamsConnector(p dbparams.Params) Connector {
	return func(ctx context.Context) (*dbconn.Conn, error) {
		return dbconn.MakeConnection(ctx, p)
	}
}

// Deps are the collaborators every task is built from. Nil factories fall
// back to the SQL-backed implementations.
type Deps struct {
	Connect   Connector
	Tables    domain.Tables
	Install   domain.InstallConfig
	Languages lang.Scanner
	Passwords *passwords.Manager
	Now       func() time.Time

	NewUsers   func(conn *dbconn.Conn) users.Creator
	NewIndexer func(conn *dbconn.Conn) (search.Indexer, error)
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) open(ctx context.Context) (*dbconn.Conn, error) {
	if d.Connect == nil {
		return nil, fmt.Errorf("no database connector")
	}
	return d.Connect(ctx)
}

func (d Deps) users(conn *dbconn.Conn) users.Creator {
	if d.NewUsers != nil {
		return d.NewUsers(conn)
	}
	return users.NewSQLCreator(conn, d.Tables)
}

func (d Deps) indexer(conn *dbconn.Conn) (search.Indexer, error) {
	if d.NewIndexer != nil {
		return d.NewIndexer(conn)
	}
	return search.New(d.Install.Search, search.NewNativeIndexer(conn, d.Tables, nil))
}

func (d Deps) languages() lang.Scanner {
	if d.Languages != nil {
		return d.Languages
	}
	dir := d.Install.Board.LanguageDir
	if dir == "" {
		dir = "language"
	}
	return lang.NewDirScanner(dir)
}

func (d Deps) defaultLang() string {
	if d.Install.Board.DefaultLang != "" {
		return d.Install.Board.DefaultLang
	}
	return domain.DefaultLang
}

func (d Deps) dateFormat() string {
	if d.Install.Board.DateFormat != "" {
		return d.Install.Board.DateFormat
	}
	return domain.DefaultDateFormat
}

// Sequence is the fixed installer order.
func Sequence(d Deps) []install.Task {
	return []install.Task{
		NewCreateSchema(d),
		NewAddDefaultData(d),
		NewAddBots(d),
		NewAddLanguages(d),
		NewCreateSearchIndex(d),
		NewUpdateUserAndPostData(d),
	}
}

// setConfig writes a board config value, inserting the row when missing.
func setConfig(ctx context.Context, conn *dbconn.Conn, t domain.Tables, name, value string) error {
	res, err := conn.Exec(ctx, `UPDATE `+t.Config+` SET config_value = ? WHERE config_name = ?`, value, name)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}
	_, err = conn.Exec(ctx, `INSERT INTO `+t.Config+` (config_name, config_value, is_dynamic) VALUES (?, ?, 0)`, name, value)
	return err
}
