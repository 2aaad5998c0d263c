package dbconn

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmrzaf/forumsetup/internal/dbparams"
)

func openSQLite(t *testing.T) *Conn {
	t.Helper()
	p := dbparams.Params{Driver: dbparams.DriverSQLite, Path: filepath.Join(t.TempDir(), "board.db")}
	conn, err := MakeConnection(context.Background(), p)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestMakeConnection_SQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	conn := openSQLite(t)

	_, err := conn.Exec(ctx, `CREATE TABLE lang (lang_id INTEGER PRIMARY KEY AUTOINCREMENT, lang_iso TEXT NOT NULL)`)
	require.NoError(t, err)

	st, err := conn.PrepareInsert(ctx, `INSERT INTO lang (lang_iso) VALUES (?)`, "lang_id")
	require.NoError(t, err)
	defer st.Close()

	first, err := st.ExecInsert(ctx, "en")
	require.NoError(t, err)
	second, err := st.ExecInsert(ctx, "de")
	require.NoError(t, err)
	assert.Greater(t, second, first)

	rows, err := conn.FetchAll(ctx, `SELECT lang_id, lang_iso FROM lang ORDER BY lang_id`)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "de", AsString(rows[1]["lang_iso"]))
	assert.Equal(t, second, AsInt64(rows[1]["lang_id"]))

	v, err := conn.FetchOne(ctx, `SELECT COUNT(*) FROM lang`)
	require.NoError(t, err)
	assert.EqualValues(t, 2, AsInt64(v))

	ver, err := conn.ServerVersion(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, ver)
}

func TestMakeConnection_PropagatesDriverError(t *testing.T) {
	p := dbparams.Params{Driver: dbparams.DriverSQLite, Path: filepath.Join(t.TempDir(), "missing", "dir", "board.db")}
	_, err := MakeConnection(context.Background(), p)
	require.Error(t, err)
}

func TestRebind(t *testing.T) {
	pg := Wrap(nil, dbparams.DriverPgSQL)
	assert.Equal(t, "UPDATE t SET a = $1, b = '?' WHERE c = $2", pg.Rebind("UPDATE t SET a = ?, b = '?' WHERE c = ?"))

	lite := Wrap(nil, dbparams.DriverSQLite)
	assert.Equal(t, "SELECT ?", lite.Rebind("SELECT ?"))
}

func TestDSN(t *testing.T) {
	name, dsn, err := DSN(dbparams.Params{Driver: dbparams.DriverPgSQL, Host: "db", Port: 5433, User: "forum", Password: "p w", DBName: "board"})
	require.NoError(t, err)
	assert.Equal(t, "postgres", name)
	assert.Equal(t, "host=db port=5433 user=forum password='p w' dbname=board", dsn)

	name, dsn, err = DSN(dbparams.Params{Driver: dbparams.DriverPDOMySQL, Host: "db", User: "forum", Password: "pw", DBName: "board"})
	require.NoError(t, err)
	assert.Equal(t, "mysql", name)
	assert.True(t, strings.HasPrefix(dsn, "forum:pw@tcp(db:3306)/board"), dsn)

	name, dsn, err = DSN(dbparams.Params{Driver: dbparams.DriverSQLite, Path: "/var/board.db"})
	require.NoError(t, err)
	assert.Equal(t, "sqlite3", name)
	assert.True(t, strings.HasPrefix(dsn, "file:/var/board.db"), dsn)

	_, _, err = DSN(dbparams.Params{Driver: "nope"})
	require.ErrorIs(t, err, dbparams.ErrInvalidDriver)

	_, _, err = DSN(dbparams.Params{Driver: dbparams.DriverOCI8})
	require.ErrorIs(t, err, dbparams.ErrMissingExtension)
}

func TestCheck_SQLite(t *testing.T) {
	p := dbparams.Params{Driver: dbparams.DriverSQLite, Path: filepath.Join(t.TempDir(), "check.db")}
	res, err := Check(context.Background(), p)
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.NotEmpty(t, res.ServerVer)
}

func TestInTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	conn := openSQLite(t)
	_, err := conn.Exec(ctx, `CREATE TABLE bots (bot_id INTEGER PRIMARY KEY AUTOINCREMENT, bot_name TEXT NOT NULL)`)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = conn.InTx(ctx, func(tx *Conn) error {
		if _, err := tx.InsertID(ctx, `INSERT INTO bots (bot_name) VALUES (?)`, "bot_id", "Googlebot"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	n, err := conn.FetchOne(ctx, `SELECT COUNT(*) FROM bots`)
	require.NoError(t, err)
	assert.EqualValues(t, 0, AsInt64(n))

	err = conn.InTx(ctx, func(tx *Conn) error {
		_, err := tx.Exec(ctx, `INSERT INTO bots (bot_name) VALUES (?)`, "Bingbot")
		return err
	})
	require.NoError(t, err)

	n, err = conn.FetchOne(ctx, `SELECT COUNT(*) FROM bots`)
	require.NoError(t, err)
	assert.EqualValues(t, 1, AsInt64(n))
}
