// Package dbconn opens live connections from dbparams.Params and exposes the
// prepared-statement surface the installer tasks run on.
package dbconn

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mmrzaf/forumsetup/internal/dbparams"
)

// querier is the part of *sql.DB and *sql.Tx the connection runs on.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

type Conn struct {
	db     *sql.DB
	q      querier
	driver string
}

// MakeConnection opens and pings. Driver errors are returned wrapped but
// otherwise untouched.
func MakeConnection(ctx context.Context, p dbparams.Params) (*Conn, error) {
	driverName, dsn, err := DSN(p)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", p.Driver, err)
	}
	if p.IsSQLite() {
		// one writer; keeps the shared in-memory database alive too
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect %s: %w", p.Driver, err)
	}
	return &Conn{db: db, q: db, driver: p.Driver}, nil
}

// Wrap adopts an already open handle.
func Wrap(db *sql.DB, driver string) *Conn {
	return &Conn{db: db, q: db, driver: driver}
}

func (c *Conn) DB() *sql.DB { return c.db }
func (c *Conn) Driver() string { return c.driver }
func (c *Conn) IsPostgres() bool { return c.driver == dbparams.DriverPgSQL }
func (c *Conn) IsSQLite() bool { return c.driver == dbparams.DriverSQLite }

func (c *Conn) IsMySQL() bool {
	return c.driver == dbparams.DriverPDOMySQL || c.driver == dbparams.DriverMySQLi
}

// Close releases the handle. On a transaction-scoped Conn it does nothing.
func (c *Conn) Close() error {
	if _, inTx := c.q.(*sql.Tx); inTx || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// InTx runs fn on a Conn bound to one transaction. The transaction commits
// when fn returns nil and rolls back otherwise.
func (c *Conn) InTx(ctx context.Context, fn func(tx *Conn) error) error {
	if c.db == nil {
		return fmt.Errorf("no database handle")
	}
	if _, nested := c.q.(*sql.Tx); nested {
		return fn(c)
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(&Conn{db: c.db, q: tx, driver: c.driver}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Rebind rewrites ? placeholders to $n for postgres.
func (c *Conn) Rebind(query string) string {
	if !c.IsPostgres() {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		ch := query[i]
		switch {
		case ch == '\'':
			inQuote = !inQuote
			b.WriteByte(ch)
		case ch == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

func (c *Conn) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.q.ExecContext(ctx, c.Rebind(query), args...)
}

func (c *Conn) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return c.q.QueryRowContext(ctx, c.Rebind(query), args...)
}

// FetchOne returns the first column of the first row.
func (c *Conn) FetchOne(ctx context.Context, query string, args ...any) (any, error) {
	var v any
	if err := c.QueryRow(ctx, query, args...).Scan(&v); err != nil {
		return nil, err
	}
	return normalize(v), nil
}

// FetchAll returns every row keyed by column name.
func (c *Conn) FetchAll(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	rows, err := c.q.QueryContext(ctx, c.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0)
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			row[col] = normalize(vals[i])
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

type Stmt struct {
	conn     *Conn
	stmt     *sql.Stmt
	idColumn string
}

func (c *Conn) Prepare(ctx context.Context, query string) (*Stmt, error) {
	st, err := c.q.PrepareContext(ctx, c.Rebind(query))
	if err != nil {
		return nil, err
	}
	return &Stmt{conn: c, stmt: st}, nil
}

// PrepareInsert prepares an INSERT whose generated key is read back through
// ExecInsert. Postgres gets a RETURNING clause; the others use LastInsertId.
func (c *Conn) PrepareInsert(ctx context.Context, query, idColumn string) (*Stmt, error) {
	if c.IsPostgres() {
		query = query + " RETURNING " + idColumn
	}
	st, err := c.Prepare(ctx, query)
	if err != nil {
		return nil, err
	}
	st.idColumn = idColumn
	return st, nil
}

func (s *Stmt) Exec(ctx context.Context, args ...any) (sql.Result, error) {
	return s.stmt.ExecContext(ctx, args...)
}

func (s *Stmt) ExecInsert(ctx context.Context, args ...any) (int64, error) {
	if s.idColumn == "" {
		return 0, fmt.Errorf("statement was not prepared with PrepareInsert")
	}
	if s.conn.IsPostgres() {
		var id int64
		if err := s.stmt.QueryRowContext(ctx, args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}
	res, err := s.stmt.ExecContext(ctx, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Stmt) Close() error {
	return s.stmt.Close()
}

// InsertID runs a one-off insert and returns the generated key.
func (c *Conn) InsertID(ctx context.Context, query, idColumn string, args ...any) (int64, error) {
	st, err := c.PrepareInsert(ctx, query, idColumn)
	if err != nil {
		return 0, err
	}
	defer st.Close()
	return st.ExecInsert(ctx, args...)
}

func normalize(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

// AsInt64 converts a scanned column value.
func AsInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case float64:
		return int64(n)
	case bool:
		if n {
			return 1
		}
		return 0
	case string:
		i, _ := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i
	case []byte:
		i, _ := strconv.ParseInt(strings.TrimSpace(string(n)), 10, 64)
		return i
	default:
		return 0
	}
}

// AsString converts a scanned column value.
func AsString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return fmt.Sprint(s)
	}
}
