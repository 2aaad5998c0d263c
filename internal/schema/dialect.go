// Package schema creates the forum tables and the rows a fresh board ships
// with.
package schema

import (
	"fmt"
	"strings"

	"github.com/mmrzaf/forumsetup/internal/dbparams"
)

type ColumnType int

const (
	ColSerial ColumnType = iota
	ColInt
	ColBigInt
	ColString
	ColText
)

type Column struct {
	Name   string
	Type   ColumnType
	Unique bool
}

type Table struct {
	Name       string
	Columns    []Column
	PrimaryKey []string
	Indexes    [][]string
}

type Dialect interface {
	Name() string
	ColumnDef(col Column) string
}

func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case dbparams.DriverSQLite:
		return sqliteDialect{}, nil
	case dbparams.DriverPgSQL:
		return postgresDialect{}, nil
	case dbparams.DriverPDOMySQL, dbparams.DriverMySQLi:
		return mysqlDialect{}, nil
	default:
		return nil, fmt.Errorf("no schema dialect for driver %s", driver)
	}
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return "sqlite" }

func (sqliteDialect) ColumnDef(col Column) string {
	switch col.Type {
	case ColSerial:
		return col.Name + " INTEGER PRIMARY KEY AUTOINCREMENT"
	case ColInt, ColBigInt:
		return col.Name + " INTEGER NOT NULL DEFAULT 0" + unique(col)
	case ColString:
		return col.Name + " TEXT NOT NULL DEFAULT ''" + unique(col)
	default:
		return col.Name + " TEXT NOT NULL DEFAULT ''"
	}
}

type postgresDialect struct{}

func (postgresDialect) Name() string { return "postgres" }

func (postgresDialect) ColumnDef(col Column) string {
	switch col.Type {
	case ColSerial:
		return col.Name + " BIGSERIAL PRIMARY KEY"
	case ColInt:
		return col.Name + " INTEGER NOT NULL DEFAULT 0" + unique(col)
	case ColBigInt:
		return col.Name + " BIGINT NOT NULL DEFAULT 0" + unique(col)
	case ColString:
		return col.Name + " VARCHAR(255) NOT NULL DEFAULT ''" + unique(col)
	default:
		return col.Name + " TEXT NOT NULL DEFAULT ''"
	}
}

type mysqlDialect struct{}

func (mysqlDialect) Name() string { return "mysql" }

func (mysqlDialect) ColumnDef(col Column) string {
	switch col.Type {
	case ColSerial:
		return col.Name + " BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY"
	case ColInt:
		return col.Name + " INT NOT NULL DEFAULT 0" + unique(col)
	case ColBigInt:
		return col.Name + " BIGINT NOT NULL DEFAULT 0" + unique(col)
	case ColString:
		return col.Name + " VARCHAR(255) NOT NULL DEFAULT ''" + unique(col)
	default:
		// TEXT columns cannot carry a literal default in MySQL
		return col.Name + " MEDIUMTEXT NOT NULL"
	}
}

func unique(col Column) string {
	if col.Unique {
		return " UNIQUE"
	}
	return ""
}

// CreateSQL renders CREATE TABLE plus its indexes.
func CreateSQL(d Dialect, t Table) []string {
	defs := make([]string, 0, len(t.Columns)+1)
	for _, col := range t.Columns {
		defs = append(defs, d.ColumnDef(col))
	}
	if len(t.PrimaryKey) > 0 {
		defs = append(defs, "PRIMARY KEY ("+strings.Join(t.PrimaryKey, ", ")+")")
	}
	stmts := []string{fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", t.Name, strings.Join(defs, ", "))}
	for _, idx := range t.Indexes {
		name := t.Name + "_" + strings.Join(idx, "_")
		if d.Name() == "mysql" {
			// no IF NOT EXISTS for indexes; tables are new here anyway
			stmts = append(stmts, fmt.Sprintf("CREATE INDEX %s ON %s (%s)", name, t.Name, strings.Join(idx, ", ")))
			continue
		}
		stmts = append(stmts, fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)", name, t.Name, strings.Join(idx, ", ")))
	}
	return stmts
}
