// Package dbparams maps the forum's database configuration onto the
// connection parameters understood by the database-access layer.
package dbparams

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mmrzaf/forumsetup/internal/domain"
)

var (
	ErrInvalidDriver    = errors.New("invalid database driver name")
	ErrMissingExtension = errors.New("database driver extension is missing")
	ErrInvalidConfig    = errors.New("invalid database configuration")
)

// Canonical driver names of the access layer.
const (
	DriverPgSQL    = "pdo_pgsql"
	DriverSQLite   = "pdo_sqlite"
	DriverPDOMySQL = "pdo_mysql"
	DriverMySQLi   = "mysqli"
	DriverSQLSrv   = "sqlsrv"
	DriverPDOSrv   = "pdo_sqlsrv"
	DriverOCI8     = "oci8"
	DriverPDOOCI   = "pdo_oci"
)

var canonicalDrivers = map[string]struct{}{
	DriverPgSQL: {}, DriverSQLite: {}, DriverPDOMySQL: {}, DriverMySQLi: {},
	DriverSQLSrv: {}, DriverPDOSrv: {}, DriverOCI8: {}, DriverPDOOCI: {},
}

// SQLDriverName is the database/sql driver registered for each canonical driver.
var SQLDriverName = map[string]string{
	DriverPgSQL:    "postgres",
	DriverSQLite:   "sqlite3",
	DriverPDOMySQL: "mysql",
	DriverMySQLi:   "mysql",
	DriverSQLSrv:   "sqlserver",
	DriverPDOSrv:   "sqlserver",
	DriverOCI8:     "godror",
	DriverPDOOCI:   "godror",
}

// Extensions reports whether the runtime support for a canonical driver is present.
type Extensions interface {
	Loaded(driver string) bool
}

// RegisteredDrivers answers from the database/sql driver registry.
type RegisteredDrivers struct{}

func (RegisteredDrivers) Loaded(driver string) bool {
	name, ok := SQLDriverName[driver]
	if !ok {
		return false
	}
	for _, d := range sql.Drivers() {
		if d == name {
			return true
		}
	}
	return false
}

// ExtensionSet is a fixed set of loaded drivers.
type ExtensionSet map[string]bool

func (s ExtensionSet) Loaded(driver string) bool { return s[driver] }

// Params is the driver-specific parameter set. Zero-valued fields are
// absent, see Map.
type Params struct {
	Driver   string `json:"driver" yaml:"driver"`
	DBName   string `json:"dbname,omitempty" yaml:"dbname,omitempty"`
	User     string `json:"user,omitempty" yaml:"user,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	Host     string `json:"host,omitempty" yaml:"host,omitempty"`
	Port     int    `json:"port,omitempty" yaml:"port,omitempty"`
	Path     string `json:"path,omitempty" yaml:"path,omitempty"`
}

func (p Params) IsSQLite() bool { return p.Driver == DriverSQLite }

// Map returns the key/value form. SQLite carries path and optional
// credentials; every other driver carries dbname, user, password, host and an
// optional port.
func (p Params) Map() map[string]any {
	if p.IsSQLite() {
		m := map[string]any{"driver": p.Driver, "path": p.Path}
		if p.User != "" {
			m["user"] = p.User
		}
		if p.Password != "" {
			m["password"] = p.Password
		}
		return m
	}
	m := map[string]any{
		"driver":   p.Driver,
		"dbname":   p.DBName,
		"user":     p.User,
		"password": p.Password,
		"host":     p.Host,
	}
	if p.Port != 0 {
		m["port"] = p.Port
	}
	return m
}

type Adapter struct {
	ext Extensions
}

func NewAdapter(ext Extensions) *Adapter {
	if ext == nil {
		ext = RegisteredDrivers{}
	}
	return &Adapter{ext: ext}
}

// GetParams uses the database/sql registry as the extension probe.
func GetParams(cfg *domain.DatabaseConfig) (Params, error) {
	return NewAdapter(nil).GetParams(cfg)
}

func (a *Adapter) GetParams(cfg *domain.DatabaseConfig) (Params, error) {
	if cfg == nil {
		return Params{}, fmt.Errorf("%w: nil database config", ErrInvalidConfig)
	}
	// The install file always names drivers the forum's way, so there is no
	// canonical pass-through here.
	return a.convert(map[string]string{
		"driver":   LegacyDriverName(cfg.Driver),
		"dbhost":   cfg.Host,
		"dbuser":   cfg.User,
		"dbpasswd": cfg.Password,
		"dbname":   cfg.Name,
		"dbport":   cfg.Port,
	}, false)
}

// GetParamsFromMap accepts the forum's raw key names (driver, dbhost, dbuser,
// dbpasswd, dbname, dbport).
func (a *Adapter) GetParamsFromMap(m map[string]string) (Params, error) {
	if m == nil {
		return Params{}, fmt.Errorf("%w: nil parameter map", ErrInvalidConfig)
	}
	if _, ok := m["driver"]; !ok {
		return Params{}, fmt.Errorf("%w: driver is required", ErrInvalidConfig)
	}
	return a.convert(m, true)
}

func (a *Adapter) convert(m map[string]string, allowCanonical bool) (Params, error) {
	driver := m["driver"]
	if _, ok := canonicalDrivers[driver]; !ok || !allowCanonical {
		var err error
		driver, err = a.translate(driver)
		if err != nil {
			return Params{}, err
		}
	}

	if driver == DriverSQLite {
		return Params{
			Driver:   driver,
			Path:     m["dbhost"],
			User:     m["dbuser"],
			Password: m["dbpasswd"],
		}, nil
	}

	p := Params{
		Driver:   driver,
		DBName:   m["dbname"],
		User:     m["dbuser"],
		Password: m["dbpasswd"],
		Host:     m["dbhost"],
	}
	if port := strings.TrimSpace(m["dbport"]); port != "" && port != "0" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return Params{}, fmt.Errorf("%w: port %q is not a number", ErrInvalidConfig, port)
		}
		p.Port = n
	}
	return p, nil
}

var mysqlSuffix = regexp.MustCompile(`(?i)mysql$`)

func (a *Adapter) translate(name string) (string, error) {
	name = strings.ReplaceAll(name, `phpbb\db\driver`, "")
	name = mysqlSuffix.ReplaceAllString(name, "mysqli")
	name = strings.Trim(name, `\`)

	var driver string
	switch name {
	case "mssql_odbc", "mssqlnative":
		driver = a.prefer(DriverSQLSrv, DriverPDOSrv)
	case "mysqli":
		driver = a.prefer(DriverPDOMySQL, DriverMySQLi)
	case "oracle":
		driver = a.prefer(DriverOCI8, DriverPDOOCI)
	case "postgres":
		driver = DriverPgSQL
	case "sqlite3":
		driver = DriverSQLite
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDriver, name)
	}

	if !a.ext.Loaded(driver) {
		return "", fmt.Errorf("%w: %s", ErrMissingExtension, driver)
	}
	return driver, nil
}

func (a *Adapter) prefer(first, fallback string) string {
	if a.ext.Loaded(first) {
		return first
	}
	return fallback
}
