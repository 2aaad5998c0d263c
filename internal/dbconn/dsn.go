package dbconn

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/mmrzaf/forumsetup/internal/dbparams"
)

// DSN renders params in the form the registered database/sql driver expects.
func DSN(p dbparams.Params) (driverName, dsn string, err error) {
	driverName, ok := dbparams.SQLDriverName[p.Driver]
	if !ok {
		return "", "", fmt.Errorf("%w: %q", dbparams.ErrInvalidDriver, p.Driver)
	}

	switch p.Driver {
	case dbparams.DriverSQLite:
		return driverName, sqliteDSN(p.Path), nil
	case dbparams.DriverPgSQL:
		return driverName, postgresDSN(p), nil
	case dbparams.DriverPDOMySQL, dbparams.DriverMySQLi:
		return driverName, mysqlDSN(p), nil
	case dbparams.DriverSQLSrv, dbparams.DriverPDOSrv:
		return driverName, sqlServerDSN(p), nil
	default:
		return "", "", fmt.Errorf("%w: no connector for %s", dbparams.ErrMissingExtension, p.Driver)
	}
}

func sqliteDSN(path string) string {
	path = strings.TrimSpace(path)
	if path == "" || path == ":memory:" {
		return "file::memory:?cache=shared&_foreign_keys=on"
	}
	if strings.HasPrefix(path, "file:") {
		return path
	}
	return "file:" + path + "?_foreign_keys=on&_busy_timeout=5000"
}

func postgresDSN(p dbparams.Params) string {
	parts := []string{}
	add := func(k, v string) {
		if v == "" {
			return
		}
		parts = append(parts, k+"="+quotePQ(v))
	}
	host := p.Host
	if host == "" {
		host = "localhost"
	}
	add("host", host)
	if p.Port != 0 {
		add("port", strconv.Itoa(p.Port))
	}
	add("user", p.User)
	add("password", p.Password)
	add("dbname", p.DBName)
	if host == "localhost" || host == "127.0.0.1" || strings.HasPrefix(host, "/") {
		add("sslmode", "disable")
	}
	return strings.Join(parts, " ")
}

func quotePQ(v string) string {
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

func mysqlDSN(p dbparams.Params) string {
	cfg := mysql.NewConfig()
	cfg.User = p.User
	cfg.Passwd = p.Password
	cfg.DBName = p.DBName
	cfg.ParseTime = true
	host := p.Host
	if host == "" {
		host = "localhost"
	}
	switch {
	case strings.HasPrefix(host, "/"):
		cfg.Net = "unix"
		cfg.Addr = host
	case p.Port != 0:
		cfg.Net = "tcp"
		cfg.Addr = host + ":" + strconv.Itoa(p.Port)
	default:
		cfg.Net = "tcp"
		cfg.Addr = host + ":3306"
	}
	return cfg.FormatDSN()
}

func sqlServerDSN(p dbparams.Params) string {
	u := &url.URL{Scheme: "sqlserver", Host: p.Host}
	if p.Port != 0 {
		u.Host = p.Host + ":" + strconv.Itoa(p.Port)
	}
	if p.User != "" {
		u.User = url.UserPassword(p.User, p.Password)
	}
	q := url.Values{}
	if p.DBName != "" {
		q.Set("database", p.DBName)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
