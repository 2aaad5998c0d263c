package dbparams

import "strings"

// Old install files name drivers the 3.0 way.
var legacyDrivers = map[string]string{
	"mssql":       "mssql_odbc",
	"mssql_odbc":  "mssql_odbc",
	"mssqlnative": "mssqlnative",
	"mysql":       "mysqli",
	"mysql4":      "mysqli",
	"mysqli":      "mysqli",
	"oracle":      "oracle",
	"postgres":    "postgres",
	"sqlite":      "sqlite3",
	"sqlite3":     "sqlite3",
}

// LegacyDriverName rewrites a 3.0-style driver name to its current form.
// Names it does not know are returned untouched.
func LegacyDriverName(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if i := strings.LastIndex(key, `\`); i >= 0 {
		key = key[i+1:]
	}
	if mapped, ok := legacyDrivers[key]; ok {
		return mapped
	}
	return name
}
