package dbconn

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/mmrzaf/forumsetup/internal/dbparams"
)

// mysql form: user:pass@tcp(host:3306)/db
var mysqlCreds = regexp.MustCompile(`^([^:@/]*):([^@]*)@`)

func RedactDSN(dsn string) string {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return ""
	}

	// sqlite paths carry no secrets
	if strings.HasPrefix(dsn, "file:") {
		return dsn
	}

	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" && u.Host != "" {
		if u.User != nil {
			u.User = url.UserPassword(u.User.Username(), "****")
		}
		q := u.Query()
		for _, k := range []string{"password", "pass", "pwd"} {
			if q.Has(k) {
				q.Set(k, "****")
			}
		}
		u.RawQuery = q.Encode()
		return u.String()
	}

	if mysqlCreds.MatchString(dsn) {
		return mysqlCreds.ReplaceAllString(dsn, "$1:****@")
	}

	// keyword form: host=... user=... password=...
	parts := strings.Fields(dsn)
	redacted := false
	for i := range parts {
		l := strings.ToLower(parts[i])
		if strings.HasPrefix(l, "password=") || strings.HasPrefix(l, "pwd=") || strings.HasPrefix(l, "pass=") {
			k := parts[i][:strings.IndexByte(parts[i], '=')+1]
			parts[i] = k + "****"
			redacted = true
		}
	}
	if redacted {
		return strings.Join(parts, " ")
	}

	return "****"
}

// RedactParams masks the password for display.
func RedactParams(p dbparams.Params) dbparams.Params {
	if p.Password != "" {
		p.Password = "****"
	}
	return p
}
