package dbconn

import (
	"strings"
	"testing"

	"github.com/mmrzaf/forumsetup/internal/dbparams"
)

func TestRedactDSN(t *testing.T) {
	if got := RedactDSN(""); got != "" {
		t.Fatalf("expected empty DSN to stay empty, got %q", got)
	}
	if got := RedactDSN("file:/tmp/board.db?_foreign_keys=on"); got != "file:/tmp/board.db?_foreign_keys=on" {
		t.Fatalf("expected sqlite path to be kept, got %q", got)
	}
	if got := RedactDSN("host=db user=forum password=s3cret dbname=board"); strings.Contains(got, "s3cret") {
		t.Fatalf("expected keyword DSN redaction, got %q", got)
	}
	if got := RedactDSN("forum:s3cret@tcp(db:3306)/board?parseTime=true"); got != "forum:****@tcp(db:3306)/board?parseTime=true" {
		t.Fatalf("expected mysql DSN redaction, got %q", got)
	}
	if got := RedactDSN("sqlserver://sa:s3cret@db:1433?database=board"); strings.Contains(got, "s3cret") {
		t.Fatalf("expected URL DSN redaction, got %q", got)
	}
}

func TestRedactParams(t *testing.T) {
	p := RedactParams(dbparams.Params{Driver: dbparams.DriverPgSQL, Password: "pw"})
	if p.Password != "****" {
		t.Fatalf("expected masked password, got %q", p.Password)
	}
	if p := RedactParams(dbparams.Params{Driver: dbparams.DriverSQLite}); p.Password != "" {
		t.Fatalf("expected empty password to stay empty, got %q", p.Password)
	}
}
