package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mmrzaf/forumsetup/internal/domain"
	"github.com/mmrzaf/forumsetup/internal/forum/netaddr"
	"github.com/mmrzaf/forumsetup/internal/forum/search"
)

// identifier validation: allow simple SQL identifiers only (prevents injection via table prefixes).
var (
	identRe       = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	langRe        = regexp.MustCompile(`^[a-z]{2,3}(_[a-z0-9]+)*$`)
	reservedWords = map[string]struct{}{
		"add": {}, "all": {}, "alter": {}, "and": {}, "any": {}, "as": {},
		"asc": {}, "between": {}, "by": {}, "case": {}, "check": {},
		"column": {}, "constraint": {}, "create": {}, "cross": {}, "current_date": {},
		"current_time": {}, "current_timestamp": {}, "database": {}, "default": {}, "delete": {},
		"desc": {}, "distinct": {}, "do": {}, "drop": {}, "else": {},
		"end": {}, "except": {}, "exists": {}, "false": {}, "for": {},
		"foreign": {}, "from": {}, "full": {}, "grant": {}, "group": {},
		"having": {}, "in": {}, "index": {}, "inner": {}, "insert": {},
		"intersect": {}, "into": {}, "is": {}, "join": {}, "key": {},
		"left": {}, "like": {}, "limit": {}, "natural": {}, "not": {},
		"null": {}, "offset": {}, "on": {}, "or": {}, "order": {},
		"outer": {}, "primary": {}, "references": {}, "returning": {}, "revoke": {},
		"right": {}, "schema": {}, "select": {}, "set": {}, "table": {},
		"then": {}, "to": {}, "true": {}, "truncate": {}, "union": {},
		"unique": {}, "update": {}, "user": {}, "using": {}, "values": {},
		"view": {}, "when": {}, "where": {}, "with": {},
	}
)

const (
	minAdminName     = 3
	maxAdminName     = 20
	minAdminPassword = 6
)

func IsValidIdentifier(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if !identRe.MatchString(s) {
		return false
	}
	if _, ok := reservedWords[strings.ToLower(s)]; ok {
		return false
	}
	return true
}

// ValidateInstallConfig checks an install file before anything touches the
// database. Driver names are checked later, when they are translated.
func ValidateInstallConfig(cfg *domain.InstallConfig) error {
	if cfg == nil {
		return errors.New("install config is required")
	}
	if err := validateDatabase(&cfg.Database); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := validateAdmin(&cfg.Admin); err != nil {
		return fmt.Errorf("admin: %w", err)
	}
	if err := validateBoard(&cfg.Board); err != nil {
		return fmt.Errorf("board: %w", err)
	}
	if err := validateSearch(&cfg.Search); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	return nil
}

func validateDatabase(db *domain.DatabaseConfig) error {
	if strings.TrimSpace(db.Driver) == "" {
		return errors.New("driver is required")
	}
	if strings.TrimSpace(db.Host) == "" {
		return errors.New("host is required")
	}
	return nil
}

func validateAdmin(a *domain.AdminConfig) error {
	n := utf8.RuneCountInString(strings.TrimSpace(a.Name))
	if n < minAdminName || n > maxAdminName {
		return fmt.Errorf("name must be %d to %d characters, got %d", minAdminName, maxAdminName, n)
	}
	if len(a.Password) < minAdminPassword {
		return fmt.Errorf("password must be at least %d characters", minAdminPassword)
	}
	if _, err := mail.ParseAddress(a.Email); err != nil {
		return fmt.Errorf("invalid email %q", a.Email)
	}
	return nil
}

func validateBoard(b *domain.BoardConfig) error {
	if _, err := mail.ParseAddress(b.BoardEmail); err != nil {
		return fmt.Errorf("invalid board_email %q", b.BoardEmail)
	}
	if b.TablePrefix != "" && !IsValidIdentifier(b.TablePrefix) {
		return fmt.Errorf("invalid table_prefix identifier: %s", b.TablePrefix)
	}
	for field, v := range map[string]string{"default_lang": b.DefaultLang, "user_lang": b.UserLang} {
		if v != "" && !langRe.MatchString(v) {
			return fmt.Errorf("invalid %s: %s", field, v)
		}
	}
	if b.RemoteAddr != "" {
		if _, ok := netaddr.NormalizeIP(b.RemoteAddr); !ok {
			return fmt.Errorf("invalid remote_addr: %s", b.RemoteAddr)
		}
	}
	return nil
}

func validateSearch(s *domain.SearchConfig) error {
	switch strings.ToLower(strings.TrimSpace(s.Backend)) {
	case "", search.BackendNative:
		if s.URL != "" {
			return errors.New("native backend must not set url")
		}
	case search.BackendElasticsearch:
		if s.URL == "" {
			return errors.New("elasticsearch backend requires url")
		}
	default:
		return fmt.Errorf("unsupported backend: %s", s.Backend)
	}
	return nil
}
