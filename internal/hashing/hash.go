package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/mmrzaf/forumsetup/internal/domain"
)

// installHashPayload holds every setting that shapes the seeded data.
// Secrets are left out so the fingerprint can be logged and stored.
type installHashPayload struct {
	Driver      string `json:"driver"`
	Host        string `json:"host"`
	Port        string `json:"port,omitempty"`
	Name        string `json:"name,omitempty"`
	User        string `json:"user,omitempty"`
	AdminName   string `json:"admin_name"`
	AdminEmail  string `json:"admin_email"`
	DefaultLang string `json:"default_lang"`
	UserLang    string `json:"user_lang,omitempty"`
	BoardEmail  string `json:"board_email"`
	DateFormat  string `json:"date_format"`
	TablePrefix string `json:"table_prefix"`
	Search      string `json:"search"`
	SearchURL   string `json:"search_url,omitempty"`
}

// HashInstallConfig fingerprints an install file. Defaults are applied first,
// so spelling a default out does not change the hash.
func HashInstallConfig(cfg *domain.InstallConfig) (string, error) {
	p := installHashPayload{
		Driver:      strings.TrimSpace(cfg.Database.Driver),
		Host:        strings.TrimSpace(cfg.Database.Host),
		Port:        strings.TrimSpace(cfg.Database.Port),
		Name:        cfg.Database.Name,
		User:        cfg.Database.User,
		AdminName:   strings.TrimSpace(cfg.Admin.Name),
		AdminEmail:  cfg.Admin.Email,
		DefaultLang: orDefault(cfg.Board.DefaultLang, domain.DefaultLang),
		UserLang:    cfg.Board.UserLang,
		BoardEmail:  cfg.Board.BoardEmail,
		DateFormat:  orDefault(cfg.Board.DateFormat, domain.DefaultDateFormat),
		TablePrefix: orDefault(cfg.Board.TablePrefix, domain.DefaultTablePrefix),
		Search:      strings.ToLower(orDefault(strings.TrimSpace(cfg.Search.Backend), "native")),
		SearchURL:   cfg.Search.URL,
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
