// Package installs loads install files.
package installs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mmrzaf/forumsetup/internal/domain"
)

type Repository interface {
	Load(path string) (*domain.InstallConfig, error)
}

// FileRepository reads YAML or JSON install files. Database credentials and
// the admin password may be left out of the file and supplied through the
// environment.
type FileRepository struct {
	lookupEnv func(string) (string, bool)
}

func NewFileRepository() *FileRepository {
	return &FileRepository{lookupEnv: os.LookupEnv}
}

var envOverrides = []struct {
	key string
	set func(c *domain.InstallConfig, v string)
}{
	{"FORUMSETUP_DB_PASSWORD", func(c *domain.InstallConfig, v string) { c.Database.Password = v }},
	{"FORUMSETUP_ADMIN_PASSWORD", func(c *domain.InstallConfig, v string) { c.Admin.Password = v }},
	{"FORUMSETUP_REMOTE_ADDR", func(c *domain.InstallConfig, v string) { c.Board.RemoteAddr = v }},
}

func (r *FileRepository) Load(path string) (*domain.InstallConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg domain.InstallConfig
	ext := strings.ToLower(filepath.Ext(path))

	if ext == ".json" {
		err = json.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}

	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	for _, o := range envOverrides {
		if v, ok := r.lookupEnv(o.key); ok && v != "" {
			o.set(&cfg, v)
		}
	}
	return &cfg, nil
}
