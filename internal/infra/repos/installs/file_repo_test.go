package installs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
database:
  driver: postgres
  host: db.internal
  user: forum
  name: board
  port: "5433"
admin:
  name: admin
  email: admin@example.com
board:
  default_lang: en
  board_email: board@example.com
  table_prefix: forum_
search:
  backend: elasticsearch
  url: http://es:9200
`

func TestFileRepository_LoadYAMLWithEnvSecrets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "install.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	env := map[string]string{"FORUMSETUP_DB_PASSWORD": "dbpw", "FORUMSETUP_ADMIN_PASSWORD": "adminpw"}
	repo := &FileRepository{lookupEnv: func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}}

	cfg, err := repo.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "5433", cfg.Database.Port)
	assert.Equal(t, "dbpw", cfg.Database.Password)
	assert.Equal(t, "adminpw", cfg.Admin.Password)
	assert.Equal(t, "forum_", cfg.Board.TablePrefix)
	assert.Equal(t, "elasticsearch", cfg.Search.Backend)
	assert.Empty(t, cfg.Board.RemoteAddr)
}

func TestFileRepository_LoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "install.json")
	body := `{"database":{"driver":"sqlite3","host":"/tmp/board.db"},"admin":{"name":"admin","password":"pw123456","email":"a@b.c"},"board":{"board_email":"b@b.c"}}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := NewFileRepository().Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/board.db", cfg.Database.Host)
	assert.Equal(t, "pw123456", cfg.Admin.Password)
}

func TestFileRepository_Errors(t *testing.T) {
	_, err := NewFileRepository().Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database: [unclosed"), 0o600))
	_, err = NewFileRepository().Load(path)
	require.Error(t, err)
}
