package hashing

import (
	"testing"

	"github.com/mmrzaf/forumsetup/internal/domain"
)

func TestHashInstallConfig(t *testing.T) {
	base := domain.InstallConfig{
		Database: domain.DatabaseConfig{Driver: "postgres", Host: "db", Name: "board", User: "forum", Password: "one"},
		Admin:    domain.AdminConfig{Name: "admin", Password: "secret1", Email: "admin@example.com"},
		Board:    domain.BoardConfig{BoardEmail: "board@example.com"},
	}
	h1, err := HashInstallConfig(&base)
	if err != nil {
		t.Fatal(err)
	}

	secrets := base
	secrets.Database.Password = "two"
	secrets.Admin.Password = "secret2"
	h2, err := HashInstallConfig(&secrets)
	if err != nil {
		t.Fatal(err)
	}
	if h1 != h2 {
		t.Fatal("expected secrets to be left out of the hash")
	}

	defaults := base
	defaults.Board.TablePrefix = domain.DefaultTablePrefix
	defaults.Board.DefaultLang = domain.DefaultLang
	defaults.Search.Backend = "Native"
	h3, err := HashInstallConfig(&defaults)
	if err != nil {
		t.Fatal(err)
	}
	if h1 != h3 {
		t.Fatal("expected explicit defaults to hash like omitted ones")
	}

	renamed := base
	renamed.Admin.Name = "root"
	h4, err := HashInstallConfig(&renamed)
	if err != nil {
		t.Fatal(err)
	}
	if h1 == h4 {
		t.Fatal("expected admin name to affect hash")
	}

	prefixed := base
	prefixed.Board.TablePrefix = "forum_"
	h5, err := HashInstallConfig(&prefixed)
	if err != nil {
		t.Fatal(err)
	}
	if h1 == h5 {
		t.Fatal("expected table prefix to affect hash")
	}
}
