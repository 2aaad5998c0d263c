// Package lang discovers the language packs shipped with a board.
package lang

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mmrzaf/forumsetup/internal/domain"
)

type Scanner interface {
	AvailableLanguages() ([]domain.Language, error)
}

// DirScanner reads <dir>/<iso>/composer.json for every pack directory.
type DirScanner struct {
	baseDir string
}

func NewDirScanner(baseDir string) *DirScanner {
	return &DirScanner{baseDir: baseDir}
}

type composerFile struct {
	Extra struct {
		ISO         string `json:"language-iso"`
		EnglishName string `json:"english-name"`
		LocalName   string `json:"local-name"`
	} `json:"extra"`
	Authors []struct {
		Name string `json:"name"`
	} `json:"authors"`
}

func (s *DirScanner) AvailableLanguages() ([]domain.Language, error) {
	if _, err := os.Stat(s.baseDir); os.IsNotExist(err) {
		return []domain.Language{}, nil
	}

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, err
	}

	langs := make([]domain.Language, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		l, err := s.load(filepath.Join(s.baseDir, entry.Name(), "composer.json"))
		if err != nil {
			continue
		}
		if l.ISO == "" {
			l.ISO = entry.Name()
		}
		langs = append(langs, l)
	}

	sort.Slice(langs, func(i, j int) bool { return langs[i].ISO < langs[j].ISO })
	return langs, nil
}

func (s *DirScanner) load(path string) (domain.Language, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Language{}, err
	}
	var cf composerFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return domain.Language{}, err
	}

	authors := make([]string, 0, len(cf.Authors))
	for _, a := range cf.Authors {
		if a.Name != "" {
			authors = append(authors, a.Name)
		}
	}
	return domain.Language{
		ISO:       cf.Extra.ISO,
		Name:      cf.Extra.EnglishName,
		LocalName: cf.Extra.LocalName,
		Author:    strings.Join(authors, ", "),
	}, nil
}

// Static serves a fixed list.
type Static []domain.Language

func (s Static) AvailableLanguages() ([]domain.Language, error) {
	return append([]domain.Language(nil), s...), nil
}
