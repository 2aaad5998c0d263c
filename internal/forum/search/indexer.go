// Package search feeds forum posts into a full-text backend.
package search

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/mmrzaf/forumsetup/internal/domain"
)

const (
	BackendNative        = "native"
	BackendElasticsearch = "elasticsearch"

	DocumentPost = "post"
)

// Indexer adds one document to the index. Indexing the same document twice
// must leave the index as if it had been indexed once.
type Indexer interface {
	Index(ctx context.Context, doc domain.SearchDocument) error
}

// Tokenizer splits text into the normalised words the native backend stores.
type Tokenizer struct {
	MinChars int
	MaxChars int
	fold     cases.Caser
}

func NewTokenizer(minChars, maxChars int) *Tokenizer {
	if minChars <= 0 {
		minChars = 3
	}
	if maxChars < minChars {
		maxChars = 14
	}
	return &Tokenizer{MinChars: minChars, MaxChars: maxChars, fold: cases.Fold()}
}

// Words returns the distinct words of text in first-seen order.
func (t *Tokenizer) Words(text string) []string {
	text = t.fold.String(norm.NFKC.String(text))
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, w := range fields {
		n := utf8.RuneCountInString(w)
		if n < t.MinChars || n > t.MaxChars {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// New builds the indexer for a configured backend.
func New(cfg domain.SearchConfig, native *NativeIndexer) (Indexer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendNative:
		if native == nil {
			return nil, fmt.Errorf("native search backend has no database")
		}
		return native, nil
	case BackendElasticsearch:
		return NewElasticsearchIndexer(cfg.URL, ""), nil
	default:
		return nil, fmt.Errorf("unknown search backend %q", cfg.Backend)
	}
}
