package search

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmrzaf/forumsetup/internal/dbconn"
	"github.com/mmrzaf/forumsetup/internal/domain"
)

// NativeIndexer stores words in the board's own wordlist/wordmatch tables.
type NativeIndexer struct {
	conn   *dbconn.Conn
	tables domain.Tables
	tok    *Tokenizer
}

func NewNativeIndexer(conn *dbconn.Conn, tables domain.Tables, tok *Tokenizer) *NativeIndexer {
	if tok == nil {
		tok = NewTokenizer(0, 0)
	}
	return &NativeIndexer{conn: conn, tables: tables, tok: tok}
}

func (n *NativeIndexer) Index(ctx context.Context, doc domain.SearchDocument) error {
	if doc.Type != "" && doc.Type != DocumentPost {
		return fmt.Errorf("native index: unsupported document type %q", doc.Type)
	}
	for _, part := range []struct {
		text  string
		title int
	}{{doc.Body, 0}, {doc.Title, 1}} {
		for _, w := range n.tok.Words(part.text) {
			if err := n.match(ctx, doc.ID, w, part.title); err != nil {
				return fmt.Errorf("index post %d word %q: %w", doc.ID, w, err)
			}
		}
	}
	return nil
}

// match links word to post once. word_count only moves when a new link is
// made.
func (n *NativeIndexer) match(ctx context.Context, postID int64, word string, title int) error {
	wordID, err := n.wordID(ctx, word)
	if err != nil {
		return err
	}

	_, err = n.conn.FetchOne(ctx, `SELECT post_id FROM `+n.tables.SearchWordmatch+`
		WHERE word_id = ? AND post_id = ? AND title_match = ?`, wordID, postID, title)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, sql.ErrNoRows):
		return err
	}

	if _, err := n.conn.Exec(ctx, `INSERT INTO `+n.tables.SearchWordmatch+` (post_id, word_id, title_match) VALUES (?, ?, ?)`,
		postID, wordID, title); err != nil {
		return err
	}
	_, err = n.conn.Exec(ctx, `UPDATE `+n.tables.SearchWordlist+` SET word_count = word_count + 1 WHERE word_id = ?`, wordID)
	return err
}

func (n *NativeIndexer) wordID(ctx context.Context, word string) (int64, error) {
	v, err := n.conn.FetchOne(ctx, `SELECT word_id FROM `+n.tables.SearchWordlist+` WHERE word_text = ?`, word)
	if err == nil {
		return dbconn.AsInt64(v), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	return n.conn.InsertID(ctx, `INSERT INTO `+n.tables.SearchWordlist+` (word_text, word_common, word_count) VALUES (?, 0, 0)`,
		"word_id", word)
}
