package tasks

import (
	"context"
	"fmt"

	"github.com/mmrzaf/forumsetup/internal/dbconn"
	"github.com/mmrzaf/forumsetup/internal/domain"
	"github.com/mmrzaf/forumsetup/internal/forum/search"
	"github.com/mmrzaf/forumsetup/internal/install"
)

// CreateSearchIndex feeds every post to the configured indexer. It keeps no
// cursor: an interrupted run starts over from the first post.
type CreateSearchIndex struct {
	deps Deps
}

func NewCreateSearchIndex(d Deps) *CreateSearchIndex { return &CreateSearchIndex{deps: d} }

func (t *CreateSearchIndex) Name() string { return "create_search_index" }

func (t *CreateSearchIndex) Run(ctx context.Context, env install.Env) (install.Result, error) {
	conn, err := t.deps.open(ctx)
	if err != nil {
		return install.Result{}, err
	}
	defer conn.Close()

	if err := setConfig(ctx, conn, t.deps.Tables, "fulltext_native_load_upd", "1"); err != nil {
		return install.Result{}, fmt.Errorf("set fulltext_native_load_upd: %w", err)
	}

	idx, err := t.deps.indexer(conn)
	if err != nil {
		return install.Result{}, err
	}

	rows, err := conn.FetchAll(ctx, `SELECT post_id, post_subject, post_text, poster_id, forum_id FROM `+
		t.deps.Tables.Posts+` ORDER BY post_id`)
	if err != nil {
		env.Messages.AddError(MsgDBError, err.Error())
	}

	for _, row := range rows {
		doc := domain.SearchDocument{
			Type:     search.DocumentPost,
			ID:       dbconn.AsInt64(row["post_id"]),
			Body:     dbconn.AsString(row["post_text"]),
			Title:    dbconn.AsString(row["post_subject"]),
			AuthorID: dbconn.AsInt64(row["poster_id"]),
			ForumID:  dbconn.AsInt64(row["forum_id"]),
		}
		if err := idx.Index(ctx, doc); err != nil {
			return install.Result{}, fmt.Errorf("index post %d: %w", doc.ID, err)
		}
	}
	if env.Logger != nil {
		env.Logger.Infow("search.indexed", map[string]any{"posts": len(rows)})
	}
	return install.Done(), nil
}
