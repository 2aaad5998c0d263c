package schema

import (
	"context"
	"fmt"

	"github.com/mmrzaf/forumsetup/internal/dbconn"
	"github.com/mmrzaf/forumsetup/internal/domain"
)

func Tables(t domain.Tables) []Table {
	return []Table{
		{
			Name: t.Config,
			Columns: []Column{
				{Name: "config_name", Type: ColString},
				{Name: "config_value", Type: ColString},
				{Name: "is_dynamic", Type: ColInt},
			},
			PrimaryKey: []string{"config_name"},
		},
		{
			Name: t.Groups,
			Columns: []Column{
				{Name: "group_id", Type: ColSerial},
				{Name: "group_type", Type: ColInt},
				{Name: "group_name", Type: ColString},
				{Name: "group_colour", Type: ColString},
			},
		},
		{
			Name: t.Users,
			Columns: []Column{
				{Name: "user_id", Type: ColSerial},
				{Name: "user_type", Type: ColInt},
				{Name: "group_id", Type: ColInt},
				{Name: "username", Type: ColString},
				{Name: "username_clean", Type: ColString, Unique: true},
				{Name: "user_password", Type: ColString},
				{Name: "user_email", Type: ColString},
				{Name: "user_ip", Type: ColString},
				{Name: "user_regdate", Type: ColBigInt},
				{Name: "user_lang", Type: ColString},
				{Name: "user_style", Type: ColInt},
				{Name: "user_timezone", Type: ColString},
				{Name: "user_dateformat", Type: ColString},
				{Name: "user_colour", Type: ColString},
				{Name: "user_allow_massemail", Type: ColInt},
				{Name: "user_allow_pm", Type: ColInt},
				{Name: "user_posts", Type: ColInt},
			},
		},
		{
			Name: t.UserGroup,
			Columns: []Column{
				{Name: "group_id", Type: ColInt},
				{Name: "user_id", Type: ColInt},
				{Name: "user_pending", Type: ColInt},
			},
			Indexes: [][]string{{"user_id"}},
		},
		{
			Name: t.Bots,
			Columns: []Column{
				{Name: "bot_id", Type: ColSerial},
				{Name: "bot_active", Type: ColInt},
				{Name: "bot_name", Type: ColString},
				{Name: "user_id", Type: ColInt},
				{Name: "bot_agent", Type: ColString},
				{Name: "bot_ip", Type: ColString},
			},
		},
		{
			Name: t.Lang,
			Columns: []Column{
				{Name: "lang_id", Type: ColSerial},
				{Name: "lang_iso", Type: ColString},
				{Name: "lang_dir", Type: ColString},
				{Name: "lang_english_name", Type: ColString},
				{Name: "lang_local_name", Type: ColString},
				{Name: "lang_author", Type: ColString},
			},
		},
		{
			Name: t.ProfileFields,
			Columns: []Column{
				{Name: "field_id", Type: ColSerial},
				{Name: "field_name", Type: ColString},
				{Name: "field_type", Type: ColString},
				{Name: "field_order", Type: ColInt},
			},
		},
		{
			Name: t.ProfileFieldsLanguage,
			Columns: []Column{
				{Name: "field_id", Type: ColInt},
				{Name: "lang_id", Type: ColInt},
				{Name: "lang_name", Type: ColString},
				{Name: "lang_explain", Type: ColText},
				{Name: "lang_default_value", Type: ColString},
			},
			Indexes: [][]string{{"field_id", "lang_id"}},
		},
		{
			Name: t.Forums,
			Columns: []Column{
				{Name: "forum_id", Type: ColSerial},
				{Name: "parent_id", Type: ColInt},
				{Name: "forum_name", Type: ColString},
				{Name: "forum_last_poster_name", Type: ColString},
				{Name: "forum_last_post_time", Type: ColBigInt},
			},
		},
		{
			Name: t.Topics,
			Columns: []Column{
				{Name: "topic_id", Type: ColSerial},
				{Name: "forum_id", Type: ColInt},
				{Name: "topic_title", Type: ColString},
				{Name: "topic_poster", Type: ColInt},
				{Name: "topic_first_poster_name", Type: ColString},
				{Name: "topic_last_poster_name", Type: ColString},
				{Name: "topic_time", Type: ColBigInt},
				{Name: "topic_last_post_time", Type: ColBigInt},
			},
		},
		{
			Name: t.Posts,
			Columns: []Column{
				{Name: "post_id", Type: ColSerial},
				{Name: "topic_id", Type: ColInt},
				{Name: "forum_id", Type: ColInt},
				{Name: "poster_id", Type: ColInt},
				{Name: "poster_ip", Type: ColString},
				{Name: "post_time", Type: ColBigInt},
				{Name: "post_subject", Type: ColString},
				{Name: "post_text", Type: ColText},
			},
			Indexes: [][]string{{"topic_id"}},
		},
		{
			Name: t.ModeratorCache,
			Columns: []Column{
				{Name: "forum_id", Type: ColInt},
				{Name: "user_id", Type: ColInt},
				{Name: "username", Type: ColString},
				{Name: "group_id", Type: ColInt},
				{Name: "group_name", Type: ColString},
			},
		},
		{
			Name: t.SearchWordlist,
			Columns: []Column{
				{Name: "word_id", Type: ColSerial},
				{Name: "word_text", Type: ColString, Unique: true},
				{Name: "word_common", Type: ColInt},
				{Name: "word_count", Type: ColInt},
			},
		},
		{
			Name: t.SearchWordmatch,
			Columns: []Column{
				{Name: "post_id", Type: ColInt},
				{Name: "word_id", Type: ColInt},
				{Name: "title_match", Type: ColInt},
			},
			PrimaryKey: []string{"word_id", "post_id", "title_match"},
		},
	}
}

// Create issues CREATE TABLE IF NOT EXISTS for every forum table.
func Create(ctx context.Context, conn *dbconn.Conn, t domain.Tables) error {
	d, err := DialectFor(conn.Driver())
	if err != nil {
		return err
	}
	for _, table := range Tables(t) {
		for _, stmt := range CreateSQL(d, table) {
			if _, err := conn.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("create %s: %w", table.Name, err)
			}
		}
	}
	return nil
}
