package schema

import (
	"context"
	"fmt"

	"github.com/mmrzaf/forumsetup/internal/dbconn"
	"github.com/mmrzaf/forumsetup/internal/domain"
)

// PlaceholderAdmin is the name the default data ships with. The admin fixup
// task rewrites every occurrence of it to the configured admin name.
const PlaceholderAdmin = "Admin"

// Group names seeded into a fresh board, in id order.
var DefaultGroups = []string{
	"GUESTS",
	"REGISTERED",
	"REGISTERED_COPPA",
	"GLOBAL_MODERATORS",
	"ADMINISTRATORS",
	"BOTS",
	"NEWLY_REGISTERED",
}

// Profile fields every board starts with. Their names carry the "phpbb_"
// namespace which the language task strips.
var DefaultProfileFields = []struct {
	Name string
	Type string
}{
	{"phpbb_location", "profilefields.type.string"},
	{"phpbb_website", "profilefields.type.url"},
	{"phpbb_interests", "profilefields.type.text"},
	{"phpbb_occupation", "profilefields.type.text"},
	{"phpbb_icq", "profilefields.type.string"},
	{"phpbb_yahoo", "profilefields.type.string"},
	{"phpbb_facebook", "profilefields.type.string"},
	{"phpbb_twitter", "profilefields.type.string"},
	{"phpbb_skype", "profilefields.type.string"},
	{"phpbb_youtube", "profilefields.type.string"},
}

const groupSpecial = 3

// SeedDefaults inserts the rows a fresh board ships with, in one
// transaction. It is a no-op when the groups table already has rows; a failed
// seed leaves no rows behind, so it can be retried.
func SeedDefaults(ctx context.Context, conn *dbconn.Conn, t domain.Tables, board domain.BoardConfig) error {
	return conn.InTx(ctx, func(tx *dbconn.Conn) error {
		return seedDefaults(ctx, tx, t, board)
	})
}

func seedDefaults(ctx context.Context, conn *dbconn.Conn, t domain.Tables, board domain.BoardConfig) error {
	n, err := conn.FetchOne(ctx, `SELECT COUNT(*) FROM `+t.Groups)
	if err != nil {
		return fmt.Errorf("count groups: %w", err)
	}
	if dbconn.AsInt64(n) > 0 {
		return nil
	}

	lang := board.DefaultLang
	if lang == "" {
		lang = domain.DefaultLang
	}
	dateFormat := board.DateFormat
	if dateFormat == "" {
		dateFormat = domain.DefaultDateFormat
	}

	config := [][2]string{
		{"default_lang", lang},
		{"default_dateformat", dateFormat},
		{"board_email", board.BoardEmail},
		{"board_timezone", "UTC"},
		{"fulltext_native_load_upd", "0"},
		{"fulltext_native_min_chars", "3"},
		{"fulltext_native_max_chars", "14"},
	}
	for _, kv := range config {
		if _, err := conn.Exec(ctx, `INSERT INTO `+t.Config+` (config_name, config_value, is_dynamic) VALUES (?, ?, 0)`, kv[0], kv[1]); err != nil {
			return fmt.Errorf("config %s: %w", kv[0], err)
		}
	}

	groups := make(map[string]int64, len(DefaultGroups))
	for _, name := range DefaultGroups {
		colour := ""
		switch name {
		case "ADMINISTRATORS":
			colour = "AA0000"
		case "GLOBAL_MODERATORS":
			colour = "00AA00"
		case "BOTS":
			colour = "9E8DA7"
		}
		id, err := conn.InsertID(ctx, `INSERT INTO `+t.Groups+` (group_type, group_name, group_colour) VALUES (?, ?, ?)`,
			"group_id", groupSpecial, name, colour)
		if err != nil {
			return fmt.Errorf("group %s: %w", name, err)
		}
		groups[name] = id
	}

	userInsert := `INSERT INTO ` + t.Users + `
		(user_type, group_id, username, username_clean, user_lang, user_style,
		 user_timezone, user_dateformat, user_colour, user_allow_massemail, user_allow_pm)
		VALUES (?, ?, ?, ?, ?, 1, 'UTC', ?, ?, ?, ?)`
	anonID, err := conn.InsertID(ctx, userInsert, "user_id",
		domain.UserIgnore, groups["GUESTS"], "Anonymous", "anonymous", lang, dateFormat, "", 0, 0)
	if err != nil {
		return fmt.Errorf("anonymous user: %w", err)
	}
	adminID, err := conn.InsertID(ctx, userInsert, "user_id",
		domain.UserFounder, groups["ADMINISTRATORS"], PlaceholderAdmin, "admin", lang, dateFormat, "AA0000", 1, 1)
	if err != nil {
		return fmt.Errorf("admin user: %w", err)
	}

	memberships := [][2]int64{
		{groups["GUESTS"], anonID},
		{groups["REGISTERED"], adminID},
		{groups["GLOBAL_MODERATORS"], adminID},
		{groups["ADMINISTRATORS"], adminID},
	}
	for _, m := range memberships {
		if _, err := conn.Exec(ctx, `INSERT INTO `+t.UserGroup+` (group_id, user_id, user_pending) VALUES (?, ?, 0)`, m[0], m[1]); err != nil {
			return fmt.Errorf("user group: %w", err)
		}
	}

	catID, err := conn.InsertID(ctx, `INSERT INTO `+t.Forums+` (parent_id, forum_name, forum_last_poster_name) VALUES (0, ?, '')`,
		"forum_id", "Your first category")
	if err != nil {
		return fmt.Errorf("category: %w", err)
	}
	forumID, err := conn.InsertID(ctx, `INSERT INTO `+t.Forums+` (parent_id, forum_name, forum_last_poster_name) VALUES (?, ?, ?)`,
		"forum_id", catID, "Your first forum", PlaceholderAdmin)
	if err != nil {
		return fmt.Errorf("forum: %w", err)
	}

	topicID, err := conn.InsertID(ctx, `INSERT INTO `+t.Topics+`
		(forum_id, topic_title, topic_poster, topic_first_poster_name, topic_last_poster_name)
		VALUES (?, ?, ?, ?, ?)`, "topic_id",
		forumID, "Welcome to your forum", adminID, PlaceholderAdmin, PlaceholderAdmin)
	if err != nil {
		return fmt.Errorf("topic: %w", err)
	}
	if _, err := conn.Exec(ctx, `INSERT INTO `+t.Posts+`
		(topic_id, forum_id, poster_id, post_subject, post_text)
		VALUES (?, ?, ?, ?, ?)`,
		topicID, forumID, adminID, "Welcome to your forum",
		"This is an example post in your new board. Everything seems to be working."); err != nil {
		return fmt.Errorf("post: %w", err)
	}
	if _, err := conn.Exec(ctx, `UPDATE `+t.Users+` SET user_posts = 1 WHERE user_id = ?`, adminID); err != nil {
		return fmt.Errorf("post count: %w", err)
	}

	if _, err := conn.Exec(ctx, `INSERT INTO `+t.ModeratorCache+` (forum_id, user_id, username, group_id, group_name) VALUES (?, ?, ?, 0, '')`,
		forumID, adminID, PlaceholderAdmin); err != nil {
		return fmt.Errorf("moderator cache: %w", err)
	}

	for i, f := range DefaultProfileFields {
		if _, err := conn.Exec(ctx, `INSERT INTO `+t.ProfileFields+` (field_name, field_type, field_order) VALUES (?, ?, ?)`,
			f.Name, f.Type, i+1); err != nil {
			return fmt.Errorf("profile field %s: %w", f.Name, err)
		}
	}
	return nil
}
