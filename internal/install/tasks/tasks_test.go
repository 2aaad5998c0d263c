package tasks

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-faker/faker/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmrzaf/forumsetup/internal/dbconn"
	"github.com/mmrzaf/forumsetup/internal/dbparams"
	"github.com/mmrzaf/forumsetup/internal/domain"
	"github.com/mmrzaf/forumsetup/internal/forum/lang"
	"github.com/mmrzaf/forumsetup/internal/forum/passwords"
	"github.com/mmrzaf/forumsetup/internal/forum/search"
	"github.com/mmrzaf/forumsetup/internal/forum/users"
	"github.com/mmrzaf/forumsetup/internal/install"
	"github.com/mmrzaf/forumsetup/internal/install/state"
)

type countdown struct{ n int }

func (c *countdown) TimeRemaining() time.Duration {
	c.n--
	if c.n < 0 {
		return 0
	}
	return time.Minute
}

func (c *countdown) MemoryRemaining() int64 { return math.MaxInt64 }

type fixture struct {
	deps Deps
	env  install.Env
	conn *dbconn.Conn
}

var installedAt = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	p := dbparams.Params{Driver: dbparams.DriverSQLite, Path: filepath.Join(dir, "board.db")}
	d := Deps{
		Connect: ParamsConnector(p),
		Tables:  domain.NewTables(""),
		Install: domain.InstallConfig{
			Admin: domain.AdminConfig{Name: "Héloïse", Password: "s3cret-pass", Email: "admin@example.com"},
			Board: domain.BoardConfig{
				DefaultLang: "en",
				UserLang:    "de",
				BoardEmail:  "board@example.com",
				RemoteAddr:  "[::ffff:10.0.0.7]:51234",
			},
		},
		Languages: lang.Static{},
		Passwords: &passwords.Manager{Cost: 4},
		Now:       func() time.Time { return installedAt },
	}

	s := state.NewSQLiteStore(filepath.Join(dir, "state.sqlite"))
	require.NoError(t, s.Init())
	t.Cleanup(func() { _ = s.Close() })
	env := install.Env{State: s, Budget: state.Unlimited{}, Messages: install.NewMessages(nil)}

	_, err := NewCreateSchema(d).Run(ctx, env)
	require.NoError(t, err)
	_, err = NewAddDefaultData(d).Run(ctx, env)
	require.NoError(t, err)

	conn, err := dbconn.MakeConnection(ctx, p)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &fixture{deps: d, env: env, conn: conn}
}

func (f *fixture) stateInt(t *testing.T, key string, def int) int {
	t.Helper()
	n, err := f.env.State.GetInt(key, def)
	require.NoError(t, err)
	return n
}

func (f *fixture) stateHas(t *testing.T, key string) bool {
	t.Helper()
	ok, err := f.env.State.Has(key)
	require.NoError(t, err)
	return ok
}

func (f *fixture) count(t *testing.T, query string, args ...any) int64 {
	t.Helper()
	v, err := f.conn.FetchOne(context.Background(), query, args...)
	require.NoError(t, err)
	return dbconn.AsInt64(v)
}

type recordingCreator struct {
	next   users.Creator
	fail   map[string]bool
	called []string
}

func (r *recordingCreator) AddUser(ctx context.Context, row domain.UserRow) (int64, error) {
	r.called = append(r.called, row.Username)
	if r.fail[row.Username] {
		return 0, errors.New("rejected")
	}
	return r.next.AddUser(ctx, row)
}

func TestAddBots_ResumesFromCursor(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	rec := &recordingCreator{}
	f.deps.NewUsers = func(conn *dbconn.Conn) users.Creator {
		rec.next = users.NewSQLCreator(conn, f.deps.Tables)
		return rec
	}
	task := NewAddBots(f.deps)

	f.env.Budget = &countdown{n: 4}
	res, err := task.Run(ctx, f.env)
	require.NoError(t, err)
	require.False(t, res.IsDone())
	k := res.Next().Index
	assert.Equal(t, 5, k)
	assert.EqualValues(t, k, f.count(t, `SELECT COUNT(*) FROM phpbb_bots`))

	f.env.Budget = state.Unlimited{}
	res, err = task.Run(ctx, f.env)
	require.NoError(t, err)
	assert.True(t, res.IsDone())

	require.Len(t, rec.called, len(DefaultBots))
	for i, b := range DefaultBots {
		assert.Equal(t, b.Name, rec.called[i])
	}
	assert.EqualValues(t, len(DefaultBots), f.count(t, `SELECT COUNT(*) FROM phpbb_bots WHERE bot_active = 1`))

	botsGroup := f.count(t, `SELECT group_id FROM phpbb_groups WHERE group_name = 'BOTS'`)
	assert.EqualValues(t, botsGroup, f.stateInt(t, KeyBotsGroupID, 0))
	assert.EqualValues(t, len(DefaultBots), f.count(t,
		`SELECT COUNT(*) FROM phpbb_users WHERE user_type = ? AND user_colour = '9E8DA7' AND group_id = ?`, domain.UserIgnore, botsGroup))

	cursor, total, err := task.Progress(f.env.State)
	require.NoError(t, err)
	assert.Equal(t, total, cursor)

	// a completed run writes nothing
	res, err = task.Run(ctx, f.env)
	require.NoError(t, err)
	assert.True(t, res.IsDone())
	assert.Len(t, rec.called, len(DefaultBots))
}

func TestAddBots_FailedUserIsSkipped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	rec := &recordingCreator{fail: map[string]bool{"Bing [Bot]": true}}
	f.deps.NewUsers = func(conn *dbconn.Conn) users.Creator {
		rec.next = users.NewSQLCreator(conn, f.deps.Tables)
		return rec
	}

	res, err := NewAddBots(f.deps).Run(ctx, f.env)
	require.NoError(t, err)
	assert.True(t, res.IsDone())
	assert.Equal(t, 1, f.env.Messages.Count(MsgInsertBotFailed))
	assert.EqualValues(t, len(DefaultBots)-1, f.count(t, `SELECT COUNT(*) FROM phpbb_bots`))
	assert.Zero(t, f.count(t, `SELECT COUNT(*) FROM phpbb_bots WHERE bot_name = 'Bing [Bot]'`))
	assert.Equal(t, len(DefaultBots), f.stateInt(t, KeyAddBotIndex, 0))
}

func TestAddBots_MissingGroup(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.conn.Exec(ctx, `DELETE FROM phpbb_groups WHERE group_name = 'BOTS'`)
	require.NoError(t, err)

	res, err := NewAddBots(f.deps).Run(ctx, f.env)
	require.NoError(t, err)
	assert.True(t, res.IsDone())
	assert.Equal(t, 1, f.env.Messages.Count(MsgNoGroup))
	assert.Equal(t, len(DefaultBots), f.env.Messages.Count(MsgInsertBotFailed))
	assert.Zero(t, f.count(t, `SELECT COUNT(*) FROM phpbb_bots`))
	assert.True(t, f.stateHas(t, KeyBotsGroupID))
	assert.Zero(t, f.stateInt(t, KeyBotsGroupID, -1))
}

func TestAddLanguages_LabelsEveryFieldInNewLanguagesOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.conn.Exec(ctx, `INSERT INTO phpbb_lang (lang_iso, lang_dir) VALUES ('xx', 'xx')`)
	require.NoError(t, err)
	old := f.count(t, `SELECT lang_id FROM phpbb_lang WHERE lang_iso = 'xx'`)

	f.deps.Languages = lang.Static{
		{ISO: "en", Name: "British English", LocalName: "British English", Author: "Board Team"},
		{ISO: "de", Name: "German", LocalName: "Deutsch <Du>", Author: "A & B"},
		{ISO: "fr", Name: "French", LocalName: "Français", Author: `"Équipe"`},
	}
	res, err := NewAddLanguages(f.deps).Run(ctx, f.env)
	require.NoError(t, err)
	assert.True(t, res.IsDone())

	const langs = 3
	fields := f.count(t, `SELECT COUNT(*) FROM phpbb_profile_fields`)
	assert.EqualValues(t, langs+1, f.count(t, `SELECT COUNT(*) FROM phpbb_lang`))
	assert.EqualValues(t, fields*langs, f.count(t, `SELECT COUNT(*) FROM phpbb_profile_lang`))
	assert.Zero(t, f.count(t, `SELECT COUNT(*) FROM phpbb_profile_lang WHERE lang_id = ?`, old))

	local, err := f.conn.FetchOne(ctx, `SELECT lang_local_name FROM phpbb_lang WHERE lang_iso = 'de'`)
	require.NoError(t, err)
	assert.Equal(t, "Deutsch &lt;Du&gt;", dbconn.AsString(local))

	label, err := f.conn.FetchOne(ctx, `SELECT pl.lang_name FROM phpbb_profile_lang pl
		JOIN phpbb_profile_fields pf ON pf.field_id = pl.field_id
		WHERE pf.field_name = 'phpbb_location' LIMIT 1`)
	require.NoError(t, err)
	assert.Equal(t, "LOCATION", dbconn.AsString(label))
}

func TestAddLanguages_ProfileFieldReadFailureIsSoft(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.conn.Exec(ctx, `DROP TABLE phpbb_profile_fields`)
	require.NoError(t, err)

	f.deps.Languages = lang.Static{{ISO: "en", Name: "English"}}
	res, err := NewAddLanguages(f.deps).Run(ctx, f.env)
	require.NoError(t, err)
	assert.True(t, res.IsDone())
	assert.Equal(t, 1, f.env.Messages.Count(MsgDBError))
	assert.EqualValues(t, 1, f.count(t, `SELECT COUNT(*) FROM phpbb_lang`))
	assert.Zero(t, f.count(t, `SELECT COUNT(*) FROM phpbb_profile_lang`))
}

func TestFieldLabel(t *testing.T) {
	assert.Equal(t, "WEBSITE", FieldLabel("phpbb_website"))
	assert.Equal(t, "", FieldLabel("short"))
}

type recordingIndexer struct {
	mu   sync.Mutex
	docs []domain.SearchDocument
}

func (r *recordingIndexer) Index(_ context.Context, doc domain.SearchDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = append(r.docs, doc)
	return nil
}

func TestCreateSearchIndex_NoPosts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.conn.Exec(ctx, `DELETE FROM phpbb_posts`)
	require.NoError(t, err)

	rec := &recordingIndexer{}
	f.deps.NewIndexer = func(*dbconn.Conn) (search.Indexer, error) { return rec, nil }
	res, err := NewCreateSearchIndex(f.deps).Run(ctx, f.env)
	require.NoError(t, err)
	assert.True(t, res.IsDone())
	assert.Empty(t, rec.docs)

	flag, err := f.conn.FetchOne(ctx, `SELECT config_value FROM phpbb_config WHERE config_name = 'fulltext_native_load_upd'`)
	require.NoError(t, err)
	assert.Equal(t, "1", dbconn.AsString(flag))
}

func TestCreateSearchIndex_FeedsPostsInOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for i := 0; i < 5; i++ {
		_, err := f.conn.Exec(ctx, `INSERT INTO phpbb_posts (topic_id, forum_id, poster_id, post_subject, post_text) VALUES (1, 2, 2, ?, ?)`,
			faker.Sentence(), faker.Paragraph())
		require.NoError(t, err)
	}

	rec := &recordingIndexer{}
	f.deps.NewIndexer = func(*dbconn.Conn) (search.Indexer, error) { return rec, nil }
	_, err := NewCreateSearchIndex(f.deps).Run(ctx, f.env)
	require.NoError(t, err)

	require.Len(t, rec.docs, 6)
	for i := 1; i < len(rec.docs); i++ {
		assert.Less(t, rec.docs[i-1].ID, rec.docs[i].ID)
	}
	assert.Equal(t, search.DocumentPost, rec.docs[0].Type)
	assert.NotEmpty(t, rec.docs[0].Body)
}

func TestCreateSearchIndex_NativeBackend(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	task := NewCreateSearchIndex(f.deps)

	_, err := task.Run(ctx, f.env)
	require.NoError(t, err)
	matches := f.count(t, `SELECT COUNT(*) FROM phpbb_search_wordmatch`)
	assert.Positive(t, matches)

	// restarting from the first post leaves the index unchanged
	_, err = task.Run(ctx, f.env)
	require.NoError(t, err)
	assert.Equal(t, matches, f.count(t, `SELECT COUNT(*) FROM phpbb_search_wordmatch`))
}

func TestUpdateUserAndPostData(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	task := NewUpdateUserAndPostData(f.deps)

	res, err := task.Run(ctx, f.env)
	require.NoError(t, err)
	assert.False(t, res.IsDone())
	assert.EqualValues(t, 1, f.stateInt(t, KeyCorrectCount, 0))
	assert.EqualValues(t, 1, f.count(t, `SELECT COUNT(*) FROM phpbb_users WHERE username = 'Admin'`))
	assert.Zero(t, f.count(t, `SELECT COUNT(*) FROM phpbb_users WHERE user_regdate <> 0`))
	assert.False(t, f.stateHas(t, KeyInstallTime))

	res, err = task.Run(ctx, f.env)
	require.NoError(t, err)
	assert.True(t, res.IsDone())

	ts := installedAt.Unix()
	assert.EqualValues(t, ts, f.stateInt(t, KeyInstallTime, 0))

	rows, err := f.conn.FetchAll(ctx, `SELECT username_clean, user_password, user_ip, user_lang, user_email FROM phpbb_users WHERE username = ?`, "Héloïse")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	admin := rows[0]
	assert.Equal(t, "héloïse", dbconn.AsString(admin["username_clean"]))
	assert.True(t, f.deps.Passwords.Check("s3cret-pass", dbconn.AsString(admin["user_password"])))
	assert.Equal(t, "10.0.0.7", dbconn.AsString(admin["user_ip"]))
	assert.Equal(t, "de", dbconn.AsString(admin["user_lang"]))
	assert.Equal(t, "board@example.com", dbconn.AsString(admin["user_email"]))

	assert.Zero(t, f.count(t, `SELECT COUNT(*) FROM phpbb_users WHERE user_regdate <> ?`, ts))
	assert.Zero(t, f.count(t, `SELECT COUNT(*) FROM phpbb_forums WHERE forum_last_post_time <> ?`, ts))
	assert.Zero(t, f.count(t, `SELECT COUNT(*) FROM phpbb_topics WHERE topic_time <> ? OR topic_last_post_time <> ?`, ts, ts))
	assert.Zero(t, f.count(t, `SELECT COUNT(*) FROM phpbb_posts WHERE post_time <> ? OR poster_ip <> '10.0.0.7'`, ts))

	for _, q := range []string{
		`SELECT COUNT(*) FROM phpbb_forums WHERE forum_last_poster_name = 'Admin'`,
		`SELECT COUNT(*) FROM phpbb_topics WHERE topic_first_poster_name = 'Admin' OR topic_last_poster_name = 'Admin'`,
		`SELECT COUNT(*) FROM phpbb_moderator_cache WHERE username = 'Admin'`,
	} {
		assert.Zero(t, f.count(t, q), q)
	}
	assert.EqualValues(t, 1, f.count(t, `SELECT COUNT(*) FROM phpbb_moderator_cache WHERE username = ?`, "Héloïse"))
}

func TestSequence_FullInstallAndRerun(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	p := dbparams.Params{Driver: dbparams.DriverSQLite, Path: filepath.Join(dir, "board.db")}
	d := Deps{
		Connect: ParamsConnector(p),
		Tables:  domain.NewTables("forum_"),
		Install: domain.InstallConfig{
			Admin: domain.AdminConfig{Name: "root", Password: "hunter22", Email: "root@example.com"},
			Board: domain.BoardConfig{BoardEmail: "board@example.com", RemoteAddr: "192.0.2.1"},
		},
		Languages: lang.Static{{ISO: "en", Name: "English"}, {ISO: "fa", Name: "Persian"}},
		Passwords: &passwords.Manager{Cost: 4},
	}
	s := state.NewSQLiteStore(filepath.Join(dir, "state.sqlite"))
	require.NoError(t, s.Init())
	t.Cleanup(func() { _ = s.Close() })

	r := install.NewRunner(nil, Sequence(d)...)
	env := install.Env{State: s}
	passes, err := r.RunToCompletion(ctx, env, func() state.Budget { return state.Unlimited{} }, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, passes)

	conn, err := dbconn.MakeConnection(ctx, p)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	snapshot := func() map[string]int64 {
		out := map[string]int64{}
		for _, tbl := range []string{"forum_bots", "forum_users", "forum_lang", "forum_profile_lang", "forum_search_wordmatch"} {
			v, err := conn.FetchOne(ctx, `SELECT COUNT(*) FROM `+tbl)
			require.NoError(t, err)
			out[tbl] = dbconn.AsInt64(v)
		}
		return out
	}
	before := snapshot()
	assert.EqualValues(t, len(DefaultBots), before["forum_bots"])
	assert.EqualValues(t, 2, before["forum_lang"])

	p2, err := r.Step(ctx, env)
	require.NoError(t, err)
	assert.True(t, p2.Done)
	assert.Empty(t, p2.Completed)
	assert.Equal(t, before, snapshot())

	status, err := r.Status(s)
	require.NoError(t, err)
	for _, st := range status {
		assert.True(t, st.Done, st.Name)
	}
}
