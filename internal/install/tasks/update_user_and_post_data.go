package tasks

import (
	"context"
	"fmt"

	"github.com/mmrzaf/forumsetup/internal/domain"
	"github.com/mmrzaf/forumsetup/internal/forum/netaddr"
	"github.com/mmrzaf/forumsetup/internal/forum/passwords"
	"github.com/mmrzaf/forumsetup/internal/forum/users"
	"github.com/mmrzaf/forumsetup/internal/install"
	"github.com/mmrzaf/forumsetup/internal/schema"
)

// UpdateUserAndPostData replaces the placeholder admin identity shipped
// with the default data and stamps every seeded row with the install time.
// Its first invocation only arms a counter and asks to be called again.
type UpdateUserAndPostData struct {
	deps Deps
}

func NewUpdateUserAndPostData(d Deps) *UpdateUserAndPostData {
	return &UpdateUserAndPostData{deps: d}
}

func (t *UpdateUserAndPostData) Name() string { return "update_user_and_post_data" }

func (t *UpdateUserAndPostData) Run(ctx context.Context, env install.Env) (install.Result, error) {
	armed, err := env.State.Has(KeyCorrectCount)
	if err != nil {
		return install.Result{}, err
	}
	if !armed {
		if err := env.State.Set(KeyCorrectCount, 1); err != nil {
			return install.Result{}, err
		}
		return install.MoreWork(install.Checkpoint{Key: KeyCorrectCount, Index: 1}), nil
	}

	admin := t.deps.Install.Admin
	pm := t.deps.Passwords
	if pm == nil {
		pm = passwords.NewManager()
	}
	hash, err := pm.Hash(admin.Password)
	if err != nil {
		return install.Result{}, fmt.Errorf("hash admin password: %w", err)
	}

	userIP, ok := netaddr.NormalizeIP(t.deps.Install.Board.RemoteAddr)
	if !ok {
		userIP = ""
	}
	now, err := t.installTime(env)
	if err != nil {
		return install.Result{}, err
	}
	userLang := t.deps.Install.Board.UserLang
	if userLang == "" {
		userLang = domain.DefaultLang
	}

	conn, err := t.deps.open(ctx)
	if err != nil {
		return install.Result{}, err
	}
	defer conn.Close()

	tb := t.deps.Tables
	placeholder := schema.PlaceholderAdmin
	stmts := []struct {
		query string
		args  []any
	}{
		{
			`UPDATE ` + tb.Users + ` SET username = ?, user_password = ?, user_ip = ?, user_lang = ?,
				user_email = ?, user_dateformat = ?, username_clean = ? WHERE username = ?`,
			[]any{admin.Name, hash, userIP, userLang, t.deps.Install.Board.BoardEmail, t.deps.dateFormat(),
				users.CleanUsername(admin.Name), placeholder},
		},
		{`UPDATE ` + tb.Users + ` SET user_regdate = ?`, []any{now}},
		{`UPDATE ` + tb.Forums + ` SET forum_last_poster_name = ? WHERE forum_last_poster_name = ?`, []any{admin.Name, placeholder}},
		{`UPDATE ` + tb.Forums + ` SET forum_last_post_time = ?`, []any{now}},
		{
			`UPDATE ` + tb.Topics + ` SET topic_first_poster_name = ?, topic_last_poster_name = ?
				WHERE topic_first_poster_name = ? OR topic_last_poster_name = ?`,
			[]any{admin.Name, admin.Name, placeholder, placeholder},
		},
		{`UPDATE ` + tb.Topics + ` SET topic_time = ?, topic_last_post_time = ?`, []any{now, now}},
		{`UPDATE ` + tb.Posts + ` SET post_time = ?, poster_ip = ?`, []any{now, userIP}},
		{`UPDATE ` + tb.ModeratorCache + ` SET username = ? WHERE username = ?`, []any{admin.Name, placeholder}},
	}
	for _, s := range stmts {
		if _, err := conn.Exec(ctx, s.query, s.args...); err != nil {
			return install.Result{}, fmt.Errorf("update admin data: %w", err)
		}
	}
	return install.Done(), nil
}

// installTime is recorded once and reused on every later run.
func (t *UpdateUserAndPostData) installTime(env install.Env) (int64, error) {
	recorded, err := env.State.Has(KeyInstallTime)
	if err != nil {
		return 0, err
	}
	if recorded {
		n, err := env.State.GetInt(KeyInstallTime, 0)
		return int64(n), err
	}
	now := t.deps.now().Unix()
	if err := env.State.Set(KeyInstallTime, now); err != nil {
		return 0, err
	}
	return now, nil
}
