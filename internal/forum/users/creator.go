// Package users creates forum accounts.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mmrzaf/forumsetup/internal/dbconn"
	"github.com/mmrzaf/forumsetup/internal/domain"
)

var (
	ErrEmptyUsername = errors.New("username is empty")
	ErrUsernameTaken = errors.New("username already taken")
	ErrNoGroup       = errors.New("user has no default group")
)

// Creator adds a user and returns its id.
type Creator interface {
	AddUser(ctx context.Context, row domain.UserRow) (int64, error)
}

type SQLCreator struct {
	conn   *dbconn.Conn
	tables domain.Tables
}

func NewSQLCreator(conn *dbconn.Conn, tables domain.Tables) *SQLCreator {
	return &SQLCreator{conn: conn, tables: tables}
}

func (c *SQLCreator) AddUser(ctx context.Context, row domain.UserRow) (int64, error) {
	name := strings.TrimSpace(row.Username)
	if name == "" {
		return 0, ErrEmptyUsername
	}
	if row.GroupID <= 0 {
		return 0, fmt.Errorf("%w: %s", ErrNoGroup, name)
	}
	clean := CleanUsername(name)

	_, err := c.conn.FetchOne(ctx, `SELECT user_id FROM `+c.tables.Users+` WHERE username_clean = ?`, clean)
	switch {
	case err == nil:
		return 0, fmt.Errorf("%w: %s", ErrUsernameTaken, name)
	case !errors.Is(err, sql.ErrNoRows):
		return 0, err
	}

	id, err := c.conn.InsertID(ctx, `INSERT INTO `+c.tables.Users+`
		(user_type, group_id, username, username_clean, user_password, user_email,
		 user_regdate, user_lang, user_style, user_timezone, user_dateformat,
		 user_colour, user_allow_massemail, user_allow_pm)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, "user_id",
		row.Type, row.GroupID, name, clean, row.Password, row.Email,
		row.RegDate.Unix(), row.Lang, row.Style, row.Timezone, row.DateFormat,
		row.Colour, boolInt(row.AllowMassEmail), boolInt(row.AllowPrivateMsg),
	)
	if err != nil {
		return 0, fmt.Errorf("insert user %s: %w", name, err)
	}

	if _, err := c.conn.Exec(ctx, `INSERT INTO `+c.tables.UserGroup+` (group_id, user_id, user_pending) VALUES (?, ?, 0)`, row.GroupID, id); err != nil {
		return 0, fmt.Errorf("add user %s to group: %w", name, err)
	}
	return id, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
