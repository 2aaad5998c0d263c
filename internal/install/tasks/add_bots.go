package tasks

import (
	"context"
	"fmt"

	"github.com/mmrzaf/forumsetup/internal/dbconn"
	"github.com/mmrzaf/forumsetup/internal/domain"
	"github.com/mmrzaf/forumsetup/internal/install"
	"github.com/mmrzaf/forumsetup/internal/install/state"
)

const botColour = "9E8DA7"

// AddBots registers a user account and a bot row for each known crawler.
type AddBots struct {
	deps Deps
	bots []domain.Bot
}

func NewAddBots(d Deps) *AddBots {
	return &AddBots{deps: d, bots: DefaultBots}
}

func (t *AddBots) Name() string { return "add_bots" }

func (t *AddBots) Progress(s state.Store) (int, int, error) {
	n, err := s.GetInt(KeyAddBotIndex, 0)
	return n, len(t.bots), err
}

func (t *AddBots) Run(ctx context.Context, env install.Env) (install.Result, error) {
	cp, err := install.LoadCheckpoint(env.State, KeyAddBotIndex)
	if err != nil {
		return install.Result{}, err
	}
	if cp.Index >= len(t.bots) {
		return install.Done(), nil
	}

	conn, err := t.deps.open(ctx)
	if err != nil {
		return install.Result{}, err
	}
	defer conn.Close()

	groupID, err := t.groupID(env, func() (int64, error) {
		v, err := conn.FetchOne(ctx, `SELECT group_id FROM `+t.deps.Tables.Groups+` WHERE group_name = 'BOTS'`)
		if err != nil {
			return 0, err
		}
		return dbconn.AsInt64(v), nil
	})
	if err != nil {
		return install.Result{}, err
	}
	if groupID == 0 {
		env.Messages.AddError(MsgNoGroup, "")
	}

	stmt, err := conn.Prepare(ctx, `INSERT INTO `+t.deps.Tables.Bots+`
		(bot_active, bot_name, user_id, bot_agent, bot_ip) VALUES (1, ?, ?, ?, ?)`)
	if err != nil {
		return install.Result{}, err
	}
	defer stmt.Close()

	creator := t.deps.users(conn)
	lang := t.deps.defaultLang()
	dateFormat := t.deps.dateFormat()

	return install.RunBatch(ctx, env, KeyAddBotIndex, t.bots, func(ctx context.Context, _ int, bot domain.Bot) error {
		userID, err := creator.AddUser(ctx, domain.UserRow{
			Type:       domain.UserIgnore,
			GroupID:    groupID,
			Username:   bot.Name,
			RegDate:    t.deps.now(),
			Colour:     botColour,
			Lang:       lang,
			Style:      1,
			Timezone:   "UTC",
			DateFormat: dateFormat,
		})
		if err != nil || userID == 0 {
			// skipped for good; retrying would leave half-created bots
			detail := bot.Name
			if err != nil {
				detail = fmt.Sprintf("%s: %v", bot.Name, err)
			}
			env.Messages.AddError(MsgInsertBotFailed, detail)
			return nil
		}
		if _, err := stmt.Exec(ctx, bot.Name, userID, bot.Agent, bot.IP); err != nil {
			return fmt.Errorf("insert bot %s: %w", bot.Name, err)
		}
		return nil
	})
}

// groupID returns the cached BOTS group id, looking it up once. A failed
// lookup is cached as 0.
func (t *AddBots) groupID(env install.Env, lookup func() (int64, error)) (int64, error) {
	cached, err := env.State.Has(KeyBotsGroupID)
	if err != nil {
		return 0, err
	}
	if cached {
		n, err := env.State.GetInt(KeyBotsGroupID, 0)
		return int64(n), err
	}
	id, err := lookup()
	if err != nil {
		id = 0
	}
	if err := env.State.Set(KeyBotsGroupID, id); err != nil {
		return 0, err
	}
	return id, nil
}
