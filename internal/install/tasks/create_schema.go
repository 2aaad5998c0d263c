package tasks

import (
	"context"

	"github.com/mmrzaf/forumsetup/internal/install"
	"github.com/mmrzaf/forumsetup/internal/schema"
)

// CreateSchema creates any missing forum table.
type CreateSchema struct {
	deps Deps
}

func NewCreateSchema(d Deps) *CreateSchema { return &CreateSchema{deps: d} }

func (t *CreateSchema) Name() string { return "create_schema" }

func (t *CreateSchema) Run(ctx context.Context, _ install.Env) (install.Result, error) {
	conn, err := t.deps.open(ctx)
	if err != nil {
		return install.Result{}, err
	}
	defer conn.Close()

	if err := schema.Create(ctx, conn, t.deps.Tables); err != nil {
		return install.Result{}, err
	}
	return install.Done(), nil
}

// AddDefaultData inserts the groups, placeholder admin, welcome post and
// profile fields the later tasks build on.
type AddDefaultData struct {
	deps Deps
}

func NewAddDefaultData(d Deps) *AddDefaultData { return &AddDefaultData{deps: d} }

func (t *AddDefaultData) Name() string { return "add_default_data" }

func (t *AddDefaultData) Run(ctx context.Context, _ install.Env) (install.Result, error) {
	conn, err := t.deps.open(ctx)
	if err != nil {
		return install.Result{}, err
	}
	defer conn.Close()

	board := t.deps.Install.Board
	board.DefaultLang = t.deps.defaultLang()
	board.DateFormat = t.deps.dateFormat()
	if err := schema.SeedDefaults(ctx, conn, t.deps.Tables, board); err != nil {
		return install.Result{}, err
	}
	return install.Done(), nil
}
