package tasks

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mmrzaf/forumsetup/internal/dbconn"
	"github.com/mmrzaf/forumsetup/internal/install"
)

// profileFieldPrefix is stripped from field names to form the label.
const profileFieldPrefix = len("phpbb_")

var upper = cases.Upper(language.Und)

// specialChars escapes like the board's template layer; single quotes pass
// through unescaped.
var specialChars = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

// AddLanguages records every discovered language pack and gives each
// existing custom profile field a label in the new languages. It runs in a
// single pass.
type AddLanguages struct {
	deps Deps
}

func NewAddLanguages(d Deps) *AddLanguages { return &AddLanguages{deps: d} }

func (t *AddLanguages) Name() string { return "add_languages" }

func (t *AddLanguages) Run(ctx context.Context, env install.Env) (install.Result, error) {
	langs, err := t.deps.languages().AvailableLanguages()
	if err != nil {
		return install.Result{}, fmt.Errorf("scan languages: %w", err)
	}

	conn, err := t.deps.open(ctx)
	if err != nil {
		return install.Result{}, err
	}
	defer conn.Close()

	langStmt, err := conn.PrepareInsert(ctx, `INSERT INTO `+t.deps.Tables.Lang+`
		(lang_iso, lang_dir, lang_english_name, lang_local_name, lang_author)
		VALUES (?, ?, ?, ?, ?)`, "lang_id")
	if err != nil {
		return install.Result{}, err
	}
	defer langStmt.Close()

	installed := make([]int64, 0, len(langs))
	for _, l := range langs {
		id, err := langStmt.ExecInsert(ctx, l.ISO, l.ISO,
			specialChars.Replace(l.Name), specialChars.Replace(l.LocalName), specialChars.Replace(l.Author))
		if err != nil {
			return install.Result{}, fmt.Errorf("insert language %s: %w", l.ISO, err)
		}
		installed = append(installed, id)
	}

	fields, err := conn.FetchAll(ctx, `SELECT * FROM `+t.deps.Tables.ProfileFields)
	if err != nil {
		env.Messages.AddError(MsgDBError, err.Error())
	}
	if len(fields) == 0 || len(installed) == 0 {
		return install.Done(), nil
	}

	stmt, err := conn.Prepare(ctx, `INSERT INTO `+t.deps.Tables.ProfileFieldsLanguage+`
		(field_id, lang_id, lang_name, lang_explain, lang_default_value)
		VALUES (?, ?, ?, '', '')`)
	if err != nil {
		return install.Result{}, err
	}
	defer stmt.Close()

	for _, f := range fields {
		fieldID := dbconn.AsInt64(f["field_id"])
		label := FieldLabel(dbconn.AsString(f["field_name"]))
		for _, langID := range installed {
			if _, err := stmt.Exec(ctx, fieldID, langID, label); err != nil {
				return install.Result{}, fmt.Errorf("insert profile label %d/%d: %w", fieldID, langID, err)
			}
		}
	}
	return install.Done(), nil
}

// FieldLabel derives the default label of a profile field from its name.
func FieldLabel(fieldName string) string {
	if len(fieldName) <= profileFieldPrefix {
		return ""
	}
	return upper.String(fieldName[profileFieldPrefix:])
}
