package domain

import "time"

// DatabaseConfig is the forum's own view of its database, as written to the
// install file. Driver uses the forum's legacy identifiers (mysqli, postgres,
// sqlite3, ...).
type DatabaseConfig struct {
	Driver   string `json:"driver" yaml:"driver"`
	Host     string `json:"host" yaml:"host"`
	User     string `json:"user,omitempty" yaml:"user,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Port     string `json:"port,omitempty" yaml:"port,omitempty"`
}

type AdminConfig struct {
	Name     string `json:"name" yaml:"name"`
	Password string `json:"password" yaml:"password"`
	Email    string `json:"email" yaml:"email"`
}

type BoardConfig struct {
	DefaultLang string `json:"default_lang" yaml:"default_lang"`
	UserLang    string `json:"user_lang,omitempty" yaml:"user_lang,omitempty"`
	BoardEmail  string `json:"board_email" yaml:"board_email"`
	DateFormat  string `json:"date_format,omitempty" yaml:"date_format,omitempty"`
	TablePrefix string `json:"table_prefix,omitempty" yaml:"table_prefix,omitempty"`
	LanguageDir string `json:"language_dir,omitempty" yaml:"language_dir,omitempty"`
	RemoteAddr  string `json:"remote_addr,omitempty" yaml:"remote_addr,omitempty"`
}

type SearchConfig struct {
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty"`
	URL     string `json:"url,omitempty" yaml:"url,omitempty"`
}

// InstallConfig is everything the installer needs for one board.
type InstallConfig struct {
	Database DatabaseConfig `json:"database" yaml:"database"`
	Admin    AdminConfig    `json:"admin" yaml:"admin"`
	Board    BoardConfig    `json:"board" yaml:"board"`
	Search   SearchConfig   `json:"search,omitempty" yaml:"search,omitempty"`
}

const (
	DefaultTablePrefix = "phpbb_"
	DefaultDateFormat  = "D M d, Y g:i a"
	DefaultLang        = "en"
)

// Tables resolves the forum table names for a given prefix.
type Tables struct {
	Bots                  string
	Config                string
	Forums                string
	Groups                string
	Lang                  string
	ModeratorCache        string
	Posts                 string
	ProfileFields         string
	ProfileFieldsLanguage string
	SearchWordlist        string
	SearchWordmatch       string
	Topics                string
	UserGroup             string
	Users                 string
}

func NewTables(prefix string) Tables {
	if prefix == "" {
		prefix = DefaultTablePrefix
	}
	return Tables{
		Bots:                  prefix + "bots",
		Config:                prefix + "config",
		Forums:                prefix + "forums",
		Groups:                prefix + "groups",
		Lang:                  prefix + "lang",
		ModeratorCache:        prefix + "moderator_cache",
		Posts:                 prefix + "posts",
		ProfileFields:         prefix + "profile_fields",
		ProfileFieldsLanguage: prefix + "profile_lang",
		SearchWordlist:        prefix + "search_wordlist",
		SearchWordmatch:       prefix + "search_wordmatch",
		Topics:                prefix + "topics",
		UserGroup:             prefix + "user_group",
		Users:                 prefix + "users",
	}
}

// User types as stored in users.user_type.
const (
	UserNormal   = 0
	UserInactive = 1
	UserIgnore   = 2
	UserFounder  = 3
)

// UserRow is the input of the user-creation routine.
type UserRow struct {
	Type            int
	GroupID         int64
	Username        string
	RegDate         time.Time
	Password        string
	Colour          string
	Email           string
	Lang            string
	Style           int
	Timezone        string
	DateFormat      string
	AllowMassEmail  bool
	AllowPrivateMsg bool
}

// Bot is one well-known crawler identity.
type Bot struct {
	Name  string
	Agent string
	IP    string
}

// Language is one installable language pack.
type Language struct {
	ISO       string `json:"iso"`
	Name      string `json:"name"`
	LocalName string `json:"local_name"`
	Author    string `json:"author"`
}

// SearchDocument is the unit handed to a full-text indexer.
type SearchDocument struct {
	Type     string
	ID       int64
	Body     string
	Title    string
	AuthorID int64
	ForumID  int64
}

// TaskStatus summarises one task for status output.
type TaskStatus struct {
	Name   string `json:"name" yaml:"name"`
	Done   bool   `json:"done" yaml:"done"`
	Cursor int    `json:"cursor,omitempty" yaml:"cursor,omitempty"`
	Total  int    `json:"total,omitempty" yaml:"total,omitempty"`
}

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusMoreWork  RunStatus = "more_work"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// InstallRun records one pass of the installer over the task sequence.
type InstallRun struct {
	ID          string     `json:"id" yaml:"id"`
	InstallID   string     `json:"install_id" yaml:"install_id"`
	ConfigHash  string     `json:"config_hash" yaml:"config_hash"`
	Status      RunStatus  `json:"status" yaml:"status"`
	Completed   []string   `json:"completed,omitempty" yaml:"completed,omitempty"`
	NextTask    string     `json:"next_task,omitempty" yaml:"next_task,omitempty"`
	StartedAt   time.Time  `json:"started_at" yaml:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty" yaml:"error,omitempty"`
}
