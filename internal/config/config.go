package config

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	InstallFile      string
	StatePath        string
	LogLevel         string
	MaxExecutionTime string
	MemoryLimitMB    int64
	MaxPasses        int
}

// Load reads FORUMSETUP_* variables. A .env file in the working directory
// fills in anything not already set in the environment.
func Load() *Config {
	loadDotEnv(".env")
	return &Config{
		InstallFile:      getEnv("FORUMSETUP_INSTALL_FILE", "./install.yaml"),
		StatePath:        getEnv("FORUMSETUP_STATE", "./install-state.sqlite"),
		LogLevel:         getEnv("FORUMSETUP_LOG_LEVEL", "info"),
		MaxExecutionTime: getEnv("FORUMSETUP_MAX_EXECUTION_TIME", "30s"),
		MemoryLimitMB:    getEnvInt("FORUMSETUP_MEMORY_LIMIT_MB", 128),
		MaxPasses:        int(getEnvInt("FORUMSETUP_MAX_PASSES", 100)),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return defaultValue
	}
	return n
}

func loadDotEnv(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		v = strings.Trim(strings.TrimSpace(v), `"'`)
		if _, exists := os.LookupEnv(k); exists {
			continue
		}
		_ = os.Setenv(k, v)
	}
}
