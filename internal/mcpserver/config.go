package mcpserver

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/figadore/json-schema-generator/loader"
	"github.com/figadore/json-schema-generator/resolver"
)

// serverConfig holds all configurable MCP server defaults.
// Loaded from environment variables via loadConfig().
type serverConfig struct {
	// Compilation defaults.
	Extension          string
	MaxDepth           int
	MaxFileSize        int64
	MaxCachedDocuments int
	RebaseSelfRefs     bool

	// Root restricts file access to one directory when set.
	Root string

	// Refs tool defaults.
	RefsLimit int
	MaxLimit  int
}

// cfg is the active server configuration. Run reloads it so values from a
// .env file loaded after package initialization take effect.
var cfg = loadConfig()

// loadConfig reads configuration from SCHEMAGEN_* environment variables.
// Invalid values log a warning and fall back to the hardcoded default.
func loadConfig() *serverConfig {
	return &serverConfig{
		Extension:          envExtension("SCHEMAGEN_EXTENSION", loader.DefaultExtension),
		MaxDepth:           envInt("SCHEMAGEN_MAX_DEPTH", resolver.DefaultMaxDepth),
		MaxFileSize:        envInt64("SCHEMAGEN_MAX_FILE_SIZE", loader.DefaultMaxFileSize),
		MaxCachedDocuments: envInt("SCHEMAGEN_MAX_CACHED_DOCUMENTS", loader.DefaultMaxCachedDocuments),
		RebaseSelfRefs:     envBool("SCHEMAGEN_REBASE_SELF_REFS", false),
		Root:               os.Getenv("SCHEMAGEN_ROOT"),
		RefsLimit:          envInt("SCHEMAGEN_REFS_LIMIT", 100),
		MaxLimit:           envInt("SCHEMAGEN_MAX_LIMIT", 1000),
	}
}

// LoadDotEnv loads environment variables from path without overriding
// variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid bool env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("invalid int env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return n
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		slog.Warn("invalid int env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return n
}

// envExtension reads a file extension, adding the leading dot if missing.
func envExtension(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	if v == "." || strings.ContainsAny(v, `/\`) {
		slog.Warn("invalid extension env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	if !strings.HasPrefix(v, ".") {
		v = "." + v
	}
	return v
}
