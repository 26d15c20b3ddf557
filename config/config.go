package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AppConfig holds environment driven configuration values.
// Sensitive data should never have defaults inside code and must be provided via config files or the environment.
type AppConfig struct {
	AppPort            string
	JWTSecret          string
	DatabaseURI        string
	DBHost             string
	DBPort             string
	DBUser             string
	DBPassword         string
	DBName             string
	RateLimitPerMinute int
	AllowedOrigins     []string
	// Gin framework configuration
	GinMode string
	GinPath string
	// Redis for response caching and token revocation
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
	// Moderation policy: when true, only the comment author may delete
	// their comment. Defaults to false to match the permissive legacy
	// behavior of the product.
	CommentDeleteOwnerOnly bool
	// Usernames granted the privileged "blogger" role at login, allowed
	// to manage categories and tags.
	BloggerUsernames []string
}

var cfg AppConfig
var loaded bool

// Load loads the application configuration. It should be called once during boot.
// Precedence: config/config.json -> defaults -> environment variable overrides.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	_ = loadJSONConfig(filepath.Join("config", "config.json"), &cfg)
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set in environment variables")
	}

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

// SetForTesting replaces the cached configuration. Intended for tests only.
func SetForTesting(c AppConfig) {
	cfg = c
	loaded = true
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// loadJSONConfig reads a flat JSON file into cfg if present. Returns an
// error only for invalid JSON; a missing file is ignored.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var raw map[string]any
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return err
	}

	getString := func(key string) string {
		if v, ok := raw[key]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
		return ""
	}
	getInt := func(key string) int {
		if v, ok := raw[key]; ok {
			switch t := v.(type) {
			case float64:
				return int(t)
			case int:
				return t
			case json.Number:
				i, _ := t.Int64()
				return int(i)
			}
		}
		return 0
	}
	getBool := func(key string) bool {
		if v, ok := raw[key]; ok {
			if b, ok := v.(bool); ok {
				return b
			}
		}
		return false
	}
	getStringSlice := func(key string) []string {
		if v, ok := raw[key]; ok {
			if arr, ok := v.([]any); ok {
				res := make([]string, 0, len(arr))
				for _, it := range arr {
					if s, ok := it.(string); ok {
						res = append(res, s)
					}
				}
				return res
			}
		}
		return nil
	}

	out.AppPort = getString("AppPort")
	out.JWTSecret = getString("JWTSecret")
	out.DatabaseURI = getString("DatabaseURI")
	out.DBHost = getString("DBHost")
	out.DBPort = getString("DBPort")
	out.DBUser = getString("DBUser")
	out.DBPassword = getString("DBPassword")
	out.DBName = getString("DBName")
	if v := getInt("RateLimitPerMinute"); v != 0 {
		out.RateLimitPerMinute = v
	}
	if list := getStringSlice("AllowedOrigins"); len(list) > 0 {
		out.AllowedOrigins = list
	}
	out.GinMode = getString("GinMode")
	out.GinPath = getString("GinPath")
	out.RedisHost = getString("RedisHost")
	if v := getInt("RedisPort"); v != 0 {
		out.RedisPort = v
	}
	out.RedisDB = getInt("RedisDB")
	out.RedisPassword = getString("RedisPassword")
	out.LogLevel = getString("LogLevel")
	out.LogPath = getString("LogPath")
	out.LogMaxSizeMB = getInt("LogMaxSizeMB")
	out.LogMaxBackups = getInt("LogMaxBackups")
	out.LogMaxAgeDays = getInt("LogMaxAgeDays")
	out.LogCompress = getBool("LogCompress")
	out.CommentDeleteOwnerOnly = getBool("CommentDeleteOwnerOnly")
	if list := getStringSlice("BloggerUsernames"); len(list) > 0 {
		out.BloggerUsernames = list
	}
	return nil
}

func applyDefaults(out *AppConfig) {
	if out.AppPort == "" {
		out.AppPort = "8080"
	}
	if out.DBHost == "" {
		out.DBHost = "127.0.0.1"
	}
	if out.DBPort == "" {
		out.DBPort = "3306"
	}
	if out.DBUser == "" {
		out.DBUser = "blogify"
	}
	if out.DBName == "" {
		out.DBName = "blogify"
	}
	if out.RateLimitPerMinute == 0 {
		out.RateLimitPerMinute = 60
	}
	if len(out.AllowedOrigins) == 0 {
		out.AllowedOrigins = []string{"*"}
	}
	if out.GinMode == "" {
		out.GinMode = "release"
	}
	if out.GinPath == "" {
		out.GinPath = "logs/gin.log"
	}
	if out.RedisHost == "" {
		out.RedisHost = "127.0.0.1"
	}
	if out.RedisPort == 0 {
		out.RedisPort = 6379
	}
	if out.LogLevel == "" {
		out.LogLevel = "info"
	}
	if out.LogPath == "" {
		out.LogPath = "logs/app.log"
	}
}

func applyEnvOverrides(out *AppConfig) {
	out.AppPort = getEnv("APP_PORT", out.AppPort)
	out.JWTSecret = getEnv("JWT_SECRET", out.JWTSecret)
	out.DatabaseURI = getEnv("DATABASE_URI", out.DatabaseURI)
	out.DBHost = getEnv("DB_HOST", out.DBHost)
	out.DBPort = getEnv("DB_PORT", out.DBPort)
	out.DBUser = getEnv("DB_USER", out.DBUser)
	out.DBPassword = getEnv("DB_PASSWORD", out.DBPassword)
	out.DBName = getEnv("DB_NAME", out.DBName)
	if v := os.Getenv("RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			out.RateLimitPerMinute = n
		}
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		parts := strings.Split(v, ",")
		origins := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				origins = append(origins, p)
			}
		}
		if len(origins) > 0 {
			out.AllowedOrigins = origins
		}
	}
	out.GinMode = getEnv("GIN_MODE", out.GinMode)
	out.RedisHost = getEnv("REDIS_HOST", out.RedisHost)
	if v := os.Getenv("REDIS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			out.RedisPort = n
		}
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			out.RedisDB = n
		}
	}
	out.RedisPassword = getEnv("REDIS_PASSWORD", out.RedisPassword)
	out.LogLevel = getEnv("LOG_LEVEL", out.LogLevel)
	out.LogPath = getEnv("LOG_PATH", out.LogPath)
	if v := os.Getenv("COMMENT_DELETE_OWNER_ONLY"); v != "" {
		out.CommentDeleteOwnerOnly = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("BLOGGER_USERNAMES"); v != "" {
		parts := strings.Split(v, ",")
		names := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				names = append(names, p)
			}
		}
		if len(names) > 0 {
			out.BloggerUsernames = names
		}
	}
}

// IsBlogger reports whether the username is configured with the
// privileged taxonomy-management role.
func IsBlogger(username string) bool {
	if username == "" {
		return false
	}
	for _, u := range Get().BloggerUsernames {
		if strings.EqualFold(strings.TrimSpace(u), username) {
			return true
		}
	}
	return false
}
