package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// AppConfig holds environment driven configuration values.
// Sensitive data should never have defaults inside code and must be provided via env files or the environment.
type AppConfig struct {
	AppPort            string
	JWTSecret          string
	MountPath          string
	RateLimitPerMinute int
	AllowedOrigins     []string
	Timezone           string
	DefaultLocale      string
	// Gin framework configuration
	GinMode string
	GinPath string
	// Database
	DBDriver          string
	DatabaseURI       string
	DBHost            string
	DBPort            string
	DBUser            string
	DBPassword        string
	DBName            string
	MigrateHostTables bool
	// Redis for caching and token revocation lookups
	RedisDisabled bool
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
	// Master switch for every feature below
	PluginEnabled bool
	// Check-in
	CheckinEnabled               bool
	CheckinBasePoints            int
	CheckinConsecutiveBonus      int
	CheckinLotteryEnabled        bool
	CheckinLotteryPrizes         string
	CheckinLotteryProbabilities  string
	CheckinExtraLotteryCost      int
	CheckinMaxExtraLotteryPerDay int
	// To-do / wish list
	TodoEnabled  bool
	TodoMaxItems int
	// Badge wall
	BadgeWallEnabled bool
	BadgeWallPublic  bool
	// Custom emoji
	CustomEmojiEnabled    bool
	CustomEmojiMaxPerUser int
	CustomEmojiMaxSizeKB  int
}

// Feature names a switchable plugin module.
type Feature string

const (
	FeatureCheckin     Feature = "checkin"
	FeatureTodo        Feature = "todo"
	FeatureBadgeWall   Feature = "badge_wall"
	FeatureCustomEmoji Feature = "custom_emoji"
)

// FeatureEnabled reports whether the master switch and the module flag are both on.
func (c AppConfig) FeatureEnabled(f Feature) bool {
	if !c.PluginEnabled {
		return false
	}
	switch f {
	case FeatureCheckin:
		return c.CheckinEnabled
	case FeatureTodo:
		return c.TodoEnabled
	case FeatureBadgeWall:
		return c.BadgeWallEnabled
	case FeatureCustomEmoji:
		return c.CustomEmojiEnabled
	}
	return false
}

// Location resolves Timezone, falling back to the process local zone.
func (c AppConfig) Location() *time.Location {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("unknown timezone %q, using local: %v", c.Timezone, err)
		return time.Local
	}
	return loc
}

var (
	cfg    AppConfig
	loaded bool
	mu     sync.RWMutex
)

// Load loads the application configuration. It should be called once during boot.
func Load() AppConfig {
	mu.Lock()
	defer mu.Unlock()
	if loaded {
		return cfg
	}

	// Precedence: feature defaults -> config/config.json -> defaults -> environment variable overrides
	c := AppConfig{}
	applyFeatureDefaults(&c)
	if err := loadJSONConfig(filepath.Join("config", "config.json"), &c); err != nil {
		log.Printf("invalid config/config.json, ignoring: %v", err)
	}
	applyDefaults(&c)
	applyEnvOverrides(&c)

	if c.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set in environment variables")
	}

	cfg = c
	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	mu.RLock()
	if loaded {
		c := cfg
		mu.RUnlock()
		return c
	}
	mu.RUnlock()
	return Load()
}

// Set replaces the cached configuration. Defaults are applied to zero values.
func Set(c AppConfig) {
	applyDefaults(&c)
	mu.Lock()
	cfg = c
	loaded = true
	mu.Unlock()
}

// Defaults returns a configuration with every feature on and default limits.
func Defaults() AppConfig {
	c := AppConfig{}
	applyFeatureDefaults(&c)
	applyDefaults(&c)
	return c
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// loadJSONConfig reads JSON file into cfg if present. Returns error only for invalid JSON.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil // silently ignore missing file
	}
	defer f.Close()

	var raw map[string]any
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return err
	}

	getString := func(m map[string]any, key string) string {
		if v, ok := m[key]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
		return ""
	}
	getInt := func(m map[string]any, key string) int {
		if v, ok := m[key]; ok {
			if f, ok := v.(float64); ok {
				return int(f)
			}
		}
		return 0
	}
	// setBool only touches the target when the key is present so true defaults survive.
	setBool := func(m map[string]any, key string, dst *bool) {
		if v, ok := m[key]; ok {
			if b, ok := v.(bool); ok {
				*dst = b
			}
		}
	}
	getStringSlice := func(m map[string]any, key string) []string {
		if v, ok := m[key]; ok {
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

	if app, ok := raw["app"].(map[string]any); ok {
		out.AppPort = getString(app, "AppPort")
		out.JWTSecret = getString(app, "JWTSecret")
		out.MountPath = getString(app, "MountPath")
		out.Timezone = getString(app, "Timezone")
		out.DefaultLocale = getString(app, "DefaultLocale")
		out.RateLimitPerMinute = getInt(app, "RateLimitPerMinute")
		if list := getStringSlice(app, "AllowedOrigins"); len(list) > 0 {
			out.AllowedOrigins = list
		}
		setBool(app, "PluginEnabled", &out.PluginEnabled)
	}

	if g, ok := raw["gin"].(map[string]any); ok {
		out.GinMode = getString(g, "Mode")
		out.GinPath = getString(g, "LogPath")
	}

	if dbs, ok := raw["database"].(map[string]any); ok {
		out.DBDriver = getString(dbs, "Driver")
		out.DatabaseURI = getString(dbs, "DatabaseURI")
		out.DBHost = getString(dbs, "DBHost")
		out.DBPort = getString(dbs, "DBPort")
		out.DBUser = getString(dbs, "DBUser")
		out.DBPassword = getString(dbs, "DBPassword")
		out.DBName = getString(dbs, "DBName")
		setBool(dbs, "MigrateHostTables", &out.MigrateHostTables)
	}

	if rds, ok := raw["redis"].(map[string]any); ok {
		setBool(rds, "Disabled", &out.RedisDisabled)
		out.RedisHost = getString(rds, "RedisHost")
		out.RedisPort = getInt(rds, "RedisPort")
		out.RedisDB = getInt(rds, "RedisDB")
		out.RedisPassword = getString(rds, "RedisPassword")
	}

	if lg, ok := raw["log"].(map[string]any); ok {
		out.LogLevel = getString(lg, "Level")
		out.LogPath = getString(lg, "Path")
		out.LogMaxSizeMB = getInt(lg, "MaxSizeMB")
		out.LogMaxBackups = getInt(lg, "MaxBackups")
		out.LogMaxAgeDays = getInt(lg, "MaxAgeDays")
		setBool(lg, "Compress", &out.LogCompress)
	}

	if ci, ok := raw["checkin"].(map[string]any); ok {
		setBool(ci, "Enabled", &out.CheckinEnabled)
		out.CheckinBasePoints = getInt(ci, "BasePoints")
		out.CheckinConsecutiveBonus = getInt(ci, "ConsecutiveBonus")
		setBool(ci, "LotteryEnabled", &out.CheckinLotteryEnabled)
		out.CheckinLotteryPrizes = getString(ci, "LotteryPrizes")
		out.CheckinLotteryProbabilities = getString(ci, "LotteryProbabilities")
		out.CheckinExtraLotteryCost = getInt(ci, "ExtraLotteryCost")
		out.CheckinMaxExtraLotteryPerDay = getInt(ci, "MaxExtraLotteryPerDay")
	}

	if td, ok := raw["todo"].(map[string]any); ok {
		setBool(td, "Enabled", &out.TodoEnabled)
		out.TodoMaxItems = getInt(td, "MaxItems")
	}

	if bw, ok := raw["badge_wall"].(map[string]any); ok {
		setBool(bw, "Enabled", &out.BadgeWallEnabled)
		setBool(bw, "Public", &out.BadgeWallPublic)
	}

	if ce, ok := raw["custom_emoji"].(map[string]any); ok {
		setBool(ce, "Enabled", &out.CustomEmojiEnabled)
		out.CustomEmojiMaxPerUser = getInt(ce, "MaxPerUser")
		out.CustomEmojiMaxSizeKB = getInt(ce, "MaxSizeKB")
	}

	return nil
}

func applyFeatureDefaults(c *AppConfig) {
	c.PluginEnabled = true
	c.CheckinEnabled = true
	c.CheckinLotteryEnabled = true
	c.TodoEnabled = true
	c.BadgeWallEnabled = true
	c.BadgeWallPublic = true
	c.CustomEmojiEnabled = true
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.MountPath == "" {
		c.MountPath = "/custom-plugin"
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/go_gin.log"
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 60
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.DefaultLocale == "" {
		c.DefaultLocale = "en"
	}
	if c.DBDriver == "" {
		c.DBDriver = "mysql"
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort == "" {
		c.DBPort = "3306"
	}
	if c.DBUser == "" {
		c.DBUser = "root"
	}
	if c.DBName == "" {
		c.DBName = "forum"
	}
	if c.RedisHost == "" {
		c.RedisHost = "127.0.0.1"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
	if c.CheckinBasePoints == 0 {
		c.CheckinBasePoints = 10
	}
	if c.CheckinConsecutiveBonus == 0 {
		c.CheckinConsecutiveBonus = 5
	}
	if c.CheckinLotteryPrizes == "" {
		c.CheckinLotteryPrizes = "10 points|20 points|50 points|Thanks for playing"
	}
	if c.CheckinLotteryProbabilities == "" {
		c.CheckinLotteryProbabilities = "40|30|10|20"
	}
	if c.CheckinExtraLotteryCost == 0 {
		c.CheckinExtraLotteryCost = 50
	}
	if c.CheckinMaxExtraLotteryPerDay == 0 {
		c.CheckinMaxExtraLotteryPerDay = 3
	}
	if c.TodoMaxItems == 0 {
		c.TodoMaxItems = 100
	}
	if c.CustomEmojiMaxPerUser == 0 {
		c.CustomEmojiMaxPerUser = 20
	}
	if c.CustomEmojiMaxSizeKB == 0 {
		c.CustomEmojiMaxSizeKB = 256
	}
}

// applyEnvOverrides maps known environment variables onto config values when present.
func applyEnvOverrides(c *AppConfig) {
	if v := getEnv("APP_PORT", ""); v != "" {
		c.AppPort = v
	}
	if v := getEnv("JWT_SECRET", ""); v != "" {
		c.JWTSecret = v
	}
	if v := getEnv("MOUNT_PATH", ""); v != "" {
		c.MountPath = v
	}
	if v := getEnv("RATE_LIMIT_PER_MINUTE", ""); v != "" {
		c.RateLimitPerMinute = mustParseInt(v)
	}
	c.AllowedOrigins = readListEnv("ALLOWED_ORIGINS", c.AllowedOrigins)
	if v := getEnv("TIMEZONE", ""); v != "" {
		c.Timezone = v
	}
	if v := getEnv("DEFAULT_LOCALE", ""); v != "" {
		c.DefaultLocale = v
	}
	if v := getEnv("GIN_MODE", ""); v != "" {
		c.GinMode = v
	}
	if v := getEnv("GIN_PATH", ""); v != "" {
		c.GinPath = v
	}
	if v := getEnv("DB_DRIVER", ""); v != "" {
		c.DBDriver = v
	}
	if v := getEnv("DATABASE_URI", ""); v != "" {
		c.DatabaseURI = v
	}
	if v := getEnv("DB_HOST", ""); v != "" {
		c.DBHost = v
	}
	if v := getEnv("DB_PORT", ""); v != "" {
		c.DBPort = v
	}
	if v := getEnv("DB_USER", ""); v != "" {
		c.DBUser = v
	}
	if v := getEnv("DB_PASSWORD", ""); v != "" {
		c.DBPassword = v
	}
	if v := getEnv("DB_NAME", ""); v != "" {
		c.DBName = v
	}
	if v := getEnv("DB_MIGRATE_HOST_TABLES", ""); v != "" {
		c.MigrateHostTables = mustParseBool(v)
	}
	if v := getEnv("REDIS_DISABLED", ""); v != "" {
		c.RedisDisabled = mustParseBool(v)
	}
	if v := getEnv("REDIS_HOST", ""); v != "" {
		c.RedisHost = v
	}
	if v := getEnv("REDIS_PORT", ""); v != "" {
		c.RedisPort = mustParseInt(v)
	}
	if v := getEnv("REDIS_DB", ""); v != "" {
		c.RedisDB = mustParseInt(v)
	}
	if v := getEnv("REDIS_PASSWORD", ""); v != "" {
		c.RedisPassword = v
	}
	if v := getEnv("LOG_LEVEL", ""); v != "" {
		c.LogLevel = v
	}
	if v := getEnv("LOG_PATH", ""); v != "" {
		c.LogPath = v
	}
	if v := getEnv("LOG_MAX_SIZE_MB", ""); v != "" {
		c.LogMaxSizeMB = mustParseInt(v)
	}
	if v := getEnv("LOG_MAX_BACKUPS", ""); v != "" {
		c.LogMaxBackups = mustParseInt(v)
	}
	if v := getEnv("LOG_MAX_AGE_DAYS", ""); v != "" {
		c.LogMaxAgeDays = mustParseInt(v)
	}
	if v := getEnv("LOG_COMPRESS", ""); v != "" {
		c.LogCompress = mustParseBool(v)
	}
	if v := getEnv("PLUGIN_ENABLED", ""); v != "" {
		c.PluginEnabled = mustParseBool(v)
	}
	if v := getEnv("CHECKIN_ENABLED", ""); v != "" {
		c.CheckinEnabled = mustParseBool(v)
	}
	if v := getEnv("CHECKIN_BASE_POINTS", ""); v != "" {
		c.CheckinBasePoints = mustParseInt(v)
	}
	if v := getEnv("CHECKIN_CONSECUTIVE_BONUS", ""); v != "" {
		c.CheckinConsecutiveBonus = mustParseInt(v)
	}
	if v := getEnv("CHECKIN_LOTTERY_ENABLED", ""); v != "" {
		c.CheckinLotteryEnabled = mustParseBool(v)
	}
	if v := getEnv("CHECKIN_LOTTERY_PRIZES", ""); v != "" {
		c.CheckinLotteryPrizes = v
	}
	if v := getEnv("CHECKIN_LOTTERY_PROBABILITIES", ""); v != "" {
		c.CheckinLotteryProbabilities = v
	}
	if v := getEnv("CHECKIN_EXTRA_LOTTERY_COST", ""); v != "" {
		c.CheckinExtraLotteryCost = mustParseInt(v)
	}
	if v := getEnv("CHECKIN_MAX_EXTRA_LOTTERY_PER_DAY", ""); v != "" {
		c.CheckinMaxExtraLotteryPerDay = mustParseInt(v)
	}
	if v := getEnv("TODO_ENABLED", ""); v != "" {
		c.TodoEnabled = mustParseBool(v)
	}
	if v := getEnv("TODO_MAX_ITEMS", ""); v != "" {
		c.TodoMaxItems = mustParseInt(v)
	}
	if v := getEnv("BADGE_WALL_ENABLED", ""); v != "" {
		c.BadgeWallEnabled = mustParseBool(v)
	}
	if v := getEnv("BADGE_WALL_PUBLIC", ""); v != "" {
		c.BadgeWallPublic = mustParseBool(v)
	}
	if v := getEnv("CUSTOM_EMOJI_ENABLED", ""); v != "" {
		c.CustomEmojiEnabled = mustParseBool(v)
	}
	if v := getEnv("CUSTOM_EMOJI_MAX_PER_USER", ""); v != "" {
		c.CustomEmojiMaxPerUser = mustParseInt(v)
	}
	if v := getEnv("CUSTOM_EMOJI_MAX_SIZE_KB", ""); v != "" {
		c.CustomEmojiMaxSizeKB = mustParseInt(v)
	}
}

func mustParseInt(val string) int {
	i, err := strconv.Atoi(val)
	if err != nil {
		log.Fatalf("invalid integer value %s: %v", val, err)
	}
	return i
}

func mustParseBool(val string) bool {
	b, err := strconv.ParseBool(val)
	if err != nil {
		log.Fatalf("invalid boolean value %s: %v", val, err)
	}
	return b
}

func readListEnv(key string, defaults []string) []string {
	if raw := os.Getenv(key); raw != "" {
		return splitAndTrim(raw)
	}
	return defaults
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
