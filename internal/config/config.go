package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Discord  DiscordConfig
	Imgur    ImgurConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	BaseURL               string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters. The seed admin values, when
// both set, bootstrap a password-backed staff account at startup.
type AuthConfig struct {
	JWTSecret         string
	TokenTTLHours     int
	BcryptCost        int
	CookieSecure      bool
	SeedAdminUsername string
	SeedAdminPassword string
	SeedAdminName     string
}

// DiscordConfig holds everything the Discord integration needs: the bot token
// for REST calls, OAuth client credentials, the guild whose roles map to staff
// roles, and the interactions endpoint public key.
type DiscordConfig struct {
	BotToken              string
	ClientID              string
	ClientSecret          string
	GuildID               string
	BrokerRoleID          string
	RoleMap               map[string]string
	InteractionsPublicKey string
	APITimeoutSeconds     int
	BrokerCacheTTLSeconds int
}

// ImgurConfig configures the image host collaborator.
type ImgurConfig struct {
	ClientID       string
	MaxUploadBytes int64
	TimeoutSeconds int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	roleMap, err := parseRoleMap(os.Getenv("DISCORD_ROLE_MAP"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "scc-tickets"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			BaseURL:               getEnv("APP_BASE_URL", "http://localhost:8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:         getEnv("AUTH_JWT_SECRET", "dev-secret"),
			TokenTTLHours:     getEnvAsInt("AUTH_TOKEN_TTL_HOURS", 24),
			BcryptCost:        getEnvAsInt("AUTH_BCRYPT_COST", 12),
			CookieSecure:      getEnvAsBool("AUTH_COOKIE_SECURE", getEnv("APP_ENV", "development") == "production"),
			SeedAdminUsername: os.Getenv("AUTH_SEED_ADMIN_USERNAME"),
			SeedAdminPassword: os.Getenv("AUTH_SEED_ADMIN_PASSWORD"),
			SeedAdminName:     os.Getenv("AUTH_SEED_ADMIN_NAME"),
		},
		Discord: DiscordConfig{
			BotToken:              os.Getenv("DISCORD_BOT_TOKEN"),
			ClientID:              os.Getenv("DISCORD_CLIENT_ID"),
			ClientSecret:          os.Getenv("DISCORD_CLIENT_SECRET"),
			GuildID:               os.Getenv("DISCORD_GUILD_ID"),
			BrokerRoleID:          os.Getenv("DISCORD_BROKER_ROLE_ID"),
			RoleMap:               roleMap,
			InteractionsPublicKey: os.Getenv("DISCORD_INTERACTIONS_PUBLIC_KEY"),
			APITimeoutSeconds:     getEnvAsInt("DISCORD_API_TIMEOUT_SECONDS", 10),
			BrokerCacheTTLSeconds: getEnvAsInt("DISCORD_BROKER_CACHE_TTL_SECONDS", 60),
		},
		Imgur: ImgurConfig{
			ClientID:       os.Getenv("IMGUR_CLIENT_ID"),
			MaxUploadBytes: int64(getEnvAsInt("IMGUR_MAX_UPLOAD_BYTES", 10*1024*1024)),
			TimeoutSeconds: getEnvAsInt("IMGUR_TIMEOUT_SECONDS", 15),
		},
	}

	return cfg, nil
}

// parseRoleMap decodes "discordRoleID:STAFF_ROLE" pairs separated by commas.
func parseRoleMap(raw string) (map[string]string, error) {
	out := map[string]string{}
	if strings.TrimSpace(raw) == "" {
		return out, nil
	}
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid DISCORD_ROLE_MAP entry %q", pair)
		}
		out[parts[0]] = parts[1]
	}
	return out, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// TokenTTL returns the session token validity window.
func (a AuthConfig) TokenTTL() time.Duration {
	if a.TokenTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(a.TokenTTLHours) * time.Hour
}

// APITimeout returns the bound for outbound Discord calls.
func (d DiscordConfig) APITimeout() time.Duration {
	if d.APITimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(d.APITimeoutSeconds) * time.Second
}

// BrokerCacheTTL returns how long broker-role lookups may be cached.
func (d DiscordConfig) BrokerCacheTTL() time.Duration {
	if d.BrokerCacheTTLSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(d.BrokerCacheTTLSeconds) * time.Second
}

// Timeout returns the bound for uploads to the image host.
func (i ImgurConfig) Timeout() time.Duration {
	if i.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(i.TimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
