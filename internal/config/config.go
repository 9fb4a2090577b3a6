package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"badge-radar/internal/discord"
)

type Config struct {
	// credencial de usuário; never log this
	Token      string
	WebhookURL string
	GuildID    string

	HTTPAddr string
	LogLevel string

	// pacing do scan
	UserCheckDelayMs    int
	RateLimitMaxRetries int // 0 = sem teto

	UseProxy bool
	Proxy    discord.ProxyConfig

	MemberFileDir string

	// backends opcionais
	RedisDSN   string
	DBDSN      string
	R2Endpoint string
	R2Bucket   string
	R2KeysRaw  string
}

func Load() (Config, error) {
	cfg := Config{
		Token:         os.Getenv("DISCORD_TOKEN"),
		WebhookURL:    os.Getenv("WEBHOOK_URL"),
		GuildID:       os.Getenv("GUILD_ID"),
		HTTPAddr:      getenvDefault("HTTP_ADDR", ":8080"),
		LogLevel:      getenvDefault("LOG_LEVEL", "info"),
		MemberFileDir: getenvDefault("MEMBER_FILE_DIR", "files"),
		RedisDSN:      os.Getenv("REDIS_DSN"),
		DBDSN:         os.Getenv("DB_DSN"),
		R2Endpoint:    os.Getenv("R2_ENDPOINT"),
		R2Bucket:      os.Getenv("R2_BUCKET"),
		R2KeysRaw:     os.Getenv("R2_KEYS"),
	}

	if cfg.Token == "" {
		return Config{}, errors.New("missing DISCORD_TOKEN")
	}
	if cfg.WebhookURL == "" {
		return Config{}, errors.New("missing WEBHOOK_URL")
	}
	if cfg.GuildID == "" {
		return Config{}, errors.New("missing GUILD_ID")
	}

	cfg.UserCheckDelayMs = getenvInt("USER_CHECK_DELAY_MS", 10000)
	if cfg.UserCheckDelayMs < 0 {
		return Config{}, errors.New("USER_CHECK_DELAY_MS must be >= 0")
	}

	cfg.RateLimitMaxRetries = getenvInt("RATE_LIMIT_MAX_RETRIES", 0)
	if cfg.RateLimitMaxRetries < 0 {
		return Config{}, errors.New("RATE_LIMIT_MAX_RETRIES must be >= 0")
	}

	cfg.UseProxy = strings.EqualFold(getenvDefault("USE_PROXY", "false"), "true")
	if cfg.UseProxy {
		cfg.Proxy = discord.ProxyConfig{
			Protocol: getenvDefault("PROXY_PROTOCOL", "http"),
			Host:     os.Getenv("PROXY_HOST"),
			Port:     getenvInt("PROXY_PORT", 0),
			Username: os.Getenv("PROXY_USERNAME"),
			Password: os.Getenv("PROXY_PASSWORD"),
		}
		if cfg.Proxy.Host == "" || cfg.Proxy.Port <= 0 {
			return Config{}, errors.New("USE_PROXY=true requires PROXY_HOST and PROXY_PORT")
		}
	}

	return cfg, nil
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
