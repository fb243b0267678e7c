// Package config は環境変数ベースのアプリケーション設定を提供する。
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Resource server
	ResourceBaseURL string // ダッシュボードが参照するリソースサーバーのベースURL
	ResourcePort    string // resourcedモードのリッスンポート
	DatabaseURL     string // resourced/migrateモードで使用するPostgres接続URL

	// Session (Redis)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionMaxAge int // セッション有効期間（秒）

	// Rate Limit（req/min/user）
	RateLimitGeneral int
	RateLimitApply   int

	// Server
	ServerPort string
	BaseURL    string

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// すべての項目にローカル開発向けのデフォルトがあり、必須チェックは
// 起動モードごとに行う（resourced/migrateはDATABASE_URLを要求する）。
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.ResourceBaseURL = getEnvString("RESOURCE_BASE_URL", "http://localhost:3000")
	cfg.ResourcePort = getEnvString("RESOURCE_PORT", "3000")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	cfg.RedisAddr = getEnvString("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RedisDB = getEnvInt("REDIS_DB", 0)
	cfg.SessionMaxAge = getEnvInt("SESSION_MAX_AGE", 86400)

	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitApply = getEnvInt("RATE_LIMIT_APPLY", 10)

	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.BaseURL = getEnvString("BASE_URL", "http://localhost:8080")
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:5173")

	return cfg, nil
}

// SessionTTL はセッション有効期間をtime.Durationで返す。
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionMaxAge) * time.Second
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}
