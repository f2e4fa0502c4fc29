package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBType      string
	DatabaseURL string
	SQLitePath  string

	TelegramToken string
	AdminUserIDs  []int64
	SessaoPadrao  time.Duration // planned time per subject when a cycle is built from an edital

	EnableScheduler       bool
	NotificationStartHour int
	NotificationEndHour   int
	ReconcileInterval     time.Duration

	BillingBaseURL    string
	BillingAPIKey     string
	BillingPriceID    string
	BillingSuccessURL string
	BillingCancelURL  string

	StorageBaseURL    string
	StorageBucket     string
	StorageServiceKey string
}

// Load reads .env files (missing ones are ignored) and then the environment
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}

	cfg := &Config{
		DBType:            getEnv("DB_TYPE", "sqlite"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		SQLitePath:        getEnv("SQLITE_PATH", "data/estudos.db"),
		TelegramToken:     os.Getenv("TELEGRAM_BOT_TOKEN"),
		EnableScheduler:   os.Getenv("ENABLE_SCHEDULER") != "false",
		BillingBaseURL:    os.Getenv("BILLING_BASE_URL"),
		BillingAPIKey:     os.Getenv("BILLING_API_KEY"),
		BillingPriceID:    os.Getenv("BILLING_PRICE_ID"),
		BillingSuccessURL: getEnv("BILLING_SUCCESS_URL", "https://t.me"),
		BillingCancelURL:  getEnv("BILLING_CANCEL_URL", "https://t.me"),
		StorageBaseURL:    os.Getenv("STORAGE_BASE_URL"),
		StorageBucket:     getEnv("STORAGE_BUCKET", "editais"),
		StorageServiceKey: os.Getenv("STORAGE_SERVICE_KEY"),
	}

	var err error
	if cfg.AdminUserIDs, err = parseIDs(os.Getenv("ADMIN_USER_IDS")); err != nil {
		return nil, err
	}
	if cfg.NotificationStartHour, err = getHour("NOTIFICATION_START_HOUR", 8); err != nil {
		return nil, err
	}
	if cfg.NotificationEndHour, err = getHour("NOTIFICATION_END_HOUR", 22); err != nil {
		return nil, err
	}

	secs := 60
	if v := os.Getenv("RECONCILE_INTERVAL_SECONDS"); v != "" {
		secs, err = strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return nil, fmt.Errorf("invalid RECONCILE_INTERVAL_SECONDS %q", v)
		}
	}
	cfg.ReconcileInterval = time.Duration(secs) * time.Second

	minutos := 60
	if v := os.Getenv("SESSAO_PADRAO_MINUTOS"); v != "" {
		minutos, err = strconv.Atoi(v)
		if err != nil || minutos <= 0 {
			return nil, fmt.Errorf("invalid SESSAO_PADRAO_MINUTOS %q", v)
		}
	}
	cfg.SessaoPadrao = time.Duration(minutos) * time.Minute

	switch strings.ToLower(cfg.DBType) {
	case "sqlite", "sqlite3":
	case "postgres", "postgresql":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when DB_TYPE=%s", cfg.DBType)
		}
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE %q", cfg.DBType)
	}

	return cfg, nil
}

// DSN returns the connection string for the configured store
func (c *Config) DSN() string {
	if strings.HasPrefix(strings.ToLower(c.DBType), "postgres") {
		return c.DatabaseURL
	}
	return c.SQLitePath
}

// IsAdmin reports whether telegramID is listed in ADMIN_USER_IDS
func (c *Config) IsAdmin(telegramID int64) bool {
	for _, id := range c.AdminUserIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getHour(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	h, err := strconv.Atoi(v)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return h, nil
}

func parseIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_USER_IDS entry %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
