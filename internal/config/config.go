package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	LeadStorePostgres = "postgres"
	LeadStoreAPI      = "api"

	HistoryMemory = "memory"
	HistorySQLite = "sqlite"
)

type Config struct {
	Port   string
	AppEnv string

	DatabaseURL       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	LeadStore    string
	LeadAPIURL   string
	LeadAPIToken string

	RabbitMQURL         string
	CaptureRequireEvent bool

	MailHost string
	MailPort int
	MailUser string
	MailPass string
	MailFrom string

	WhatsAppAccessToken string
	WhatsAppPhoneID     string
	WhatsAppTemplateID  string

	KommoBaseURL  string
	KommoAPIToken string
	KommoStatusID int

	HistoryStore  string
	HistoryDBPath string

	UploadMaxBytes   int64
	ImportBatchDelay time.Duration
	FollowUpInterval time.Duration
	FollowUpAfter    time.Duration

	CORSOrigins []string
}

// Load lê o .env (se existir) e depois as variáveis de ambiente.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:   getEnv("PORT", "8080"),
		AppEnv: getEnv("APP_ENV", "development"),

		DatabaseURL:       getEnv("DATABASE_URL", ""),
		DBMaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),

		LeadStore:    strings.ToLower(getEnv("LEAD_STORE", LeadStorePostgres)),
		LeadAPIURL:   getEnv("LEAD_API_URL", ""),
		LeadAPIToken: getEnv("LEAD_API_TOKEN", ""),

		RabbitMQURL:         getEnv("RABBITMQ_URL", ""),
		CaptureRequireEvent: getEnvBool("CAPTURE_REQUIRE_EVENT", false),

		MailHost: getEnv("MAIL_HOST", ""),
		MailPort: getEnvInt("MAIL_PORT", 587),
		MailUser: getEnv("MAIL_USER", ""),
		MailPass: getEnv("MAIL_PASS", ""),
		MailFrom: getEnv("MAIL_FROM", ""),

		WhatsAppAccessToken: getEnv("WHATSAPP_ACCESS_TOKEN", ""),
		WhatsAppPhoneID:     getEnv("WHATSAPP_PHONE_ID", ""),
		WhatsAppTemplateID:  getEnv("WHATSAPP_TEMPLATE_ID", "lead_welcome"),

		KommoBaseURL:  getEnv("KOMMO_BASE_URL", ""),
		KommoAPIToken: getEnv("KOMMO_API_TOKEN", ""),
		KommoStatusID: getEnvInt("KOMMO_STATUS_ID", 0),

		HistoryStore:  strings.ToLower(getEnv("HISTORY_STORE", HistoryMemory)),
		HistoryDBPath: getEnv("HISTORY_DB_PATH", "./data/history.db"),

		UploadMaxBytes:   int64(getEnvInt("UPLOAD_MAX_BYTES", 10<<20)),
		ImportBatchDelay: getEnvDuration("IMPORT_BATCH_DELAY", 100*time.Millisecond),
		FollowUpInterval: getEnvDuration("FOLLOW_UP_INTERVAL", time.Hour),
		FollowUpAfter:    getEnvDuration("FOLLOW_UP_AFTER", 48*time.Hour),

		CORSOrigins: getEnvList("CORS_ORIGINS", []string{"http://localhost:5173"}),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	switch c.LeadStore {
	case LeadStorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when LEAD_STORE=postgres"))
		}
	case LeadStoreAPI:
		if c.LeadAPIURL == "" {
			errs = append(errs, errors.New("LEAD_API_URL is required when LEAD_STORE=api"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid LEAD_STORE %q (postgres|api)", c.LeadStore))
	}

	if c.HistoryStore != HistoryMemory && c.HistoryStore != HistorySQLite {
		errs = append(errs, fmt.Errorf("invalid HISTORY_STORE %q (memory|sqlite)", c.HistoryStore))
	}
	if c.DBMaxOpenConns <= 0 {
		errs = append(errs, errors.New("DB_MAX_OPEN_CONNS must be positive"))
	}
	if c.UploadMaxBytes <= 0 {
		errs = append(errs, errors.New("UPLOAD_MAX_BYTES must be positive"))
	}

	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) EventsEnabled() bool {
	return c.RabbitMQURL != ""
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
