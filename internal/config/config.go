package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	DefaultGraphBaseURL       = "https://graph.facebook.com/v17.0"
	DefaultStoreURL           = "https://askr-aj.com/"
	DefaultMapURL             = "https://maps.app.goo.gl/oq5zWCHJ1U74nP9Z9?g_st=awb"
	DefaultSupportPhoneNumber = "966500000000"
)

type Config struct {
	Port        string
	WebhookPath string
	LogLevel    string
	GinMode     string

	VerifyToken     string
	WhatsAppToken   string
	PhoneNumberID   string
	GraphBaseURL    string
	WhatsAppTimeout time.Duration

	// Business literals used by the default keyword rules.
	SupportPhoneNumber string
	StoreURL           string
	MapURL             string
	RulesPath          string

	DBDriver string // sqlite, postgres or none
	DBPath   string
	DBDSN    string
}

// LoadConfig reads .env (when present) and the process environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file loaded, using process environment")
	}

	return &Config{
		Port:               getEnv("PORT", "8080"),
		WebhookPath:        getEnv("WEBHOOK_PATH", "/webhook"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		GinMode:            getEnv("GIN_MODE", "release"),
		VerifyToken:        getEnv("VERIFY_TOKEN", ""),
		WhatsAppToken:      getEnv("WHATSAPP_TOKEN", ""),
		PhoneNumberID:      getEnv("PHONE_NUMBER_ID", ""),
		GraphBaseURL:       strings.TrimRight(getEnv("GRAPH_BASE_URL", DefaultGraphBaseURL), "/"),
		WhatsAppTimeout:    getDuration("WHATSAPP_TIMEOUT", 10*time.Second),
		SupportPhoneNumber: getEnv("SUPPORT_PHONE_NUMBER", DefaultSupportPhoneNumber),
		StoreURL:           getEnv("STORE_URL", DefaultStoreURL),
		MapURL:             getEnv("MAP_URL", DefaultMapURL),
		RulesPath:          getEnv("RULES_PATH", ""),
		DBDriver:           strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBPath:             getEnv("DB_PATH", "./responder.db"),
		DBDSN:              getEnv("DB_DSN", ""),
	}
}

// Validate reports every missing or inconsistent setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.VerifyToken == "" {
		errs = append(errs, errors.New("VERIFY_TOKEN is required"))
	}
	if c.WhatsAppToken == "" {
		errs = append(errs, errors.New("WHATSAPP_TOKEN is required"))
	}
	if c.PhoneNumberID == "" {
		errs = append(errs, errors.New("PHONE_NUMBER_ID is required"))
	}
	if !strings.HasPrefix(c.WebhookPath, "/") {
		errs = append(errs, errors.New("WEBHOOK_PATH must start with /"))
	}
	switch c.DBDriver {
	case "sqlite", "none":
	case "postgres":
		if c.DBDSN == "" {
			errs = append(errs, errors.New("DB_DSN is required when DB_DRIVER=postgres"))
		}
	default:
		errs = append(errs, errors.New("DB_DRIVER must be one of sqlite, postgres, none"))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Warn().Str("key", key).Str("value", value).Msg("invalid duration, using default")
		return fallback
	}
	return d
}
