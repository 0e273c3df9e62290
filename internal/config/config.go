package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	JWT struct {
		Secret string `yaml:"secret"`
		TTL    int    `yaml:"ttl"` // minutes
	} `yaml:"jwt"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
	} `yaml:"email"`

	Payment struct {
		SecretKey   string `yaml:"secret_key"`
		BaseURL     string `yaml:"base_url"`
		CallbackURL string `yaml:"callback_url"`
		Currency    string `yaml:"currency"`
	} `yaml:"payment"`

	Render struct {
		ChromePath     string `yaml:"chrome_path"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"render"`

	Billing struct {
		ProfessionalPrice int64 `yaml:"professional_price"` // minor units
		TrialDays         int   `yaml:"trial_days"`
		PeriodDays        int   `yaml:"period_days"`
	} `yaml:"billing"`

	RateLimit struct {
		DownloadsPerMinute int `yaml:"downloads_per_minute"`
	} `yaml:"rate_limit"`
}

var AppConfig *Config

// LoadConfig reads config.yaml, with DATABASE_URL switching to env-only mode
// the same way the integration environment does.
func LoadConfig() {
	var cfg Config

	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")

	if dbURL == "" {
		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}

		f, err := os.Open(configPath)
		if err != nil {
			log.Fatalf("Failed to open config file at %s: %v", configPath, err)
		}
		defer f.Close()

		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			log.Fatalf("Failed to parse config file at %s: %v", configPath, err)
		}

		applyDefaults(&cfg)
		AppConfig = &cfg
		return
	}

	cfg.Database.DSN = dbURL
	cfg.Server.Env = os.Getenv("SERVER_ENV")
	cfg.Server.Port, _ = strconv.Atoi(os.Getenv("SERVER_PORT"))
	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	cfg.JWT.TTL = 60
	cfg.Redis.Addr = os.Getenv("REDIS_ADDR")
	cfg.Payment.SecretKey = os.Getenv("PAYMENT_SECRET_KEY")
	cfg.Payment.BaseURL = os.Getenv("PAYMENT_BASE_URL")

	applyDefaults(&cfg)
	AppConfig = &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Payment.Currency == "" {
		cfg.Payment.Currency = "USD"
	}
	if cfg.Payment.BaseURL == "" {
		cfg.Payment.BaseURL = "https://api.paystack.co"
	}
	if cfg.Render.TimeoutSeconds <= 0 {
		cfg.Render.TimeoutSeconds = 60
	}
	if cfg.Billing.ProfessionalPrice <= 0 {
		cfg.Billing.ProfessionalPrice = 900 // $9.00
	}
	if cfg.Billing.TrialDays <= 0 {
		cfg.Billing.TrialDays = 7
	}
	if cfg.Billing.PeriodDays <= 0 {
		cfg.Billing.PeriodDays = 30
	}
	if cfg.RateLimit.DownloadsPerMinute <= 0 {
		cfg.RateLimit.DownloadsPerMinute = 10
	}
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}

// RenderTimeout is the bounded wait for the PDF engine, independent of the
// HTTP request timeout.
func (c *Config) RenderTimeout() time.Duration {
	return time.Duration(c.Render.TimeoutSeconds) * time.Second
}
