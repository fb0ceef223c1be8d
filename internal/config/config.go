package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server     ServerConfig
	Sheets     SheetsConfig
	Gateway    GatewayConfig
	Operator   OperatorConfig
	Processing ProcessingConfig
	Rate       RateConfig
	Redis      RedisConfig
	Autorun    AutorunConfig
}

// ServerConfig controls the optional control API. An empty address
// disables it.
type ServerConfig struct {
	Address string
}

type SheetsConfig struct {
	SpreadsheetID     string
	CredentialsFile   string
	BulkSheet         string
	QueueSheet        string
	QueueStatusColumn string
	BulkStatusColumn  string
}

type GatewayConfig struct {
	URL     string
	Timeout time.Duration
}

// OperatorConfig identifies who runs this worker. Identity drives the
// ownership gate and the default per-member sheet names.
type OperatorConfig struct {
	TeamMember string
	HandledBy  string
	Timezone   *time.Location
}

type ProcessingConfig struct {
	MaxRetries  int
	RetryDelay  time.Duration
	StrictPhone bool
}

type RateConfig struct {
	Night  time.Duration
	Normal time.Duration
	Peak   time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Address  string
	Password string
	DB       int
	TTL      time.Duration
}

type AutorunConfig struct {
	Interval time.Duration
}

func LoadAll() (*Config, error) {
	var errs []error

	spreadsheetID, err := requireEnv("SPREADSHEET_ID")
	if err != nil {
		errs = append(errs, err)
	}
	gatewayURL, err := requireEnv("GATEWAY_URL")
	if err != nil {
		errs = append(errs, err)
	}

	member := getEnv("TEAM_MEMBER", "default")

	tzName := getEnv("TIMEZONE", "Asia/Kolkata")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid TIMEZONE %q: %w", tzName, err))
		loc = time.UTC
	}

	cfg := &Config{
		Server: ServerConfig{
			Address: getEnv("CONTROL_ADDR", ""),
		},
		Sheets: SheetsConfig{
			SpreadsheetID:     spreadsheetID,
			CredentialsFile:   getEnv("GOOGLE_CREDENTIALS_FILE", "credentials.json"),
			BulkSheet:         getEnv("BULK_SHEET", "BulkMessages_"+member),
			QueueSheet:        getEnv("QUEUE_SHEET", "MessageQueue_"+member),
			QueueStatusColumn: getEnv("QUEUE_STATUS_COLUMN", "I"),
			BulkStatusColumn:  getEnv("BULK_STATUS_COLUMN", "Status"),
		},
		Gateway: GatewayConfig{
			URL: gatewayURL,
		},
		Operator: OperatorConfig{
			TeamMember: member,
			HandledBy:  getEnv("HANDLED_BY", ""),
			Timezone:   loc,
		},
	}

	collectInt := func(key string, def int) int {
		v, err := getEnvInt(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}

	cfg.Gateway.Timeout = time.Duration(collectInt("GATEWAY_TIMEOUT_SECONDS", 30)) * time.Second

	cfg.Processing = ProcessingConfig{
		MaxRetries:  collectInt("MAX_RETRIES", 3),
		RetryDelay:  time.Duration(collectInt("RETRY_DELAY_MS", 5000)) * time.Millisecond,
		StrictPhone: getEnv("PHONE_STRICT", "") == "true",
	}

	cfg.Rate = RateConfig{
		Night:  time.Duration(collectInt("RATE_NIGHT_MS", 1000)) * time.Millisecond,
		Normal: time.Duration(collectInt("RATE_NORMAL_MS", 2000)) * time.Millisecond,
		Peak:   time.Duration(collectInt("RATE_PEAK_MS", 5000)) * time.Millisecond,
	}

	cfg.Autorun = AutorunConfig{
		Interval: time.Duration(collectInt("AUTORUN_INTERVAL_SECONDS", 120)) * time.Second,
	}

	redisCfg, redisErrs := loadRedisConfig()
	cfg.Redis = redisCfg
	errs = append(errs, redisErrs...)

	errs = append(errs, validate(cfg)...)

	if err := joinErrors(errs); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadRedisConfig() (RedisConfig, []error) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return RedisConfig{Enabled: false}, nil
	}

	var errs []error
	db, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		errs = append(errs, err)
	}
	ttl, err := getEnvInt("REDIS_TTL_SECONDS", 86400)
	if err != nil {
		errs = append(errs, err)
	}

	return RedisConfig{
		Enabled:  true,
		Address:  addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
		TTL:      time.Duration(ttl) * time.Second,
	}, errs
}

func validate(cfg *Config) []error {
	var errs []error
	if cfg.Processing.MaxRetries <= 0 {
		errs = append(errs, errors.New("MAX_RETRIES must be > 0"))
	}
	if cfg.Processing.RetryDelay < 0 {
		errs = append(errs, errors.New("RETRY_DELAY_MS must be >= 0"))
	}
	if cfg.Autorun.Interval <= 0 {
		errs = append(errs, errors.New("AUTORUN_INTERVAL_SECONDS must be > 0"))
	}
	if cfg.Rate.Night <= 0 || cfg.Rate.Normal <= 0 || cfg.Rate.Peak <= 0 {
		errs = append(errs, errors.New("RATE_NIGHT_MS, RATE_NORMAL_MS and RATE_PEAK_MS must be > 0"))
	}
	return errs
}

func requireEnv(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("missing required env var: %s", key)
	}
	return val, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid int for env %s: %q", key, v)
	}
	return i, nil
}

func joinErrors(errs []error) error {
	return errors.Join(errs...)
}
