package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"MiningPulse/internal/analysis"
	"MiningPulse/internal/cache"
	"MiningPulse/internal/logger"
	"MiningPulse/internal/model"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	DataDir     string             `yaml:"data_dir" default:"data"`
	Instruments []model.Instrument `yaml:"instruments" validate:"dive"`
	Analysis    AnalysisConfig     `yaml:"analysis"`
	Quotes      QuotesConfig       `yaml:"quotes"`
	Cache       CacheConfig        `yaml:"cache"`
	Server      ServerConfig       `yaml:"server"`
	Telegram    TelegramConfig     `yaml:"telegram"`
	Schedule    ScheduleConfig     `yaml:"schedule"`
	Database    DatabaseConfig     `yaml:"database"`
	Log         LogConfig          `yaml:"log"`
	Proxy       string             `yaml:"proxy"`
}

type AnalysisConfig struct {
	Window       string `yaml:"window" default:"max"`
	MAPeriods    []int  `yaml:"ma_periods" default:"[20,50]" validate:"dive,gt=0"`
	RSIPeriod    int    `yaml:"rsi_period" default:"14" validate:"gt=0"`
	ChangePeriod string `yaml:"change_period" default:"D"`
	ShowVolume   *bool  `yaml:"show_volume" default:"true"`
}

type QuotesConfig struct {
	Source        string        `yaml:"source" default:"yahoo" validate:"oneof=yahoo rest mock none"`
	Suffix        string        `yaml:"suffix" default:".JK"`
	TTL           time.Duration `yaml:"ttl" default:"5m" validate:"gt=0"`
	RatePerSecond float64       `yaml:"rate_per_second" default:"2" validate:"gt=0"`
	Concurrency   int           `yaml:"concurrency" default:"4" validate:"gte=1"`
	BaseURL       string        `yaml:"base_url" validate:"required_if=Source rest"`
	APIKey        string        `yaml:"api_key"`
}

type CacheConfig struct {
	Backend string            `yaml:"backend" default:"memory" validate:"oneof=memory redis"`
	Redis   cache.RedisConfig `yaml:"redis"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" default:":8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id" validate:"required_with=BotToken"`
}

// Enabled reports whether reports and commands go to Telegram.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// Cron expressions carry a leading seconds field.
type ScheduleConfig struct {
	QuotesCron string `yaml:"quotes_cron" default:"0 */5 9-16 * * 1-5"`
	DailyCron  string `yaml:"daily_cron" default:"0 30 16 * * 1-5"`
	WeeklyCron string `yaml:"weekly_cron" default:"0 0 8 * * 6"`
}

type DatabaseConfig struct {
	SQLitePath string `yaml:"sqlite_path" default:"data/mining_pulse.db"`
}

type LogConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
	Format string `yaml:"format" default:"console" validate:"oneof=console json"`
	Output string `yaml:"output" default:"stdout"`
}

// Logger converts to the logger package's settings.
func (l LogConfig) Logger() logger.Config {
	return logger.Config{Level: l.Level, Format: l.Format, Output: l.Output, TimeFormat: time.RFC3339}
}

// envOverrides is read with the MINING_ prefix. It has no default tags so
// that unset variables never mask values from the YAML file.
type envOverrides struct {
	DataDir          string        `envconfig:"DATA_DIR"`
	QuoteSource      string        `envconfig:"QUOTE_SOURCE"`
	QuoteBaseURL     string        `envconfig:"QUOTE_BASE_URL"`
	QuoteAPIKey      string        `envconfig:"QUOTE_API_KEY"`
	QuoteTTL         time.Duration `envconfig:"QUOTE_TTL"`
	CacheBackend     string        `envconfig:"CACHE_BACKEND"`
	RedisAddr        string        `envconfig:"REDIS_ADDR"`
	RedisPassword    string        `envconfig:"REDIS_PASSWORD"`
	ServerAddr       string        `envconfig:"SERVER_ADDR"`
	TelegramBotToken string        `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   string        `envconfig:"TELEGRAM_CHAT_ID"`
	QuotesCron       string        `envconfig:"CRON_QUOTES"`
	DailyCron        string        `envconfig:"CRON_DAILY"`
	WeeklyCron       string        `envconfig:"CRON_WEEKLY"`
	SQLitePath       string        `envconfig:"SQLITE_PATH"`
	LogLevel         string        `envconfig:"LOG_LEVEL"`
	LogFormat        string        `envconfig:"LOG_FORMAT"`
	Proxy            string        `envconfig:"HTTPS_PROXY"`
}

// Load reads config from a YAML file, applies MINING_* environment
// overrides, fills defaults and validates. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	var ov envOverrides
	if err := envconfig.Process("MINING", &ov); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	ov.apply(cfg)

	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if len(cfg.Instruments) == 0 {
		cfg.Instruments = DefaultInstruments(cfg.DataDir)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (ov envOverrides) apply(cfg *Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.DataDir, ov.DataDir)
	set(&cfg.Quotes.Source, ov.QuoteSource)
	set(&cfg.Quotes.BaseURL, ov.QuoteBaseURL)
	set(&cfg.Quotes.APIKey, ov.QuoteAPIKey)
	if ov.QuoteTTL > 0 {
		cfg.Quotes.TTL = ov.QuoteTTL
	}
	set(&cfg.Cache.Backend, ov.CacheBackend)
	set(&cfg.Cache.Redis.Addr, ov.RedisAddr)
	set(&cfg.Cache.Redis.Password, ov.RedisPassword)
	set(&cfg.Server.Addr, ov.ServerAddr)
	set(&cfg.Telegram.BotToken, ov.TelegramBotToken)
	set(&cfg.Telegram.ChatID, ov.TelegramChatID)
	set(&cfg.Schedule.QuotesCron, ov.QuotesCron)
	set(&cfg.Schedule.DailyCron, ov.DailyCron)
	set(&cfg.Schedule.WeeklyCron, ov.WeeklyCron)
	set(&cfg.Database.SQLitePath, ov.SQLitePath)
	set(&cfg.Log.Level, ov.LogLevel)
	set(&cfg.Log.Format, ov.LogFormat)
	set(&cfg.Proxy, ov.Proxy)
}

// DefaultInstruments are the four mining equities with their conventional file names.
func DefaultInstruments(dataDir string) []model.Instrument {
	names := []struct{ code, name string }{
		{"ADRO", "Adaro Energy Indonesia"},
		{"PTBA", "Bukit Asam"},
		{"ITMG", "Indo Tambangraya Megah"},
		{"ANTM", "Aneka Tambang"},
	}
	out := make([]model.Instrument, len(names))
	for i, n := range names {
		out[i] = model.Instrument{
			Code:         n.code,
			Name:         n.name,
			PriceFile:    filepath.Join(dataDir, strings.ToLower(n.code)+"_fix.csv"),
			DividendFile: filepath.Join(dataDir, "dividends", "Deviden Yield Percentage "+n.code+".csv"),
		}
	}
	return out
}

var validate = validator.New()

// Validate checks field constraints and the values only the domain can parse.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if len(c.Instruments) == 0 {
		return errors.New("invalid config: no instruments configured")
	}
	seen := make(map[string]bool)
	for _, inst := range c.Instruments {
		code := strings.ToUpper(inst.Code)
		if seen[code] {
			return fmt.Errorf("invalid config: duplicate instrument %s", code)
		}
		seen[code] = true
	}
	if _, err := c.AnalysisWindow(); err != nil {
		return fmt.Errorf("invalid config: analysis.window: %w", err)
	}
	if _, err := model.ParsePeriod(c.Analysis.ChangePeriod); err != nil {
		return fmt.Errorf("invalid config: analysis.change_period: %w", err)
	}
	if c.Cache.Backend == "redis" && c.Cache.Redis.Addr == "" {
		return errors.New("invalid config: cache.redis.addr is required for the redis backend")
	}
	return nil
}

// AnalysisWindow parses the configured default window.
func (c *Config) AnalysisWindow() (model.AnalysisWindow, error) {
	p, err := model.ParsePreset(c.Analysis.Window)
	if err != nil {
		return model.AnalysisWindow{}, err
	}
	return model.PresetWindow(p), nil
}

// AnalysisRequest is the default request used by scheduled reports and the CLI.
func (c *Config) AnalysisRequest() (analysis.Request, error) {
	w, err := c.AnalysisWindow()
	if err != nil {
		return analysis.Request{}, err
	}
	period, err := model.ParsePeriod(c.Analysis.ChangePeriod)
	if err != nil {
		return analysis.Request{}, err
	}
	req := analysis.Request{
		Window:       w,
		MAPeriods:    append([]int(nil), c.Analysis.MAPeriods...),
		RSIPeriod:    c.Analysis.RSIPeriod,
		ChangePeriod: period,
		ShowVolume:   c.Analysis.ShowVolume == nil || *c.Analysis.ShowVolume,
	}
	return req, req.Validate()
}
