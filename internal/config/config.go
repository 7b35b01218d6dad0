package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/username/attendance-dashboard/internal/attendance"
	"github.com/username/attendance-dashboard/pkg/dateutil"
)

// EnvPrefix is prepended to environment overrides, e.g. ATTENDANCE_API_BASE_URL
const EnvPrefix = "ATTENDANCE"

// Config represents application configuration
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Calendar CalendarConfig `mapstructure:"calendar"`
	Rules    RulesConfig    `mapstructure:"rules"`
	Refresh  RefreshConfig  `mapstructure:"refresh"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
}

// APIConfig represents the sheet web API configuration
type APIConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	Timeout        string `mapstructure:"timeout"`
	Retries        int    `mapstructure:"retries"`
	RetryBackoff   string `mapstructure:"retry_backoff"`
	MaxConcurrency int    `mapstructure:"max_concurrency"`
}

// CalendarConfig represents holiday calendar configuration
type CalendarConfig struct {
	RestDay          string   `mapstructure:"rest_day"`
	FestivalHolidays []string `mapstructure:"festival_holidays"`
	FestivalFile     string   `mapstructure:"festival_file"` // Optional, merged with festival_holidays
	Timezone         string   `mapstructure:"timezone"`      // IANA name, empty for local time
}

// RulesConfig represents classification thresholds
type RulesConfig struct {
	HalfDayHours     float64 `mapstructure:"half_day_hours"`
	CompletedHours   float64 `mapstructure:"completed_hours"`
	LateSevereAfter  string  `mapstructure:"late_severe_after"`
	LateWarningAfter string  `mapstructure:"late_warning_after"`
	EarlyOutBefore   string  `mapstructure:"early_out_before"`
}

// RefreshConfig represents the today view refresh loop
type RefreshConfig struct {
	Interval string `mapstructure:"interval"`
}

// ServerConfig represents the HTTP API server
type ServerConfig struct {
	Addr         string   `mapstructure:"addr"`
	Mode         string   `mapstructure:"mode"` // "release", "debug" or "dev" (debug + CORS)
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

var defaults = map[string]interface{}{
	"api.timeout":                "30s",
	"api.retries":                3,
	"api.retry_backoff":          "1s",
	"api.max_concurrency":        8,
	"api.base_url":               "",
	"calendar.rest_day":          "sunday",
	"calendar.festival_holidays": []string{"2025-10-20", "2025-12-25", "2026-01-26"},
	"calendar.festival_file":     "",
	"calendar.timezone":          "",
	"rules.half_day_hours":       4.0,
	"rules.completed_hours":      7.0,
	"rules.late_severe_after":    "11:00",
	"rules.late_warning_after":   "10:30",
	"rules.early_out_before":     "17:30",
	"refresh.interval":           "60s",
	"server.addr":                ":8080",
	"server.mode":                "release",
	"server.allow_origins":       []string{"http://localhost:5173"},
	"log.file":                   "",
	"log.level":                  "info",
}

// Default returns the configuration used when nothing is configured
func Default() *Config {
	return &Config{
		API: APIConfig{
			Timeout:        "30s",
			Retries:        3,
			RetryBackoff:   "1s",
			MaxConcurrency: 8,
		},
		Calendar: CalendarConfig{
			RestDay:          "sunday",
			FestivalHolidays: []string{"2025-10-20", "2025-12-25", "2026-01-26"},
		},
		Rules: RulesConfig{
			HalfDayHours:     4,
			CompletedHours:   7,
			LateSevereAfter:  "11:00",
			LateWarningAfter: "10:30",
			EarlyOutBefore:   "17:30",
		},
		Refresh: RefreshConfig{Interval: "60s"},
		Server: ServerConfig{
			Addr:         ":8080",
			Mode:         "release",
			AllowOrigins: []string{"http://localhost:5173"},
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load loads configuration from file, .env and environment.
// A missing config file is not an error when no path is given.
func Load(configPath string) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.attendance-dashboard")
		v.AddConfigPath("/etc/attendance-dashboard")
	}

	// Read environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.ExpandEnvVars()

	// Validate config
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// loadDotEnv loads .env from the working directory when present
func loadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	if err := godotenv.Load(); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate API config
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL, got '%s'", c.API.BaseURL)
	}
	if c.API.Retries < 0 {
		return fmt.Errorf("api.retries must not be negative")
	}
	if c.API.MaxConcurrency < 0 {
		return fmt.Errorf("api.max_concurrency must not be negative")
	}
	if err := validDuration("api.timeout", c.API.Timeout); err != nil {
		return err
	}
	if err := validDuration("api.retry_backoff", c.API.RetryBackoff); err != nil {
		return err
	}

	// Validate Calendar config
	if _, err := parseWeekday(c.Calendar.RestDay); err != nil {
		return fmt.Errorf("calendar.rest_day: %w", err)
	}
	for _, d := range c.Calendar.FestivalHolidays {
		if _, err := time.Parse(dateutil.DateLayout, d); err != nil {
			return fmt.Errorf("calendar.festival_holidays: invalid date '%s'", d)
		}
	}
	if c.Calendar.Timezone != "" {
		if _, err := time.LoadLocation(c.Calendar.Timezone); err != nil {
			return fmt.Errorf("calendar.timezone: %w", err)
		}
	}

	// Validate Rules config
	if _, err := c.Rules.Build(); err != nil {
		return fmt.Errorf("rules: %w", err)
	}

	// Validate Refresh config
	if err := validDuration("refresh.interval", c.Refresh.Interval); err != nil {
		return err
	}

	// Validate Server config
	switch c.Server.Mode {
	case "", "release", "debug", "dev":
	default:
		return fmt.Errorf("server.mode must be 'release', 'debug' or 'dev', got '%s'", c.Server.Mode)
	}

	// Validate Log config
	if c.Log.Level != "" {
		if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
	}

	return nil
}

func validDuration(key, value string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return fmt.Errorf("%s must be positive", key)
	}
	return nil
}

// GetTimeout returns the HTTP timeout
func (a *APIConfig) GetTimeout() time.Duration {
	return parseDurationOr(a.Timeout, 30*time.Second)
}

// GetRetryBackoff returns the base delay between retries
func (a *APIConfig) GetRetryBackoff() time.Duration {
	return parseDurationOr(a.RetryBackoff, time.Second)
}

// GetRestDay returns the weekly rest day. Default: Sunday
func (c *CalendarConfig) GetRestDay() time.Weekday {
	d, err := parseWeekday(c.RestDay)
	if err != nil {
		return time.Sunday
	}
	return d
}

// Location returns the timezone used to decide "today". Default: local time
func (c *CalendarConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Build converts the configured thresholds into classification rules.
// Zero or empty values keep the defaults.
func (r *RulesConfig) Build() (attendance.Rules, error) {
	rules := attendance.DefaultRules()

	if r.HalfDayHours < 0 || r.CompletedHours < 0 {
		return rules, fmt.Errorf("hour thresholds must not be negative")
	}
	if r.HalfDayHours > 0 {
		rules.HalfDayBelow = hoursToDuration(r.HalfDayHours)
	}
	if r.CompletedHours > 0 {
		rules.CompletedAt = hoursToDuration(r.CompletedHours)
	}

	clocks := []struct {
		key   string
		value string
		dst   *attendance.TimeOfDay
	}{
		{"late_severe_after", r.LateSevereAfter, &rules.LateSevereAfter},
		{"late_warning_after", r.LateWarningAfter, &rules.LateWarningAfter},
		{"early_out_before", r.EarlyOutBefore, &rules.EarlyOutBefore},
	}
	for _, c := range clocks {
		if c.value == "" {
			continue
		}
		if err := c.dst.UnmarshalText([]byte(c.value)); err != nil {
			return rules, fmt.Errorf("%s: %w", c.key, err)
		}
	}

	if err := rules.Validate(); err != nil {
		return rules, err
	}
	return rules, nil
}

// GetInterval returns the refresh interval. Default: 60s
func (r *RefreshConfig) GetInterval() time.Duration {
	return parseDurationOr(r.Interval, 60*time.Second)
}

// IsDev reports whether the server runs in development mode
func (s *ServerConfig) IsDev() bool {
	return s.Mode == "dev"
}

// ExpandEnvVars expands environment variables in config strings
func (c *Config) ExpandEnvVars() {
	c.API.BaseURL = os.ExpandEnv(c.API.BaseURL)
	c.Calendar.FestivalFile = os.ExpandEnv(c.Calendar.FestivalFile)
	c.Log.File = os.ExpandEnv(c.Log.File)
}

func parseDurationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func hoursToDuration(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}

func parseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return time.Sunday, nil
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n <= 6 {
		return time.Weekday(n), nil
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || s == name[:3] {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday '%s'", s)
}
