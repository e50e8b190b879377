package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/dgallion1/stepdeck/internal/fetch"
	"github.com/dgallion1/stepdeck/internal/loader"
	"github.com/dgallion1/stepdeck/internal/theme"
	"github.com/dgallion1/stepdeck/internal/wheel"
)

// Config is the full runtime configuration. Values come from defaults, then
// the config file, then STEPDECK_* environment variables, then flags.
type Config struct {
	// HTTP server
	Port           string `yaml:"port" mapstructure:"port"`
	APIKey         string `yaml:"api_key" mapstructure:"api_key"`
	AllowAnonymous bool   `yaml:"allow_anonymous" mapstructure:"allow_anonymous"`

	// Load pipeline
	WorkerCount    int           `yaml:"worker_count" mapstructure:"worker_count"`
	MaxQueueSize   int           `yaml:"max_queue_size" mapstructure:"max_queue_size"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`
	SessionTTL     time.Duration `yaml:"session_ttl" mapstructure:"session_ttl"`
	JobTTL         time.Duration `yaml:"job_ttl" mapstructure:"job_ttl"`

	// Remote documents
	FetchTimeout    time.Duration `yaml:"fetch_timeout" mapstructure:"fetch_timeout"`
	FetchMaxBytes   int64         `yaml:"fetch_max_bytes" mapstructure:"fetch_max_bytes"`
	FetchRate       float64       `yaml:"fetch_rate" mapstructure:"fetch_rate"`
	FetchBurst      int           `yaml:"fetch_burst" mapstructure:"fetch_burst"`
	FetchMaxRetries int           `yaml:"fetch_max_retries" mapstructure:"fetch_max_retries"`
	UserAgent       string        `yaml:"user_agent" mapstructure:"user_agent"`

	// Wheel gestures
	WheelThreshold  float64       `yaml:"wheel_threshold" mapstructure:"wheel_threshold"`
	WheelIdleReset  time.Duration `yaml:"wheel_idle_reset" mapstructure:"wheel_idle_reset"`
	WheelCooldown   time.Duration `yaml:"wheel_cooldown" mapstructure:"wheel_cooldown"`
	WheelNotchDelta float64       `yaml:"wheel_notch_delta" mapstructure:"wheel_notch_delta"`

	// Presentation
	Theme          string        `yaml:"theme" mapstructure:"theme"`
	FontSize       int           `yaml:"font_size" mapstructure:"font_size"`
	GlamourStyle   string        `yaml:"glamour_style" mapstructure:"glamour_style"`
	KeyBindings    []string      `yaml:"key_bindings" mapstructure:"key_bindings"`
	RenderCacheTTL time.Duration `yaml:"render_cache_ttl" mapstructure:"render_cache_ttl"`

	// PDF
	PDFFallbackPdftotext bool `yaml:"pdf_fallback_pdftotext" mapstructure:"pdf_fallback_pdftotext"`

	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
}

const (
	MinFontSize     = 16
	MaxFontSize     = 64
	DefaultFontSize = 36
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port: "8090",

		WorkerCount:    4,
		MaxQueueSize:   100,
		MaxUploadBytes: 50 << 20,
		SessionTTL:     2 * time.Hour,
		JobTTL:         1 * time.Hour,

		FetchTimeout:    30 * time.Second,
		FetchMaxBytes:   20 << 20,
		FetchRate:       2,
		FetchBurst:      2,
		FetchMaxRetries: 3,
		UserAgent:       "stepdeck",

		WheelThreshold:  200,
		WheelIdleReset:  300 * time.Millisecond,
		WheelCooldown:   500 * time.Millisecond,
		WheelNotchDelta: 100,

		Theme:          theme.Default,
		FontSize:       DefaultFontSize,
		GlamourStyle:   "auto",
		RenderCacheTTL: 10 * time.Minute,

		PDFFallbackPdftotext: true,

		LogLevel: "info",
	}
}

// Load returns the defaults overlaid with the environment.
func Load() Config {
	cfg := Default()
	cfg.applyEnv()
	cfg.normalize()
	return cfg
}

// LoadWith overlays the values v holds (typically a config file) on the
// defaults, then the environment.
func LoadWith(v *viper.Viper) (Config, error) {
	cfg := Default()
	if v != nil {
		if err := v.Unmarshal(&cfg); err != nil {
			return cfg, fmt.Errorf("decode config: %w", err)
		}
	}
	cfg.applyEnv()
	cfg.normalize()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Port = envOr("STEPDECK_PORT", envOr("PORT", c.Port))
	c.APIKey = envOr("STEPDECK_API_KEY", c.APIKey)
	c.AllowAnonymous = envBool("STEPDECK_ALLOW_ANONYMOUS", c.AllowAnonymous)

	c.WorkerCount = envInt("STEPDECK_WORKER_COUNT", c.WorkerCount)
	c.MaxQueueSize = envInt("STEPDECK_MAX_QUEUE_SIZE", c.MaxQueueSize)
	c.MaxUploadBytes = envInt64("STEPDECK_MAX_UPLOAD_BYTES", c.MaxUploadBytes)
	c.SessionTTL = envDuration("STEPDECK_SESSION_TTL", c.SessionTTL)
	c.JobTTL = envDuration("STEPDECK_JOB_TTL", c.JobTTL)

	c.FetchTimeout = envDuration("STEPDECK_FETCH_TIMEOUT", c.FetchTimeout)
	c.FetchMaxBytes = envInt64("STEPDECK_FETCH_MAX_BYTES", c.FetchMaxBytes)
	c.FetchRate = envFloat("STEPDECK_FETCH_RATE", c.FetchRate)
	c.FetchBurst = envInt("STEPDECK_FETCH_BURST", c.FetchBurst)
	c.FetchMaxRetries = envInt("STEPDECK_FETCH_MAX_RETRIES", c.FetchMaxRetries)
	c.UserAgent = envOr("STEPDECK_USER_AGENT", c.UserAgent)

	c.WheelThreshold = envFloat("STEPDECK_WHEEL_THRESHOLD", c.WheelThreshold)
	c.WheelIdleReset = envDuration("STEPDECK_WHEEL_IDLE_RESET", c.WheelIdleReset)
	c.WheelCooldown = envDuration("STEPDECK_WHEEL_COOLDOWN", c.WheelCooldown)
	c.WheelNotchDelta = envFloat("STEPDECK_WHEEL_NOTCH_DELTA", c.WheelNotchDelta)

	c.Theme = envOr("STEPDECK_THEME", c.Theme)
	c.FontSize = envInt("STEPDECK_FONT_SIZE", c.FontSize)
	c.GlamourStyle = envOr("STEPDECK_GLAMOUR_STYLE", c.GlamourStyle)
	if v := os.Getenv("STEPDECK_KEY_BINDINGS"); v != "" {
		c.KeyBindings = strings.Split(v, ";")
	}
	c.RenderCacheTTL = envDuration("STEPDECK_RENDER_CACHE_TTL", c.RenderCacheTTL)

	c.PDFFallbackPdftotext = envBool("STEPDECK_PDF_FALLBACK_PDFTOTEXT", c.PDFFallbackPdftotext)

	c.LogLevel = envOr("STEPDECK_LOG_LEVEL", c.LogLevel)
}

// normalize replaces unusable sizing values with defaults.
func (c *Config) normalize() {
	def := Default()
	if c.WorkerCount <= 0 {
		c.WorkerCount = def.WorkerCount
	}
	if c.MaxQueueSize <= 0 {
		c.MaxQueueSize = def.MaxQueueSize
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = def.MaxUploadBytes
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = def.SessionTTL
	}
	if c.JobTTL <= 0 {
		c.JobTTL = def.JobTTL
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = def.FetchTimeout
	}
	if c.FetchMaxBytes <= 0 {
		c.FetchMaxBytes = def.FetchMaxBytes
	}
	if c.WheelNotchDelta <= 0 {
		c.WheelNotchDelta = def.WheelNotchDelta
	}
}

// Wheel returns the wheel coalescer settings.
func (c Config) Wheel() wheel.Config {
	return wheel.Config{
		Threshold: c.WheelThreshold,
		IdleReset: c.WheelIdleReset,
		Cooldown:  c.WheelCooldown,
	}
}

// Fetch returns the remote document fetcher settings.
func (c Config) Fetch() fetch.Options {
	return fetch.Options{
		Timeout:       c.FetchTimeout,
		UserAgent:     c.UserAgent,
		MaxBytes:      c.FetchMaxBytes,
		RatePerSecond: c.FetchRate,
		Burst:         c.FetchBurst,
		MaxRetries:    c.FetchMaxRetries,
	}
}

// Loader returns the document conversion settings.
func (c Config) Loader() loader.Options {
	return loader.Options{PDFFallbackPdftotext: c.PDFFallbackPdftotext}
}

// SlogLevel maps LogLevel to a slog level; unknown names are info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Validate checks settings every command relies on.
func (c Config) Validate() error {
	if c.FontSize < MinFontSize || c.FontSize > MaxFontSize {
		return fmt.Errorf("font_size must be between %d and %d, got %d", MinFontSize, MaxFontSize, c.FontSize)
	}
	if _, err := theme.Lookup(c.Theme); err != nil {
		return fmt.Errorf("theme: %w (choose one of %s)", err, strings.Join(theme.Names(), ", "))
	}
	if err := c.Wheel().Validate(); err != nil {
		return fmt.Errorf("wheel: %w", err)
	}
	return nil
}

// ValidateServe additionally checks settings the HTTP server needs.
func (c Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey == "" && !c.AllowAnonymous {
		return fmt.Errorf("STEPDECK_API_KEY is required (or set STEPDECK_ALLOW_ANONYMOUS=true)")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid port %q", c.Port)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
