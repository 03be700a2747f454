package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pdfgen/backend/internal/domain/pdf"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	HTTP      HTTPConfig
	Storage   StorageConfig
	Retention RetentionConfig
	Render    RenderConfig
	Log       LogConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	// BaseURL is the public base for generated PDF links.
	// Empty means derive it from the inbound request.
	BaseURL          string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
}

// StorageConfig holds file store configuration
type StorageConfig struct {
	// Dir is the directory holding generated PDFs
	Dir string
}

// RetentionConfig holds retention sweeper configuration
type RetentionConfig struct {
	// Window is how long a generated PDF stays servable
	Window time.Duration
	// SweepInterval is the period between sweep cycles
	SweepInterval time.Duration
}

// RenderConfig holds the default page-format options and browser settings
type RenderConfig struct {
	Format          string
	PrintBackground bool
	Scale           float64
	MarginTop       string
	MarginBottom    string
	MarginLeft      string
	MarginRight     string
	// CookieDomain is the domain for cookies injected into the browser
	// context. Empty means auto-detect from the inbound request host.
	CookieDomain string
	// Timeout bounds a single render; engines can hang on malformed pages
	Timeout time.Duration
	// RemoteURL points at a remote Chrome instance; empty launches one
	RemoteURL string
	// NoSandbox runs Chrome without sandbox (required for Docker/root)
	NoSandbox bool
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// envBindings maps config keys to the environment variables the service
// has always been configured with.
var envBindings = map[string]string{
	"app.env":                  "APP_ENV",
	"app.port":                 "PORT",
	"http.base_url":            "PDF_BASE_URL",
	"http.cors_origins":        "CORS_ORIGINS",
	"http.max_body_size":       "PDF_MAX_BODY_SIZE",
	"storage.dir":              "PDF_DIR",
	"retention.window":         "PDF_RETENTION_SECONDS",
	"retention.sweep_interval": "PDF_CLEANUP_INTERVAL",
	"render.format":            "PDF_FORMAT",
	"render.print_background":  "PDF_PRINT_BACKGROUND",
	"render.scale":             "PDF_SCALE",
	"render.margin_top":        "PDF_MARGIN_TOP",
	"render.margin_bottom":     "PDF_MARGIN_BOTTOM",
	"render.margin_left":       "PDF_MARGIN_LEFT",
	"render.margin_right":      "PDF_MARGIN_RIGHT",
	"render.cookie_domain":     "PDF_COOKIE_DOMAIN",
	"render.timeout":           "PDF_RENDER_TIMEOUT_SECONDS",
	"render.remote_url":        "PDF_REMOTE_CHROME_URL",
	"render.no_sandbox":        "PDF_NO_SANDBOX",
	"log.level":                "PDF_LOG_LEVEL",
	"log.format":               "PDF_LOG_FORMAT",
	"log.output":               "PDF_LOG_OUTPUT",
}

// Load loads configuration from config.toml and environment variables.
// Values that are explicitly set but unparsable fail loudly here rather
// than silently falling back to a default; absent values use defaults.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("error binding %s: %w", env, err)
		}
	}

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		HTTP: HTTPConfig{
			BaseURL:          strings.TrimRight(v.GetString("http.base_url"), "/"),
			CORSAllowOrigins: splitOrigins(v.GetString("http.cors_origins")),
		},
		Storage: StorageConfig{
			Dir: v.GetString("storage.dir"),
		},
		Render: RenderConfig{
			Format:       v.GetString("render.format"),
			MarginTop:    v.GetString("render.margin_top"),
			MarginBottom: v.GetString("render.margin_bottom"),
			MarginLeft:   v.GetString("render.margin_left"),
			MarginRight:  v.GetString("render.margin_right"),
			CookieDomain: v.GetString("render.cookie_domain"),
			RemoteURL:    v.GetString("render.remote_url"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
	}

	// Numeric and boolean values are parsed strictly: a value that was set
	// but does not parse is a startup error, not a silent default.
	var err error
	if cfg.Retention.Window, err = secondsValue(v, "retention.window", 3600*time.Second); err != nil {
		return nil, err
	}
	if cfg.Retention.SweepInterval, err = secondsValue(v, "retention.sweep_interval", 300*time.Second); err != nil {
		return nil, err
	}
	if cfg.Render.Timeout, err = secondsValue(v, "render.timeout", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.Render.Scale, err = floatValue(v, "render.scale", 0.6); err != nil {
		return nil, err
	}
	if cfg.Render.PrintBackground, err = boolValue(v, "render.print_background", false); err != nil {
		return nil, err
	}
	if cfg.Render.NoSandbox, err = boolValue(v, "render.no_sandbox", false); err != nil {
		return nil, err
	}
	maxBody, err := intValue(v, "http.max_body_size", 10<<20)
	if err != nil {
		return nil, err
	}
	cfg.HTTP.MaxBodySize = int64(maxBody)

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "pdfgen"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		// Serving a large PDF plus an unbounded render can be slow
		cfg.HTTP.WriteTimeout = 60 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if len(cfg.HTTP.CORSAllowOrigins) == 0 {
		cfg.HTTP.CORSAllowOrigins = []string{"http://localhost:5173"}
	}
	if cfg.Storage.Dir == "" {
		cfg.Storage.Dir = "generated_pdfs"
	}
	if cfg.Render.Format == "" {
		cfg.Render.Format = "A4"
	}
	if cfg.Render.MarginTop == "" {
		cfg.Render.MarginTop = "1cm"
	}
	if cfg.Render.MarginBottom == "" {
		cfg.Render.MarginBottom = "1cm"
	}
	if cfg.Render.MarginLeft == "" {
		cfg.Render.MarginLeft = "1cm"
	}
	if cfg.Render.MarginRight == "" {
		cfg.Render.MarginRight = "1cm"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Retention.Window <= 0 {
		return fmt.Errorf("retention.window must be positive")
	}
	if c.Retention.SweepInterval <= 0 {
		return fmt.Errorf("retention.sweep_interval must be positive")
	}
	if c.Render.Timeout <= 0 {
		return fmt.Errorf("render.timeout must be positive")
	}
	if c.HTTP.MaxBodySize <= 0 {
		return fmt.Errorf("http.max_body_size must be positive")
	}
	if _, err := c.DefaultOptions(); err != nil {
		return err
	}
	if c.App.Env == "production" {
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("http.cors_origins cannot be '*' in production (use specific origins)")
			}
		}
	}
	return nil
}

// DefaultOptions builds the page-format options from configuration
func (c *Config) DefaultOptions() (pdf.Options, error) {
	format, err := pdf.ParsePaperFormat(c.Render.Format)
	if err != nil {
		return pdf.Options{}, fmt.Errorf("render.format: %w", err)
	}
	opts := pdf.Options{
		Format:          format,
		PrintBackground: c.Render.PrintBackground,
		Scale:           c.Render.Scale,
		Margins: pdf.Margins{
			Top:    pdf.Length(c.Render.MarginTop),
			Bottom: pdf.Length(c.Render.MarginBottom),
			Left:   pdf.Length(c.Render.MarginLeft),
			Right:  pdf.Length(c.Render.MarginRight),
		},
	}
	if err := opts.Validate(); err != nil {
		return pdf.Options{}, fmt.Errorf("render options: %w", err)
	}
	return opts, nil
}

// splitOrigins parses a comma-separated origin list
func splitOrigins(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

// secondsValue reads a whole-seconds duration, erroring on unparsable input
func secondsValue(v *viper.Viper, key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return def, nil
	}
	secs, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid seconds value %q", key, raw)
	}
	return time.Duration(secs) * time.Second, nil
}

// intValue reads an integer, erroring on unparsable input
func intValue(v *viper.Viper, key string, def int) (int, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer value %q", key, raw)
	}
	return n, nil
}

// floatValue reads a float, erroring on unparsable input
func floatValue(v *viper.Viper, key string, def float64) (float64, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid numeric value %q", key, raw)
	}
	return f, nil
}

// boolValue reads a boolean, erroring on unparsable input
func boolValue(v *viper.Viper, key string, def bool) (bool, error) {
	raw := strings.TrimSpace(strings.ToLower(v.GetString(key)))
	if raw == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean value %q", key, raw)
	}
	return b, nil
}
