package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	Portal      PortalConfig    `toml:"portal"`
	LLM         LLMConfig       `toml:"llm"`
	Claude      ClaudeConfig    `toml:"claude"`
	Gemini      GeminiConfig    `toml:"gemini"`
	Groq        GroqConfig      `toml:"groq"`
	SMTP        SMTPConfig      `toml:"smtp"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gte=0,lte=65535"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger      BadgerConfig `toml:"badger"`
	Attachments string       `toml:"attachments"` // Directory for downloaded PDF attachments
	MaxStored   int          `toml:"max_stored"`  // Max attachments kept on disk per run cleanup
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// PortalConfig contains trade-regulation portal scraping configuration
type PortalConfig struct {
	BaseURL            string        `toml:"base_url"`             // Portal landing page
	NotificationsURL   string        `toml:"notifications_url"`    // Direct URL for the Notifications section
	PublicNoticesURL   string        `toml:"public_notices_url"`   // Direct URL for the Public Notices section
	CircularsURL       string        `toml:"circulars_url"`        // Direct URL for the Circulars section
	UserAgent          string        `toml:"user_agent"`           // User agent for portal requests
	RequestTimeout     time.Duration `toml:"request_timeout"`      // HTTP request timeout
	RateLimit          time.Duration `toml:"rate_limit"`           // Minimum delay between portal requests
	EnableJavaScript   bool          `toml:"enable_javascript"`    // Render pages with headless Chrome (portal is a JS-heavy SPA)
	JavaScriptWaitTime time.Duration `toml:"javascript_wait_time"` // Time to wait for JavaScript to render
	MaxRowsPerSection  int           `toml:"max_rows_per_section"` // Cap on table rows collected per section
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderGroq uses Groq's OpenAI-compatible API
	LLMProviderGroq LLMProvider = "groq"
)

// LLMConfig selects the AI provider used for query interpretation and analysis
type LLMConfig struct {
	Provider LLMProvider `toml:"provider"` // "claude", "gemini", or "groq" (default: "groq")
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key
	Model       string  `toml:"model"`       // Model name (default: "claude-haiku-3-5-20241022")
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 4096)
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "2m")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.1 for deterministic extraction)
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`     // Google Gemini API key
	Model       string  `toml:"model"`       // Model name (default: "gemini-2.0-flash")
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "2m")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.1)
}

// GroqConfig contains Groq API configuration (OpenAI-compatible endpoint)
type GroqConfig struct {
	APIKey      string  `toml:"api_key"`     // Groq API key
	Model       string  `toml:"model"`       // Model name (default: "llama3-70b-8192")
	BaseURL     string  `toml:"base_url"`    // API base URL (default: "https://api.groq.com/openai/v1")
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "2m")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.1)
}

// SMTPConfig contains email delivery configuration
type SMTPConfig struct {
	Host       string   `toml:"host"`       // SMTP server hostname
	Port       int      `toml:"port"`       // SMTP server port (default: 587)
	Username   string   `toml:"username"`   // SMTP username
	Password   string   `toml:"password"`   // SMTP password or app password
	From       string   `toml:"from" validate:"omitempty,email"`
	FromName   string   `toml:"from_name"`  // From display name
	UseTLS     bool     `toml:"use_tls"`    // Use TLS encryption
	Recipients []string `toml:"recipients"` // Default notification recipients
}

// SchedulerConfig contains periodic pipeline run configuration
type SchedulerConfig struct {
	Enabled  bool   `toml:"enabled"`  // Run the pipeline on a schedule
	Schedule string `toml:"schedule"` // Cron schedule (default: "0 0 */6 * * *")
}

// NewDefaultConfig creates a configuration with default values.
// Technical parameters are hardcoded here for production stability.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
			Attachments: "./data/attachments",
			MaxStored:   5, // Keep only the most recent PDFs on disk
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
		Portal: PortalConfig{
			BaseURL:            "https://www.dgft.gov.in/CP/?opt=regulatory-updates",
			NotificationsURL:   "https://www.dgft.gov.in/CP/?opt=notification",
			PublicNoticesURL:   "https://www.dgft.gov.in/CP/?opt=public-notice",
			CircularsURL:       "https://www.dgft.gov.in/CP/?opt=circular",
			UserAgent:          "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			RequestTimeout:     30 * time.Second,
			RateLimit:          1 * time.Second,
			EnableJavaScript:   true,
			JavaScriptWaitTime: 3 * time.Second,
			MaxRowsPerSection:  50,
		},
		LLM: LLMConfig{
			Provider: LLMProviderGroq, // Matches the portal monitor's original provider
		},
		Claude: ClaudeConfig{
			Model:       "claude-haiku-3-5-20241022",
			MaxTokens:   4096,
			Timeout:     "2m",
			Temperature: 0.1,
		},
		Gemini: GeminiConfig{
			Model:       "gemini-2.0-flash",
			Timeout:     "2m",
			Temperature: 0.1,
		},
		Groq: GroqConfig{
			Model:       "llama3-70b-8192",
			BaseURL:     "https://api.groq.com/openai/v1",
			Timeout:     "2m",
			Temperature: 0.1,
		},
		SMTP: SMTPConfig{
			Port:     587,
			FromName: "Vigilo",
			UseTLS:   true,
		},
		Scheduler: SchedulerConfig{
			Enabled:  false,           // Disabled by default - user must explicitly opt-in
			Schedule: "0 0 */6 * * *", // Every 6 hours (cron format)
		},
	}
}

// LoadFromFile loads configuration with priority: defaults -> file -> env -> CLI
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files. Later files override
// earlier files; environment variables override all files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks configuration values against struct validation tags
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("VIGILO_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("VIGILO_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("VIGILO_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Storage configuration
	if badgerPath := os.Getenv("VIGILO_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}
	if attachments := os.Getenv("VIGILO_ATTACHMENTS_DIR"); attachments != "" {
		config.Storage.Attachments = attachments
	}

	// Logging configuration
	if level := os.Getenv("VIGILO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("VIGILO_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Portal configuration
	if url := os.Getenv("VIGILO_PORTAL_URL"); url != "" {
		config.Portal.BaseURL = url
	}
	if url := os.Getenv("VIGILO_PORTAL_NOTIFICATIONS_URL"); url != "" {
		config.Portal.NotificationsURL = url
	}
	if url := os.Getenv("VIGILO_PORTAL_PUBLIC_NOTICES_URL"); url != "" {
		config.Portal.PublicNoticesURL = url
	}
	if url := os.Getenv("VIGILO_PORTAL_CIRCULARS_URL"); url != "" {
		config.Portal.CircularsURL = url
	}
	if timeout := os.Getenv("VIGILO_PORTAL_REQUEST_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			config.Portal.RequestTimeout = d
		}
	}

	// LLM provider configuration
	if provider := os.Getenv("VIGILO_LLM_PROVIDER"); provider != "" {
		config.LLM.Provider = LLMProvider(strings.ToLower(provider))
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if key := os.Getenv("GROQ_API_KEY"); key != "" {
		config.Groq.APIKey = key
	}
	if model := os.Getenv("GROQ_MODEL"); model != "" {
		config.Groq.Model = model
	}

	// SMTP configuration
	if host := os.Getenv("VIGILO_SMTP_HOST"); host != "" {
		config.SMTP.Host = host
	}
	if port := os.Getenv("VIGILO_SMTP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.SMTP.Port = p
		}
	}
	if username := os.Getenv("VIGILO_SMTP_USERNAME"); username != "" {
		config.SMTP.Username = username
	}
	if password := os.Getenv("VIGILO_SMTP_PASSWORD"); password != "" {
		config.SMTP.Password = password
	}
	if from := os.Getenv("VIGILO_SMTP_FROM"); from != "" {
		config.SMTP.From = from
	}
	if recipients := os.Getenv("VIGILO_RECIPIENTS"); recipients != "" {
		list := []string{}
		for _, r := range strings.Split(recipients, ",") {
			if trimmed := strings.TrimSpace(r); trimmed != "" {
				list = append(list, trimmed)
			}
		}
		if len(list) > 0 {
			config.SMTP.Recipients = list
		}
	}

	// Scheduler configuration
	if enabled := os.Getenv("VIGILO_SCHEDULER_ENABLED"); enabled != "" {
		if b, err := strconv.ParseBool(enabled); err == nil {
			config.Scheduler.Enabled = b
		}
	}
	if schedule := os.Getenv("VIGILO_SCHEDULER_SCHEDULE"); schedule != "" {
		config.Scheduler.Schedule = schedule
	}
}
