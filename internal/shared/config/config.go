package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Config holds application configuration.
type Config struct {
	Port            string    `toml:"port"`
	Env             string    `toml:"env"`
	CORSAllowOrigin []string  `toml:"cors_allow_origins"`
	LogLevel        string    `toml:"log_level"`
	SchemaVersion   string    `toml:"schema_version"`
	LLM             LLMConfig `toml:"llm"`
}

// LLMConfig configures the completion backend and the extraction retry loop.
type LLMConfig struct {
	Provider         string  `toml:"provider"`
	APIKey           string  `toml:"api_key"`
	BaseURL          string  `toml:"base_url"`
	Model            string  `toml:"model"`
	TimeoutSeconds   int     `toml:"timeout_seconds"`
	Temperature      float64 `toml:"temperature"`
	TopP             float64 `toml:"top_p"`
	MaxTokens        int     `toml:"max_tokens"`
	MaxAttempts      int     `toml:"max_attempts"`
	RetryBaseDelayMS int     `toml:"retry_base_delay_ms"`
	JSONMode         bool    `toml:"json_mode"`
}

// HasCredential reports whether an API key is configured.
func (c LLMConfig) HasCredential() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// Timeout returns the per-attempt timeout.
func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RetryBaseDelay returns the first backoff delay between attempts.
func (c LLMConfig) RetryBaseDelay() time.Duration {
	return time.Duration(c.RetryBaseDelayMS) * time.Millisecond
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:            "8080",
		Env:             "dev",
		CORSAllowOrigin: []string{"http://localhost:5173"},
		LogLevel:        "info",
		SchemaVersion:   "v3",
		LLM: LLMConfig{
			Provider:         "openai",
			TimeoutSeconds:   120,
			Temperature:      0.3,
			TopP:             0.9,
			MaxTokens:        8192,
			MaxAttempts:      3,
			RetryBaseDelayMS: 300,
			JSONMode:         true,
		},
	}
}

// Load reads .env files, an optional TOML file named by CONFIG_FILE, and then
// environment variables, later sources overriding earlier ones.
func Load() (Config, error) {
	return LoadWithFile("")
}

// LoadWithFile is Load with an explicit TOML path taking precedence over
// CONFIG_FILE.
func LoadWithFile(path string) (Config, error) {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")
	if strings.TrimSpace(path) == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	return LoadFile(path)
}

// LoadFile is Load without the .env step and with an explicit TOML path.
// An empty path skips the file.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if path = strings.TrimSpace(path); path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadEnvFiles(paths ...string) {
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return
	}
	// godotenv never overrides variables already present in the environment.
	_ = godotenv.Load(existing...)
}

func decodeFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Env = getEnv("ENV", cfg.Env)
	if raw := os.Getenv("CORS_ALLOW_ORIGINS"); raw != "" {
		cfg.CORSAllowOrigin = splitAndTrim(raw)
	}
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.SchemaVersion = getEnv("SCHEMA_VERSION", cfg.SchemaVersion)

	llm := &cfg.LLM
	llm.Provider = getEnv("LLM_PROVIDER", llm.Provider)
	llm.BaseURL = getEnv("LLM_BASE_URL", llm.BaseURL)
	llm.Model = getEnv("LLM_MODEL", llm.Model)
	llm.APIKey = firstEnv(append([]string{"LLM_API_KEY"}, providerKeyVars(llm.Provider)...), llm.APIKey)

	var errs []error
	llm.TimeoutSeconds = getInt("LLM_TIMEOUT_SECONDS", llm.TimeoutSeconds, &errs)
	llm.Temperature = getFloat("LLM_TEMPERATURE", llm.Temperature, &errs)
	llm.TopP = getFloat("LLM_TOP_P", llm.TopP, &errs)
	llm.MaxTokens = getInt("LLM_MAX_TOKENS", llm.MaxTokens, &errs)
	llm.MaxAttempts = getInt("LLM_MAX_ATTEMPTS", llm.MaxAttempts, &errs)
	llm.RetryBaseDelayMS = getInt("LLM_RETRY_BASE_DELAY_MS", llm.RetryBaseDelayMS, &errs)
	llm.JSONMode = getBool("LLM_JSON_MODE", llm.JSONMode, &errs)
	return errors.Join(errs...)
}

func providerKeyVars(provider string) []string {
	switch normalizeProvider(provider) {
	case "gemini":
		return []string{"GEMINI_API_KEY"}
	default:
		return []string{"GROQ_API_KEY", "HUGGINGFACE_TOKEN", "OPENAI_API_KEY"}
	}
}

func (c *Config) normalize() {
	c.Env = normalizeEnv(c.Env)
	c.SchemaVersion = strings.TrimSpace(c.SchemaVersion)
	c.LLM.Provider = normalizeProvider(c.LLM.Provider)
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Port) == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	switch c.LLM.Provider {
	case "openai", "gemini":
	default:
		errs = append(errs, fmt.Errorf("LLM_PROVIDER %q is not supported (openai, gemini)", c.LLM.Provider))
	}
	if c.LLM.TimeoutSeconds <= 0 {
		errs = append(errs, errors.New("LLM_TIMEOUT_SECONDS must be positive"))
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, errors.New("LLM_TEMPERATURE must be between 0 and 2"))
	}
	if c.LLM.TopP < 0 || c.LLM.TopP > 1 {
		errs = append(errs, errors.New("LLM_TOP_P must be between 0 and 1"))
	}
	if c.LLM.MaxTokens < 0 {
		errs = append(errs, errors.New("LLM_MAX_TOKENS must not be negative"))
	}
	if c.LLM.MaxAttempts < 1 {
		errs = append(errs, errors.New("LLM_MAX_ATTEMPTS must be at least 1"))
	}
	if c.LLM.RetryBaseDelayMS < 0 {
		errs = append(errs, errors.New("LLM_RETRY_BASE_DELAY_MS must not be negative"))
	}
	if c.SchemaVersion == "" {
		errs = append(errs, errors.New("SCHEMA_VERSION must not be empty"))
	}
	return errors.Join(errs...)
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func firstEnv(keys []string, def string) string {
	for _, k := range keys {
		if val := strings.TrimSpace(os.Getenv(k)); val != "" {
			return val
		}
	}
	return def
}

func getInt(key string, def int, errs *[]error) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid integer %q", key, raw))
		return def
	}
	return v
}

func getFloat(key string, def float64, errs *[]error) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid number %q", key, raw))
		return def
	}
	return v
}

func getBool(key string, def bool, errs *[]error) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid boolean %q", key, raw))
		return def
	}
	return v
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "openai", "groq", "huggingface", "hf":
		return "openai"
	case "gemini", "google":
		return "gemini"
	default:
		return strings.ToLower(strings.TrimSpace(raw))
	}
}
