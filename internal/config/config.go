package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        string `yaml:"port"`
	DatabaseURL string `yaml:"databaseURL"`
	LogLevel    string `yaml:"logLevel"`

	// S3 archive for uploaded originals. Disabled when S3Endpoint is empty.
	S3Endpoint        string `yaml:"s3Endpoint"`
	S3AccessKeyID     string `yaml:"s3AccessKeyID"`
	S3SecretAccessKey string `yaml:"s3SecretAccessKey"`
	S3BucketName      string `yaml:"s3BucketName"`
	S3UseSSL          bool   `yaml:"s3UseSSL"`

	// Chat completion endpoint (any OpenAI-compatible server)
	LLMBaseURL     string  `yaml:"llmBaseURL"`
	LLMAPIKey      string  `yaml:"llmAPIKey"`
	LLMModel       string  `yaml:"llmModel"`
	LLMTemperature float32 `yaml:"llmTemperature"`

	// Review
	ReviewMode     string   `yaml:"reviewMode"`
	PromptTemplate string   `yaml:"promptTemplate"`
	CriteriaFile   string   `yaml:"criteriaFile"`
	AllowedFormats []string `yaml:"allowedFormats"`

	// Upload limits
	MaxFileSize int64 `yaml:"maxFileSize"`
}

func defaults() *Config {
	return &Config{
		Port:           "8080",
		DatabaseURL:    "data/compliance.db",
		LogLevel:       "info",
		S3BucketName:   "documents",
		LLMBaseURL:     "https://integrate.api.nvidia.com/v1",
		LLMModel:       "nvidia/llama-3.1-nemotron-70b-instruct",
		LLMTemperature: 0.0001,
		ReviewMode:     "per_criterion",
		PromptTemplate: "protocol",
		AllowedFormats: []string{"docx"},
		MaxFileSize:    5 * 1024 * 1024,
	}
}

// Load reads configuration from the YAML file named by CONFIG_PATH (optional)
// and then applies environment overrides.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.S3Endpoint = getEnv("S3_ENDPOINT", cfg.S3Endpoint)
	cfg.S3AccessKeyID = getEnv("S3_ACCESS_KEY_ID", cfg.S3AccessKeyID)
	cfg.S3SecretAccessKey = getEnv("S3_SECRET_ACCESS_KEY", cfg.S3SecretAccessKey)
	cfg.S3BucketName = getEnv("S3_BUCKET_NAME", cfg.S3BucketName)
	cfg.LLMBaseURL = getEnv("LLM_BASE_URL", cfg.LLMBaseURL)
	cfg.LLMAPIKey = getEnv("LLM_API_KEY", cfg.LLMAPIKey)
	cfg.LLMModel = getEnv("LLM_MODEL", cfg.LLMModel)
	cfg.ReviewMode = getEnv("REVIEW_MODE", cfg.ReviewMode)
	cfg.PromptTemplate = getEnv("PROMPT_TEMPLATE", cfg.PromptTemplate)
	cfg.CriteriaFile = getEnv("CRITERIA_FILE", cfg.CriteriaFile)

	if v := os.Getenv("S3_USE_SSL"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid S3_USE_SSL %q: %w", v, err)
		}
		cfg.S3UseSSL = b
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		t, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid LLM_TEMPERATURE %q: %w", v, err)
		}
		cfg.LLMTemperature = float32(t)
	}
	if v := os.Getenv("MAX_FILE_SIZE"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_FILE_SIZE %q: %w", v, err)
		}
		cfg.MaxFileSize = n
	}
	if v := os.Getenv("ALLOWED_FORMATS"); v != "" {
		cfg.AllowedFormats = splitList(v)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.LLMAPIKey == "" {
		return fmt.Errorf("LLM_API_KEY is required")
	}
	switch c.ReviewMode {
	case "per_criterion", "batch":
	default:
		return fmt.Errorf("REVIEW_MODE must be per_criterion or batch, got %q", c.ReviewMode)
	}
	switch c.PromptTemplate {
	case "protocol", "concise":
	default:
		return fmt.Errorf("PROMPT_TEMPLATE must be protocol or concise, got %q", c.PromptTemplate)
	}
	if c.LLMTemperature < 0 || c.LLMTemperature > 2 {
		return fmt.Errorf("LLM_TEMPERATURE must be within [0, 2], got %v", c.LLMTemperature)
	}
	if len(c.AllowedFormats) == 0 {
		return fmt.Errorf("ALLOWED_FORMATS must name at least one format")
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE must be positive")
	}
	return nil
}

// StorageEnabled reports whether uploaded originals are archived in S3.
func (c *Config) StorageEnabled() bool {
	return c.S3Endpoint != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(strings.ToLower(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}
