package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported values of llm.provider.
const (
	ProviderOffline   = "offline"
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGoogleAI  = "googleai"
)

type Config struct {
	Server  ServerConfig
	Logger  LoggerConfig
	LLM     LLMConfig
	Redis   RedisConfig
	Cache   CacheConfig
	Tracing TracingConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimit    int
}

type LoggerConfig struct {
	Level string
	Env   string
}

// LLMConfig selects the generation capability. Provider "offline" needs
// nothing else; the remaining fields configure the model-backed variant.
// An empty ServerURL means the provider's default endpoint.
type LLMConfig struct {
	Provider    string
	ServerURL   string
	Model       string
	APIKey      string
	Temperature float64
	Timeout     time.Duration
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type CacheConfig struct {
	CompletionTTL time.Duration
}

type TracingConfig struct {
	Enabled     bool
	SampleRatio float64
}

// LoadConfig reads config.yaml from the given directories (or "." and
// "./configs" when none are given). A missing file is not an error: defaults
// and environment variables still apply.
func LoadConfig(paths ...string) (*Config, error) {
	return LoadConfigWithOverrides(nil, paths...)
}

// LoadConfigWithOverrides is LoadConfig with overrides applied on top of the
// file and environment before validation. Keys use the dotted viper form,
// e.g. "llm.provider".
func LoadConfigWithOverrides(overrides map[string]any, paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if len(paths) == 0 {
		paths = []string{".", "./configs"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	for key, value := range overrides {
		v.Set(key, value)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetInt("server.port"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
			BodyLimit:    v.GetInt("server.body_limit"),
		},
		Logger: LoggerConfig{
			Level: v.GetString("logger.level"),
			Env:   v.GetString("logger.env"),
		},
		LLM: LLMConfig{
			Provider:    strings.ToLower(v.GetString("llm.provider")),
			ServerURL:   v.GetString("llm.server_url"),
			Model:       v.GetString("llm.model"),
			APIKey:      v.GetString("llm.api_key"),
			Temperature: v.GetFloat64("llm.temperature"),
			Timeout:     v.GetDuration("llm.timeout"),
			MaxAttempts: v.GetInt("llm.max_attempts"),
			InitialWait: v.GetDuration("llm.initial_wait"),
			MaxWait:     v.GetDuration("llm.max_wait"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Cache: CacheConfig{
			CompletionTTL: v.GetDuration("cache.completion_ttl"),
		},
		Tracing: TracingConfig{
			Enabled:     v.GetBool("tracing.enabled"),
			SampleRatio: v.GetFloat64("tracing.sample_ratio"),
		},
	}

	// Override with the legacy flat environment variables if set
	if key := os.Getenv("MODEL_API_KEY"); key != "" {
		cfg.LLM.APIKey = key
	}
	if temp := os.Getenv("MODEL_TEMPERATURE"); temp != "" {
		t, err := strconv.ParseFloat(temp, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid MODEL_TEMPERATURE %q: %w", temp, err)
		}
		cfg.LLM.Temperature = t
	}
	if redisAddress := os.Getenv("REDIS_ADDRESS"); redisAddress != "" {
		cfg.Redis.Address = redisAddress
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid SERVER_PORT %q: %w", port, err)
		}
		cfg.Server.Port = p
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.body_limit", 4*1024*1024)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.env", "development")

	v.SetDefault("llm.provider", ProviderOffline)
	v.SetDefault("llm.server_url", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.timeout", 30*time.Second)
	v.SetDefault("llm.max_attempts", 3)
	v.SetDefault("llm.initial_wait", 500*time.Millisecond)
	v.SetDefault("llm.max_wait", 5*time.Second)

	v.SetDefault("redis.address", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("cache.completion_ttl", 24*time.Hour)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.sample_ratio", 1.0)
}

// Validate rejects configurations the binaries could not start with.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderOffline, ProviderOllama:
	case ProviderOpenAI, ProviderAnthropic, ProviderGoogleAI:
		if c.LLM.APIKey == "" {
			return fmt.Errorf("llm.api_key is required for provider %q", c.LLM.Provider)
		}
	default:
		return fmt.Errorf("unknown llm.provider %q", c.LLM.Provider)
	}
	if c.LLM.Temperature < 0 {
		return fmt.Errorf("llm.temperature must not be negative, got %g", c.LLM.Temperature)
	}
	if c.LLM.MaxAttempts < 1 {
		return fmt.Errorf("llm.max_attempts must be at least 1, got %d", c.LLM.MaxAttempts)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("tracing.sample_ratio must be within [0,1], got %g", c.Tracing.SampleRatio)
	}
	return nil
}
