package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName          string
	AppEnv           string
	AppPort          string
	AllowOrigins     string
	DatabaseURL      string
	RedisURL         string
	NATSURL          string
	RealtimeChannel  string
	JWTSecret        string
	JWTRefreshSecret string

	Judge      JudgeConfig
	Evaluation EvaluationConfig
	RateLimit  RateLimitConfig
}

// JudgeConfig describes the external Judge0 compatible service.
type JudgeConfig struct {
	BaseURL          string
	APIKey           string
	HostHeader       string
	Wait             bool
	PreSubmitDelay   time.Duration
	PollInterval     time.Duration
	MaxPollAttempts  int
	RequestTimeout   time.Duration
	LanguageCacheTTL time.Duration
}

// EvaluationConfig bounds server side grading.
type EvaluationConfig struct {
	Timeout                time.Duration
	StrictAcceptedOrdering bool
}

// RateLimitConfig throttles judge bound endpoints per user.
type RateLimitConfig struct {
	ExecuteMax    int
	ExecuteWindow time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GEMA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "GEMA Judge API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.allow_origins", "*")
	v.SetDefault("realtime.channel", "gema")
	v.SetDefault("judge.base_url", "http://localhost:2358")
	v.SetDefault("judge.wait", false)
	v.SetDefault("judge.pre_submit_delay", "250ms")
	v.SetDefault("judge.poll_interval", "1s")
	v.SetDefault("judge.max_poll_attempts", 10)
	v.SetDefault("judge.request_timeout", "15s")
	v.SetDefault("judge.language_cache_ttl", "24h")
	v.SetDefault("evaluation.timeout", "60s")
	v.SetDefault("evaluation.strict_accepted_ordering", true)
	v.SetDefault("ratelimit.execute_max", 10)
	v.SetDefault("ratelimit.execute_window", "1m")
}

func fromViper(v *viper.Viper) (Config, error) {
	durations := map[string]time.Duration{}
	for _, key := range []string{
		"judge.pre_submit_delay",
		"judge.poll_interval",
		"judge.request_timeout",
		"judge.language_cache_ttl",
		"evaluation.timeout",
		"ratelimit.execute_window",
	} {
		parsed, err := time.ParseDuration(strings.TrimSpace(v.GetString(key)))
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", key, err)
		}
		if parsed < 0 {
			return Config{}, fmt.Errorf("invalid %s: must not be negative", key)
		}
		durations[key] = parsed
	}

	cfg := Config{
		AppName:          v.GetString("app.name"),
		AppEnv:           v.GetString("app.env"),
		AppPort:          v.GetString("app.port"),
		AllowOrigins:     v.GetString("app.allow_origins"),
		DatabaseURL:      v.GetString("database.url"),
		RedisURL:         v.GetString("redis.url"),
		NATSURL:          v.GetString("nats.url"),
		RealtimeChannel:  v.GetString("realtime.channel"),
		JWTSecret:        v.GetString("jwt.secret"),
		JWTRefreshSecret: v.GetString("jwt.refresh_secret"),
		Judge: JudgeConfig{
			BaseURL:          strings.TrimRight(v.GetString("judge.base_url"), "/"),
			APIKey:           v.GetString("judge.api_key"),
			HostHeader:       v.GetString("judge.host_header"),
			Wait:             v.GetBool("judge.wait"),
			PreSubmitDelay:   durations["judge.pre_submit_delay"],
			PollInterval:     durations["judge.poll_interval"],
			MaxPollAttempts:  v.GetInt("judge.max_poll_attempts"),
			RequestTimeout:   durations["judge.request_timeout"],
			LanguageCacheTTL: durations["judge.language_cache_ttl"],
		},
		Evaluation: EvaluationConfig{
			Timeout:                durations["evaluation.timeout"],
			StrictAcceptedOrdering: v.GetBool("evaluation.strict_accepted_ordering"),
		},
		RateLimit: RateLimitConfig{
			ExecuteMax:    v.GetInt("ratelimit.execute_max"),
			ExecuteWindow: durations["ratelimit.execute_window"],
		},
	}

	if cfg.JWTSecret == "" || cfg.JWTRefreshSecret == "" {
		return Config{}, fmt.Errorf("jwt secrets must be provided")
	}
	if cfg.Judge.BaseURL == "" {
		return Config{}, fmt.Errorf("judge base url must be provided")
	}
	if cfg.Judge.MaxPollAttempts <= 0 {
		cfg.Judge.MaxPollAttempts = 10
	}
	if cfg.RateLimit.ExecuteMax <= 0 {
		cfg.RateLimit.ExecuteMax = 10
	}

	return cfg, nil
}
