// Package config loads service settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/YuminosukeSato/nameml/pkg/errors"
	"github.com/YuminosukeSato/nameml/pkg/log"
	"github.com/YuminosukeSato/nameml/predictor"
	"github.com/YuminosukeSato/nameml/preprocessing"
)

// Environment variables.
const (
	EnvPort             = "NAMEML_PORT"
	EnvLogLevel         = "NAMEML_LOG_LEVEL"
	EnvLogFormat        = "NAMEML_LOG_FORMAT"
	EnvSeed             = "NAMEML_SEED"
	EnvInferenceScaling = "NAMEML_INFERENCE_SCALING"
	EnvMetricsMode      = "NAMEML_METRICS_MODE"
	EnvTrainTimeout     = "NAMEML_TRAIN_TIMEOUT"
	EnvTrainTimeLimit   = "NAMEML_TRAIN_TIME_LIMIT"
	EnvGinMode          = "GIN_MODE"
)

// Config holds the process settings.
type Config struct {
	Port             int
	LogLevel         string
	LogFormat        string
	Seed             uint64
	InferenceScaling preprocessing.InferenceScaling
	MetricsMode      predictor.MetricsMode
	// TrainTimeout bounds one Train call. Zero means no limit.
	TrainTimeout time.Duration
	// TrainTimeLimit stops boosting and network training early, keeping
	// the partially trained model. Zero means no limit.
	TrainTimeLimit time.Duration
	GinMode        string
}

// Load reads files (default ".env") into the environment without
// overriding variables that are already set, then parses Config. Missing
// files are ignored.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, errors.Wrapf(err, "config: load %s", f)
		}
	}
	return FromEnv()
}

// FromEnv parses Config from the current environment.
func FromEnv() (*Config, error) {
	cfg := &Config{
		LogLevel:  getEnv(EnvLogLevel, "info"),
		LogFormat: getEnv(EnvLogFormat, log.FormatJSON),
		GinMode:   getEnv(EnvGinMode, "release"),
	}

	var err error
	if cfg.Port, err = getEnvInt(EnvPort, 8080); err != nil {
		return nil, err
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, errors.NewValidationError(EnvPort, "must be a TCP port", cfg.Port)
	}
	if _, err = log.ParseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	switch strings.ToLower(cfg.LogFormat) {
	case log.FormatJSON, log.FormatConsole, log.FormatCloud:
	default:
		return nil, errors.NewValidationError(EnvLogFormat, "must be one of json, console, cloud", cfg.LogFormat)
	}
	if raw := getEnv(EnvSeed, ""); raw != "" {
		if cfg.Seed, err = strconv.ParseUint(raw, 10, 64); err != nil {
			return nil, errors.NewValidationError(EnvSeed, "must be an unsigned integer", raw)
		}
	}
	if cfg.InferenceScaling, err = preprocessing.ParseInferenceScaling(getEnv(EnvInferenceScaling, "")); err != nil {
		return nil, err
	}
	if cfg.MetricsMode, err = predictor.ParseMetricsMode(getEnv(EnvMetricsMode, "")); err != nil {
		return nil, err
	}
	if cfg.TrainTimeout, err = getEnvDuration(EnvTrainTimeout, 0); err != nil {
		return nil, err
	}
	if cfg.TrainTimeout < 0 {
		return nil, errors.NewValidationError(EnvTrainTimeout, "must not be negative", cfg.TrainTimeout.String())
	}
	if cfg.TrainTimeLimit, err = getEnvDuration(EnvTrainTimeLimit, 0); err != nil {
		return nil, err
	}
	if cfg.TrainTimeLimit < 0 {
		return nil, errors.NewValidationError(EnvTrainTimeLimit, "must not be negative", cfg.TrainTimeLimit.String())
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// ServiceOptions converts the settings into predictor options.
func (c *Config) ServiceOptions() []predictor.Option {
	return []predictor.Option{
		predictor.WithSeed(c.Seed),
		predictor.WithInferenceScaling(c.InferenceScaling),
		predictor.WithMetricsMode(c.MetricsMode),
		predictor.WithTrainTimeLimit(c.TrainTimeLimit),
	}
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.NewValidationError(key, "must be an integer", value)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, errors.NewValidationError(key, "must be a duration such as 30s", value)
	}
	return d, nil
}
