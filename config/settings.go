package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	DEFAULT_CACHE_TTL = 5 * time.Minute
	DEFAULT_LANGUAGE  = "vi"
	DEFAULT_MODEL     = "gpt-4o-mini"
)

// Settings is the process configuration read from the environment.
type Settings struct {
	AppEnv          string        `validate:"required"`
	LogLevel        string        `validate:"oneof=debug info warn error"`
	DatabaseURL     string        `validate:"omitempty,url"`
	KeywordCacheTTL time.Duration `validate:"gt=0"`
	DefaultLanguage string        `validate:"required"`

	UseExternalModel bool
	OpenAIAPIKey     string
	OpenAIBaseURL    string `validate:"omitempty,url"`
	OpenAIModel      string `validate:"required"`

	KafkaBroker  string `validate:"required"`
	KafkaGroupID string `validate:"required"`

	ValkeyAddress  string
	ValkeyPassword string
	ValkeyTLS      bool

	AWSEndpoint string `validate:"omitempty,url"`
	AWSRegion   string `validate:"required"`
}

// Load reads Settings from the environment and validates them.
func Load() (Settings, error) {
	ttl, err := getEnvDuration("KEYWORD_CACHE_TTL", DEFAULT_CACHE_TTL)
	if err != nil {
		return Settings{}, err
	}

	s := Settings{
		AppEnv:           getEnv("APP_ENV", "dev"),
		LogLevel:         strings.ToLower(getEnv("LOG_LEVEL", "info")),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		KeywordCacheTTL:  ttl,
		DefaultLanguage:  getEnv("DEFAULT_LANGUAGE", DEFAULT_LANGUAGE),
		UseExternalModel: getEnvBool("USE_EXTERNAL_MODEL"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:    os.Getenv("OPENAI_BASE_URL"),
		OpenAIModel:      getEnv("OPENAI_MODEL", DEFAULT_MODEL),
		KafkaBroker:      getEnv("KAFKA_BROKER", "localhost:29092"),
		KafkaGroupID:     getEnv("KAFKA_CONSUMER_GROUP_ID", "courtsense-moderator"),
		ValkeyAddress:    os.Getenv("VALKEY_INIT_ADDRESS"),
		ValkeyPassword:   os.Getenv("VALKEY_PASSWORD"),
		ValkeyTLS:        getEnvBool("VALKEY_TLS"),
		AWSEndpoint:      os.Getenv("AWS_ENDPOINT"),
		AWSRegion:        getEnv("AWS_REGION", "us-west-2"),
	}

	if err := validator.New().Struct(s); err != nil {
		return Settings{}, fmt.Errorf("[Config] invalid settings: %w", err)
	}

	return s, nil
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string) bool {
	ok, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && ok
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("[Config] %s: %w", key, err)
	}
	return d, nil
}
