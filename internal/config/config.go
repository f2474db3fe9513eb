package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every service setting.
type Config struct {
	Server       ServerConfig
	Storage      StorageConfig
	Conversation ConversationConfig
	Checkout     CheckoutConfig
	Advisor      AdvisorConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	conv, err := loadConversationConfig()
	if err != nil {
		return nil, err
	}

	checkout, err := loadCheckoutConfig()
	if err != nil {
		return nil, err
	}

	advisor, err := loadAdvisorConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:       server,
		Storage:      StorageConfig{UsersFile: strings.TrimSpace(os.Getenv("USERS_FILE"))},
		Conversation: conv,
		Checkout:     checkout,
		Advisor:      advisor,
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" as-is.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// StorageConfig locates the user store. An empty UsersFile keeps accounts
// in memory only.
type StorageConfig struct {
	UsersFile string
}

// ConversationConfig tunes the simulated advisor latency.
type ConversationConfig struct {
	ReplyDelay  time.Duration
	ReplyJitter time.Duration
	GenDelay    time.Duration
}

func loadConversationConfig() (ConversationConfig, error) {
	reply, err := parseDurationMSEnv("BOT_REPLY_DELAY_MS", time.Second)
	if err != nil {
		return ConversationConfig{}, err
	}
	jitter, err := parseDurationMSEnv("BOT_REPLY_JITTER_MS", time.Second)
	if err != nil {
		return ConversationConfig{}, err
	}
	gen, err := parseDurationMSEnv("GENERATION_DELAY_MS", 2*time.Second)
	if err != nil {
		return ConversationConfig{}, err
	}
	return ConversationConfig{ReplyDelay: reply, ReplyJitter: jitter, GenDelay: gen}, nil
}

// CheckoutConfig tunes the mock payment gateway.
type CheckoutConfig struct {
	ProcessingDelay time.Duration
}

func loadCheckoutConfig() (CheckoutConfig, error) {
	delay, err := parseDurationMSEnv("CHECKOUT_DELAY_MS", 2*time.Second)
	if err != nil {
		return CheckoutConfig{}, err
	}
	return CheckoutConfig{ProcessingDelay: delay}, nil
}

// AdvisorConfig describes the optional Ark-backed reply advisor.
type AdvisorConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	MaxTokens   *int
}

// Enabled reports whether the required credentials were provided.
func (c AdvisorConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel creates a model instance from the configuration.
func (c AdvisorConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("advisor credentials missing: provide ARK_API_KEY + ARK_MODEL or an AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAdvisorConfig() (AdvisorConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AdvisorConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AdvisorConfig{}, err
	}

	return AdvisorConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationMSEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	ms, err := parseOptionalIntEnv(key)
	if err != nil {
		return 0, err
	}
	if ms == nil {
		return defaultValue, nil
	}
	if *ms < 0 {
		return 0, fmt.Errorf("invalid %s value: must be non-negative", key)
	}
	return time.Duration(*ms) * time.Millisecond, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
