// Package config loads the daemon configuration: built-in defaults,
// optionally overlaid by a YAML file, with environment variables taking
// final precedence.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

// Environment variables recognized at load time
const (
	envConfigFile  = "RDSRELAY_CONFIG"
	envEncoderHost = "RDS_ENCODER_HOST"
	envEncoderPort = "RDS_ENCODER_PORT"
	envFeedURL     = "RDSRELAY_FEED_URL"
	envWebhookURL  = "RDSRELAY_WEBHOOK_URL"
)

// AppConfig holds the complete daemon configuration
type AppConfig struct {
	Encoder  EncoderConfig  `yaml:"encoder"`
	Feed     FeedConfig     `yaml:"feed"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	Webhook  WebhookConfig  `yaml:"webhook"`
}

// EncoderConfig holds the SmartGen link settings
type EncoderConfig struct {
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	DialTimeoutSec     int    `yaml:"dialTimeoutSec"`
	ResponseTimeoutSec int    `yaml:"responseTimeoutSec"`
	InitialBackoffSec  int    `yaml:"initialBackoffSec"`
	MaxBackoffSec      int    `yaml:"maxBackoffSec"`
}

// FeedConfig holds the spin feed subscription settings
type FeedConfig struct {
	URL string `yaml:"url"`
}

// DispatchConfig holds the coalescer's timing settings
type DispatchConfig struct {
	IdlePollSec    int `yaml:"idlePollSec"`
	ConnectWaitSec int `yaml:"connectWaitSec"`
}

// WebhookConfig holds the outbound notification settings
type WebhookConfig struct {
	// URL of the webhook endpoint; empty disables notifications
	URL string `yaml:"url"`
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Encoder: EncoderConfig{
			Host:               "127.0.0.1",
			Port:               5000,
			DialTimeoutSec:     5,
			ResponseTimeoutSec: 5,
			InitialBackoffSec:  1,
			MaxBackoffSec:      60,
		},
		Feed: FeedConfig{
			URL: "ws://127.0.0.1:8080/spins",
		},
		Dispatch: DispatchConfig{
			IdlePollSec:    5,
			ConnectWaitSec: 30,
		},
	}
}

// NewAppConfig loads the configuration and logs the effective values
func NewAppConfig(logger *zap.Logger) (*AppConfig, error) {
	cfg := defaultConfig()

	if path := os.Getenv(envConfigFile); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if host := os.Getenv(envEncoderHost); host != "" {
		cfg.Encoder.Host = host
	}
	if port := os.Getenv(envEncoderPort); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q: %w", envEncoderPort, port, err)
		}
		cfg.Encoder.Port = p
	}
	if url := os.Getenv(envFeedURL); url != "" {
		cfg.Feed.URL = url
	}
	if url := os.Getenv(envWebhookURL); url != "" {
		cfg.Webhook.URL = url
	}

	logger.Info("Configuration loaded",
		zap.String("encoderAddr", cfg.EncoderAddr()),
		zap.String("feedURL", cfg.Feed.URL),
		zap.Bool("webhookEnabled", cfg.Webhook.URL != ""))

	return cfg, nil
}

// EncoderAddr returns the encoder's host:port dial address
func (c *AppConfig) EncoderAddr() string {
	return net.JoinHostPort(c.Encoder.Host, strconv.Itoa(c.Encoder.Port))
}

// DialTimeout bounds one connect attempt to the encoder
func (c *AppConfig) DialTimeout() time.Duration {
	return time.Duration(c.Encoder.DialTimeoutSec) * time.Second
}

// ResponseTimeout bounds one command/response exchange
func (c *AppConfig) ResponseTimeout() time.Duration {
	return time.Duration(c.Encoder.ResponseTimeoutSec) * time.Second
}

// InitialBackoff is the delay after the first failed connect
func (c *AppConfig) InitialBackoff() time.Duration {
	return time.Duration(c.Encoder.InitialBackoffSec) * time.Second
}

// MaxBackoff caps the reconnect backoff
func (c *AppConfig) MaxBackoff() time.Duration {
	return time.Duration(c.Encoder.MaxBackoffSec) * time.Second
}

// IdlePoll bounds the coalescer's wait for a new submission
func (c *AppConfig) IdlePoll() time.Duration {
	return time.Duration(c.Dispatch.IdlePollSec) * time.Second
}

// ConnectWait bounds one coalescer wait for the encoder link
func (c *AppConfig) ConnectWait() time.Duration {
	return time.Duration(c.Dispatch.ConnectWaitSec) * time.Second
}
