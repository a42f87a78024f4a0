package config

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestNewAppConfig_Defaults(t *testing.T) {
	cfg, err := NewAppConfig(zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := cfg.EncoderAddr(); got != "127.0.0.1:5000" {
		t.Errorf("unexpected default encoder addr %q", got)
	}
	if cfg.Dispatch.ConnectWaitSec != 30 {
		t.Errorf("unexpected default connect wait %d", cfg.Dispatch.ConnectWaitSec)
	}
	if cfg.Webhook.URL != "" {
		t.Errorf("webhook must default to disabled, got %q", cfg.Webhook.URL)
	}
}

func TestNewAppConfig_FileAndEnvLayering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rdsrelay.yaml")
	file := `
encoder:
  host: encoder.internal
  port: 6000
  maxBackoffSec: 120
feed:
  url: ws://feed.internal/spins
`
	if err := os.WriteFile(path, []byte(file), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv(envConfigFile, path)
	t.Setenv(envEncoderPort, "7000") // env wins over the file

	cfg, err := NewAppConfig(zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := cfg.EncoderAddr(); got != "encoder.internal:7000" {
		t.Errorf("unexpected encoder addr %q", got)
	}
	if cfg.Encoder.MaxBackoffSec != 120 {
		t.Errorf("file override lost, maxBackoffSec = %d", cfg.Encoder.MaxBackoffSec)
	}
	if cfg.Feed.URL != "ws://feed.internal/spins" {
		t.Errorf("unexpected feed URL %q", cfg.Feed.URL)
	}
	// Values absent from the file keep their defaults
	if cfg.Encoder.DialTimeoutSec != 5 {
		t.Errorf("default dial timeout lost, got %d", cfg.Encoder.DialTimeoutSec)
	}
}

func TestNewAppConfig_InvalidPort(t *testing.T) {
	t.Setenv(envEncoderPort, "not-a-port")

	if _, err := NewAppConfig(zap.NewNop()); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestNewAppConfig_MissingFile(t *testing.T) {
	t.Setenv(envConfigFile, filepath.Join(t.TempDir(), "missing.yaml"))

	if _, err := NewAppConfig(zap.NewNop()); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
