/*
Package configs is responsible for loading and parsing the application's configuration settings.

It configures the chat client by reading operating system environment
variables, including the running environment, the server endpoint, an
optional preset username, and the outbound send throttle.
*/
package configs

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Default outbound throttle: short bursts are fine, sustained flooding is not.
const (
	DefaultSendRate  = 5.0
	DefaultSendBurst = 10
)

// AppConfig contains all configuration parameters required for the client to run.
// All configuration values are loaded from environment variables.
type AppConfig struct {
	// General Settings
	Environment string
	ServerURL   string

	// Username is an optional preset identity. When empty, the terminal
	// client suggests a random guest nickname.
	Username string

	// HandshakeTimeout bounds the websocket dial.
	HandshakeTimeout time.Duration

	// Outbound throttle (token bucket): events per second and burst size.
	SendRate  float64
	SendBurst int
}

// LoadConfig reads and parses the client configuration from environment variables.
// It provides default values for each configuration item and performs
// necessary type conversions and validation. It returns a pointer to the
// AppConfig struct and any error encountered.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}

	// --- General Settings ---
	// Environment
	cfg.Environment = os.Getenv("ENVIRONMENT")
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	// ServerURL
	cfg.ServerURL = os.Getenv("CHAT_SERVER_URL")
	if cfg.ServerURL == "" {
		cfg.ServerURL = "ws://localhost:3001"
	}

	parsed, err := url.Parse(cfg.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid CHAT_SERVER_URL environment variable: %w", err)
	}
	if parsed.Scheme != "ws" && parsed.Scheme != "wss" {
		return nil, fmt.Errorf("CHAT_SERVER_URL must use the ws or wss scheme, got %q", parsed.Scheme)
	}

	// Username (optional)
	cfg.Username = os.Getenv("CHAT_USERNAME")

	// HandshakeTimeout
	timeoutStr := os.Getenv("HANDSHAKE_TIMEOUT_SECONDS")
	if timeoutStr == "" {
		timeoutStr = "10"
	}
	timeoutSec, err := strconv.Atoi(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HANDSHAKE_TIMEOUT_SECONDS environment variable: %w", err)
	}
	if timeoutSec <= 0 {
		return nil, fmt.Errorf("HANDSHAKE_TIMEOUT_SECONDS must be positive, got %d", timeoutSec)
	}
	cfg.HandshakeTimeout = time.Duration(timeoutSec) * time.Second

	// --- Outbound Throttle ---
	rateStr := os.Getenv("SEND_RATE")
	if rateStr == "" {
		cfg.SendRate = DefaultSendRate
	} else {
		rate, err := strconv.ParseFloat(rateStr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid SEND_RATE environment variable: %w", err)
		}
		if rate <= 0 {
			return nil, fmt.Errorf("SEND_RATE must be positive, got %v", rate)
		}
		cfg.SendRate = rate
	}

	burstStr := os.Getenv("SEND_BURST")
	if burstStr == "" {
		cfg.SendBurst = DefaultSendBurst
	} else {
		burst, err := strconv.Atoi(burstStr)
		if err != nil {
			return nil, fmt.Errorf("invalid SEND_BURST environment variable: %w", err)
		}
		if burst <= 0 {
			return nil, fmt.Errorf("SEND_BURST must be positive, got %d", burst)
		}
		cfg.SendBurst = burst
	}

	return cfg, nil
}
