package configs_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabchat/internal/configs"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := configs.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "ws://localhost:3001", cfg.ServerURL)
	assert.Empty(t, cfg.Username)
	assert.Equal(t, 10*time.Second, cfg.HandshakeTimeout)
	assert.Equal(t, configs.DefaultSendRate, cfg.SendRate)
	assert.Equal(t, configs.DefaultSendBurst, cfg.SendBurst)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("CHAT_SERVER_URL", "wss://chat.example.com")
	t.Setenv("CHAT_USERNAME", "alice")
	t.Setenv("HANDSHAKE_TIMEOUT_SECONDS", "3")
	t.Setenv("SEND_RATE", "2.5")
	t.Setenv("SEND_BURST", "4")

	cfg, err := configs.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "wss://chat.example.com", cfg.ServerURL)
	assert.Equal(t, "alice", cfg.Username)
	assert.Equal(t, 3*time.Second, cfg.HandshakeTimeout)
	assert.Equal(t, 2.5, cfg.SendRate)
	assert.Equal(t, 4, cfg.SendBurst)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-websocket url", "CHAT_SERVER_URL", "http://chat.example.com"},
		{"non-numeric timeout", "HANDSHAKE_TIMEOUT_SECONDS", "soon"},
		{"zero timeout", "HANDSHAKE_TIMEOUT_SECONDS", "0"},
		{"negative rate", "SEND_RATE", "-1"},
		{"zero burst", "SEND_BURST", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := configs.LoadConfig()
			assert.Error(t, err)
		})
	}
}
