package config

import (
	"os"
	"path/filepath"
	"testing"

	"tailorpipe/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *errors.Logger {
	logger, _ := errors.New("debug")
	return logger
}

func TestParseVersionValue(t *testing.T) {
	tests := []struct {
		name        string
		input       interface{}
		path        string
		expected    int64
		expectError bool
	}{
		{
			name:     "int64 value",
			input:    int64(42),
			path:     "test/path",
			expected: 42,
		},
		{
			name:     "float64 value",
			input:    float64(42.0),
			path:     "test/path",
			expected: 42,
		},
		{
			name:     "string value",
			input:    "42",
			path:     "test/path",
			expected: 42,
		},
		{
			name:        "invalid string value",
			input:       "not-a-number",
			path:        "test/path",
			expectError: true,
		},
		{
			name:        "unsupported type",
			input:       []string{"42"},
			path:        "test/path",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseVersionValue(tt.input, tt.path)

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

func TestNewVaultClientDisabled(t *testing.T) {
	client, err := NewVaultClient(VaultConfig{Enabled: false}, newTestLogger())
	assert.NoError(t, err)
	assert.Nil(t, client)
}

func TestResolveVaultToken(t *testing.T) {
	t.Run("token from config", func(t *testing.T) {
		token, err := resolveVaultToken(VaultConfig{Token: "direct-token"})
		require.NoError(t, err)
		assert.Equal(t, "direct-token", token)
	})

	t.Run("token from file", func(t *testing.T) {
		tokenFile := filepath.Join(t.TempDir(), "token")
		require.NoError(t, os.WriteFile(tokenFile, []byte("  file-token\n"), 0600))

		token, err := resolveVaultToken(VaultConfig{TokenFile: tokenFile})
		require.NoError(t, err)
		assert.Equal(t, "file-token", token)
	})

	t.Run("config token wins over file", func(t *testing.T) {
		tokenFile := filepath.Join(t.TempDir(), "token")
		require.NoError(t, os.WriteFile(tokenFile, []byte("file-token"), 0600))

		token, err := resolveVaultToken(VaultConfig{Token: "direct-token", TokenFile: tokenFile})
		require.NoError(t, err)
		assert.Equal(t, "direct-token", token)
	})

	t.Run("missing token", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{})
		assert.Error(t, err)
	})

	t.Run("unreadable token file", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{TokenFile: "/nonexistent/token"})
		assert.Error(t, err)
	})
}

func TestLoadSingleCertificate(t *testing.T) {
	secret := &VaultSecret{
		Data: map[string]any{
			"cert":  "-----BEGIN CERTIFICATE-----\n...",
			"empty": "",
			"num":   42,
		},
	}

	var target string

	assert.Equal(t, 1, loadSingleCertificate(secret, "cert", &target))
	assert.Equal(t, "-----BEGIN CERTIFICATE-----\n...", target)

	target = ""
	assert.Equal(t, 0, loadSingleCertificate(secret, "empty", &target))
	assert.Empty(t, target)

	assert.Equal(t, 0, loadSingleCertificate(secret, "num", &target))
	assert.Equal(t, 0, loadSingleCertificate(secret, "missing", &target))
}
