package cin7

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate_RequiresAPICredentials(t *testing.T) {
	assert.ErrorIs(t, (&Config{}).Validate(), ErrConfigMissingAPIUsername)
	assert.ErrorIs(t, (&Config{API: APICredentials{Username: "u"}}).Validate(), ErrConfigMissingAPIPassword)
}

func TestConfigValidate_AppliesDefaults(t *testing.T) {
	config := &Config{API: APICredentials{Username: "u", Password: "p"}}
	require.NoError(t, config.Validate())

	assert.Equal(t, ProductionAPIBaseURL, config.APIBaseURL)
	assert.Equal(t, LoginURL, config.LoginURL)
	assert.Equal(t, 3, config.MaxRetries)
	assert.Equal(t, 30*time.Second, config.Timeout)
	assert.Equal(t, 30*time.Second, config.NavigationTimeout)
	assert.Equal(t, 5*time.Second, config.SelectorTimeout)
	// Rotation is off, so no cutoff default
	assert.Zero(t, config.Rotation.Cutoff)
}

func TestConfigValidate_RotationCutoffDefault(t *testing.T) {
	config := &Config{
		API:      APICredentials{Username: "u", Password: "p"},
		Rotation: RotationConfig{Enabled: true},
	}
	require.NoError(t, config.Validate())
	assert.Equal(t, 4900, config.Rotation.Cutoff)
}

func TestConfigValidate_KeepsExplicitValues(t *testing.T) {
	config := &Config{
		APIBaseURL: "http://localhost:9999",
		API:        APICredentials{Username: "u", Password: "p"},
		MaxRetries: 7,
		Timeout:    time.Minute,
	}
	require.NoError(t, config.Validate())

	assert.Equal(t, "http://localhost:9999", config.APIBaseURL)
	assert.Equal(t, 7, config.MaxRetries)
	assert.Equal(t, time.Minute, config.Timeout)
}

func TestConfigPasswords_RotationOrder(t *testing.T) {
	config := &Config{API: APICredentials{
		Username:       "u",
		Password:       "primary",
		ExtraPasswords: []string{"second", "third"},
	}}
	assert.Equal(t, []string{"primary", "second", "third"}, config.passwords())
}
