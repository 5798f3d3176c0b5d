package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestDefaultConfigValid will test that the default project configuration passes validation as-is.
func TestDefaultConfigValid(t *testing.T) {
	projectConfig := GetDefaultProjectConfig()
	assert.NoError(t, projectConfig.Validate())
}

// TestConfigRoundTrip will test that a configuration written to disk reads back with the same values.
func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simforge.json")

	projectConfig := GetDefaultProjectConfig()
	projectConfig.Server.Port = 6060
	projectConfig.Node.Hardfork = "cancun"
	projectConfig.Storage.DatabaseDirectory = "history"
	err := projectConfig.WriteToFile(path)
	assert.NoError(t, err)

	read, err := ReadProjectConfigFromFile(path)
	assert.NoError(t, err)
	assert.EqualValues(t, projectConfig, read)
}

// TestConfigPartialFileRetainsDefaults will test that fields absent from the configuration file keep their
// default values.
func TestConfigPartialFileRetainsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simforge.json")
	err := os.WriteFile(path, []byte(`{"server": {"port": 7070}}`), 0644)
	assert.NoError(t, err)

	projectConfig, err := ReadProjectConfigFromFile(path)
	assert.NoError(t, err)
	assert.EqualValues(t, 7070, projectConfig.Server.Port)
	assert.EqualValues(t, "anvil", projectConfig.Node.Binary)
	assert.EqualValues(t, "shanghai", projectConfig.Node.Hardfork)
	assert.EqualValues(t, "cast", projectConfig.Chain.Binary)
}

// TestConfigValidation will test that validation rejects malformed configurations.
func TestConfigValidation(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*ProjectConfig)
	}{
		{"zero server port", func(p *ProjectConfig) { p.Server.Port = 0 }},
		{"server port out of range", func(p *ProjectConfig) { p.Server.Port = 70000 }},
		{"missing node binary", func(p *ProjectConfig) { p.Node.Binary = "" }},
		{"zero node port", func(p *ProjectConfig) { p.Node.Port = 0 }},
		{"unsupported hardfork", func(p *ProjectConfig) { p.Node.Hardfork = "futurefork" }},
		{"zero startup timeout", func(p *ProjectConfig) { p.Node.StartupTimeout = 0 }},
		{"missing chain binary", func(p *ProjectConfig) { p.Chain.Binary = "" }},
		{"zero chain timeout", func(p *ProjectConfig) { p.Chain.Timeout = 0 }},
		{"missing analysis binary", func(p *ProjectConfig) { p.Analysis.Binary = "" }},
		{"zero analysis timeout", func(p *ProjectConfig) { p.Analysis.Timeout = 0 }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			projectConfig := GetDefaultProjectConfig()
			tc.mutate(projectConfig)
			assert.Error(t, projectConfig.Validate())
		})
	}
}

// TestResolvePrivateKey will test that the configured credential wins over the environment, and that the
// environment variable is consulted only when the configuration leaves the credential empty.
func TestResolvePrivateKey(t *testing.T) {
	projectConfig := GetDefaultProjectConfig()

	// Neither source set resolves to nothing.
	t.Setenv(PrivateKeyEnvVariable, "")
	assert.Empty(t, projectConfig.ResolvePrivateKey())

	// The environment variable is the fallback.
	t.Setenv(PrivateKeyEnvVariable, "0xenv")
	assert.Equal(t, "0xenv", projectConfig.ResolvePrivateKey())

	// The configured value takes precedence.
	projectConfig.Chain.PrivateKey = "0xconfigured"
	assert.Equal(t, "0xconfigured", projectConfig.ResolvePrivateKey())
}
