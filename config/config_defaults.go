package config

import "github.com/rs/zerolog"

// GetDefaultProjectConfig obtains the default configuration for the simulation service.
func GetDefaultProjectConfig() *ProjectConfig {
	// Create a project configuration
	projectConfig := &ProjectConfig{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 5000,
		},
		Node: NodeConfig{
			Binary:         "anvil",
			Hardfork:       "shanghai",
			Host:           "127.0.0.1",
			Port:           8545,
			StartupTimeout: 15,
		},
		Chain: ChainConfig{
			Binary:     "cast",
			PrivateKey: "",
			Timeout:    30,
		},
		Analysis: AnalysisConfig{
			Binary:        "slither",
			Timeout:       60,
			WorkDirectory: "",
		},
		Storage: StorageConfig{
			DatabaseDirectory: "",
		},
		Logging: LoggingConfig{
			Level:        zerolog.InfoLevel,
			LogDirectory: "",
		},
	}

	// Return the project configuration
	return projectConfig
}
