package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/exp/slices"
)

// PrivateKeyEnvVariable describes the environment variable consulted for the signing credential when the project
// configuration does not provide one.
const PrivateKeyEnvVariable = "FOUNDRY_PRIVATE_KEY"

// ProjectConfig describes the complete configuration of the simulation service.
type ProjectConfig struct {
	// Server describes the configuration used by the HTTP API server.
	Server ServerConfig `json:"server"`

	// Node describes the configuration used to supervise the ephemeral chain node process.
	Node NodeConfig `json:"node"`

	// Chain describes the configuration used to issue deployments and calls against the node.
	Chain ChainConfig `json:"chain"`

	// Analysis describes the configuration used by the static analysis endpoint.
	Analysis AnalysisConfig `json:"analysis"`

	// Storage describes the configuration used to persist simulation history.
	Storage StorageConfig `json:"storage"`

	// Logging describes the configuration used for logging.
	Logging LoggingConfig `json:"loggingConfig"`
}

// ServerConfig describes the configuration options for the HTTP API server.
type ServerConfig struct {
	// Host describes the interface the API server listens on.
	Host string `json:"host"`

	// Port describes the port the API server listens on. If the port is taken, the next free port is probed, up
	// to a bounded number of attempts.
	Port int `json:"port"`
}

// NodeConfig describes the configuration options for the supervised chain node process.
type NodeConfig struct {
	// Binary describes the name of the node binary to launch. It must be resolvable via PATH.
	Binary string `json:"binary"`

	// Hardfork describes the protocol version the ephemeral chain runs with. It is passed to the node verbatim.
	Hardfork string `json:"hardfork"`

	// Host describes the interface the node's RPC endpoint binds to.
	Host string `json:"host"`

	// Port describes the port the node's RPC endpoint binds to.
	Port int `json:"port"`

	// StartupTimeout describes a time in seconds to wait for the node's RPC endpoint to accept connections after
	// the process is launched.
	StartupTimeout int `json:"startupTimeout"`
}

// ChainConfig describes the configuration options for issuing transactions against the supervised node.
type ChainConfig struct {
	// Binary describes the name of the transaction CLI binary to invoke. It must be resolvable via PATH.
	Binary string `json:"binary"`

	// PrivateKey describes the signing credential authorizing transactions sent to the node. If empty, the
	// FOUNDRY_PRIVATE_KEY environment variable is consulted instead.
	PrivateKey string `json:"privateKey"`

	// Timeout describes a time in seconds each deployment or call invocation is allowed to run before it is
	// killed. A single attempt is made per invocation; no retries are applied.
	Timeout int `json:"timeout"`
}

// AnalysisConfig describes the configuration options for the static analysis endpoint.
type AnalysisConfig struct {
	// Binary describes the name of the static analyzer binary to invoke.
	Binary string `json:"binary"`

	// Timeout describes a time in seconds each analysis invocation is allowed to run before it is killed.
	Timeout int `json:"timeout"`

	// WorkDirectory describes the directory where request-scoped source files are written before analysis. Files
	// are removed when the request completes, on all paths.
	WorkDirectory string `json:"workDirectory"`
}

// StorageConfig describes the configuration options for persisting simulation history.
type StorageConfig struct {
	// DatabaseDirectory describes the name of the folder that will hold the simulation history database. If
	// empty, history is not persisted and the history endpoints report an empty collection.
	DatabaseDirectory string `json:"databaseDirectory"`
}

// LoggingConfig describes the configuration options used for logging.
type LoggingConfig struct {
	// Level describes whether logs of certain severity levels (eg info, warning, etc.) will be emitted or discarded.
	// Increasing level values represent more severe logs.
	Level zerolog.Level `json:"level"`

	// LogDirectory describes what directory log files should be outputted in/ Empty string indicates this is
	// disabled.
	LogDirectory string `json:"logDirectory"`
}

// supportedHardforks describes the hardfork identifiers the node binary accepts.
var supportedHardforks = []string{"frontier", "homestead", "tangerine", "spuriousdragon", "byzantium",
	"constantinople", "petersburg", "istanbul", "muirglacier", "berlin", "london", "arrowglacier", "grayglacier",
	"paris", "shanghai", "cancun", "prague"}

// ReadProjectConfigFromFile reads a JSON-serialized ProjectConfig from a provided file path. Fields absent from
// the file retain their default values.
// Returns the ProjectConfig if it succeeds, or an error if one occurs.
func ReadProjectConfigFromFile(path string) (*ProjectConfig, error) {
	// Read our project configuration file data
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	// Parse the project configuration on top of the defaults
	projectConfig := GetDefaultProjectConfig()
	err = json.Unmarshal(b, projectConfig)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return projectConfig, nil
}

// WriteToFile writes the ProjectConfig to a provided file path in a JSON-serialized format.
// Returns an error if one occurs.
func (p *ProjectConfig) WriteToFile(path string) error {
	// Serialize the configuration
	b, err := json.MarshalIndent(p, "", "\t")
	if err != nil {
		return errors.WithStack(err)
	}

	// Save it to the provided output path and return the result
	err = os.WriteFile(path, b, 0644)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// ResolvePrivateKey returns the signing credential to use for transactions, preferring the configured value and
// falling back to the FOUNDRY_PRIVATE_KEY environment variable. An empty result means no credential is configured;
// the service will start but fail every simulation request consistently until one is provided.
func (p *ProjectConfig) ResolvePrivateKey() string {
	if p.Chain.PrivateKey != "" {
		return p.Chain.PrivateKey
	}
	return os.Getenv(PrivateKeyEnvVariable)
}

// Validate validates that the ProjectConfig meets certain requirements.
// Returns an error if one occurs.
func (p *ProjectConfig) Validate() error {
	// Verify the server port is sensible.
	if p.Server.Port <= 0 || p.Server.Port > 65535 {
		return fmt.Errorf("project config must specify a valid server port")
	}

	// Verify the node settings.
	if p.Node.Binary == "" {
		return fmt.Errorf("project config must specify a node binary")
	}
	if p.Node.Port <= 0 || p.Node.Port > 65535 {
		return fmt.Errorf("project config must specify a valid node port")
	}
	if !slices.Contains(supportedHardforks, p.Node.Hardfork) {
		return fmt.Errorf("project config specifies an unsupported hardfork: %s", p.Node.Hardfork)
	}
	if p.Node.StartupTimeout <= 0 {
		return fmt.Errorf("project config must specify a positive node startup timeout")
	}

	// Verify the chain settings.
	if p.Chain.Binary == "" {
		return fmt.Errorf("project config must specify a transaction CLI binary")
	}
	if p.Chain.Timeout <= 0 {
		return fmt.Errorf("project config must specify a positive chain timeout")
	}

	// Verify the analysis settings.
	if p.Analysis.Binary == "" {
		return fmt.Errorf("project config must specify a static analyzer binary")
	}
	if p.Analysis.Timeout <= 0 {
		return fmt.Errorf("project config must specify a positive analysis timeout")
	}

	return nil
}
