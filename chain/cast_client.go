package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/simforge/simforge/config"
	"github.com/simforge/simforge/execution"
	"github.com/simforge/simforge/logging"
)

// CastClient is the default Client implementation. It shells out to the `cast` command-line tool for both creation
// transactions and calls, signing every transaction with a fixed credential against the supervised node's RPC
// endpoint.
type CastClient struct {
	// binary describes the name of the cast binary to invoke.
	binary string

	// privateKey describes the signing credential passed to every invocation.
	privateKey string

	// rpcURL describes the node's RPC endpoint address.
	rpcURL string

	// timeout describes how long each invocation is allowed to run.
	timeout time.Duration

	// runner describes the command execution capability used to invoke the tool.
	runner execution.Runner

	// logger describes the CastClient's log object
	logger *logging.Logger
}

// castSendResponse mirrors the JSON document cast emits for send operations. Quantity fields are kept raw because
// cast emits them as either decimal strings or 0x-prefixed hex depending on version.
type castSendResponse struct {
	ContractAddress string          `json:"contractAddress"`
	TransactionHash string          `json:"transactionHash"`
	GasUsed         json.RawMessage `json:"gasUsed"`
}

// NewCastClient creates a CastClient for the given chain configuration, signing credential and RPC endpoint,
// invoking the tool through the provided runner.
func NewCastClient(chainConfig config.ChainConfig, privateKey string, rpcURL string, runner execution.Runner, logger *logging.Logger) *CastClient {
	return &CastClient{
		binary:     chainConfig.Binary,
		privateKey: privateKey,
		rpcURL:     rpcURL,
		timeout:    time.Duration(chainConfig.Timeout) * time.Second,
		runner:     runner,
		logger:     logger.NewSubLogger("module", "chain"),
	}
}

// DeployContract submits the given bytecode as a creation transaction to the node and returns the resulting
// contract address and gas cost.
func (c *CastClient) DeployContract(ctx context.Context, bytecode string) (*Deployment, error) {
	// Build our creation transaction command. All options must come before the `--create` flag: cast treats
	// `--create` as the final positional marker before the payload and misparses the call otherwise.
	args := []string{
		"send",
		"--private-key", c.privateKey,
		"--rpc-url", c.rpcURL,
		"--json",
		"--create",
		bytecode,
	}

	// Invoke the tool and decode its JSON output.
	var response castSendResponse
	if err := c.runner.RunJSON(ctx, c.binary, args, c.timeout, &response); err != nil {
		return nil, err
	}

	// A send that succeeded but reported no contract address means the tool output changed underneath us.
	if response.ContractAddress == "" {
		return nil, fmt.Errorf("%s did not report a contract address for the creation transaction", c.binary)
	}

	// Parse the reported gas cost, tolerating its absence.
	gasUsed, _ := parseQuantity(response.GasUsed)

	c.logger.Info("Contract deployed at address: ", response.ContractAddress)
	return &Deployment{
		ContractAddress: response.ContractAddress,
		GasUsed:         gasUsed,
	}, nil
}

// SendCall invokes the function identified by the given signature on the contract at the given address, passing
// each argument as an independent token. No quoting or escaping is performed; callers are trusted. It returns the
// resulting transaction hash.
func (c *CastClient) SendCall(ctx context.Context, address string, signature string, args []string) (string, error) {
	// Build our call command. The target address and function signature are positional, followed by the argument
	// list verbatim.
	cmdArgs := []string{
		"send",
		"--private-key", c.privateKey,
		"--rpc-url", c.rpcURL,
		"--json",
		address,
		signature,
	}
	cmdArgs = append(cmdArgs, args...)

	// Invoke the tool and decode its JSON output.
	var response castSendResponse
	if err := c.runner.RunJSON(ctx, c.binary, cmdArgs, c.timeout, &response); err != nil {
		return "", err
	}

	c.logger.Debug("Call sent", logging.StructuredLogInfo{
		"address":  address,
		"selector": Selector(signature),
		"txHash":   response.TransactionHash,
	})
	return response.TransactionHash, nil
}
