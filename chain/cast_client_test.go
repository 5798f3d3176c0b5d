package chain

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/simforge/simforge/config"
	"github.com/simforge/simforge/execution"
	"github.com/simforge/simforge/logging"
)

// fakeRunner is an execution.Runner test double which records the argument vectors it receives and returns a
// scripted stdout document or error.
type fakeRunner struct {
	// invocations records the argument vector of every Run/RunJSON call.
	invocations [][]string

	// stdout is the document returned for every invocation.
	stdout string

	// err is returned instead when non-nil.
	err error
}

func (r *fakeRunner) Run(ctx context.Context, tool string, args []string, timeout time.Duration) ([]byte, error) {
	r.invocations = append(r.invocations, append([]string{tool}, args...))
	if r.err != nil {
		return nil, r.err
	}
	return []byte(r.stdout), nil
}

func (r *fakeRunner) RunJSON(ctx context.Context, tool string, args []string, timeout time.Duration, v any) error {
	stdout, err := r.Run(ctx, tool, args, timeout)
	if err != nil {
		return err
	}
	return json.Unmarshal(stdout, v)
}

// newTestCastClient creates a CastClient over the given fake runner with fixed credentials.
func newTestCastClient(runner *fakeRunner) *CastClient {
	chainConfig := config.ChainConfig{Binary: "cast", Timeout: 30}
	return NewCastClient(chainConfig, "0xkey", "http://127.0.0.1:8545", runner, logging.NewLogger(0, false))
}

// TestDeployContractCommandShape will test that the creation transaction command places every option before the
// `--create` flag and the bytecode payload last.
func TestDeployContractCommandShape(t *testing.T) {
	runner := &fakeRunner{stdout: `{"contractAddress": "0xabc", "transactionHash": "0x1", "gasUsed": "21064"}`}
	client := newTestCastClient(runner)

	deployment, err := client.DeployContract(context.Background(), "0x6001")
	assert.NoError(t, err)
	assert.Equal(t, "0xabc", deployment.ContractAddress)
	assert.Equal(t, uint64(21064), deployment.GasUsed)

	assert.Equal(t, 1, len(runner.invocations))
	argv := runner.invocations[0]
	assert.Equal(t, []string{
		"cast", "send",
		"--private-key", "0xkey",
		"--rpc-url", "http://127.0.0.1:8545",
		"--json",
		"--create", "0x6001",
	}, argv)

	// The payload must be the final token, immediately after the create flag.
	assert.Equal(t, "0x6001", argv[len(argv)-1])
	assert.Equal(t, "--create", argv[len(argv)-2])
}

// TestDeployContractGasFormats will test that the reported gas cost is parsed across the quantity encodings the
// tooling emits, and that an unparseable or absent quantity degrades to zero rather than failing the deployment.
func TestDeployContractGasFormats(t *testing.T) {
	testCases := []struct {
		name     string
		gasField string
		expected uint64
	}{
		{"decimal string", `"21064"`, 21064},
		{"hex string", `"0x5248"`, 21064},
		{"json number", `21064`, 21064},
		{"null", `null`, 0},
		{"garbage", `"pending"`, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			runner := &fakeRunner{stdout: `{"contractAddress": "0xabc", "gasUsed": ` + tc.gasField + `}`}
			client := newTestCastClient(runner)

			deployment, err := client.DeployContract(context.Background(), "0x6001")
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, deployment.GasUsed)
		})
	}
}

// TestDeployContractMissingAddress will test that a send which succeeded but reported no contract address is an
// error rather than a deployment at the zero value address.
func TestDeployContractMissingAddress(t *testing.T) {
	runner := &fakeRunner{stdout: `{"transactionHash": "0x1"}`}
	client := newTestCastClient(runner)

	deployment, err := client.DeployContract(context.Background(), "0x6001")
	assert.Nil(t, deployment)
	assert.Error(t, err)

	// The failure is not a command error; it must surface as an internal fault, not a client-attributable one.
	_, ok := execution.AsCommandError(err)
	assert.False(t, ok)
}

// TestDeployContractRunnerError will test that a runner failure propagates unchanged.
func TestDeployContractRunnerError(t *testing.T) {
	cmdErr := execution.NewCommandFailedError("cast", "insufficient funds", nil)
	runner := &fakeRunner{err: cmdErr}
	client := newTestCastClient(runner)

	deployment, err := client.DeployContract(context.Background(), "0xbad")
	assert.Nil(t, deployment)
	assert.Equal(t, cmdErr, err)
}

// TestSendCallCommandShape will test that a call command positions the address and signature after the options and
// appends each argument as its own token, verbatim.
func TestSendCallCommandShape(t *testing.T) {
	runner := &fakeRunner{stdout: `{"transactionHash": "0x2"}`}
	client := newTestCastClient(runner)

	txHash, err := client.SendCall(context.Background(), "0xabc", "transfer(address,uint256)", []string{"0xdef", "100 000"})
	assert.NoError(t, err)
	assert.Equal(t, "0x2", txHash)

	assert.Equal(t, []string{
		"cast", "send",
		"--private-key", "0xkey",
		"--rpc-url", "http://127.0.0.1:8545",
		"--json",
		"0xabc",
		"transfer(address,uint256)",
		"0xdef",
		"100 000",
	}, runner.invocations[0])
}

// TestSendCallNoArgs will test that a call with an empty argument list ends at the signature token.
func TestSendCallNoArgs(t *testing.T) {
	runner := &fakeRunner{stdout: `{"transactionHash": "0x2"}`}
	client := newTestCastClient(runner)

	_, err := client.SendCall(context.Background(), "0xabc", "reset()", []string{})
	assert.NoError(t, err)

	argv := runner.invocations[0]
	assert.Equal(t, "reset()", argv[len(argv)-1])
}
