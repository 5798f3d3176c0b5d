package simulation

import (
	"context"

	"github.com/simforge/simforge/chain"
	"github.com/simforge/simforge/execution"
	"github.com/simforge/simforge/logging"
)

// Simulator is the composition root for one simulation request: it validates the incoming request, performs the
// single deployment step, drives the ordered transaction sequence against the deployed contract, and assembles the
// final report. All requests share the same underlying chain state; concurrent simulations interleave their
// deployments and transactions on it non-deterministically.
type Simulator struct {
	// privateKey describes the signing credential authorizing transactions. Its absence is detected at
	// construction and surfaced uniformly on every request rather than re-checked ad hoc per call site.
	privateKey string

	// client describes the chain transport used to deploy contracts and send calls.
	client chain.Client

	// logger describes the Simulator's log object
	logger *logging.Logger
}

// NewSimulator creates a Simulator using the provided signing credential and chain client. An empty credential is
// tolerated at construction so the service can start and report the misconfiguration consistently on every
// request.
func NewSimulator(privateKey string, client chain.Client, logger *logging.Logger) *Simulator {
	simulatorLogger := logger.NewSubLogger("module", "simulation")
	if privateKey == "" {
		simulatorLogger.Error("No signing credential is configured, all simulation requests will fail until one is provided")
	}
	return &Simulator{
		privateKey: privateKey,
		client:     client,
		logger:     simulatorLogger,
	}
}

// Simulate validates the given request, deploys its bytecode, executes its transaction sequence against the
// deployed contract, and returns the assembled report. Errors are typed for classification by the transport
// layer: *ConfigurationError, *ValidationError and *DeploymentError cover the expected failure modes; anything
// else is an unclassified internal error.
func (s *Simulator) Simulate(ctx context.Context, request *Request) (*Report, error) {
	// A missing signing credential fails every request consistently until fixed.
	if s.privateKey == "" {
		return nil, NewConfigurationError("Server configuration error: Private key not set.")
	}

	// Reject the request before any side effect if its payload is invalid.
	if err := request.Validate(); err != nil {
		return nil, err
	}

	// Shape-validate the entire batch before executing any item. This means a malformed item at any position
	// prevents all sends, including those ordered before it; no partial chain mutation occurs on a validation
	// error.
	for i := range request.Transactions {
		if err := request.Transactions[i].Validate(); err != nil {
			return nil, NewTransactionValidationError(i, err)
		}
	}

	// Deploy the contract. One contract is created on the node's state for every attempt, including failed
	// requests; the node accumulates state across requests with no rollback.
	deployment, err := s.client.DeployContract(ctx, request.Bytecode)
	if err != nil {
		return nil, classifyDeploymentError(err)
	}

	// Execute the transaction sequence against the deployed contract.
	outcomes, err := s.executeSequence(ctx, deployment.ContractAddress, request.Transactions)
	if err != nil {
		return nil, err
	}

	// Assemble the final report.
	return &Report{
		DeploymentGasUsed: deployment.GasUsed,
		ContractAddress:   deployment.ContractAddress,
		Outcomes:          outcomes,
	}, nil
}

// executeSequence iterates the ordered transaction list and invokes each one against the deployed contract.
// Command failures are captured per-item and never abort the sequence; one outcome is emitted per transaction, in
// input order. Unexpected non-command errors abort the sequence and propagate.
func (s *Simulator) executeSequence(ctx context.Context, contractAddress string, transactions []TransactionSpec) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(transactions))

	for i := range transactions {
		transaction := transactions[i]
		txHash, err := s.client.SendCall(ctx, contractAddress, transaction.FunctionSignature, transaction.Args)
		if err != nil {
			// A command failure is isolated to this item; anything else propagates.
			cmdErr, ok := execution.AsCommandError(err)
			if !ok {
				return nil, err
			}

			s.logger.Error("Transaction at index ", i, " failed", err)
			outcomes = append(outcomes, Outcome{
				Transaction:  transaction,
				Status:       OutcomeStatusFailed,
				ErrorDetails: commandErrorDetails(cmdErr),
			})
			continue
		}

		outcomes = append(outcomes, Outcome{
			Transaction: transaction,
			Status:      OutcomeStatusSuccess,
			TxHash:      txHash,
		})
	}

	return outcomes, nil
}

// classifyDeploymentError maps an error from the deployment step onto the request-level error taxonomy. Command
// failures and timeouts are treated as client-attributable deployment errors carrying the raw diagnostics; a
// missing tool is a server configuration error; anything else propagates unclassified.
func classifyDeploymentError(err error) error {
	cmdErr, ok := execution.AsCommandError(err)
	if !ok {
		return err
	}

	switch cmdErr.Kind {
	case execution.ErrorKindCommandFailed, execution.ErrorKindTimedOut:
		return NewDeploymentError(commandErrorDetails(cmdErr))
	case execution.ErrorKindToolNotFound:
		return NewConfigurationError(cmdErr.Error())
	default:
		return err
	}
}

// commandErrorDetails extracts the diagnostic text to report for a command error, preferring the captured stderr
// and falling back to the error's own message.
func commandErrorDetails(cmdErr *execution.CommandError) string {
	if cmdErr.Stderr != "" {
		return cmdErr.Stderr
	}
	return cmdErr.Error()
}
