package chain

import "context"

// Deployment describes the result of submitting contract bytecode as a creation transaction. It is created exactly
// once per simulation request and consumed by every subsequent call in the same request.
type Deployment struct {
	// ContractAddress describes the address the contract was created at.
	ContractAddress string

	// GasUsed describes the amount of gas the creation transaction consumed. Zero when the node did not report it.
	GasUsed uint64
}

// Client describes a narrow interface over the chain transport. The default implementation shells out to a
// command-line tool; substituting this interface keeps the orchestration logic unit-testable without any external
// process.
type Client interface {
	// DeployContract submits the given bytecode as a creation transaction to the node and returns the resulting
	// contract address and gas cost.
	DeployContract(ctx context.Context, bytecode string) (*Deployment, error)

	// SendCall invokes the function identified by the given signature on the contract at the given address,
	// passing each argument as an independent token. It returns the resulting transaction hash.
	SendCall(ctx context.Context, address string, signature string, args []string) (string, error)
}
