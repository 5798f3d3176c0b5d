package simulation

import (
	"encoding/json"
	"errors"
)

// Request describes a single simulation request: compiled contract bytecode and an ordered list of transaction
// calls to drive against the deployed contract.
type Request struct {
	// Bytecode describes the compiled payload submitted to create the contract instance.
	Bytecode string `json:"bytecode"`

	// Transactions describes the ordered sequence of calls to execute against the deployed contract.
	Transactions []TransactionSpec `json:"transactions"`
}

// Validate validates that the Request meets certain requirements before any side effect occurs.
// Returns an error if one occurs.
func (r *Request) Validate() error {
	if r.Bytecode == "" {
		return NewValidationError("Invalid payload: 'bytecode' key is missing.")
	}
	return nil
}

// TransactionSpec describes one requested transaction: a canonical function signature and an ordered sequence of
// string-encoded argument values.
type TransactionSpec struct {
	// FunctionSignature describes the canonical signature of the function to call.
	FunctionSignature string `json:"function_signature"`

	// Args describes the ordered argument values, each passed to the tool as an independent token. A nil slice
	// indicates the field was absent, which is distinct from an empty argument list.
	Args []string `json:"args"`

	// decodeIssue notes why this spec failed shape validation at JSON decode time, if it did. Decoding tolerates
	// malformed items so that validation can report the offending index instead of failing the whole payload
	// opaquely.
	decodeIssue string
}

// UnmarshalJSON decodes a TransactionSpec from JSON, implementing the json.Unmarshaler interface. Shape problems
// (item not an object, missing fields, args not a sequence of strings) are recorded on the value rather than
// returned, so the position of a malformed item within the batch can be reported during validation.
func (t *TransactionSpec) UnmarshalJSON(b []byte) error {
	// Decode the item as a generic object first; a non-object item is malformed, not a decode failure.
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		t.decodeIssue = "transaction must be an object"
		return nil
	}

	// The function signature must be present as a string.
	rawSignature, ok := fields["function_signature"]
	if !ok {
		t.decodeIssue = "'function_signature' key is missing"
		return nil
	}
	if err := json.Unmarshal(rawSignature, &t.FunctionSignature); err != nil {
		t.decodeIssue = "'function_signature' must be a string"
		return nil
	}

	// The argument list must be present as a sequence of strings. An empty sequence is valid.
	rawArgs, ok := fields["args"]
	if !ok {
		t.decodeIssue = "'args' key is missing"
		return nil
	}
	if err := json.Unmarshal(rawArgs, &t.Args); err != nil {
		t.decodeIssue = "'args' must be a sequence of strings"
		return nil
	}
	if t.Args == nil {
		t.decodeIssue = "'args' must be a sequence of strings"
		return nil
	}

	return nil
}

// Validate validates that the TransactionSpec is well-formed.
// Returns an error if one occurs.
func (t *TransactionSpec) Validate() error {
	if t.decodeIssue != "" {
		return errors.New(t.decodeIssue)
	}
	if t.FunctionSignature == "" {
		return errors.New("'function_signature' key is missing")
	}
	if t.Args == nil {
		return errors.New("'args' key is missing")
	}
	return nil
}

// Outcome statuses reported for each executed transaction.
const (
	// OutcomeStatusSuccess indicates the transaction command completed and reported a transaction hash.
	OutcomeStatusSuccess = "success"
	// OutcomeStatusFailed indicates the transaction command failed; the diagnostic text is captured per-item.
	OutcomeStatusFailed = "failed"
)

// Outcome describes the per-transaction success/failure record returned to the caller, always paired with the
// original TransactionSpec it corresponds to.
type Outcome struct {
	// Transaction echoes the original transaction spec this outcome corresponds to.
	Transaction TransactionSpec `json:"transaction"`

	// Status describes whether the transaction succeeded or failed.
	Status string `json:"status"`

	// TxHash describes the resulting transaction hash for successful transactions.
	TxHash string `json:"tx_hash,omitempty"`

	// ErrorDetails describes the captured diagnostic text for failed transactions.
	ErrorDetails string `json:"error_details,omitempty"`
}

// Report describes the assembled result of one simulation request. It is owned solely by the orchestrator for the
// duration of the request and never mutated afterwards.
type Report struct {
	// DeploymentGasUsed describes the gas consumed by the creation transaction, when the node reported it.
	DeploymentGasUsed uint64 `json:"deployment_gas_used"`

	// ContractAddress describes the address the contract was deployed at.
	ContractAddress string `json:"contract_address"`

	// Outcomes describes one outcome per input transaction, in the same order as the input.
	Outcomes []Outcome `json:"outcomes"`
}
