package simulation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestTransactionSpecDecoding will test that decoding tolerates malformed transaction items and records a shape
// issue, so validation can report the offending position instead of rejecting the whole payload opaquely.
func TestTransactionSpecDecoding(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		valid bool
	}{
		{"well-formed", `{"function_signature": "setx1(uint256)", "args": ["1"]}`, true},
		{"empty args", `{"function_signature": "reset()", "args": []}`, true},
		{"not an object", `"setx1(uint256)"`, false},
		{"missing function_signature", `{"args": ["1"]}`, false},
		{"function_signature not a string", `{"function_signature": 5, "args": ["1"]}`, false},
		{"missing args", `{"function_signature": "setx1(uint256)"}`, false},
		{"args not a sequence", `{"function_signature": "setx1(uint256)", "args": "1"}`, false},
		{"args not strings", `{"function_signature": "setx1(uint256)", "args": [1]}`, false},
		{"args null", `{"function_signature": "setx1(uint256)", "args": null}`, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var spec TransactionSpec
			err := json.Unmarshal([]byte(tc.input), &spec)

			// Decoding itself never fails; well-formedness is decided by Validate.
			assert.NoError(t, err)
			if tc.valid {
				assert.NoError(t, spec.Validate())
			} else {
				assert.Error(t, spec.Validate())
			}
		})
	}
}

// TestTransactionSpecEmptyArgsPreserved will test that an explicit empty argument list survives the decode and is
// distinguishable from an absent one.
func TestTransactionSpecEmptyArgsPreserved(t *testing.T) {
	var spec TransactionSpec
	err := json.Unmarshal([]byte(`{"function_signature": "reset()", "args": []}`), &spec)
	assert.NoError(t, err)
	assert.NotNil(t, spec.Args)
	assert.Empty(t, spec.Args)
}

// TestRequestValidate will test that request-level validation requires the bytecode payload.
func TestRequestValidate(t *testing.T) {
	request := &Request{}
	err := request.Validate()
	validationErr, ok := AsValidationError(err)
	assert.True(t, ok)
	assert.Contains(t, validationErr.Message, "bytecode")

	request.Bytecode = "0x6001"
	assert.NoError(t, request.Validate())
}

// TestOutcomeSerialization will test that empty hash and error fields are omitted from the serialized outcome, so
// successful and failed outcomes each carry only their relevant fields.
func TestOutcomeSerialization(t *testing.T) {
	failed := Outcome{
		Transaction:  TransactionSpec{FunctionSignature: "fail()", Args: []string{}},
		Status:       OutcomeStatusFailed,
		ErrorDetails: "execution reverted",
	}
	b, err := json.Marshal(failed)
	assert.NoError(t, err)
	assert.NotContains(t, string(b), "tx_hash")
	assert.Contains(t, string(b), "error_details")

	succeeded := Outcome{
		Transaction: TransactionSpec{FunctionSignature: "setx1(uint256)", Args: []string{"1"}},
		Status:      OutcomeStatusSuccess,
		TxHash:      "0xhash0",
	}
	b, err = json.Marshal(succeeded)
	assert.NoError(t, err)
	assert.Contains(t, string(b), "tx_hash")
	assert.NotContains(t, string(b), "error_details")
}
