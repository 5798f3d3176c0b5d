package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestSelector will test selector derivation against well-known canonical signatures.
func TestSelector(t *testing.T) {
	testCases := []struct {
		signature string
		expected  string
	}{
		{"transfer(address,uint256)", "0xa9059cbb"},
		{"balanceOf(address)", "0x70a08231"},
		{"approve(address,uint256)", "0x095ea7b3"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, Selector(tc.signature))
	}
}
