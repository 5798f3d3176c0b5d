package chain

import (
	"encoding/json"
	"strings"

	"github.com/holiman/uint256"
)

// parseQuantity parses a raw JSON quantity value into a uint64. The tooling emits quantities as JSON numbers,
// decimal strings, or 0x-prefixed hex strings depending on version, so all three forms are accepted. Returns the
// parsed value and a boolean indicating whether parsing succeeded.
func parseQuantity(raw json.RawMessage) (uint64, bool) {
	// An absent field parses to nothing.
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		return 0, false
	}

	// Parse hex or decimal into a 256-bit integer first, as gas quantities are chain quantities.
	var (
		value *uint256.Int
		err   error
	)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		value, err = uint256.FromHex(strings.ToLower(s))
	} else {
		value, err = uint256.FromDecimal(s)
	}
	if err != nil || !value.IsUint64() {
		return 0, false
	}

	return value.Uint64(), true
}
