package chain

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// Selector computes the 4-byte function selector for a canonical function signature (e.g. "transfer(address,uint256)")
// and returns it as a 0x-prefixed hex string. The signature is hashed verbatim; normalizing argument types is the
// caller's concern.
func Selector(signature string) string {
	// Hash the signature with keccak-256 and take the leading four bytes.
	hash := sha3.NewLegacyKeccak256()
	hash.Write([]byte(signature))
	return "0x" + hex.EncodeToString(hash.Sum(nil)[:4])
}
