// Package spin implements the pseudo-random win check. It mirrors the
// scheme the gambling contract layer uses: keccak256 over a seed plus
// fresh entropy, win when the hash modulo the difficulty is zero.
package spin

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/sha3"
)

// CheckWin rolls once against the given difficulty. A difficulty of zero
// never wins; a difficulty of one always wins. The optional seed is mixed
// in so a caller-supplied value influences, but never fully determines,
// the roll.
func CheckWin(difficulty uint64, seed string) bool {
	if difficulty == 0 {
		return false
	}
	n := randomNumber(seed)
	return new(big.Int).Mod(n, new(big.Int).SetUint64(difficulty)).Sign() == 0
}

func randomNumber(seed string) *big.Int {
	entropy := make([]byte, 16)
	if _, err := rand.Read(entropy); err != nil {
		// crypto/rand failing is effectively unreachable; fall back to the
		// clock alone rather than aborting a spin.
		entropy = nil
	}

	input := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), hex.EncodeToString(entropy))
	if seed != "" {
		input = seed + "-" + input
	}

	hash := sha3.NewLegacyKeccak256()
	hash.Write([]byte(input))
	return new(big.Int).SetBytes(hash.Sum(nil))
}
