// Package accesscode normalizes, digests, and generates educator access codes.
package accesscode

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"strings"

	"golang.org/x/crypto/blake2b"
)

const (
	prefix   = "NCET"
	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Normalize canonicalizes user input before digesting: surrounding whitespace
// is stripped and the code is uppercased.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Digest returns the hex-encoded keyed BLAKE2b-256 digest of the normalized
// code. The key is a server-side pepper: deterministic for lookup, but a
// leaked table alone cannot be brute-forced offline without it.
func Digest(pepper, code string) string {
	h, err := blake2b.New256([]byte(pepper))
	if err != nil {
		// only reachable with a key longer than 64 bytes
		panic("accesscode: bad digest pepper: " + err.Error())
	}
	h.Write([]byte(Normalize(code)))
	return hex.EncodeToString(h.Sum(nil))
}

// Hint returns the last four characters of the normalized code. It is kept
// for support lookup only and is never sufficient to reconstruct the code.
func Hint(code string) string {
	n := Normalize(code)
	if len(n) <= 4 {
		return n
	}
	return n[len(n)-4:]
}

// Generate produces a fresh plaintext code of the form NCET-XXXX-XXXX-XXXX.
func Generate() (string, error) {
	groups := make([]string, 0, 4)
	groups = append(groups, prefix)
	for g := 0; g < 3; g++ {
		b := make([]byte, 4)
		for i := range b {
			idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
			if err != nil {
				return "", err
			}
			b[i] = alphabet[idx.Int64()]
		}
		groups = append(groups, string(b))
	}
	return strings.Join(groups, "-"), nil
}
