package rooms

import "math/rand"

// codeAlphabet is the 62-symbol alphanumeric alphabet room codes draw from.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// generateCode produces a uniformly random code of the given length. Codes
// only need to be hard to guess casually, not secure, so a plain PRNG is
// enough.
func generateCode(rng *rand.Rand, length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = codeAlphabet[rng.Intn(len(codeAlphabet))]
	}
	return string(b)
}
