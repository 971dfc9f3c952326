package otp

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// Generator defines the contract for one-time code generation.
type Generator interface {
	// Generate returns a fresh code or an error if the random source fails.
	Generate() (string, error)
}

// alphabet is the character set used for code generation.
//
// It includes digits, uppercase letters, and lowercase letters for a total
// of 62 characters, providing high entropy while remaining user-friendly.
const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// defaultLength gives roughly 71 bits of entropy, enough to treat every code
// as a unique token and make online guessing hopeless within any sane TTL.
const defaultLength = 12

// RandomCode generates cryptographically secure one-time codes.
//
// Each character is selected uniformly at random from the alphabet constant
// using crypto/rand.
type RandomCode struct {
	length int
}

// NewRandomCode returns a RandomCode generator producing codes of n
// characters. A non-positive n falls back to the default length.
func NewRandomCode(n int) *RandomCode {
	if n <= 0 {
		n = defaultLength
	}

	return &RandomCode{length: n}
}

// Generate produces one code.
func (rc *RandomCode) Generate() (string, error) {
	var sb strings.Builder
	sb.Grow(rc.length)

	for i := 0; i < rc.length; i++ {
		idx, err := rc.randInt(len(alphabet))
		if err != nil {
			return "", err
		}
		sb.WriteByte(alphabet[idx])
	}

	return sb.String(), nil
}

func (rc *RandomCode) randInt(max int) (int, error) {
	num, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, err
	}
	return int(num.Int64()), nil
}
