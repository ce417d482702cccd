package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// AccountNumberGenerator produces candidate account numbers. Injected so
// collision behavior is testable and creation retries stay bounded.
type AccountNumberGenerator interface {
	Generate() (string, error)
}

type RandomAccountNumberGenerator struct{}

func NewRandomAccountNumberGenerator() *RandomAccountNumberGenerator {
	return &RandomAccountNumberGenerator{}
}

var accountNumberSpace = new(big.Int).Exp(big.NewInt(10), big.NewInt(12), nil)

// Generate returns a random 12-digit account number, zero padded.
func (g *RandomAccountNumberGenerator) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, accountNumberSpace)
	if err != nil {
		return "", fmt.Errorf("generate account number: %w", err)
	}
	return fmt.Sprintf("%012d", n), nil
}
