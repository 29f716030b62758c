package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Length is the number of digits in a handoff code.
const Length = 6

var space = big.NewInt(1_000_000)

type Generator interface {
	Generate() (string, error)
}

type random struct{}

// New returns a generator sampling uniformly from 000000-999999.
// Collisions between a booking's two codes are possible and harmless.
func New() Generator { return random{} }

func (random) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, space)
	if err != nil {
		return "", fmt.Errorf("otp: read random: %w", err)
	}
	return fmt.Sprintf("%0*d", Length, n.Int64()), nil
}

// Valid reports whether s has the shape of a code. It says nothing about
// whether s matches any booking.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
