// Package otc generates, stores, validates and invalidates one-time codes,
// and hosts the fixed-window rate limiter guarding their issuance.
package otc

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

// CodeGenerator produces one-time code values. Production uses the
// crypto/rand generator; tests inject a fixed one. There is deliberately no
// environment-flag backdoor in the production path.
type CodeGenerator interface {
	Generate() (string, error)
}

type cryptoGenerator struct{}

// NewCryptoGenerator returns the production generator: uniform 6-digit
// codes over [100000, 999999] from crypto/rand.
func NewCryptoGenerator() CodeGenerator { return cryptoGenerator{} }

func (cryptoGenerator) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}

// FixedGenerator always returns the same code. Test double only.
type FixedGenerator struct {
	Code string
}

func (g FixedGenerator) Generate() (string, error) { return g.Code, nil }
