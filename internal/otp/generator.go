package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/qivlabs/qiv-auth/internal/model"
)

var _ model.OTPGenerator = (*Generator)(nil)

// Generator produces 6-digit numeric reset codes from crypto/rand.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate returns a code in [100000, 999999].
func (g *Generator) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}

	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
