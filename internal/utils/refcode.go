package utils

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"time"
)

// Prefixes of the human-facing document numbers.
const (
	PrefixInvoice = "INV"
	PrefixReceipt = "RCPT"
	PrefixVoucher = "VCH"
)

// refSpace is the exclusive upper bound of the random suffix.
var refSpace = big.NewInt(1_000_000)

// RefGenerator produces reference numbers of the form
// PREFIX-<unix millis>-<n> with n drawn uniformly from [0, 1000000).
// Numbers are unique in practice but not guaranteed to be; callers rely on
// the UNIQUE constraint of the number column and retry on collision.
type RefGenerator struct {
	Now  func() time.Time
	Rand io.Reader
}

// NewRefGenerator returns a generator backed by the wall clock and
// crypto/rand.
func NewRefGenerator() *RefGenerator {
	return &RefGenerator{Now: time.Now, Rand: rand.Reader}
}

// Generate returns a new reference number for prefix.
func (g *RefGenerator) Generate(prefix string) (string, error) {
	now, src := time.Now, rand.Reader
	if g != nil && g.Now != nil {
		now = g.Now
	}
	if g != nil && g.Rand != nil {
		src = g.Rand
	}
	n, err := rand.Int(src, refSpace)
	if err != nil {
		return "", fmt.Errorf("generate %s number: %w", prefix, err)
	}
	return fmt.Sprintf("%s-%d-%d", prefix, now().UnixMilli(), n.Int64()), nil
}
