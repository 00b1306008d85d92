package aes

import (
	"strconv"
	"strings"

	"github.com/samber/oops"
)

// Strength selects the AES key size for a session.
type Strength int

const (
	Strength128 Strength = 128
	Strength192 Strength = 192
	Strength256 Strength = 256
)

// ErrInvalidStrength is returned for any key size other than 128, 192 or 256 bits.
var ErrInvalidStrength = oops.New("cipher strength must be 128, 192 or 256")

// Strengths lists the accepted variants in ascending order.
func Strengths() []Strength {
	return []Strength{Strength128, Strength192, Strength256}
}

// StrengthFromBits converts a bit count into a Strength.
func StrengthFromBits(bits int) (Strength, error) {
	switch Strength(bits) {
	case Strength128, Strength192, Strength256:
		return Strength(bits), nil
	}
	return 0, oops.Wrapf(ErrInvalidStrength, "got %d", bits)
}

// ParseStrength parses the decimal form used on the wire and on the command line.
func ParseStrength(s string) (Strength, error) {
	bits, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, oops.Wrapf(ErrInvalidStrength, "not a number: %q", s)
	}
	return StrengthFromBits(bits)
}

// Valid reports whether s is one of the three supported variants.
func (s Strength) Valid() bool {
	_, err := StrengthFromBits(int(s))
	return err == nil
}

// Bits returns the key size in bits.
func (s Strength) Bits() int { return int(s) }

// KeyLen returns the key size in bytes.
func (s Strength) KeyLen() int { return int(s) / 8 }

func (s Strength) String() string {
	return strconv.Itoa(int(s))
}
