package curve25519

import (
	"encoding/hex"
	"strings"

	"github.com/samber/oops"

	"github.com/go-i2p/go-streamtunnel/lib/crypto/types"
)

var (
	_ types.PublicKey = PublicKey{}
	_ types.Zeroer    = (*KeyPair)(nil)
)

// PublicKey is a Curve25519 public point as sent on the wire.
type PublicKey [PublicKeySize]byte

// ParsePublicKeyHex decodes a hex-encoded 32-byte public point.
func ParsePublicKeyHex(s string) (PublicKey, error) {
	var pk PublicKey
	raw, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return pk, oops.Wrapf(ErrInvalidPublicKey, "malformed hex: %s", err.Error())
	}
	if len(raw) != PublicKeySize {
		return pk, oops.Wrapf(ErrInvalidPublicKey, "want %d bytes, got %d", PublicKeySize, len(raw))
	}
	copy(pk[:], raw)
	return pk, nil
}

// Len returns the length of the public key in bytes.
func (k PublicKey) Len() int {
	return PublicKeySize
}

// Bytes returns a copy of the raw point.
func (k PublicKey) Bytes() []byte {
	return append([]byte(nil), k[:]...)
}

// Hex returns the lowercase hex encoding used on the wire.
func (k PublicKey) Hex() string {
	return hex.EncodeToString(k[:])
}
