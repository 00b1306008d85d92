package handshake

import (
	"encoding/binary"
	"encoding/hex"
	"io"
	"strings"
	"time"

	"github.com/samber/oops"
)

const (
	// NonceSize is the length of the initial counter block.
	NonceSize       = 16
	nonceRandomSize = 8
)

// Nonce is the per-session initial counter block: 8 random bytes followed by
// the Unix time in seconds, little-endian.
type Nonce [NonceSize]byte

// NewNonce draws the random half from r and stamps now into the second half.
func NewNonce(r io.Reader, now time.Time) (Nonce, error) {
	var n Nonce
	if _, err := io.ReadFull(r, n[:nonceRandomSize]); err != nil {
		return Nonce{}, oops.Wrapf(err, "failed to read nonce entropy")
	}
	binary.LittleEndian.PutUint64(n[nonceRandomSize:], uint64(now.Unix()))
	return n, nil
}

// ParseNonceHex decodes the hex form sent on the wire.
func ParseNonceHex(s string) (Nonce, error) {
	var n Nonce
	raw, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return n, oops.Errorf("malformed nonce hex: %w", err)
	}
	if len(raw) != NonceSize {
		return n, oops.Errorf("nonce must be %d bytes, got %d", NonceSize, len(raw))
	}
	copy(n[:], raw)
	return n, nil
}

// Random returns the random half.
func (n Nonce) Random() []byte {
	return append([]byte(nil), n[:nonceRandomSize]...)
}

// Timestamp returns the embedded creation time.
func (n Nonce) Timestamp() time.Time {
	return time.Unix(int64(binary.LittleEndian.Uint64(n[nonceRandomSize:])), 0)
}

// Hex returns the lowercase hex form used on the wire.
func (n Nonce) Hex() string {
	return hex.EncodeToString(n[:])
}
