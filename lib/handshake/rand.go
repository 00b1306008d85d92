package handshake

import (
	"github.com/go-i2p/crypto/rand"
)

// cryptoReader adapts the go-i2p CSPRNG to io.Reader.
type cryptoReader struct{}

func (cryptoReader) Read(p []byte) (int, error) {
	return rand.Read(p)
}
