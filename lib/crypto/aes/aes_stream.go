package aes

import (
	"crypto/aes"
	"crypto/cipher"

	"github.com/go-i2p/logger"
	"github.com/samber/oops"

	"github.com/go-i2p/go-streamtunnel/lib/crypto/types"
)

var (
	_ types.Transformer = (*Stream)(nil)
	_ types.Zeroer      = (*AESSymmetricKey)(nil)
)

var log = logger.GetGoI2PLogger()

// IVSize is the length of the initial counter block.
const IVSize = aes.BlockSize

var (
	ErrKeyLength = oops.New("AES key length does not match cipher strength")
	ErrIVLength  = oops.New("AES-CTR initial counter block must be 16 bytes")
)

// Stream is an AES-CTR keystream positioned at a byte offset within a session.
// It is not safe for concurrent use; a session owns exactly one Stream per
// direction.
type Stream struct {
	strength Strength
	ctr      cipher.Stream
	offset   uint64
}

// NewStream builds a counter-mode keystream from a key whose length must match
// strength and a 16-byte initial counter block.
func NewStream(key, iv []byte, strength Strength) (*Stream, error) {
	if !strength.Valid() {
		return nil, oops.Wrapf(ErrInvalidStrength, "got %d", int(strength))
	}
	if len(key) != strength.KeyLen() {
		log.WithFields(logger.Fields{
			"at":       "aes.NewStream",
			"strength": strength.Bits(),
			"key_len":  len(key),
		}).Error("key length does not match strength")
		return nil, oops.Wrapf(ErrKeyLength, "want %d bytes, got %d", strength.KeyLen(), len(key))
	}
	if len(iv) != IVSize {
		return nil, oops.Wrapf(ErrIVLength, "got %d", len(iv))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		log.WithError(err).Error("Failed to create AES cipher")
		return nil, oops.Wrapf(err, "create AES-%d cipher", strength.Bits())
	}

	log.WithField("strength", strength.Bits()).Debug("AES-CTR stream created")
	return &Stream{
		strength: strength,
		ctr:      cipher.NewCTR(block, iv),
	}, nil
}

// XORKeyStream XORs src with the next len(src) keystream bytes into dst.
// dst and src may overlap entirely.
func (s *Stream) XORKeyStream(dst, src []byte) {
	s.ctr.XORKeyStream(dst, src)
	s.offset += uint64(len(src))
}

// Transform applies the keystream to buf in place and returns it. Encryption
// and decryption are the same operation.
func (s *Stream) Transform(buf []byte) []byte {
	s.XORKeyStream(buf, buf)
	return buf
}

// Offset returns the number of keystream bytes consumed so far.
func (s *Stream) Offset() uint64 { return s.offset }

// Strength returns the key size the stream was built with.
func (s *Stream) Strength() Strength { return s.strength }
