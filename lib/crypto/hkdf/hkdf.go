// Package hkdf derives session keys from a Diffie-Hellman shared secret with
// HKDF-SHA256 (RFC 5869).
package hkdf

import (
	"crypto/sha256"
	"io"

	"github.com/go-i2p/logger"
	"github.com/samber/oops"
	"golang.org/x/crypto/hkdf"
)

var log = logger.GetGoI2PLogger()

// DeriveKey expands secret into length bytes bound to info. A nil salt is the
// RFC 5869 default of HashLen zero bytes.
func DeriveKey(secret, salt, info []byte, length int) ([]byte, error) {
	if length <= 0 || length > 255*sha256.Size {
		return nil, oops.Errorf("invalid HKDF-SHA256 output length %d", length)
	}
	r := hkdf.New(sha256.New, secret, salt, info)
	key := make([]byte, length)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, oops.Wrapf(err, "HKDF-SHA256 expand failed")
	}
	log.WithFields(logger.Fields{
		"at":     "hkdf.DeriveKey",
		"length": length,
		"info":   string(info),
	}).Debug("derived key material")
	return key, nil
}
