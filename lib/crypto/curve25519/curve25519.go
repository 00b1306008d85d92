package curve25519

import (
	"io"

	"github.com/go-i2p/logger"
	"github.com/samber/oops"
	"golang.org/x/crypto/curve25519"
)

var log = logger.GetGoI2PLogger()

const (
	PrivateKeySize   = curve25519.ScalarSize
	PublicKeySize    = curve25519.PointSize
	SharedSecretSize = 32
)

var (
	ErrInvalidPublicKey = oops.New("invalid public key for Curve25519")
	ErrKeyPairConsumed  = oops.New("ephemeral key pair already used or wiped")
)

// KeyPair is an ephemeral X25519 key pair. The private scalar is used for
// exactly one Diffie-Hellman computation and is wiped afterwards.
type KeyPair struct {
	private [PrivateKeySize]byte
	public  PublicKey
	used    bool
}

// GenerateKeyPair draws a fresh private scalar from r and computes its public
// point.
func GenerateKeyPair(r io.Reader) (*KeyPair, error) {
	kp := &KeyPair{}
	if _, err := io.ReadFull(r, kp.private[:]); err != nil {
		return nil, oops.Wrapf(err, "failed to read Curve25519 private key entropy")
	}

	// Clamp the private key per RFC 7748
	kp.private[0] &= 248
	kp.private[31] &= 127
	kp.private[31] |= 64

	pub, err := curve25519.X25519(kp.private[:], curve25519.Basepoint)
	if err != nil {
		kp.Zero()
		return nil, oops.Wrapf(err, "failed to derive Curve25519 public key")
	}
	copy(kp.public[:], pub)

	log.WithField("public_key", kp.public.Hex()).Debug("Generated ephemeral Curve25519 key pair")
	return kp, nil
}

// Public returns the public point to send to the peer.
func (kp *KeyPair) Public() PublicKey {
	return kp.public
}

// SharedSecret combines the local private scalar with the peer's public point.
// The private scalar is wiped once the secret is computed, so a KeyPair can
// never serve two sessions.
func (kp *KeyPair) SharedSecret(peer PublicKey) ([]byte, error) {
	if kp.used {
		return nil, ErrKeyPairConsumed
	}
	defer kp.Zero()

	shared, err := curve25519.X25519(kp.private[:], peer[:])
	if err != nil {
		log.WithError(err).WithField("peer_public_key", peer.Hex()).Warn("Curve25519 exchange rejected peer key")
		return nil, oops.Wrapf(ErrInvalidPublicKey, "%s", err.Error())
	}
	return shared, nil
}

// Zero wipes the private scalar and marks the pair as consumed.
func (kp *KeyPair) Zero() {
	for i := range kp.private {
		kp.private[i] = 0
	}
	kp.used = true
}
