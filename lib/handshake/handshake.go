package handshake

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"time"

	"github.com/go-i2p/logger"
	"github.com/samber/oops"

	"github.com/go-i2p/go-streamtunnel/lib/crypto/aes"
	"github.com/go-i2p/go-streamtunnel/lib/crypto/curve25519"
	"github.com/go-i2p/go-streamtunnel/lib/crypto/hkdf"
	"github.com/go-i2p/go-streamtunnel/lib/util"
)

var log = logger.GetGoI2PLogger()

// KeyInfo is the HKDF info label binding derived keys to this protocol.
const KeyInfo = "aes key"

// Result is the outcome of a completed exchange. Both roles produce
// byte-identical Key and Nonce from the same transcript.
type Result struct {
	Strength    aes.Strength
	Key         []byte
	Nonce       Nonce
	LocalPublic curve25519.PublicKey
	PeerPublic  curve25519.PublicKey
}

// NewStream builds the session keystream positioned at byte zero.
func (r *Result) NewStream() (*aes.Stream, error) {
	k := &aes.AESSymmetricKey{Key: r.Key, IV: r.Nonce[:]}
	return k.NewStream(r.Strength)
}

// Fingerprint is a short, non-secret identifier of the session key suitable
// for logs.
func (r *Result) Fingerprint() string {
	sum := sha256.Sum256(r.Key)
	return hex.EncodeToString(sum[:8])
}

// Zero wipes the session key.
func (r *Result) Zero() {
	if r == nil {
		return
	}
	util.Wipe(r.Key)
}

type options struct {
	rand      io.Reader
	now       func() time.Time
	exposeKey bool
}

// Option customises a handshake.
type Option func(*options)

// WithRand replaces the entropy source used for key pairs and the nonce.
func WithRand(r io.Reader) Option {
	return func(o *options) { o.rand = r }
}

// WithClock replaces the clock used to stamp the nonce.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithKeyLogging writes the raw session key to the log. Anyone with access to
// the log can decrypt the session.
func WithKeyLogging(enabled bool) Option {
	return func(o *options) { o.exposeKey = enabled }
}

func newOptions(opts []Option) *options {
	o := &options{rand: cryptoReader{}, now: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// deriveSessionKey turns the local key pair and the peer's point into the
// session key. The key pair is consumed.
func deriveSessionKey(kp *curve25519.KeyPair, peer curve25519.PublicKey, strength aes.Strength) ([]byte, error) {
	shared, err := kp.SharedSecret(peer)
	if err != nil {
		return nil, err
	}
	defer util.Wipe(shared)

	key, err := hkdf.DeriveKey(shared, nil, []byte(KeyInfo), strength.KeyLen())
	if err != nil {
		util.Panicf("session key derivation failed: %v", err)
	}
	return key, nil
}

func logDerived(o *options, role string, res *Result) {
	log.WithFields(logger.Fields{
		"at":          "handshake.logDerived",
		"role":        role,
		"strength":    res.Strength.Bits(),
		"fingerprint": res.Fingerprint(),
		"nonce_time":  res.Nonce.Timestamp().UTC().Format(time.RFC3339),
	}).Debug("derived session key")
	if o.exposeKey {
		log.WithFields(logger.Fields{
			"role": role,
			"key":  hex.EncodeToString(res.Key),
		}).Warn("session key logged in clear text")
	}
}

func newKeyPair(o *options, op string) (*curve25519.KeyPair, error) {
	kp, err := curve25519.GenerateKeyPair(o.rand)
	if err != nil {
		return nil, oops.Wrapf(err, "%s", op)
	}
	return kp, nil
}
