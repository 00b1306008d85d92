package handshake

import (
	"io"
	"strings"

	"github.com/go-i2p/logger"

	"github.com/go-i2p/go-streamtunnel/lib/crypto/aes"
	"github.com/go-i2p/go-streamtunnel/lib/crypto/curve25519"
	"github.com/go-i2p/go-streamtunnel/lib/transport"
)

// parseHello splits the listener's first line into strength and public key.
// The strength is checked before the key is decoded.
func parseHello(line string) (aes.Strength, curve25519.PublicKey, error) {
	const op = "read listener hello"
	fields := strings.Fields(line)
	// Tokens after the public key are ignored.
	if len(fields) < 2 {
		return 0, curve25519.PublicKey{}, transport.NewProtocolError(op, "want \"<strength> <public key>\", got %d fields", len(fields))
	}
	strength, err := aes.ParseStrength(fields[0])
	if err != nil {
		return 0, curve25519.PublicKey{}, transport.WrapProtocolError(op, err)
	}
	peer, err := curve25519.ParsePublicKeyHex(fields[1])
	if err != nil {
		return 0, curve25519.PublicKey{}, transport.WrapProtocolError(op, err)
	}
	return strength, peer, nil
}

// Initiate runs the originator side of the exchange on a dialed connection.
// The listener's advertised strength is accepted only if it is 128, 192 or
// 256.
func Initiate(rw io.ReadWriter, opts ...Option) (*Result, error) {
	o := newOptions(opts)

	line, err := readLine(rw, "read listener hello")
	if err != nil {
		return nil, err
	}
	strength, peer, err := parseHello(line)
	if err != nil {
		return nil, err
	}
	log.WithFields(logger.Fields{
		"at":              "handshake.Initiate",
		"strength":        strength.Bits(),
		"peer_public_key": peer.Hex(),
	}).Debug("received listener hello")

	kp, err := newKeyPair(o, "originator key pair")
	if err != nil {
		return nil, err
	}
	defer kp.Zero()
	local := kp.Public()

	if err := writeLine(rw, "send public key", local.Hex()); err != nil {
		return nil, err
	}

	key, err := deriveSessionKey(kp, peer, strength)
	if err != nil {
		return nil, transport.WrapProtocolError("key agreement", err)
	}
	res := &Result{
		Strength:    strength,
		Key:         key,
		LocalPublic: local,
		PeerPublic:  peer,
	}

	nonce, err := NewNonce(o.rand, o.now())
	if err != nil {
		res.Zero()
		return nil, err
	}
	res.Nonce = nonce
	if err := writeLine(rw, "send nonce", nonce.Hex()); err != nil {
		res.Zero()
		return nil, err
	}

	logDerived(o, "originator", res)
	return res, nil
}
