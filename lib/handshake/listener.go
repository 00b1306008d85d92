package handshake

import (
	"fmt"
	"io"

	"github.com/go-i2p/logger"

	"github.com/go-i2p/go-streamtunnel/lib/crypto/aes"
	"github.com/go-i2p/go-streamtunnel/lib/crypto/curve25519"
	"github.com/go-i2p/go-streamtunnel/lib/transport"
)

// Accept runs the listener side of the exchange on an accepted connection,
// advertising strength.
func Accept(rw io.ReadWriter, strength aes.Strength, opts ...Option) (*Result, error) {
	if !strength.Valid() {
		return nil, transport.NewProtocolError("advertise strength", "unsupported cipher strength %d", strength.Bits())
	}
	o := newOptions(opts)

	kp, err := newKeyPair(o, "listener key pair")
	if err != nil {
		return nil, err
	}
	defer kp.Zero()

	if err := writeLine(rw, "send listener hello", fmt.Sprintf("%d %s", strength.Bits(), kp.Public().Hex())); err != nil {
		return nil, err
	}
	log.WithFields(logger.Fields{
		"at":         "handshake.Accept",
		"strength":   strength.Bits(),
		"public_key": kp.Public().Hex(),
	}).Debug("sent strength and public key")

	line, err := readLine(rw, "read originator public key")
	if err != nil {
		return nil, err
	}
	if line == "" {
		return nil, transport.NewProtocolError("read originator public key", "empty line")
	}
	peer, err := curve25519.ParsePublicKeyHex(line)
	if err != nil {
		return nil, transport.WrapProtocolError("read originator public key", err)
	}

	key, err := deriveSessionKey(kp, peer, strength)
	if err != nil {
		return nil, transport.WrapProtocolError("key agreement", err)
	}
	res := &Result{
		Strength:    strength,
		Key:         key,
		LocalPublic: kp.Public(),
		PeerPublic:  peer,
	}

	line, err = readLine(rw, "read nonce")
	if err != nil {
		res.Zero()
		return nil, err
	}
	nonce, err := ParseNonceHex(line)
	if err != nil {
		res.Zero()
		return nil, transport.WrapProtocolError("read nonce", err)
	}
	res.Nonce = nonce

	logDerived(o, "listener", res)
	return res, nil
}
