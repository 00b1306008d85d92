package handshake

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-i2p/go-streamtunnel/lib/crypto/aes"
	"github.com/go-i2p/go-streamtunnel/lib/crypto/curve25519"
	"github.com/go-i2p/go-streamtunnel/lib/transport"
)

// Golden transcript: listener scalar 0x01*32, originator scalar 0x02*32,
// nonce random half a0..a7 at Unix time 1700000000.
const (
	goldenListenerPub   = "a4e09292b651c278b9772c569f5fa9bb13d906b46ab68c9df9dc2b4409f8a209"
	goldenOriginatorPub = "ce8d3ad1ccb633ec7b70c17814a5c76ecd029685050d344745ba05870e587d59"
	goldenNonce         = "a0a1a2a3a4a5a6a700f1536500000000"
)

var goldenKeys = map[aes.Strength]struct{ key, helloCiphertext string }{
	aes.Strength128: {"87085e26810ff44197c9016754f88602", "eba7478345f6fabbd26f6c11"},
	aes.Strength192: {"87085e26810ff44197c9016754f88602a73fc4e03cbe1b91", "8061e10344c3681de700367c"},
	aes.Strength256: {"87085e26810ff44197c9016754f88602a73fc4e03cbe1b9124a6381d7b5e1f48", "bc78b5d73ea48ef621e4e170"},
}

type handshakeOutcome struct {
	res *Result
	err error
}

// runPair executes both roles over an in-memory connection.
func runPair(t *testing.T, strength aes.Strength, listenerOpts, originatorOpts []Option) (*Result, *Result) {
	t.Helper()
	lconn, oconn := net.Pipe()
	defer lconn.Close()
	defer oconn.Close()

	done := make(chan handshakeOutcome, 1)
	go func() {
		res, err := Accept(lconn, strength, listenerOpts...)
		done <- handshakeOutcome{res, err}
	}()

	ores, err := Initiate(oconn, originatorOpts...)
	require.NoError(t, err)

	select {
	case out := <-done:
		require.NoError(t, out.err)
		return out.res, ores
	case <-time.After(5 * time.Second):
		t.Fatal("listener handshake did not finish")
	}
	return nil, nil
}

func fixedClock() time.Time { return time.Unix(1700000000, 0) }

func TestHandshakeKeyAgreement(t *testing.T) {
	for _, strength := range aes.Strengths() {
		t.Run(strength.String(), func(t *testing.T) {
			lres, ores := runPair(t, strength, nil, nil)

			assert.Equal(t, strength, lres.Strength)
			assert.Equal(t, strength, ores.Strength)
			assert.Len(t, lres.Key, strength.KeyLen())
			assert.Equal(t, lres.Key, ores.Key)
			assert.Equal(t, lres.Nonce, ores.Nonce)
			assert.Equal(t, lres.LocalPublic, ores.PeerPublic)
			assert.Equal(t, ores.LocalPublic, lres.PeerPublic)
			assert.Equal(t, lres.Fingerprint(), ores.Fingerprint())
		})
	}
}

func TestHandshakeGoldenTranscript(t *testing.T) {
	for strength, want := range goldenKeys {
		t.Run(strength.String(), func(t *testing.T) {
			lrand := bytes.NewReader(bytes.Repeat([]byte{0x01}, 32))
			orand := io.MultiReader(
				bytes.NewReader(bytes.Repeat([]byte{0x02}, 32)),
				bytes.NewReader([]byte{0xa0, 0xa1, 0xa2, 0xa3, 0xa4, 0xa5, 0xa6, 0xa7}),
			)
			lres, ores := runPair(t, strength,
				[]Option{WithRand(lrand)},
				[]Option{WithRand(orand), WithClock(fixedClock)},
			)

			assert.Equal(t, goldenListenerPub, lres.LocalPublic.Hex())
			assert.Equal(t, goldenOriginatorPub, ores.LocalPublic.Hex())
			assert.Equal(t, want.key, hex.EncodeToString(lres.Key))
			assert.Equal(t, want.key, hex.EncodeToString(ores.Key))
			assert.Equal(t, goldenNonce, ores.Nonce.Hex())
			assert.Equal(t, goldenNonce, lres.Nonce.Hex())

			enc, err := ores.NewStream()
			require.NoError(t, err)
			ct := enc.Transform([]byte("HELLO-STREAM"))
			assert.Equal(t, want.helloCiphertext, hex.EncodeToString(ct))

			dec, err := lres.NewStream()
			require.NoError(t, err)
			assert.Equal(t, "HELLO-STREAM", string(dec.Transform(ct)))
		})
	}
}

func TestHandshakeEndToEndHello(t *testing.T) {
	lres, ores := runPair(t, aes.Strength128, nil, nil)

	enc, err := ores.NewStream()
	require.NoError(t, err)
	dec, err := lres.NewStream()
	require.NoError(t, err)

	msg := []byte("HELLO-STREAM")
	require.Len(t, msg, 12)
	ct := enc.Transform(append([]byte(nil), msg...))
	assert.NotEqual(t, msg, ct)
	assert.Equal(t, msg, dec.Transform(ct))
}

// scriptedConn replays canned input and records everything written.
type scriptedConn struct {
	io.Reader
	written bytes.Buffer
}

func (c *scriptedConn) Write(p []byte) (int, error) { return c.written.Write(p) }

func newScripted(input string) *scriptedConn {
	return &scriptedConn{Reader: strings.NewReader(input)}
}

func validPublicHex(t *testing.T) string {
	t.Helper()
	kp, err := curve25519.GenerateKeyPair(rand.Reader)
	require.NoError(t, err)
	return kp.Public().Hex()
}

func TestInitiateRejectsUnsupportedStrength(t *testing.T) {
	for _, hello := range []string{
		"64 " + strings.Repeat("zz", 32) + "\n",
		"512 " + strings.Repeat("00", 32) + "\n",
		"abc " + strings.Repeat("00", 32) + "\n",
	} {
		conn := newScripted(hello)
		_, err := Initiate(conn)
		require.Error(t, err)

		var pe *transport.ProtocolError
		require.True(t, errors.As(err, &pe), "got %T: %v", err, err)
		assert.NotContains(t, err.Error(), "public key", "strength is rejected before the key is decoded")
		assert.Zero(t, conn.written.Len(), "nothing is sent after a rejected hello")
	}
}

func TestInitiateRejectsMalformedHello(t *testing.T) {
	tests := map[string]string{
		"missing key":   "128\n",
		"bad hex":       "128 " + strings.Repeat("zz", 32) + "\n",
		"short key":     "128 " + strings.Repeat("00", 31) + "\n",
		"empty line":    "\n",
		"too long line": strings.Repeat("1", maxLineLength+1) + "\n",
	}
	for name, hello := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Initiate(newScripted(hello))
			require.Error(t, err)
			assert.True(t, transport.IsProtocolError(err), "got %v", err)
		})
	}
}

func TestInitiateIgnoresTrailingHelloTokens(t *testing.T) {
	peer := validPublicHex(t)
	res, err := Initiate(newScripted("192 " + peer + " extra tokens\n"))
	require.NoError(t, err)
	assert.Equal(t, aes.Strength192, res.Strength)
	assert.Equal(t, peer, res.PeerPublic.Hex())
}

func TestInitiateEOFIsTransportError(t *testing.T) {
	_, err := Initiate(newScripted(""))
	require.Error(t, err)
	assert.True(t, transport.IsTransportError(err))
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
}

func TestInitiateWireFormat(t *testing.T) {
	conn := newScripted("256 " + validPublicHex(t) + "\r\n")
	res, err := Initiate(conn, WithClock(fixedClock))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(conn.written.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, res.LocalPublic.Hex(), lines[0])
	assert.Equal(t, res.Nonce.Hex(), lines[1])
	assert.Equal(t, aes.Strength256, res.Strength)
	assert.Equal(t, fixedClock(), res.Nonce.Timestamp())
}

func TestAcceptRejectsBadPeerInput(t *testing.T) {
	nonce := strings.Repeat("11", NonceSize)
	tests := map[string]struct {
		input     string
		transport bool
	}{
		"no key line":     {input: "", transport: true},
		"empty key line":  {input: "\n"},
		"malformed key":   {input: "xyz\n" + nonce + "\n"},
		"wrong key len":   {input: strings.Repeat("00", 16) + "\n" + nonce + "\n"},
		"low order key":   {input: strings.Repeat("00", 32) + "\n" + nonce + "\n"},
		"missing nonce":   {input: "PUB\n", transport: true},
		"malformed nonce": {input: "PUB\nnothex\n"},
		"short nonce":     {input: "PUB\n" + strings.Repeat("11", NonceSize-1) + "\n"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			input := strings.ReplaceAll(tt.input, "PUB", validPublicHex(t))
			conn := newScripted(input)
			_, err := Accept(conn, aes.Strength192)
			require.Error(t, err)
			if tt.transport {
				assert.True(t, transport.IsTransportError(err), "got %v", err)
			} else {
				assert.True(t, transport.IsProtocolError(err), "got %v", err)
			}
			assert.True(t, strings.HasPrefix(conn.written.String(), "192 "))
		})
	}
}

func TestAcceptRejectsInvalidAdvertisedStrength(t *testing.T) {
	conn := newScripted("")
	_, err := Accept(conn, aes.Strength(64))
	require.Error(t, err)
	assert.Zero(t, conn.written.Len())
}

// The relay must see every byte that follows the nonce line.
func TestAcceptDoesNotConsumeCiphertext(t *testing.T) {
	nonce := strings.Repeat("22", NonceSize)
	conn := newScripted(validPublicHex(t) + "\n" + nonce + "\nCIPHERTEXT")
	_, err := Accept(conn, aes.Strength128)
	require.NoError(t, err)

	rest, err := io.ReadAll(conn.Reader)
	require.NoError(t, err)
	assert.Equal(t, "CIPHERTEXT", string(rest))
}

func TestResultZero(t *testing.T) {
	lres, _ := runPair(t, aes.Strength256, nil, []Option{WithKeyLogging(true)})
	lres.Zero()
	assert.Equal(t, make([]byte, 32), lres.Key)

	var nilResult *Result
	nilResult.Zero()
}
