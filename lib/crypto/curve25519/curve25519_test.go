package curve25519

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-i2p/go-streamtunnel/lib/crypto/types"
)

var _ types.PublicKey = PublicKey{}

func TestKeyAgreement(t *testing.T) {
	for i := 0; i < 16; i++ {
		alice, err := GenerateKeyPair(rand.Reader)
		require.NoError(t, err)
		bob, err := GenerateKeyPair(rand.Reader)
		require.NoError(t, err)

		sa, err := alice.SharedSecret(bob.Public())
		require.NoError(t, err)
		sb, err := bob.SharedSecret(alice.Public())
		require.NoError(t, err)

		assert.Len(t, sa, SharedSecretSize)
		assert.Equal(t, sa, sb)
	}
}

// RFC 7748 section 6.1.
func TestKnownPublicKey(t *testing.T) {
	priv := "77076d0a7318a57d3c16c17251b26645df4c2f87ebc0992ab177fba51db92c2a"
	raw, err := hex.DecodeString(priv)
	require.NoError(t, err)

	kp, err := GenerateKeyPair(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "8520f0098930a754748b7ddcb43ef75a0dbf3a0d26381af4eba4a98eaa9b4e6a", kp.Public().Hex())
}

func TestKeyPairSingleUse(t *testing.T) {
	alice, err := GenerateKeyPair(rand.Reader)
	require.NoError(t, err)
	bob, err := GenerateKeyPair(rand.Reader)
	require.NoError(t, err)

	_, err = alice.SharedSecret(bob.Public())
	require.NoError(t, err)
	assert.Equal(t, [PrivateKeySize]byte{}, alice.private, "private scalar must be wiped")

	_, err = alice.SharedSecret(bob.Public())
	assert.Error(t, err)
}

func TestSharedSecretRejectsLowOrderPoint(t *testing.T) {
	kp, err := GenerateKeyPair(rand.Reader)
	require.NoError(t, err)

	_, err = kp.SharedSecret(PublicKey{})
	assert.Error(t, err)
}

func TestGenerateKeyPairShortEntropy(t *testing.T) {
	_, err := GenerateKeyPair(bytes.NewReader(make([]byte, 8)))
	assert.Error(t, err)
}

func TestParsePublicKeyHex(t *testing.T) {
	kp, err := GenerateKeyPair(rand.Reader)
	require.NoError(t, err)

	parsed, err := ParsePublicKeyHex(kp.Public().Hex() + "\r\n")
	require.NoError(t, err)
	assert.Equal(t, kp.Public(), parsed)
	assert.Equal(t, PublicKeySize, parsed.Len())
	assert.Equal(t, kp.Public().Bytes(), parsed.Bytes())

	tests := map[string]string{
		"odd length": "abc",
		"not hex":    strings.Repeat("zz", PublicKeySize),
		"too short":  strings.Repeat("00", PublicKeySize-1),
		"too long":   strings.Repeat("00", PublicKeySize+1),
		"empty":      "",
	}
	for name, in := range tests {
		_, err := ParsePublicKeyHex(in)
		assert.Error(t, err, name)
	}
}
