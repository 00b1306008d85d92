package aes

// AESSymmetricKey pairs a session key with the nonce used as its initial
// counter block.
type AESSymmetricKey struct {
	Key []byte // 16, 24 or 32 bytes for AES-128, AES-192, AES-256
	IV  []byte // 16-byte initial counter block
}

// NewStream creates a keystream positioned at the start of the session.
func (k *AESSymmetricKey) NewStream(strength Strength) (*Stream, error) {
	log.Debug("Creating new AES-CTR stream")
	return NewStream(k.Key, k.IV, strength)
}

// Len returns the length of the key
func (k *AESSymmetricKey) Len() int {
	return len(k.Key)
}

// Zero wipes the key and IV.
func (k *AESSymmetricKey) Zero() {
	for i := range k.Key {
		k.Key[i] = 0
	}
	for i := range k.IV {
		k.IV[i] = 0
	}
}
