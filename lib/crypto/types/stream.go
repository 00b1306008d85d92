package types

// Transformer applies a keystream to a buffer in place and returns it.
// Calling Transform twice with a fresh instance at the same position
// restores the original bytes.
type Transformer interface {
	Transform(buf []byte) []byte
}

// PublicKey is a public point that can be sent to a peer in the clear.
type PublicKey interface {
	Len() int
	Bytes() []byte
}

// Zeroer wipes secret material held by a value.
type Zeroer interface {
	// Zero clears all sensitive data
	Zero()
}
