// Package aes provides the AES counter-mode keystream used to encrypt a tunnel
// session.
//
// A single Stream spans the whole session: the 16-byte nonce is the initial
// counter block, the counter is incremented big-endian across the full 128
// bits and never reset between calls. AES-128, AES-192 and AES-256 all use
// the same 128-bit counter block; the Strength variant only selects the key
// length. The scheme provides confidentiality only. There is no tag and no
// integrity check, so a tampered or mis-keyed stream decrypts to garbage
// without an error.
package aes
