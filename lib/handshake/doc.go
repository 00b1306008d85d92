// Package handshake runs the line-oriented key exchange that opens a tunnel
// session.
//
// The listener speaks first and chooses the cipher strength:
//
//	listener   -> originator   "<strength> <hex listener public key>\n"
//	originator -> listener     "<hex originator public key>\n"
//	originator -> listener     "<hex 16-byte nonce>\n"
//
// Both sides compute X25519(local private, peer public), expand the result
// with HKDF-SHA256 (no salt, info "aes key") to strength/8 bytes, and use the
// nonce as the initial AES-CTR counter block. Everything after the nonce line
// is raw ciphertext.
//
// Nothing in the exchange authenticates either peer and there is no key
// confirmation. Whoever completes the exchange holds the key; a mismatched
// or tampered exchange is not detected here and only shows up as garbage
// after decryption.
//
// Lines are read one byte at a time so that no ciphertext following the
// nonce line is consumed into a buffer the relay cannot see.
package handshake
