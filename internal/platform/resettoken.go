package platform

import (
	"crypto/rand"
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"
)

// ResetTokenManager derives a stable-but-opaque reset token for the
// hardware-accelerator device (§4.1: "wraps the device in a
// reset-token manager to be shared with decoder instances"), so
// instances can detect an accelerator device reset without the real
// device handle needing to be inspected. Grounded on the teacher's
// internal/security.DeriveKey (pbkdf2.Key over a salt), repurposed from
// deriving an AES key from a passphrase to deriving an opaque token
// buffer from a per-process random seed — no encryption or decryption
// happens here, only the KDF call.
type ResetTokenManager struct {
	seed  []byte
	token []byte
}

const resetTokenLen = 16

// NewResetTokenManager generates a fresh random seed and derives the
// initial reset token from it.
func NewResetTokenManager() *ResetTokenManager {
	m := &ResetTokenManager{}
	m.reseed()
	return m
}

func (m *ResetTokenManager) reseed() {
	seed := make([]byte, 32)
	_, _ = rand.Read(seed)
	m.seed = seed
	m.token = pbkdf2.Key(seed, []byte("hdxav-accelerator-reset-token"), 4096, resetTokenLen, sha256.New)
}

// Token returns the current opaque reset token.
func (m *ResetTokenManager) Token() []byte {
	out := make([]byte, len(m.token))
	copy(out, m.token)
	return out
}

// Reset generates a new token, modeling the accelerator device
// signaling a reset that invalidates any handle derived from the old
// token.
func (m *ResetTokenManager) Reset() {
	m.reseed()
}
