/*
NAME
  cryptoutil.go

DESCRIPTION
  cryptoutil.go implements password-based authenticated encryption and the
  auth-token primitive used by AUTH packets. A fresh salt and nonce are
  generated per call to Encrypt so that two encryptions of the same
  plaintext under the same password never produce the same cipher-blob.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package cryptoutil provides PBKDF2 key derivation, AES-256-GCM
// authenticated encryption, and the SHA-256 auth-token used to build and
// parse AUTH and ENCRYPTED packets.
package cryptoutil

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/crypto/pbkdf2"
)

// Parameters fixed by the wire format; changing any of these breaks
// compatibility with a peer built to this same spec.
const (
	pbkdf2Iterations = 100000
	keyLen           = 32 // AES-256.
	SaltLen          = 16
	NonceLen         = 12
	TagLen           = 16
	TokenLen         = 4

	// MinBlobLen is the smallest a cipher-blob can be: salt + nonce + tag
	// around a zero-length plaintext.
	MinBlobLen = SaltLen + NonceLen + TagLen
)

// ErrAuthFailure is returned by Decrypt when the GCM tag does not verify,
// which happens both for a corrupted blob and for a wrong password.
var ErrAuthFailure = errors.New("cryptoutil: authentication failed")

// deriveKey derives a 32-byte AES-256 key from password and salt using
// PBKDF2-HMAC-SHA256 with 100000 iterations.
func deriveKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, keyLen, sha256.New)
}

// Encrypt derives a key from password using a fresh random salt, then
// AES-256-GCM encrypts plaintext under a fresh random nonce. The returned
// blob is salt(16) || nonce(12) || ciphertext || tag(16).
func Encrypt(password string, plaintext []byte) ([]byte, error) {
	if password == "" {
		return nil, errors.Wrap(ErrAuthFailure, "empty password rejected")
	}

	salt := make([]byte, SaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, errors.Wrap(err, "could not read random salt")
	}
	nonce := make([]byte, NonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, errors.Wrap(err, "could not read random nonce")
	}

	gcm, err := newGCM(deriveKey(password, salt))
	if err != nil {
		return nil, errors.Wrap(err, "could not create AEAD")
	}

	blob := make([]byte, 0, SaltLen+NonceLen+len(plaintext)+TagLen)
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = gcm.Seal(blob, nonce, plaintext, nil) // Appends ciphertext||tag.
	return blob, nil
}

// Decrypt splits blob into salt, nonce, ciphertext and tag, derives the key
// from password and the embedded salt, then verifies and decrypts. Returns
// ErrAuthFailure if blob is too short, the password is wrong, or the tag
// does not verify.
func Decrypt(password string, blob []byte) ([]byte, error) {
	if password == "" {
		return nil, errors.Wrap(ErrAuthFailure, "empty password rejected")
	}
	if len(blob) < MinBlobLen {
		return nil, errors.Wrapf(ErrAuthFailure, "blob length %d below minimum %d", len(blob), MinBlobLen)
	}

	salt := blob[:SaltLen]
	nonce := blob[SaltLen : SaltLen+NonceLen]
	ciphertext := blob[SaltLen+NonceLen:]

	gcm, err := newGCM(deriveKey(password, salt))
	if err != nil {
		return nil, errors.Wrap(err, "could not create AEAD")
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, errors.Wrap(ErrAuthFailure, err.Error())
	}
	return plaintext, nil
}

// newGCM constructs an AES-256-GCM AEAD from the given 32-byte key.
func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// AuthToken returns the first 4 bytes of SHA-256(secret), treating secret as
// UTF-8.
func AuthToken(secret string) []byte {
	sum := sha256.Sum256([]byte(secret))
	tok := make([]byte, TokenLen)
	copy(tok, sum[:TokenLen])
	return tok
}

// AuthVerify reports whether received, a 4-byte token read off the wire,
// matches AuthToken(expectedSecret), using a constant-time comparison.
func AuthVerify(received []byte, expectedSecret string) bool {
	want := AuthToken(expectedSecret)
	return len(received) == len(want) && subtle.ConstantTimeCompare(received, want) == 1
}
