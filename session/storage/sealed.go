package storage

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"

	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20poly1305"
)

// SealedStorage wraps another Storage and encrypts values at rest with
// ChaCha20-Poly1305. Keys stay in the clear; only values are sealed.
// The passphrase is stretched to a cipher key with SHA-256.
type SealedStorage struct {
	inner Storage
	key   [32]byte
}

var _ Storage = (*SealedStorage)(nil)

// NewSealedStorage wraps inner so every value is encrypted before it
// reaches the underlying storage.
func NewSealedStorage(inner Storage, passphrase string) (*SealedStorage, error) {
	if passphrase == "" {
		return nil, errors.New("[NewSealedStorage] passphrase is required")
	}
	s := &SealedStorage{
		inner: inner,
		key:   sha256.Sum256([]byte(passphrase)),
	}
	return s, nil
}

func (s *SealedStorage) seal(plaintext string) (string, error) {
	aead, err := chacha20poly1305.NewX(s.key[:])
	if err != nil {
		return "", errors.Wrap(err, "cipher")
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", errors.Wrap(err, "nonce")
	}
	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (s *SealedStorage) open(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", errors.Wrap(err, "decode")
	}
	aead, err := chacha20poly1305.NewX(s.key[:])
	if err != nil {
		return "", errors.Wrap(err, "cipher")
	}
	if len(raw) < aead.NonceSize() {
		return "", errors.New("ciphertext too short")
	}
	nonce, sealed := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", errors.Wrap(err, "open")
	}
	return string(plaintext), nil
}

func (s *SealedStorage) Get(key string) (string, error) {
	sealed, err := s.inner.Get(key)
	if err != nil {
		return "", err
	}
	plaintext, err := s.open(sealed)
	if err != nil {
		return "", errors.Wrapf(err, "[SealedStorage.Get] %q", key)
	}
	return plaintext, nil
}

func (s *SealedStorage) Set(key, value string) error {
	sealed, err := s.seal(value)
	if err != nil {
		return errors.Wrapf(err, "[SealedStorage.Set] %q", key)
	}
	return s.inner.Set(key, sealed)
}

func (s *SealedStorage) Delete(key string) error {
	return s.inner.Delete(key)
}

func (s *SealedStorage) Close() error {
	return s.inner.Close()
}
