package credentials

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"io"

	"github.com/cockroachdb/errors"
	"golang.org/x/crypto/hkdf"
)

// Sealer encrypts user key values at rest.
type Sealer interface {
	Seal(userID string, plaintext []byte) (string, error)
	Open(userID string, sealed string) ([]byte, error)
}

const hkdfInfo = "keybroker-user-keys"

type aesSealer struct {
	masterKey []byte
}

// NewSealer returns AES-GCM Sealer with per-user keys derived with HKDF
// from hex encoded 32 bytes master key.
func NewSealer(masterKeyHex string) (Sealer, error) {
	if masterKeyHex == "" {
		return nil, errors.New("master key is required")
	}
	masterKey, err := hex.DecodeString(masterKeyHex)
	if err != nil {
		return nil, errors.Wrap(err, "invalid master key format")
	}
	if len(masterKey) != 32 {
		return nil, errors.Errorf("master key must be 32 bytes, got %d", len(masterKey))
	}
	return &aesSealer{masterKey: masterKey}, nil
}

func (s *aesSealer) gcm(userID string) (cipher.AEAD, error) {
	if userID == "" {
		return nil, errors.New("user ID is required")
	}
	r := hkdf.New(sha256.New, s.masterKey, []byte(userID), []byte(hkdfInfo))
	key := make([]byte, 32)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, errors.Wrap(err, "failed to derive user key")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return cipher.NewGCM(block)
}

func (s *aesSealer) Seal(userID string, plaintext []byte) (string, error) {
	aead, err := s.gcm(userID)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err = rand.Read(nonce); err != nil {
		return "", errors.Wrap(err, "failed to generate nonce")
	}
	sealed := aead.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (s *aesSealer) Open(userID string, sealed string) ([]byte, error) {
	aead, err := s.gcm(userID)
	if err != nil {
		return nil, err
	}
	data, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return nil, errors.Wrap(err, "invalid sealed value")
	}
	ns := aead.NonceSize()
	if len(data) < ns {
		return nil, errors.New("sealed value too short")
	}
	plain, err := aead.Open(nil, data[:ns], data[ns:], nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decrypt")
	}
	return plain, nil
}
