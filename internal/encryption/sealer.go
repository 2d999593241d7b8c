package encryption

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/libertyplace/rentapp/internal/apperrors"
	"github.com/libertyplace/rentapp/internal/metrics"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	KeySize   = 32
	nonceSize = 24
	Version   = "secretbox-v1"
)

// EncryptedFile is an uploaded document sealed for storage. EncryptedData
// is base64 of nonce||ciphertext.
type EncryptedFile struct {
	EncryptedData string `json:"encryptedData"`
	Filename      string `json:"filename"`
	OriginalSize  int64  `json:"originalSize"`
	MimeType      string `json:"mimeType"`
	UploadDate    string `json:"uploadDate"`
}

// Sealer encrypts and decrypts files with one symmetric key.
type Sealer struct {
	key [KeySize]byte
	now func() time.Time
}

// NewSealer takes the key as base64, the form it is kept in configuration.
func NewSealer(encodedKey string) (*Sealer, error) {
	if encodedKey == "" {
		return nil, apperrors.NewConfigError("encryption key is not configured")
	}
	raw, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil {
		return nil, apperrors.NewConfigError(fmt.Sprintf("encryption key is not valid base64: %v", err))
	}
	if len(raw) != KeySize {
		return nil, apperrors.NewConfigError(fmt.Sprintf("invalid symmetric key length: expected %d bytes, got %d bytes", KeySize, len(raw)))
	}

	s := &Sealer{now: time.Now}
	copy(s.key[:], raw)
	return s, nil
}

// GenerateKey returns a fresh random key encoded for configuration.
func GenerateKey() (string, error) {
	var key [KeySize]byte
	if _, err := io.ReadFull(rand.Reader, key[:]); err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(key[:]), nil
}

func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("failed on ReadFull method: %w", err)
	}
	return secretbox.Seal(nonce[:], plaintext, &nonce, &s.key), nil
}

func (s *Sealer) Open(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < nonceSize+secretbox.Overhead {
		return nil, errors.New("ciphertext too short")
	}
	var nonce [nonceSize]byte
	copy(nonce[:], ciphertext[:nonceSize])

	plaintext, ok := secretbox.Open(nil, ciphertext[nonceSize:], &nonce, &s.key)
	if !ok {
		return nil, errors.New("failed to decrypt ciphertext with secretbox")
	}
	return plaintext, nil
}

// EncryptFile seals data and records the metadata needed to restore it.
func (s *Sealer) EncryptFile(filename, mimeType string, data []byte) (*EncryptedFile, error) {
	sealed, err := s.Seal(data)
	if err != nil {
		metrics.FilesEncrypted.WithLabelValues(metrics.OutcomeFailure).Inc()
		return nil, apperrors.NewEncryptionError(err)
	}
	metrics.FilesEncrypted.WithLabelValues(metrics.OutcomeSuccess).Inc()

	return &EncryptedFile{
		EncryptedData: base64.StdEncoding.EncodeToString(sealed),
		Filename:      filename,
		OriginalSize:  int64(len(data)),
		MimeType:      mimeType,
		UploadDate:    s.now().UTC().Format(time.RFC3339),
	}, nil
}

func (s *Sealer) DecryptFile(f *EncryptedFile) ([]byte, error) {
	sealed, err := base64.StdEncoding.DecodeString(f.EncryptedData)
	if err != nil {
		return nil, apperrors.NewDecryptionError(fmt.Errorf("file %s: %w", f.Filename, err))
	}
	plaintext, err := s.Open(sealed)
	if err != nil {
		return nil, apperrors.NewDecryptionError(fmt.Errorf("file %s: %w", f.Filename, err))
	}
	return plaintext, nil
}
