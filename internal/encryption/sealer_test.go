package encryption

import (
	"bytes"
	"encoding/base64"
	"testing"
	"time"

	"github.com/libertyplace/rentapp/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSealer(t *testing.T) *Sealer {
	t.Helper()
	key, err := GenerateKey()
	require.NoError(t, err)
	s, err := NewSealer(key)
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	return s
}

func TestNewSealerRejectsBadKeys(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{"empty", ""},
		{"not base64", "%%%"},
		{"short", base64.StdEncoding.EncodeToString([]byte("short"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSealer(tt.key)
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrCodeConfigurationInvalid, apperrors.CodeOf(err))
		})
	}
}

func TestEncryptDecryptFile(t *testing.T) {
	s := newTestSealer(t)
	data := []byte("%PDF-1.4 pay stub")

	f, err := s.EncryptFile("paystub.pdf", "application/pdf", data)
	require.NoError(t, err)
	assert.Equal(t, "paystub.pdf", f.Filename)
	assert.Equal(t, int64(len(data)), f.OriginalSize)
	assert.Equal(t, "application/pdf", f.MimeType)
	assert.Equal(t, "2025-01-02T03:04:05Z", f.UploadDate)
	assert.NotContains(t, f.EncryptedData, base64.StdEncoding.EncodeToString(data))

	out, err := s.DecryptFile(f)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(data, out))
}

func TestSealUsesFreshNonce(t *testing.T) {
	s := newTestSealer(t)

	a, err := s.Seal([]byte("same"))
	require.NoError(t, err)
	b, err := s.Seal([]byte("same"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDecryptWithWrongKey(t *testing.T) {
	f, err := newTestSealer(t).EncryptFile("id.png", "image/png", []byte("png bytes"))
	require.NoError(t, err)

	_, err = newTestSealer(t).DecryptFile(f)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeDecryptionFailed, apperrors.CodeOf(err))
}

func TestDecryptTampered(t *testing.T) {
	s := newTestSealer(t)

	_, err := s.DecryptFile(&EncryptedFile{Filename: "x.pdf", EncryptedData: "not base64!"})
	assert.Error(t, err)

	_, err = s.DecryptFile(&EncryptedFile{Filename: "x.pdf", EncryptedData: base64.StdEncoding.EncodeToString([]byte("tiny"))})
	assert.ErrorContains(t, err, "ciphertext too short")
}
