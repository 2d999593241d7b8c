package encryption

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/libertyplace/rentapp/internal/apperrors"
)

const DefaultMaxSizeMB = 10

var acceptedExtensions = []string{".jpg", ".jpeg", ".png", ".pdf"}

// ValidateFile checks an upload against the size limit and accepted
// extensions before it is sealed.
func ValidateFile(filename string, size int64, maxSizeMB int) error {
	if maxSizeMB <= 0 {
		maxSizeMB = DefaultMaxSizeMB
	}
	if size > int64(maxSizeMB)*1024*1024 {
		return apperrors.NewFileRejectedError(fmt.Sprintf("File %s is too large. Maximum size is %dMB.", filename, maxSizeMB))
	}

	ext := strings.ToLower(filepath.Ext(filename))
	for _, accepted := range acceptedExtensions {
		if ext == accepted {
			return nil
		}
	}
	return apperrors.NewFileRejectedError(fmt.Sprintf("File %s has an unsupported format. Accepted: %s", filename, strings.Join(acceptedExtensions, ", ")))
}

// Payload groups sealed files by the document slot they were uploaded to.
type Payload struct {
	Documents           map[string][]EncryptedFile `json:"documents"`
	AllEncryptedFiles   []EncryptedFile            `json:"allEncryptedFiles"`
	EncryptionTimestamp string                     `json:"encryptionTimestamp"`
	EncryptionVersion   string                     `json:"encryptionVersion"`
}

func NewPayload(now time.Time) *Payload {
	return &Payload{
		Documents:           make(map[string][]EncryptedFile),
		AllEncryptedFiles:   []EncryptedFile{},
		EncryptionTimestamp: now.UTC().Format(time.RFC3339),
		EncryptionVersion:   Version,
	}
}

func (p *Payload) Add(document string, f EncryptedFile) {
	p.Documents[document] = append(p.Documents[document], f)
	p.AllEncryptedFiles = append(p.AllEncryptedFiles, f)
}

// Valid reports whether the payload has the expected shape and every file
// carries its metadata.
func (p *Payload) Valid() bool {
	if p == nil || p.Documents == nil || p.AllEncryptedFiles == nil {
		return false
	}
	for _, f := range p.AllEncryptedFiles {
		if f.EncryptedData == "" || f.Filename == "" || f.OriginalSize <= 0 || f.MimeType == "" {
			return false
		}
	}
	return true
}

type Summary struct {
	Valid               bool           `json:"valid"`
	Error               string         `json:"error,omitempty"`
	TotalFiles          int            `json:"totalFiles"`
	DocumentTypes       []string       `json:"documentTypes"`
	FileTypes           map[string]int `json:"fileTypes"`
	TotalSize           int64          `json:"totalSize"`
	EncryptionTimestamp string         `json:"encryptionTimestamp,omitempty"`
	EncryptionVersion   string         `json:"encryptionVersion,omitempty"`
}

// Summarize counts files per MIME type and totals their original sizes.
func Summarize(p *Payload) Summary {
	if !p.Valid() {
		return Summary{Valid: false, Error: "Invalid encrypted data structure"}
	}

	s := Summary{
		Valid:               true,
		TotalFiles:          len(p.AllEncryptedFiles),
		FileTypes:           make(map[string]int),
		EncryptionTimestamp: p.EncryptionTimestamp,
		EncryptionVersion:   p.EncryptionVersion,
	}
	for doc := range p.Documents {
		s.DocumentTypes = append(s.DocumentTypes, doc)
	}
	sort.Strings(s.DocumentTypes)

	for _, f := range p.AllEncryptedFiles {
		s.FileTypes[f.MimeType]++
		s.TotalSize += f.OriginalSize
	}
	return s
}
