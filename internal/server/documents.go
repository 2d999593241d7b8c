package server

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/libertyplace/rentapp/internal/apperrors"
	"github.com/libertyplace/rentapp/internal/clients"
	"github.com/libertyplace/rentapp/internal/encryption"
	"github.com/libertyplace/rentapp/internal/models"
)

// handleComposePDF renders a posted bundle. ?format=datauri answers with
// JSON instead of the raw PDF.
func (s *Server) handleComposePDF(c *gin.Context) {
	var bundle models.Bundle
	if err := c.ShouldBindJSON(&bundle); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": err.Error()})
		return
	}
	if !s.validate(c, &bundle) {
		return
	}

	if c.Query("format") == "datauri" {
		uri, err := s.deps.Exporter.ComposeDataURI(&bundle)
		if err != nil {
			respondError(c, "Failed to generate PDF", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"pdf": uri})
		return
	}

	pdf, err := s.deps.Exporter.Compose(&bundle)
	if err != nil {
		respondError(c, "Failed to generate PDF", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="rental-application.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

type uploadFile struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Document string `json:"document"`
	// Data is base64, optionally as a data URI.
	Data string `json:"data"`
}

type uploadRequest struct {
	Files         []uploadFile `json:"files"`
	PersonType    string       `json:"personType"`
	ApplicationID string       `json:"applicationId"`
	ReferenceID   string       `json:"referenceId"`
}

type uploadedFile struct {
	FileName   string                 `json:"fileName"`
	Document   string                 `json:"document"`
	PersonType string                 `json:"personType"`
	MimeType   string                 `json:"mimeType"`
	Size       int64                  `json:"size"`
	UploadedAt string                 `json:"uploadedAt"`
	Webhook    clients.DeliveryResult `json:"webhook"`
}

type decodedFile struct {
	uploadFile
	content []byte
}

func decodeFileData(data string) ([]byte, error) {
	if i := strings.Index(data, ";base64,"); strings.HasPrefix(data, "data:") && i >= 0 {
		data = data[i+len(";base64,"):]
	}
	return base64.StdEncoding.DecodeString(strings.TrimSpace(data))
}

// handleUploadFiles checks and seals each uploaded document, attaches the
// sealed payload to the application when one is named, and forwards the
// files to the file webhook.
func (s *Server) handleUploadFiles(c *gin.Context) {
	if s.deps.Sealer == nil {
		respondUnavailable(c, "File encryption")
		return
	}

	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Files == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid files data"})
		return
	}
	if strings.TrimSpace(req.PersonType) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing person type"})
		return
	}

	files := make([]decodedFile, 0, len(req.Files))
	for _, f := range req.Files {
		content, err := decodeFileData(f.Data)
		if err != nil {
			respondError(c, "Invalid file data", apperrors.NewFileRejectedError("File "+f.Name+" is not valid base64."))
			return
		}
		if err := encryption.ValidateFile(f.Name, int64(len(content)), s.opts.MaxFileSizeMB); err != nil {
			respondError(c, "Invalid file", err)
			return
		}
		files = append(files, decodedFile{uploadFile: f, content: content})
	}

	ctx := c.Request.Context()
	payload := encryption.NewPayload(time.Now())
	out := make([]uploadedFile, len(files))
	for i, f := range files {
		sealed, err := s.deps.Sealer.EncryptFile(f.Name, f.Type, f.content)
		if err != nil {
			respondError(c, "Failed to encrypt files", err)
			return
		}
		payload.Add(documentKey(req.PersonType, f.Document), *sealed)
		out[i] = uploadedFile{
			FileName:   f.Name,
			Document:   f.Document,
			PersonType: req.PersonType,
			MimeType:   f.Type,
			Size:       sealed.OriginalSize,
			UploadedAt: sealed.UploadDate,
		}
	}

	if id, err := strconv.ParseInt(req.ApplicationID, 10, 64); err == nil && s.deps.Store != nil {
		raw, err := json.Marshal(payload)
		if err == nil {
			err = s.deps.Store.AttachEncryptedData(ctx, id, raw)
		}
		if err != nil {
			respondError(c, "Failed to store encrypted files", err)
			return
		}
	}

	referenceID := req.ReferenceID
	if referenceID == "" {
		referenceID = clients.NewReferenceID()
	}
	if s.deps.Webhook != nil {
		uploads := make([]clients.FileUpload, len(files))
		for i, f := range files {
			uploads[i] = clients.NewFileUpload(referenceID, req.ApplicationID, req.PersonType, f.Document, f.Name, f.content)
		}
		for i, res := range s.deps.Webhook.SendFiles(ctx, uploads) {
			out[i].Webhook = res
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"referenceId": referenceID,
		"files":       out,
		"encryption":  encryption.Summarize(payload),
		"message":     "Files uploaded successfully for " + req.PersonType,
	})
}

func documentKey(personType, document string) string {
	if document == "" {
		return personType
	}
	return personType + "_" + document
}
