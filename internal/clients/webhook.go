package clients

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/libertyplace/rentapp/internal"
	"github.com/libertyplace/rentapp/internal/apperrors"
	"github.com/libertyplace/rentapp/internal/metrics"
	"golang.org/x/sync/errgroup"
	"resty.dev/v3"
)

const (
	SubmissionTypeForm = "form_data"
	SubmissionTypePDF  = "pdf_generation"

	defaultApplicationID = "unknown"
	defaultPDFName       = "rental-application.pdf"
)

type WebhookOptions struct {
	FileURL       string
	FormURL       string
	MaxConcurrent int
}

// DeliveryResult reports one webhook post. Failures never surface as Go
// errors; callers inspect Success.
type DeliveryResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type FileUpload struct {
	ReferenceID   string `json:"reference_id"`
	FileName      string `json:"file_name"`
	SectionName   string `json:"section_name"`
	DocumentName  string `json:"document_name"`
	FileBase64    string `json:"file_base64"`
	ApplicationID string `json:"application_id"`
}

type UploadedFileMeta struct {
	FileName   string `json:"file_name"`
	FileSize   int64  `json:"file_size"`
	MimeType   string `json:"mime_type"`
	UploadDate string `json:"upload_date"`
}

type FormSubmission struct {
	ReferenceID    string                        `json:"reference_id"`
	ApplicationID  string                        `json:"application_id"`
	FormData       any                           `json:"form_data"`
	UploadedFiles  map[string][]UploadedFileMeta `json:"uploaded_files"`
	SubmissionType string                        `json:"submission_type"`
}

type PDFSubmission struct {
	ReferenceID    string `json:"reference_id"`
	ApplicationID  string `json:"application_id"`
	FileName       string `json:"file_name"`
	FileBase64     string `json:"file_base64"`
	SubmissionType string `json:"submission_type"`
}

// NewReferenceID returns an id correlating all posts of one submission.
func NewReferenceID() string {
	return uuid.New().String()
}

// NewFileUpload builds a file payload from raw bytes.
func NewFileUpload(referenceID, applicationID, section, document, fileName string, data []byte) FileUpload {
	return FileUpload{
		ReferenceID:   referenceID,
		FileName:      fileName,
		SectionName:   section,
		DocumentName:  document,
		FileBase64:    base64.StdEncoding.EncodeToString(data),
		ApplicationID: applicationID,
	}
}

type WebhookClient struct {
	http *resty.Client
	opts WebhookOptions
	log  *internal.Logger
}

func NewWebhookClient(http *resty.Client, opts WebhookOptions, log *internal.Logger) *WebhookClient {
	if opts.MaxConcurrent < 1 {
		opts.MaxConcurrent = 1
	}
	return &WebhookClient{http: http, opts: opts, log: internal.OrDefault(log)}
}

func (w *WebhookClient) SendFile(ctx context.Context, f FileUpload) DeliveryResult {
	if strings.TrimSpace(f.ApplicationID) == "" {
		f.ApplicationID = defaultApplicationID
	}
	w.log.Info("Sending file %s to webhook for section %s (document: %s)", f.FileName, f.SectionName, f.DocumentName)
	return w.post(ctx, "file", w.opts.FileURL, f)
}

func (w *WebhookClient) SendFormData(ctx context.Context, referenceID, applicationID string, formData any, uploaded map[string][]UploadedFileMeta) DeliveryResult {
	if uploaded == nil {
		uploaded = map[string][]UploadedFileMeta{}
	}
	return w.post(ctx, "form", w.opts.FormURL, FormSubmission{
		ReferenceID:    referenceID,
		ApplicationID:  applicationID,
		FormData:       formData,
		UploadedFiles:  uploaded,
		SubmissionType: SubmissionTypeForm,
	})
}

// SendPDF posts a composed application to the file webhook.
func (w *WebhookClient) SendPDF(ctx context.Context, referenceID, applicationID, fileName string, pdf []byte) DeliveryResult {
	if strings.TrimSpace(fileName) == "" {
		fileName = defaultPDFName
	}
	return w.post(ctx, "pdf", w.opts.FileURL, PDFSubmission{
		ReferenceID:    referenceID,
		ApplicationID:  applicationID,
		FileName:       fileName,
		FileBase64:     base64.StdEncoding.EncodeToString(pdf),
		SubmissionType: SubmissionTypePDF,
	})
}

// SendFiles posts uploads concurrently, at most MaxConcurrent at a time.
// Results are returned in input order and one failure does not cancel the
// others.
func (w *WebhookClient) SendFiles(ctx context.Context, uploads []FileUpload) []DeliveryResult {
	results := make([]DeliveryResult, len(uploads))

	var g errgroup.Group
	g.SetLimit(w.opts.MaxConcurrent)
	for i, u := range uploads {
		g.Go(func() error {
			results[i] = w.SendFile(ctx, u)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (w *WebhookClient) post(ctx context.Context, kind, url string, payload any) DeliveryResult {
	start := time.Now()
	res := w.deliver(ctx, url, payload)
	metrics.WebhookDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())

	outcome := metrics.OutcomeSuccess
	if !res.Success {
		outcome = metrics.OutcomeFailure
		w.log.Error("Webhook %s delivery failed: %s", kind, res.Error)
	}
	metrics.WebhookDeliveries.WithLabelValues(kind, outcome).Inc()
	return res
}

func (w *WebhookClient) deliver(ctx context.Context, url string, payload any) DeliveryResult {
	if strings.TrimSpace(url) == "" {
		return DeliveryResult{Error: "webhook URL is not configured"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return DeliveryResult{Error: err.Error()}
	}

	resp, err := postJSON(ctx, w.http, url, body, nil)
	if err != nil {
		return DeliveryResult{Error: err.Error()}
	}
	if !resp.ok() {
		return DeliveryResult{Error: apperrors.NewWebhookError(resp.status, string(resp.body)).Message}
	}
	return DeliveryResult{Success: true}
}
