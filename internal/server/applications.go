package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/libertyplace/rentapp/internal/clients"
	"github.com/libertyplace/rentapp/internal/models"
	"github.com/libertyplace/rentapp/internal/storage"
	"github.com/libertyplace/rentapp/internal/validation"
)

func applicationID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application ID"})
		return 0, false
	}
	return id, true
}

// decodeBundle reads the request body as a bundle and keeps the raw bytes
// for storage.
func decodeBundle(c *gin.Context) (json.RawMessage, *models.Bundle, bool) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return nil, nil, false
	}
	var b models.Bundle
	if err := json.Unmarshal(raw, &b); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": err.Error()})
		return nil, nil, false
	}
	return raw, &b, true
}

// validate answers 400 and returns false when b is incomplete.
func (s *Server) validate(c *gin.Context, b *models.Bundle) bool {
	res, err := validation.ValidateBundle(b)
	if err != nil {
		s.log.Error("Bundle validation could not run: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate application"})
		return false
	}
	if !res.Valid {
		respondInvalid(c, res)
		return false
	}
	return true
}

func (s *Server) handleListApplications(c *gin.Context) {
	if s.deps.Store == nil {
		respondUnavailable(c, "Application storage")
		return
	}
	apps, err := s.deps.Store.List(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to fetch applications", err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

func (s *Server) handleGetApplication(c *gin.Context) {
	if s.deps.Store == nil {
		respondUnavailable(c, "Application storage")
		return
	}
	id, ok := applicationID(c)
	if !ok {
		return
	}
	app, err := s.deps.Store.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, "Failed to fetch application", err)
		return
	}
	c.JSON(http.StatusOK, app)
}

func (s *Server) handleCreateApplication(c *gin.Context) {
	if s.deps.Store == nil {
		respondUnavailable(c, "Application storage")
		return
	}
	raw, bundle, ok := decodeBundle(c)
	if !ok || !s.validate(c, bundle) {
		return
	}
	app, err := s.deps.Store.Create(c.Request.Context(), raw)
	if err != nil {
		respondError(c, "Failed to create application", err)
		return
	}
	c.JSON(http.StatusCreated, app)
}

func (s *Server) handleUpdateApplication(c *gin.Context) {
	if s.deps.Store == nil {
		respondUnavailable(c, "Application storage")
		return
	}
	id, ok := applicationID(c)
	if !ok {
		return
	}
	raw, _, ok := decodeBundle(c)
	if !ok {
		return
	}
	app, err := s.deps.Store.Update(c.Request.Context(), id, raw)
	if err != nil {
		respondError(c, "Failed to update application", err)
		return
	}
	c.JSON(http.StatusOK, app)
}

type submitResponse struct {
	Message     string                            `json:"message"`
	Application *storage.Application              `json:"application"`
	ReferenceID string                            `json:"referenceId,omitempty"`
	Webhooks    map[string]clients.DeliveryResult `json:"webhooks,omitempty"`
}

// handleSubmitApplication checks the stored bundle is complete, marks the
// application submitted, then composes the PDF and forwards the form data
// and the PDF to the intake webhooks. Delivery failures are reported in the
// response, not as an HTTP error.
func (s *Server) handleSubmitApplication(c *gin.Context) {
	if s.deps.Store == nil {
		respondUnavailable(c, "Application storage")
		return
	}
	id, ok := applicationID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	// PATCH only merges, so the stored document may no longer be complete.
	current, err := s.deps.Store.Get(ctx, id)
	if err != nil {
		respondError(c, "Failed to submit application", err)
		return
	}
	bundle, err := current.Bundle()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": err.Error()})
		return
	}
	if !s.validate(c, &bundle) {
		return
	}

	app, err := s.deps.Store.Submit(ctx, id)
	if err != nil {
		respondError(c, "Failed to submit application", err)
		return
	}

	resp := submitResponse{Message: "Application submitted successfully", Application: app}
	if s.deps.Webhook == nil {
		c.JSON(http.StatusOK, resp)
		return
	}

	appID := strconv.FormatInt(id, 10)
	resp.ReferenceID = clients.NewReferenceID()
	resp.Webhooks = map[string]clients.DeliveryResult{
		"form": s.deps.Webhook.SendFormData(ctx, resp.ReferenceID, appID, app.Data, nil),
	}

	pdf, err := s.deps.Exporter.Compose(&bundle)
	if err != nil {
		s.log.Error("Could not compose application %d: %v", id, err)
		resp.Webhooks["pdf"] = clients.DeliveryResult{Error: err.Error()}
	} else {
		resp.Webhooks["pdf"] = s.deps.Webhook.SendPDF(ctx, resp.ReferenceID, appID, "rental-application-"+appID+".pdf", pdf)
	}
	c.JSON(http.StatusOK, resp)
}
