package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/libertyplace/rentapp/internal/clients"
)

func (s *Server) handleUnits(c *gin.Context) {
	if s.deps.Board == nil {
		respondUnavailable(c, "Board client")
		return
	}
	units, err := s.deps.Board.FetchVacantUnits(c.Request.Context())
	if err != nil {
		s.log.Error("Fetching vacant units failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch units from Monday.com", "details": err.Error()})
		return
	}
	if building := c.Query("building"); building != "" {
		units = clients.UnitsByBuilding(units, building)
	}
	c.JSON(http.StatusOK, gin.H{"units": units, "buildings": clients.UniqueBuildings(units)})
}

func (s *Server) handleMissingSubitems(c *gin.Context) {
	if s.deps.Board == nil {
		respondUnavailable(c, "Board client")
		return
	}
	applicantID := strings.TrimSpace(c.Param("applicantId"))
	if applicantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Applicant ID is required"})
		return
	}
	items, err := s.deps.Board.FetchMissingSubitems(c.Request.Context(), applicantID)
	if err != nil {
		s.log.Error("Fetching missing subitems for %s failed: %v", applicantID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch missing subitems", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, items)
}
