package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/shelfwatch/models"
	"github.com/use-agent/shelfwatch/session"
)

// PostSessionLocation returns a handler for
// POST /api/v1/sessions/:id/location. The session (and its browser) is
// created on first use.
func PostSessionLocation(reg *session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.LocationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}

		s, err := reg.Acquire(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}

		label, err := s.SetLocation(c.Request.Context(), req.Location)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"location": label})
	}
}

// PostSessionSearch returns a handler for POST /api/v1/sessions/:id/search.
// Searching requires a location to have been set on the session first.
func PostSessionSearch(reg *session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SearchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}

		s, ok := reg.Lookup(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeSession,
					Message: "unknown session id",
				},
			})
			return
		}

		products, err := s.Search(c.Request.Context(), req.Query)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"query": req.Query, "products": products})
	}
}

// DeleteSession returns a handler for DELETE /api/v1/sessions/:id.
func DeleteSession(reg *session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		reg.Release(c.Param("id"))
		c.Status(http.StatusNoContent)
	}
}
