package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/shelfwatch/batch"
	"github.com/use-agent/shelfwatch/models"
)

// PostBatch returns a handler for POST /api/v1/batch. The batch runs
// synchronously on the request context; a client disconnect cancels the
// run after the in-flight cell completes.
func PostBatch(runner *batch.Runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.BatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		if req.Quantities == nil {
			req.Quantities = []string{}
		}

		result, err := runner.Run(c.Request.Context(), &req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// writeError maps typed scrape errors to HTTP status codes.
func writeError(c *gin.Context, err error) {
	var scrapeErr *models.ScrapeError
	if !errors.As(err, &scrapeErr) {
		scrapeErr = models.NewScrapeError(models.ErrCodeInternal, err.Error(), err)
	}

	status := http.StatusInternalServerError
	switch scrapeErr.Code {
	case models.ErrCodeInvalidInput:
		status = http.StatusBadRequest
	case models.ErrCodeSession:
		status = http.StatusNotFound
	case models.ErrCodeTimeout:
		status = http.StatusGatewayTimeout
	case models.ErrCodeLocation, models.ErrCodeNavigation:
		status = http.StatusBadGateway
	}

	c.JSON(status, models.ErrorResponse{Error: scrapeErr.ToDetail()})
}
