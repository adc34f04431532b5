package handlers

import (
	"errors"
	"net/http"

	"github.com/Scharxi/tasmo-admin-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

// respondServiceError maps typed service errors to the response contract:
// 400 validation, 404 not-found, 409 conflict, 503 device-unreachable with
// an offline marker, 500 otherwise. Unexpected errors are logged; expected
// ones surface their message directly.
func (h *Handler) respondServiceError(c *gin.Context, err error, logKey string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrWorkflowDisabled):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrDeviceUnreachable):
		// offline:true lets the UI distinguish "plug is off the network"
		// from a generic server fault.
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "offline": true})
	default:
		if h.log != nil {
			h.log.Errorw(logKey, "err", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// bindJSONOrBadRequest tries to bind the request body into dst and writes a 400 JSON on failure.
// Returns false if the request was already handled, true otherwise.
func (h *Handler) bindJSONOrBadRequest(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if h.log != nil {
			h.log.Infow("bad_request_body", "path", c.FullPath(), "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}
