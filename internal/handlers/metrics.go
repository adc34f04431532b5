package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	errFromInvalid = "invalid 'from' time; use RFC3339 or YYYY-MM-DD"
	errToInvalid   = "invalid 'to' time; use RFC3339 or YYYY-MM-DD"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

// isDateOnly reports whether the query string represents a date without time component.
func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

// @Summary      Live energy metrics
// @Description  Queries the plug for fresh energy data. A plug without an energy sensor answers with has_energy_monitoring=false and zeroed energy fields.
// @Tags         metrics
// @Produce      json
// @Param        id   path      string  true  "Device ID"
// @Success      200  {object}  models.DeviceStatus
// @Failure      404  {object}  map[string]string
// @Failure      503  {object}  map[string]interface{}  "error, offline"
// @Router       /api/v1/devices/{id}/metrics [get]
// @Security     BearerAuth
func (h *Handler) deviceMetrics(c *gin.Context) {
	st, err := h.services.Metrics.Current(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondServiceError(c, err, "device_metrics_failed")
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Telemetry history
// @Description  Stored samples filtered by date (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD'). A date-only 'to' is treated as end-of-day inclusive.
// @Tags         metrics
// @Produce      json
// @Param        id    path   string  true   "Device ID"
// @Param        from  query  string  false  "Start of range"  example(2025-08-01)
// @Param        to    query  string  false  "End of range"    example(2025-08-31)
// @Success      200   {object}  map[string]interface{}  "count, readings"
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/devices/{id}/history [get]
// @Security     BearerAuth
func (h *Handler) deviceHistory(c *gin.Context) {
	var (
		from time.Time
		to   time.Time
		err  error
	)
	if qs := c.Query("from"); qs != "" {
		from, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errFromInvalid})
			return
		}
	}
	if qs := c.Query("to"); qs != "" {
		to, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errToInvalid})
			return
		}
		// If the user didn't include a time component, treat "to" as the end of that day.
		if isDateOnly(qs) {
			to = to.Add(24*time.Hour - time.Nanosecond).UTC()
		}
	}

	readings, err := h.services.Metrics.History(c.Request.Context(), c.Param("id"), from, to)
	if err != nil {
		h.respondServiceError(c, err, "device_history_failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(readings), "readings": readings})
}

func parseQueryTime(s string) (time.Time, error) {
	// Try multiple accepted formats, normalizing to UTC.
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf(
		"invalid time format %q, expected one of: "+
			"RFC3339 (e.g. 2025-08-27T15:04:05Z), "+
			"'YYYY-MM-DD HH:MM:SS', "+
			"'YYYY-MM-DD'",
		s,
	)
}
