package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/vz415/BridgeVentilator/internal/service"

	"github.com/gin-gonic/gin"
)

// Accepted time layouts for the from/to query parameters, tried in order.
var queryTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTimeBound parses a range bound. A date without a time component is
// anchored at midnight; when endOfDay is set it is pushed to the last
// instant of that day so "to=2026-08-01" covers the whole first of August.
func parseTimeBound(raw string, endOfDay bool) (time.Time, bool) {
	for _, layout := range queryTimeLayouts {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		t = t.UTC()
		if endOfDay && !strings.ContainsAny(raw, "T ") {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		return t, true
	}
	return time.Time{}, false
}

// @Summary      List audit events
// @Description  Filter events by date (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD'). A date-only 'to' is treated as end-of-day inclusive.
// @Tags         logs
// @Produce      json
// @Param        from  query   string  false  "Start of range (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD')"  example(2026-08-01)
// @Param        to    query   string  false  "End of range, same formats. Date-only means end of day."  example(2026-08-31)
// @Param        type  query   string  false  "Event type"  Enums(START,STOP,PARAM_CHANGE,CALIBRATION,OVERRIDE)
// @Success      200   {object}  map[string]interface{}  "count, events"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/logs [get]
// @Security     BearerAuth
func (h *Handler) getLogs(c *gin.Context) {
	var from, to time.Time

	if raw := c.Query("from"); raw != "" {
		var ok bool
		if from, ok = parseTimeBound(raw, false); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'from' time; use RFC3339 or YYYY-MM-DD"})
			return
		}
	}
	if raw := c.Query("to"); raw != "" {
		var ok bool
		if to, ok = parseTimeBound(raw, true); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'to' time; use RFC3339 or YYYY-MM-DD"})
			return
		}
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'from' must be <= 'to'"})
		return
	}

	filter := service.LogFilter{
		From: from,
		To:   to,
		Type: strings.ToUpper(strings.TrimSpace(c.Query("type"))),
	}
	events, err := h.services.EventLog.List(c.Request.Context(), filter)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("logs_list_failed", "err", err, "from", from, "to", to, "type", filter.Type)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": events,
	})
}
