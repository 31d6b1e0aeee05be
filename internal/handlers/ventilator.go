package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/vz415/BridgeVentilator/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK         = "ok"
	statusStarted    = "started"
	statusStopped    = "stopped"
	statusParamsSet  = "parameters_set"
	statusCalibrated = "calibrated"
	statusPulseSet   = "pulse_set"

	errStartVentilation = "failed to start ventilation"
	errStopVentilation  = "failed to stop ventilation"
	errGetState         = "failed to load state"
	errSetParameters    = "failed to apply parameters"
	errSetPulse         = "failed to set pulse width"
	errGetTelemetry     = "failed to load telemetry"
	errEmptyParams      = "no parameters in body"
	errInvalidBodyPref  = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// Respond with a status and include current state if available (best-effort).
func (h *Handler) respondWithStatusAndState(c *gin.Context, status string, extra gin.H) {
	ctx := c.Request.Context()
	resp := gin.H{"status": status}
	for k, v := range extra {
		resp[k] = v
	}
	st, err := h.services.Monitoring.State(ctx)
	if err == nil {
		resp["state"] = st
	}
	c.JSON(http.StatusOK, resp)
}

// Request DTO for parameter updates. Pointer fields distinguish "absent"
// from a literal zero, so a partial update touches only what was sent.
type parametersRequest struct {
	Rate          *float64 `json:"rate,omitempty"`
	InspiratoryS  *float64 `json:"inspiratory_s,omitempty"`
	ExpiratoryS   *float64 `json:"expiratory_s,omitempty"`
	TidalVolumeCC *float64 `json:"tidal_volume_cc,omitempty"`
}

// UpdateParametersRequest is an exported model for Swagger docs of the
// parameter payload.
type UpdateParametersRequest struct {
	// Breath rate in breaths per minute, clamped to [2,40]
	Rate float64 `json:"rate,omitempty" example:"18"`
	// Inspiratory period in seconds, clamped to [0.5,5]
	InspiratoryS float64 `json:"inspiratory_s,omitempty" example:"1.2"`
	// Expiratory period in seconds, clamped to [0.5,5]
	ExpiratoryS float64 `json:"expiratory_s,omitempty" example:"1.8"`
	// Tidal volume in cc, clamped to [200,800]
	TidalVolumeCC float64 `json:"tidal_volume_cc,omitempty" example:"550"`
}

// Request DTO for teaching one calibration endpoint.
type calibrateRequest struct {
	Point   string `json:"point" binding:"required"` // home | inhale_end | exhale_end
	PulseUS *int   `json:"pulse_us" binding:"required"`
}

// CalibrateRequest is an exported model for Swagger docs of the calibration
// payload.
type CalibrateRequest struct {
	// Endpoint to teach. Allowed: home, inhale_end, exhale_end
	Point string `json:"point" example:"inhale_end"`
	// Raw servo pulse width in microseconds, clamped to the drive range
	PulseUS int `json:"pulse_us" example:"1150"`
}

// Request DTO for the manual pulse override. A pointer keeps an explicit
// zero (release) distinguishable from a missing field.
type pulseRequest struct {
	PulseUS *int `json:"pulse_us" binding:"required"`
}

// PulseWidthRequest is an exported model for Swagger docs of the override
// payload.
type PulseWidthRequest struct {
	// Pulse width in microseconds; zero or below releases the override
	PulseUS int `json:"pulse_us" example:"1200"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Start ventilation
// @Description  Begins the breath cycle at the top of an inhale. Releases any manual pulse override.
// @Tags         ventilator
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, state"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/ventilator/start [post]
// @Security     BearerAuth
func (h *Handler) startVentilation(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.services.Ventilator.SetRunning(ctx, true); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errStartVentilation, "ventilation_start_failed", err)
		return
	}
	h.respondWithStatusAndState(c, statusStarted, gin.H{})
}

// @Summary      Stop ventilation
// @Description  Halts the breath cycle and ramps the actuator back to the home position.
// @Tags         ventilator
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/ventilator/stop [post]
// @Security     BearerAuth
func (h *Handler) stopVentilation(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.services.Ventilator.SetRunning(ctx, false); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errStopVentilation, "ventilation_stop_failed", err)
		return
	}
	h.respondWithStatusAndState(c, statusStopped, gin.H{})
}

// @Summary      Update breath parameters
// @Description  Partial update; omitted fields stay as they are. Values are clamped, never rejected, and timing edits are rebalanced so Ti+Te fits the breath period. The response reports what actually took effect.
// @Tags         ventilator
// @Accept       json
// @Produce      json
// @Param        body  body   UpdateParametersRequest  true  "Parameter payload"
// @Success      200   {object}  map[string]interface{}  "status, effective, state"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/ventilator/parameters [put]
// @Security     BearerAuth
func (h *Handler) updateParameters(c *gin.Context) {
	var req parametersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if req.Rate == nil && req.InspiratoryS == nil && req.ExpiratoryS == nil && req.TidalVolumeCC == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errEmptyParams})
		return
	}

	ctx := c.Request.Context()
	effective := gin.H{}

	// Rate lands first so phase edits in the same request resolve against
	// the new schedule.
	if req.Rate != nil {
		v, err := h.services.Ventilator.SetBreathRate(ctx, *req.Rate)
		if err != nil {
			h.logAndJSONError(c, http.StatusInternalServerError, errSetParameters, "set_rate_failed", err)
			return
		}
		effective["rate"] = v
	}
	if req.InspiratoryS != nil {
		v, err := h.services.Ventilator.SetInspiratoryPeriod(ctx, *req.InspiratoryS)
		if err != nil {
			h.logAndJSONError(c, http.StatusInternalServerError, errSetParameters, "set_inspiratory_failed", err)
			return
		}
		effective["inspiratory_s"] = v
	}
	if req.ExpiratoryS != nil {
		v, err := h.services.Ventilator.SetExpiratoryPeriod(ctx, *req.ExpiratoryS)
		if err != nil {
			h.logAndJSONError(c, http.StatusInternalServerError, errSetParameters, "set_expiratory_failed", err)
			return
		}
		effective["expiratory_s"] = v
	}
	if req.TidalVolumeCC != nil {
		v, err := h.services.Ventilator.SetVolume(ctx, *req.TidalVolumeCC)
		if err != nil {
			h.logAndJSONError(c, http.StatusInternalServerError, errSetParameters, "set_volume_failed", err)
			return
		}
		effective["tidal_volume_cc"] = v
	}

	h.respondWithStatusAndState(c, statusParamsSet, gin.H{"effective": effective})
}

// @Summary      Get ventilator state
// @Tags         ventilator
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/ventilator/state [get]
// @Security     BearerAuth
func (h *Handler) getState(c *gin.Context) {
	ctx := c.Request.Context()
	st, err := h.services.Monitoring.State(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetState, "get_state_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Calibrate an endpoint
// @Description  Teaches one mechanism endpoint (home, inhale_end, exhale_end) with a raw pulse width. Values are clamped to the drive range and take effect on the next tick. Calibration lives for the session only.
// @Tags         calibration
// @Accept       json
// @Produce      json
// @Param        body  body   CalibrateRequest  true  "Calibration payload"
// @Success      200   {object}  map[string]interface{}  "status, point, pulse_us"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/calibration [post]
// @Security     BearerAuth
func (h *Handler) calibrate(c *gin.Context) {
	var req calibrateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}

	ctx := c.Request.Context()
	point := service.CalibrationPoint(strings.ToLower(strings.TrimSpace(req.Point)))
	effective, err := h.services.Ventilator.Calibrate(ctx, point, *req.PulseUS)
	if err != nil {
		if errors.Is(err, service.ErrUnknownCalibrationPoint) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "calibration failed", "calibrate_failed", err, "point", req.Point)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   statusCalibrated,
		"point":    string(point),
		"pulse_us": effective,
	})
}

// @Summary      Manual pulse override
// @Description  Pins the drive output to a raw pulse width for bench testing, bypassing the breath cycle. Zero or below releases the override.
// @Tags         actuator
// @Accept       json
// @Produce      json
// @Param        body  body   PulseWidthRequest  true  "Pulse payload"
// @Success      200   {object}  map[string]interface{}  "status, pulse_us, released"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/actuator/pulse [post]
// @Security     BearerAuth
func (h *Handler) setPulse(c *gin.Context) {
	var req pulseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}

	ctx := c.Request.Context()
	if err := h.services.Ventilator.SetPulseWidth(ctx, *req.PulseUS); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errSetPulse, "set_pulse_failed", err, "pulse_us", *req.PulseUS)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   statusPulseSet,
		"pulse_us": *req.PulseUS,
		"released": *req.PulseUS <= 0,
	})
}

// @Summary      Last recorded telemetry
// @Description  Returns the most recent snapshot the background recorder persisted. 404 until the first snapshot lands.
// @Tags         telemetry
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/telemetry/last [get]
// @Security     BearerAuth
func (h *Handler) getLastTelemetry(c *gin.Context) {
	ctx := c.Request.Context()
	st, err := h.services.Recorder.Last(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetTelemetry, "get_telemetry_failed", err)
		return
	}
	if st.UpdatedAt.IsZero() {
		c.JSON(http.StatusNotFound, gin.H{"error": "no telemetry recorded yet"})
		return
	}
	c.JSON(http.StatusOK, st)
}
