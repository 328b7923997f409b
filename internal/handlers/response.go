package handlers

import (
	"errors"
	"net/http"

	"hotel_ops/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	statusOK = "ok"

	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// statusFor maps service sentinel errors to HTTP codes. Zero means the
// error is not a known client-side condition.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrEmployeeRequired),
		errors.Is(err, service.ErrInvalidRoomState),
		errors.Is(err, service.ErrMessageRequired),
		errors.Is(err, service.ErrPushTokenRequired),
		errors.Is(err, service.ErrInvalidAction),
		errors.Is(err, service.ErrInvalidReport),
		errors.Is(err, service.ErrInvalidTimeRange):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, service.ErrRoomNotFound),
		errors.Is(err, service.ErrDeviceNotFound),
		errors.Is(err, service.ErrReportNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrNotConfirmed),
		errors.Is(err, service.ErrReportResolved):
		return http.StatusConflict
	case errors.Is(err, service.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	}
	return 0
}

// serviceError answers client-side errors with their message and anything
// else with a 500 carrying userMsg, logged under logKey.
func (h *Handler) serviceError(c *gin.Context, err error, userMsg, logKey string, kv ...interface{}) {
	if code := statusFor(err); code != 0 {
		c.JSON(code, gin.H{"error": err.Error()})
		return
	}
	h.logAndJSONError(c, http.StatusInternalServerError, userMsg, logKey, err, kv...)
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
