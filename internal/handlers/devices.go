package handlers

import (
	"net/http"

	"hotel_ops/internal/service"

	"github.com/gin-gonic/gin"
)

// registerDeviceRequest carries what the app collected on launch.
// Permission is the platform status before prompting (granted, denied or
// undetermined). When it was undetermined the app prompts first and sends
// the user's response as PermissionAfterPrompt. Token may be empty when
// permission ends up denied.
type registerDeviceRequest struct {
	BuildID               string `json:"build_id"`
	InstallID             string `json:"install_id"`
	VendorID              string `json:"vendor_id"`
	Token                 string `json:"token"`
	Permission            string `json:"permission" binding:"required,oneof=granted denied undetermined"`
	PermissionAfterPrompt string `json:"permission_after_prompt" binding:"omitempty,oneof=granted denied undetermined"`
}

type availabilityRequest struct {
	Current bool `json:"current"`
}

type messageRequest struct {
	Text string `json:"text"`
}

type cleaningStartedRequest struct {
	RoomLabel string `json:"room_label" binding:"required"`
	ActorName string `json:"actor_name" binding:"required"`
}

// @Summary      Register device
// @Description  Idempotent per device id. Re-registration refreshes the token and keeps availability.
// @Tags         devices
// @Accept       json
// @Produce      json
// @Param        body  body  registerDeviceRequest  true  "Registration"
// @Success      200  {object}  map[string]string  "device_id"
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/devices [post]
func (h *Handler) registerDevice(c *gin.Context) {
	var req registerDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	id, err := h.services.Devices.RegisterDevice(c.Request.Context(), service.RegistrationRequest{
		Candidates:  []string{req.BuildID, req.InstallID, req.VendorID, callerDevice(c)},
		Permissions: service.PromptedPermission{Current: req.Permission, Answer: req.PermissionAfterPrompt},
		Tokens:      service.StaticToken(req.Token),
	})
	if err != nil {
		h.serviceError(c, err, "failed to register device", "device_register_failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"device_id": id})
}

func (h *Handler) getDevice(c *gin.Context) {
	reg, err := h.services.Devices.GetDevice(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.serviceError(c, err, "failed to load device", "device_get_failed", "device_id", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, reg)
}

// @Summary      Toggle device availability
// @Description  Writes the negation of "current" and returns the new flag.
// @Tags         devices
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "Device id"
// @Param        body  body  availabilityRequest  true  "Current flag"
// @Success      200  {object}  map[string]bool
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/devices/{id}/availability [post]
func (h *Handler) toggleAvailability(c *gin.Context) {
	var req availabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	next, err := h.services.Devices.SetAvailability(c.Request.Context(), c.Param("id"), req.Current)
	if err != nil {
		h.serviceError(c, err, "failed to update availability", "device_availability_failed", "device_id", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": next})
}

func (h *Handler) setDeviceMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	msg, err := h.services.Devices.SetCustomMessage(c.Request.Context(), c.Param("id"), req.Text)
	if err != nil {
		h.serviceError(c, err, "failed to send message", "device_message_failed", "device_id", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, msg)
}

// @Summary      Notify available devices
// @Description  Pushes "Cleaning started" to every available device. Per-device failures are reported, not retried.
// @Tags         devices
// @Accept       json
// @Produce      json
// @Param        body  body  cleaningStartedRequest  true  "Room and actor"
// @Success      200  {object}  map[string]interface{}  "count, results"
// @Router       /api/v1/notifications/cleaning-started [post]
func (h *Handler) notifyCleaningStarted(c *gin.Context) {
	var req cleaningStartedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	results, err := h.services.Fanout.NotifyAvailableDevices(c.Request.Context(), req.RoomLabel, req.ActorName)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to notify devices", "fanout_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(results), "results": results})
}
