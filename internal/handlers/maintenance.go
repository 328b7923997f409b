package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type maintenanceRequest struct {
	Action string `json:"action" binding:"required"` // done | skipped
}

// @Summary      Maintenance status
// @Description  Every room with days since last service and days left, most urgent first.
// @Tags         maintenance
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, rooms"
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/maintenance [get]
func (h *Handler) maintenanceStatus(c *gin.Context) {
	out, err := h.services.Maintenance.ListStatus(c.Request.Context())
	if err != nil {
		h.serviceError(c, err, "failed to load maintenance status", "maintenance_status_failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(out), "rooms": out})
}

// checkMaintenance runs the reminder sweep on demand.
func (h *Handler) checkMaintenance(c *gin.Context) {
	n, err := h.services.Maintenance.CheckUpcomingMaintenance(c.Request.Context())
	if err != nil {
		h.serviceError(c, err, "failed to check maintenance", "maintenance_check_failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"reminders": n})
}

// @Summary      Log maintenance
// @Tags         maintenance
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "Room id"
// @Param        body  body  maintenanceRequest  true  "Action"
// @Success      201  {object}  models.MaintenanceLog
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/rooms/{id}/maintenance [post]
func (h *Handler) logMaintenance(c *gin.Context) {
	var req maintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	entry, err := h.services.Maintenance.LogMaintenance(c.Request.Context(), c.Param("id"), req.Action)
	if err != nil {
		h.serviceError(c, err, "failed to log maintenance", "maintenance_log_failed", "room_id", c.Param("id"))
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *Handler) maintenanceHistory(c *gin.Context) {
	logs, err := h.services.Maintenance.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.serviceError(c, err, "failed to load maintenance history", "maintenance_history_failed", "room_id", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(logs), "logs": logs})
}
