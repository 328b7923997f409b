package handlers

import (
	"net/http"
	"strings"

	"hotel_ops/internal/service"

	"github.com/gin-gonic/gin"
)

type startSessionRequest struct {
	EmployeeName string `json:"employee_name"`
	DeviceID     string `json:"device_id,omitempty"`
}

type confirmRequest struct {
	Confirm bool `json:"confirm"`
}

// @Summary      List rooms
// @Description  Repeat state to filter, e.g. ?state=SE&state=CO. No filter returns every room.
// @Tags         rooms
// @Produce      json
// @Param        state  query  []string  false  "Room states"  Enums(SE,CO,CLEAN)
// @Success      200  {object}  map[string]interface{}  "count, rooms"
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/rooms [get]
func (h *Handler) listRooms(c *gin.Context) {
	var states []string
	for _, s := range c.QueryArray("state") {
		for _, part := range strings.Split(s, ",") {
			if part = strings.ToUpper(strings.TrimSpace(part)); part != "" {
				states = append(states, part)
			}
		}
	}
	rooms, err := h.services.Rooms.List(c.Request.Context(), states...)
	if err != nil {
		h.serviceError(c, err, "failed to load rooms", "rooms_list_failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(rooms), "rooms": rooms})
}

// @Summary      Get room
// @Tags         rooms
// @Produce      json
// @Param        id   path  string  true  "Room id"
// @Success      200  {object}  models.Room
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/rooms/{id} [get]
func (h *Handler) getRoom(c *gin.Context) {
	room, err := h.services.Rooms.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.serviceError(c, err, "failed to load room", "room_get_failed", "room_id", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, room)
}

// @Summary      Get cleaning session
// @Description  Idle rooms report status "idle".
// @Tags         sessions
// @Produce      json
// @Param        id   path  string  true  "Room id"
// @Success      200  {object}  models.CleaningSession
// @Router       /api/v1/rooms/{id}/session [get]
func (h *Handler) getSession(c *gin.Context) {
	sess, err := h.services.Sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.serviceError(c, err, "failed to load session", "session_get_failed", "room_id", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, sess)
}

// @Summary      Start or resume cleaning
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "Room id"
// @Param        body  body  startSessionRequest  true  "Employee"
// @Success      200  {object}  models.CleaningSession
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/rooms/{id}/session/start [post]
func (h *Handler) startSession(c *gin.Context) {
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	deviceID := req.DeviceID
	if deviceID == "" {
		deviceID = callerDevice(c)
	}
	sess, err := h.services.Sessions.Start(c.Request.Context(), service.StartParams{
		RoomID:       c.Param("id"),
		EmployeeName: req.EmployeeName,
		DeviceID:     deviceID,
	})
	if err != nil {
		h.serviceError(c, err, "failed to start cleaning", "session_start_failed", "room_id", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *Handler) pauseSession(c *gin.Context) {
	sess, err := h.services.Sessions.Pause(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.serviceError(c, err, "failed to pause cleaning", "session_pause_failed", "room_id", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, sess)
}

// @Summary      Finish cleaning
// @Description  Requires {"confirm": true}. Writes a cleaning log and marks the room CLEAN.
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        id    path  string          true  "Room id"
// @Param        body  body  confirmRequest  true  "Confirmation"
// @Success      200  {object}  models.CleaningLog
// @Failure      409  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/rooms/{id}/session/stop [post]
func (h *Handler) stopSession(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	entry, err := h.services.Sessions.Stop(c.Request.Context(), c.Param("id"), service.Confirmed(req.Confirm))
	if err != nil {
		h.serviceError(c, err, "failed to finish cleaning", "session_stop_failed", "room_id", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, entry)
}

// @Summary      Cancel cleaning
// @Description  Requires {"confirm": true}. No cleaning log is written.
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        id    path  string          true  "Room id"
// @Param        body  body  confirmRequest  true  "Confirmation"
// @Success      200  {object}  models.CleaningSession
// @Failure      409  {object}  map[string]string
// @Router       /api/v1/rooms/{id}/session/cancel [post]
func (h *Handler) cancelSession(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	sess, err := h.services.Sessions.Cancel(c.Request.Context(), c.Param("id"), service.Confirmed(req.Confirm))
	if err != nil {
		h.serviceError(c, err, "failed to cancel cleaning", "session_cancel_failed", "room_id", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, sess)
}

// backgroundSession is called by the app when it leaves the foreground.
func (h *Handler) backgroundSession(c *gin.Context) {
	if err := h.services.Sessions.Background(c.Request.Context(), c.Param("id")); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to schedule reminder", "session_background_failed", err, "room_id", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusOK})
}
