package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/homelink/pkg/api/types"
	"github.com/urmzd/homelink/pkg/device"
)

// ControlHandler handles device state control endpoints
type ControlHandler struct {
	store    *device.Store
	executor *device.Executor
}

// NewControlHandler creates a new control handler
func NewControlHandler(store *device.Store, executor *device.Executor) *ControlHandler {
	return &ControlHandler{store: store, executor: executor}
}

// GetState handles GET /devices/:id/state
// @Summary      Get device state
// @Description  Returns the current state of a device
// @Tags         devices
// @Produce      json
// @Param        id   path      string  true  "Device id"
// @Success      200  {object}  types.StateResponse
// @Failure      404  {object}  types.ErrorResponse  "Device not found"
// @Router       /api/v1/devices/{id}/state [get]
func (h *ControlHandler) GetState(c *gin.Context) {
	id := c.Param("id")

	st, err := h.store.Get(id)
	if err != nil {
		respondDeviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.StateResponse{
		Device:    id,
		State:     st,
		Timestamp: time.Now(),
	})
}

// RunCommand handles POST /devices/:id/commands
// @Summary      Run a device command
// @Description  Applies a single command through the same executor used by EXECUTE
// @Tags         devices
// @Accept       json
// @Produce      json
// @Param        id       path      string                true  "Device id"
// @Param        request  body      types.CommandRequest  true  "Command and params"
// @Success      200      {object}  types.StateResponse
// @Failure      400      {object}  types.ErrorResponse  "Invalid request or params"
// @Failure      404      {object}  types.ErrorResponse  "Device not found"
// @Failure      422      {object}  types.ErrorResponse  "Device lacks the command's trait"
// @Router       /api/v1/devices/{id}/commands [post]
func (h *ControlHandler) RunCommand(c *gin.Context) {
	id := c.Param("id")

	var req types.CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	delta, err := h.executor.Execute(c.Request.Context(), id, req.Command, req.Params)
	if err != nil {
		respondDeviceError(c, err)
		return
	}

	st, err := h.store.Get(id)
	if err != nil {
		respondDeviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.StateResponse{
		Device:    id,
		State:     st,
		Delta:     delta,
		Timestamp: time.Now(),
	})
}
