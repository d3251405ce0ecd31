package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/homelink/pkg/api/types"
	"github.com/urmzd/homelink/pkg/device"
)

// DevicesHandler handles device listing endpoints
type DevicesHandler struct {
	registry *device.Registry
	store    *device.Store
}

// NewDevicesHandler creates a new devices handler
func NewDevicesHandler(registry *device.Registry, store *device.Store) *DevicesHandler {
	return &DevicesHandler{registry: registry, store: store}
}

// ListDevices handles GET /devices
// @Summary      List all devices
// @Description  Returns every catalog device with its current state
// @Tags         devices
// @Produce      json
// @Success      200  {object}  types.ListDevicesResponse
// @Router       /api/v1/devices [get]
func (h *DevicesHandler) ListDevices(c *gin.Context) {
	devices := h.registry.List()

	result := make([]types.DeviceWithState, 0, len(devices))
	for _, d := range devices {
		dws := types.DeviceWithState{Device: d}
		if st, err := h.store.Get(d.ID); err == nil {
			dws.State = st
		}
		result = append(result, dws)
	}

	c.JSON(http.StatusOK, types.ListDevicesResponse{
		Devices: result,
		Count:   len(result),
	})
}

// GetDevice handles GET /devices/:id
// @Summary      Get device
// @Description  Returns a catalog device with its current state
// @Tags         devices
// @Produce      json
// @Param        id   path      string  true  "Device id"
// @Success      200  {object}  types.DeviceWithState
// @Failure      404  {object}  types.ErrorResponse  "Device not found"
// @Router       /api/v1/devices/{id} [get]
func (h *DevicesHandler) GetDevice(c *gin.Context) {
	id := c.Param("id")

	d, err := h.registry.Get(id)
	if err != nil {
		respondDeviceError(c, err)
		return
	}

	st, err := h.store.Get(id)
	if err != nil {
		respondDeviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.DeviceWithState{Device: d, State: st})
}

// respondDeviceError maps device package errors onto HTTP responses.
func respondDeviceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, device.ErrNotFound):
		c.JSON(http.StatusNotFound, types.ErrorResponse{
			Error:   "not_found",
			Message: "Device not found",
		})
	case errors.Is(err, device.ErrUnsupportedCommand):
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "unsupported_command",
			Message: err.Error(),
		})
	case errors.Is(err, device.ErrTraitNotSupported):
		c.JSON(http.StatusUnprocessableEntity, types.ErrorResponse{
			Error:   "trait_not_supported",
			Message: err.Error(),
		})
	case errors.Is(err, device.ErrValidation):
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{
			Error:   "device_error",
			Message: err.Error(),
		})
	}
}
