package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/homelink/pkg/api/types"
	"github.com/urmzd/homelink/pkg/device"
	"github.com/urmzd/homelink/pkg/homegraph"
)

// SyncHandler handles Home Graph notification endpoints
type SyncHandler struct {
	agentUserID string
	store       *device.Store
	notifier    homegraph.Notifier
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(agentUserID string, store *device.Store, notifier homegraph.Notifier) *SyncHandler {
	return &SyncHandler{agentUserID: agentUserID, store: store, notifier: notifier}
}

// RequestSync handles /requestsync
// @Summary      Request SYNC
// @Description  Asks the assistant platform to re-run SYNC for the linked account
// @Tags         homegraph
// @Produce      json
// @Success      200  {object}  object  "Upstream response"
// @Failure      500  {string}  string  "Error requesting sync"
// @Router       /requestsync [post]
func (h *SyncHandler) RequestSync(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")

	body, err := h.notifier.RequestSync(c.Request.Context(), h.agentUserID)
	if err != nil {
		log.Error().Err(err).Str("agent_user_id", h.agentUserID).Msg("Request SYNC failed")
		c.String(http.StatusInternalServerError, "Error requesting sync: %v", err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// ReportState handles /reportstate
// @Summary      Report state
// @Description  Pushes the current state of every device to Home Graph. Returns {} when no service account key is configured.
// @Tags         homegraph
// @Produce      json
// @Success      200  {object}  types.ReportStateResponse
// @Failure      500  {object}  types.ErrorResponse  "Upstream error"
// @Router       /reportstate [post]
func (h *SyncHandler) ReportState(c *gin.Context) {
	if !h.notifier.IsConfigured() {
		log.Warn().Msg("Service account key is not configured, report state is unavailable")
		c.JSON(http.StatusOK, gin.H{})
		return
	}

	states := h.store.Snapshot()
	requestID, err := h.notifier.ReportState(c.Request.Context(), h.agentUserID, states)
	if err != nil {
		log.Error().Err(err).Msg("Report state failed")
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{
			Error:   "homegraph_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, types.ReportStateResponse{
		RequestID: requestID,
		Devices:   len(states),
	})
}
