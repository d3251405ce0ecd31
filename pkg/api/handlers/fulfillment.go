package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/homelink/pkg/api/types"
	"github.com/urmzd/homelink/pkg/fulfillment"
)

// FulfillmentHandler handles intent requests from the assistant platform
type FulfillmentHandler struct {
	dispatcher *fulfillment.Dispatcher
}

// NewFulfillmentHandler creates a new fulfillment handler
func NewFulfillmentHandler(dispatcher *fulfillment.Dispatcher) *FulfillmentHandler {
	return &FulfillmentHandler{dispatcher: dispatcher}
}

// Fulfill handles POST /fulfillment
// @Summary      Smart home fulfillment
// @Description  Handles a SYNC, QUERY, EXECUTE or DISCONNECT intent. Only the first input is processed; protocol errors are returned in the payload with status 200.
// @Tags         fulfillment
// @Accept       json
// @Produce      json
// @Param        request  body      fulfillment.Request   true  "Intent request"
// @Success      200      {object}  fulfillment.Response
// @Failure      400      {object}  types.ErrorResponse  "Body is not a valid intent request"
// @Router       /fulfillment [post]
func (h *FulfillmentHandler) Fulfill(c *gin.Context) {
	var req fulfillment.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, h.dispatcher.Handle(c.Request.Context(), &req))
}
