package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/ntroshin/orderflow/internal/domain/errors"
	"github.com/ntroshin/orderflow/internal/domain/fsm"
	"github.com/ntroshin/orderflow/internal/domain/model"
	"github.com/ntroshin/orderflow/internal/server/http/dto"
)

// AdminHandler applies fulfillment transitions on behalf of back-office
// tooling speaking through the internal channel.
type AdminHandler struct {
	facade AdminFacade
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(facade AdminFacade) *AdminHandler {
	return &AdminHandler{facade: facade}
}

// Pay handles POST /internal/orders/:id/pay.
func (h *AdminHandler) Pay(c *gin.Context) { h.advance(c, model.TransitionPay) }

// Ship handles POST /internal/orders/:id/ship.
func (h *AdminHandler) Ship(c *gin.Context) { h.advance(c, model.TransitionShip) }

// Complete handles POST /internal/orders/:id/complete.
func (h *AdminHandler) Complete(c *gin.Context) { h.advance(c, model.TransitionComplete) }

// Cancel handles POST /internal/orders/:id/cancel.
func (h *AdminHandler) Cancel(c *gin.Context) { h.advance(c, model.TransitionCancel) }

func (h *AdminHandler) advance(c *gin.Context, transition string) {
	orderID, ok := orderIDParam(c)
	if !ok {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: domainErrors.ErrNotFound.Error()})
		return
	}

	order, err := h.facade.AdvanceOrder(c.Request.Context(), orderID, transition)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
		case fsm.IsIllegalTransition(err):
			c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order))
}
