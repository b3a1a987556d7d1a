package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/ntroshin/orderflow/internal/domain/errors"
	"github.com/ntroshin/orderflow/internal/domain/fsm"
	"github.com/ntroshin/orderflow/internal/domain/model"
	"github.com/ntroshin/orderflow/internal/server/http/dto"
)

// ApprovalHandler serves approve and reject decisions relayed by the
// messaging gateway.
type ApprovalHandler struct {
	facade ApprovalFacade
}

// NewApprovalHandler constructs ApprovalHandler.
func NewApprovalHandler(facade ApprovalFacade) *ApprovalHandler {
	return &ApprovalHandler{facade: facade}
}

type decisionRequest struct {
	Token string `json:"token"`
}

type decisionFunc func(ctx context.Context, orderID, approverID int64, token string) (*model.Order, error)

// Approve handles POST /orders/:id/approve.
func (h *ApprovalHandler) Approve(c *gin.Context) {
	h.decide(c, h.facade.ApproveOrder)
}

// Reject handles POST /orders/:id/reject.
func (h *ApprovalHandler) Reject(c *gin.Context) {
	h.decide(c, h.facade.RejectOrder)
}

func (h *ApprovalHandler) decide(c *gin.Context, decision decisionFunc) {
	orderID, ok := orderIDParam(c)
	if !ok {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: domainErrors.ErrNotFound.Error()})
		return
	}

	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" {
		c.JSON(http.StatusForbidden, dto.ErrorResponse{Error: domainErrors.ErrForbidden.Error()})
		return
	}

	if _, err := decision(c.Request.Context(), orderID, CurrentApproverID(c), req.Token); err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
		case errors.Is(err, domainErrors.ErrForbidden):
			c.JSON(http.StatusForbidden, dto.ErrorResponse{Error: err.Error()})
		case fsm.IsIllegalTransition(err):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, dto.DecisionResponse{OK: true})
}
