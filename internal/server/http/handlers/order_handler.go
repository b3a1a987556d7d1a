package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/ntroshin/orderflow/internal/domain/errors"
	"github.com/ntroshin/orderflow/internal/domain/model"
	"github.com/ntroshin/orderflow/internal/domain/repository"
	"github.com/ntroshin/orderflow/internal/server/http/dto"
)

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "malformed request body"})
		return
	}

	draft := repository.OrderDraft{
		PlacedBy:          CurrentUserID(c),
		CustomerType:      model.CustomerType(req.CustomerType),
		PaymentMethod:     model.PaymentMethod(req.PaymentMethod),
		LegalEntityID:     req.LegalEntityID,
		DeliveryAddressID: req.DeliveryAddressID,
		CustomerName:      req.CustomerName,
		CustomerPhone:     req.CustomerPhone,
		AddressText:       req.Address,
	}
	for _, item := range req.Items {
		draft.Items = append(draft.Items, repository.OrderDraftItem{ProductID: item.ProductID, Qty: item.Qty})
	}

	order, err := h.facade.CreateOrder(c.Request.Context(), draft)
	if err != nil {
		status, message := createErrorStatus(err)
		c.JSON(status, dto.ErrorResponse{Error: message})
		return
	}

	c.JSON(http.StatusCreated, toOrderResponse(order))
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: domainErrors.ErrNotFound.Error()})
		return
	}

	order, err := h.facade.Order(c.Request.Context(), CurrentUserID(c), orderID)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
		case errors.Is(err, domainErrors.ErrForbidden):
			c.JSON(http.StatusForbidden, dto.ErrorResponse{Error: err.Error()})
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order))
}

// List handles GET /api/orders.
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.facade.Orders(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	if len(orders) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		response = append(response, toOrderResponse(&orders[i]))
	}
	c.JSON(http.StatusOK, response)
}

// createErrorStatus maps creation failures to HTTP statuses. Every cart and
// reference validation failure is the caller's fault and yields 400.
func createErrorStatus(err error) (int, string) {
	var unknown *domainErrors.UnknownProductError
	switch {
	case errors.Is(err, domainErrors.ErrEmptyCart),
		errors.Is(err, domainErrors.ErrInvalidQuantity),
		errors.Is(err, domainErrors.ErrInvalidCustomer),
		errors.Is(err, domainErrors.ErrInvalidPayment),
		errors.Is(err, domainErrors.ErrInvalidAddress),
		errors.Is(err, domainErrors.ErrForbidden),
		errors.As(err, &unknown):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
