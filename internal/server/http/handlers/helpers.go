package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ntroshin/orderflow/internal/domain/model"
	"github.com/ntroshin/orderflow/internal/server/http/dto"
	"github.com/ntroshin/orderflow/internal/server/http/middleware"
)

// CurrentUserID extracts the authenticated user identifier from context.
func CurrentUserID(c *gin.Context) int64 {
	val, ok := c.Get(middleware.UserIDContextKey)
	if !ok {
		return 0
	}
	id, _ := val.(int64)
	return id
}

// CurrentApproverID extracts the approver messaging identity from context.
func CurrentApproverID(c *gin.Context) int64 {
	val, ok := c.Get(middleware.ApproverIDContextKey)
	if !ok {
		return 0
	}
	id, _ := val.(int64)
	return id
}

func orderIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func toOrderResponse(order *model.Order) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, dto.OrderItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price.StringFixed(2),
			Qty:       item.Qty,
			LineValue: item.LineValue().StringFixed(2),
		})
	}
	return dto.OrderResponse{
		ID:                order.ID,
		Status:            string(order.Status),
		CustomerType:      string(order.CustomerType),
		PaymentMethod:     string(order.PaymentMethod),
		LegalEntityID:     order.LegalEntityID,
		DeliveryAddressID: order.DeliveryAddressID,
		CustomerName:      order.CustomerName,
		CustomerPhone:     order.CustomerPhone,
		Address:           order.AddressText,
		Subtotal:          order.Subtotal.StringFixed(2),
		DiscountAmount:    order.DiscountAmount.StringFixed(2),
		Total:             order.Total.StringFixed(2),
		Items:             items,
		CreatedAt:         order.CreatedAt,
		UpdatedAt:         order.UpdatedAt,
	}
}
