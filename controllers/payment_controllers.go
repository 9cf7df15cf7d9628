package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tabletap/ordering-backend/realtime"
	"github.com/tabletap/ordering-backend/services"
	"github.com/tabletap/ordering-backend/utils"
)

type PaymentController struct {
	Orders *services.OrderService
	MoMo   *services.MoMoService
}

func NewPaymentController(db *gorm.DB, momo *services.MoMoService) *PaymentController {
	return &PaymentController{
		Orders: services.NewOrderService(db),
		MoMo:   momo,
	}
}

// CreateMoMoIntent -> start a MoMo payment for an order
func (pc *PaymentController) CreateMoMoIntent(c *gin.Context) {
	type IntentReq struct {
		OrderID  uint `json:"order_id" binding:"required"`
		TenantID uint `json:"tenant_id"`
	}
	var req IntentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := pc.Orders.GetOrderByID(req.OrderID, req.TenantID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	payment, err := pc.MoMo.CreateIntent(order)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Payment intent created", payment)
}

// MoMoIPN -> gateway callback. MoMo expects 204 on success.
func (pc *PaymentController) MoMoIPN(c *gin.Context) {
	var ipn services.MoMoIPN
	if err := c.ShouldBindJSON(&ipn); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	payment, err := pc.MoMo.HandleIPN(ipn)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	realtime.BroadcastPaymentUpdate(*payment)
	c.Status(http.StatusNoContent)
}
