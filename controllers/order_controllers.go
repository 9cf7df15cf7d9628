package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tabletap/ordering-backend/models"
	"github.com/tabletap/ordering-backend/realtime"
	"github.com/tabletap/ordering-backend/services"
	"github.com/tabletap/ordering-backend/utils"
)

type OrderController struct {
	DB     *gorm.DB
	Orders *services.OrderService
	Bridge *services.StaffBridge
}

func NewOrderController(db *gorm.DB, bridge *services.StaffBridge) *OrderController {
	return &OrderController{
		DB:     db,
		Orders: services.NewOrderService(db),
		Bridge: bridge,
	}
}

// CreateOrder -> checkout for one table
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var input services.CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.CreateOrder(input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	realtime.BroadcastOrderCreated(*order)
	oc.Bridge.NotifyOrderCreated(*order)

	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

// GetAllOrders -> list orders for a tenant, items included
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	tenantID := parseUintQuery(c, "tenant_id")
	if tenantID == 0 {
		utils.RespondAppError(c, utils.NewValidationError("tenant_id query parameter is required"))
		return
	}

	orders, err := oc.Orders.ListOrders(tenantID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// GetOrderByID -> detail of one order
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	id := parseUintParam(c, "order_id")
	tenantID := parseUintQuery(c, "tenant_id")

	order, err := oc.Orders.GetOrderByID(id, tenantID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// UpdateOrderStatus -> staff-side transition
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	id := parseUintParam(c, "order_id")

	type UpdateReq struct {
		TenantID uint   `json:"tenant_id"`
		Status   string `json:"status" binding:"required"`
	}
	var req UpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.UpdateOrderStatus(id, req.TenantID, req.Status)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	realtime.BroadcastOrderUpdate(*order)
	oc.Bridge.NotifyOrderStatus(*order)

	utils.RespondJSON(c, http.StatusOK, "Order updated", order)
}

// DeleteOrder
func (oc *OrderController) DeleteOrder(c *gin.Context) {
	id := parseUintParam(c, "order_id")
	tenantID := parseUintQuery(c, "tenant_id")

	if err := oc.Orders.DeleteOrder(id, tenantID); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order deleted", gin.H{"order_id": id})
}

// GetOrderReceipt -> PDF receipt for a completed order
func (oc *OrderController) GetOrderReceipt(c *gin.Context) {
	id := parseUintParam(c, "order_id")
	tenantID := parseUintQuery(c, "tenant_id")

	order, err := oc.Orders.GetOrderByID(id, tenantID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	var tenant models.Tenant
	if err := oc.DB.First(&tenant, order.TenantID).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	dishNames := make(map[uint]string)
	var dishes []models.Dish
	dishIDs := make([]uint, 0, len(order.OrderItems))
	for _, item := range order.OrderItems {
		dishIDs = append(dishIDs, item.DishID)
	}
	if err := oc.DB.Where("id IN ?", dishIDs).Find(&dishes).Error; err == nil {
		for _, dish := range dishes {
			dishNames[dish.ID] = dish.Name
		}
	}

	pdfBytes, err := utils.GenerateReceiptPDF(tenant, *order, dishNames)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=receipt-%s.pdf", order.DisplayOrder))
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

func parseUintParam(c *gin.Context, name string) uint {
	v, _ := strconv.ParseUint(c.Param(name), 10, 64)
	return uint(v)
}

func parseUintQuery(c *gin.Context, name string) uint {
	v, _ := strconv.ParseUint(c.Query(name), 10, 64)
	return uint(v)
}
