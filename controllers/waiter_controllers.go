package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"

	"github.com/tabletap/ordering-backend/models"
	"github.com/tabletap/ordering-backend/realtime"
	"github.com/tabletap/ordering-backend/utils"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WaiterController struct {
	DB *gorm.DB
}

func NewWaiterController(db *gorm.DB) *WaiterController {
	return &WaiterController{DB: db}
}

// StaffSocket -> websocket endpoint staff screens attach to
func (wc *WaiterController) StaffSocket(c *gin.Context) {
	tenantID := parseUintQuery(c, "tenant_id")
	if tenantID == 0 {
		utils.RespondAppError(c, utils.NewValidationError("tenant_id query parameter is required"))
		return
	}

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("websocket upgrade failed: %v", err)
		return
	}

	realtime.RegisterClient(conn, tenantID)

	// Drain reads until the client goes away.
	go func() {
		defer realtime.UnregisterClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// CallWaiter -> a table asks for service
func (wc *WaiterController) CallWaiter(c *gin.Context) {
	type CallReq struct {
		TenantID uint   `json:"tenant_id" binding:"required"`
		TableID  uint   `json:"table_id" binding:"required"`
		Message  string `json:"message"`
	}
	var req CallReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var table models.Table
	if err := wc.DB.First(&table, req.TableID).Error; err != nil {
		utils.RespondAppError(c, utils.NewNotFoundError("table %d not found", req.TableID))
		return
	}
	if table.TenantID != req.TenantID {
		utils.RespondAppError(c, utils.NewAccessDeniedError("access denied: table %d belongs to another tenant", req.TableID))
		return
	}

	call := models.WaiterCall{
		TenantID:  req.TenantID,
		TableID:   req.TableID,
		Message:   req.Message,
		Status:    "pending",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := wc.DB.Create(&call).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	realtime.BroadcastWaiterCall(call)
	utils.RespondJSON(c, http.StatusCreated, "Waiter called", call)
}

// AcknowledgeCall -> staff marks a call as handled
func (wc *WaiterController) AcknowledgeCall(c *gin.Context) {
	id := parseUintParam(c, "call_id")

	var call models.WaiterCall
	if err := wc.DB.First(&call, id).Error; err != nil {
		utils.RespondAppError(c, utils.NewNotFoundError("waiter call %d not found", id))
		return
	}

	call.Status = "acknowledged"
	call.UpdatedAt = time.Now()
	if err := wc.DB.Save(&call).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	realtime.BroadcastWaiterAck(call)
	utils.RespondJSON(c, http.StatusOK, "Waiter call acknowledged", call)
}

// GetPendingCalls -> calls staff still needs to handle
func (wc *WaiterController) GetPendingCalls(c *gin.Context) {
	tenantID := parseUintQuery(c, "tenant_id")
	if tenantID == 0 {
		utils.RespondAppError(c, utils.NewValidationError("tenant_id query parameter is required"))
		return
	}

	var calls []models.WaiterCall
	if err := wc.DB.Where("tenant_id = ? AND status = ?", tenantID, "pending").
		Order("created_at asc").Find(&calls).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Pending waiter calls", calls)
}
