package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tabletap/ordering-backend/models"
	"github.com/tabletap/ordering-backend/realtime"
	"github.com/tabletap/ordering-backend/utils"
)

// Table statuses
const (
	TableStatusAvailable = "available"
	TableStatusOccupied  = "occupied"
	TableStatusDirty     = "dirty"
)

type TableController struct {
	DB *gorm.DB
}

func NewTableController(db *gorm.DB) *TableController {
	return &TableController{DB: db}
}

// GetAllTables
func (tc *TableController) GetAllTables(c *gin.Context) {
	tenantID := parseUintQuery(c, "tenant_id")
	if tenantID == 0 {
		utils.RespondAppError(c, utils.NewValidationError("tenant_id query parameter is required"))
		return
	}

	var tables []models.Table
	if err := tc.DB.Where("tenant_id = ?", tenantID).Order("table_number asc").Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

// ResolveTableByQR -> the QR entry point: slug -> table
func (tc *TableController) ResolveTableByQR(c *gin.Context) {
	slug := c.Param("qr_slug")

	var table models.Table
	if err := tc.DB.Where("qr_slug = ?", slug).First(&table).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondAppError(c, utils.NewNotFoundError("no table for this QR code"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table resolved", table)
}

// CreateTable -> assigns a fresh QR slug
func (tc *TableController) CreateTable(c *gin.Context) {
	type CreateReq struct {
		TenantID    uint   `json:"tenant_id" binding:"required"`
		TableNumber string `json:"table_number" binding:"required"`
	}
	var req CreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var duplicate int64
	tc.DB.Model(&models.Table{}).
		Where("tenant_id = ? AND table_number = ?", req.TenantID, req.TableNumber).
		Count(&duplicate)
	if duplicate > 0 {
		utils.RespondAppError(c, utils.NewValidationError("table %q already exists", req.TableNumber))
		return
	}

	table := models.Table{
		TenantID:    req.TenantID,
		TableNumber: req.TableNumber,
		QRSlug:      uuid.NewString(),
		Status:      TableStatusAvailable,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := tc.DB.Create(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Table created", table)
}

// UpdateTableStatus
func (tc *TableController) UpdateTableStatus(c *gin.Context) {
	id := parseUintParam(c, "table_id")

	var table models.Table
	if err := tc.DB.First(&table, id).Error; err != nil {
		utils.RespondAppError(c, utils.NewNotFoundError("table %d not found", id))
		return
	}

	type UpdateReq struct {
		Status string `json:"status" binding:"required,oneof=available occupied dirty"`
	}
	var req UpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table.Status = req.Status
	table.UpdatedAt = time.Now()
	if err := tc.DB.Save(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	realtime.BroadcastTableUpdate(table)
	utils.RespondJSON(c, http.StatusOK, "Table updated", table)
}

// DeleteTable
func (tc *TableController) DeleteTable(c *gin.Context) {
	id := parseUintParam(c, "table_id")

	if err := tc.DB.Delete(&models.Table{}, id).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table deleted", gin.H{"table_id": id})
}
