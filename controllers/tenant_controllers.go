package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tabletap/ordering-backend/models"
	"github.com/tabletap/ordering-backend/utils"
)

type TenantController struct {
	DB *gorm.DB
}

func NewTenantController(db *gorm.DB) *TenantController {
	return &TenantController{DB: db}
}

// GetAllTenants
func (tc *TenantController) GetAllTenants(c *gin.Context) {
	var tenants []models.Tenant
	if err := tc.DB.Order("name asc").Find(&tenants).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tenants", tenants)
}

// CreateTenant
func (tc *TenantController) CreateTenant(c *gin.Context) {
	type CreateReq struct {
		Name    string `json:"name" binding:"required"`
		Slug    string `json:"slug" binding:"required"`
		Address string `json:"address"`
		Phone   string `json:"phone"`
	}
	var req CreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var duplicate int64
	tc.DB.Model(&models.Tenant{}).Where("slug = ?", req.Slug).Count(&duplicate)
	if duplicate > 0 {
		utils.RespondAppError(c, utils.NewValidationError("a tenant with slug %q already exists", req.Slug))
		return
	}

	tenant := models.Tenant{
		Name:      req.Name,
		Slug:      req.Slug,
		Address:   req.Address,
		Phone:     req.Phone,
		Status:    "active",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := tc.DB.Create(&tenant).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Tenant created", tenant)
}
