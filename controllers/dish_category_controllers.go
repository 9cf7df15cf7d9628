package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tabletap/ordering-backend/models"
	"github.com/tabletap/ordering-backend/utils"
)

type DishCategoryController struct {
	DB *gorm.DB
}

func NewDishCategoryController(db *gorm.DB) *DishCategoryController {
	return &DishCategoryController{DB: db}
}

// GetAllCategories
func (cc *DishCategoryController) GetAllCategories(c *gin.Context) {
	tenantID := parseUintQuery(c, "tenant_id")
	if tenantID == 0 {
		utils.RespondAppError(c, utils.NewValidationError("tenant_id query parameter is required"))
		return
	}

	var categories []models.DishCategory
	if err := cc.DB.Where("tenant_id = ?", tenantID).Order("name asc").Find(&categories).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of categories", categories)
}

// CreateCategory -> duplicate names within a tenant are rejected
func (cc *DishCategoryController) CreateCategory(c *gin.Context) {
	type CreateReq struct {
		TenantID uint   `json:"tenant_id" binding:"required"`
		Name     string `json:"name" binding:"required"`
	}
	var req CreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var duplicate int64
	cc.DB.Model(&models.DishCategory{}).
		Where("tenant_id = ? AND name = ?", req.TenantID, req.Name).
		Count(&duplicate)
	if duplicate > 0 {
		utils.RespondAppError(c, utils.NewValidationError("a category named %q already exists", req.Name))
		return
	}

	category := models.DishCategory{
		TenantID:  req.TenantID,
		Name:      req.Name,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := cc.DB.Create(&category).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Category created", category)
}

// UpdateCategory
func (cc *DishCategoryController) UpdateCategory(c *gin.Context) {
	id := parseUintParam(c, "category_id")

	var category models.DishCategory
	if err := cc.DB.First(&category, id).Error; err != nil {
		utils.RespondAppError(c, utils.NewNotFoundError("category %d not found", id))
		return
	}

	type UpdateReq struct {
		Name string `json:"name" binding:"required"`
	}
	var req UpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	category.Name = req.Name
	category.UpdatedAt = time.Now()
	if err := cc.DB.Save(&category).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Category updated", category)
}

// DeleteCategory -> blocked while dishes still reference it
func (cc *DishCategoryController) DeleteCategory(c *gin.Context) {
	id := parseUintParam(c, "category_id")

	var inUse int64
	cc.DB.Model(&models.Dish{}).Where("category_id = ?", id).Count(&inUse)
	if inUse > 0 {
		utils.RespondAppError(c, utils.NewValidationError("category still has %d dishes", inUse))
		return
	}

	if err := cc.DB.Delete(&models.DishCategory{}, id).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Category deleted", gin.H{"category_id": id})
}
