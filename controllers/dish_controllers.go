package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tabletap/ordering-backend/models"
	"github.com/tabletap/ordering-backend/utils"
)

type DishController struct {
	DB *gorm.DB
}

func NewDishController(db *gorm.DB) *DishController {
	return &DishController{DB: db}
}

var allowedImageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

// GetAllDishes -> catalogue for a tenant
func (dc *DishController) GetAllDishes(c *gin.Context) {
	tenantID := parseUintQuery(c, "tenant_id")
	if tenantID == 0 {
		utils.RespondAppError(c, utils.NewValidationError("tenant_id query parameter is required"))
		return
	}

	var dishes []models.Dish
	query := dc.DB.Where("tenant_id = ?", tenantID)
	if categoryID := parseUintQuery(c, "category_id"); categoryID != 0 {
		query = query.Where("category_id = ?", categoryID)
	}
	if err := query.Order("name asc").Find(&dishes).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of dishes", dishes)
}

// GetDishByID
func (dc *DishController) GetDishByID(c *gin.Context) {
	id := parseUintParam(c, "dish_id")

	var dish models.Dish
	if err := dc.DB.First(&dish, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondAppError(c, utils.NewNotFoundError("dish %d not found", id))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dish detail", dish)
}

// CreateDish -> rejects duplicate names within the tenant
func (dc *DishController) CreateDish(c *gin.Context) {
	type CreateReq struct {
		TenantID    uint    `json:"tenant_id" binding:"required"`
		CategoryID  uint    `json:"category_id" binding:"required"`
		Name        string  `json:"name" binding:"required"`
		Price       float64 `json:"price" binding:"required,gt=0"`
		Description string  `json:"description"`
	}
	var req CreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var duplicate int64
	dc.DB.Model(&models.Dish{}).
		Where("tenant_id = ? AND name = ?", req.TenantID, req.Name).
		Count(&duplicate)
	if duplicate > 0 {
		utils.RespondAppError(c, utils.NewValidationError("a dish named %q already exists", req.Name))
		return
	}

	dish := models.Dish{
		TenantID:    req.TenantID,
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		ImageURLs:   []string{},
		Available:   true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := dc.DB.Create(&dish).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Dish created", dish)
}

// UpdateDish -> partial update
func (dc *DishController) UpdateDish(c *gin.Context) {
	id := parseUintParam(c, "dish_id")

	var dish models.Dish
	if err := dc.DB.First(&dish, id).Error; err != nil {
		utils.RespondAppError(c, utils.NewNotFoundError("dish %d not found", id))
		return
	}

	type UpdateReq struct {
		Name        *string  `json:"name"`
		Price       *float64 `json:"price"`
		Description *string  `json:"description"`
		CategoryID  *uint    `json:"category_id"`
		Available   *bool    `json:"available"`
	}
	var req UpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Name != nil {
		var duplicate int64
		dc.DB.Model(&models.Dish{}).
			Where("tenant_id = ? AND name = ? AND id != ?", dish.TenantID, *req.Name, dish.ID).
			Count(&duplicate)
		if duplicate > 0 {
			utils.RespondAppError(c, utils.NewValidationError("a dish named %q already exists", *req.Name))
			return
		}
		dish.Name = *req.Name
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			utils.RespondAppError(c, utils.NewValidationError("price must be positive"))
			return
		}
		dish.Price = *req.Price
	}
	if req.Description != nil {
		dish.Description = *req.Description
	}
	if req.CategoryID != nil {
		dish.CategoryID = *req.CategoryID
	}
	if req.Available != nil {
		dish.Available = *req.Available
	}
	dish.UpdatedAt = time.Now()

	if err := dc.DB.Save(&dish).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dish updated", dish)
}

// DeleteDish
func (dc *DishController) DeleteDish(c *gin.Context) {
	id := parseUintParam(c, "dish_id")

	if err := dc.DB.Delete(&models.Dish{}, id).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dish deleted", gin.H{"dish_id": id})
}

// UploadDishImage -> stores the file under public/uploads with a uuid name
func (dc *DishController) UploadDishImage(c *gin.Context) {
	id := parseUintParam(c, "dish_id")

	var dish models.Dish
	if err := dc.DB.First(&dish, id).Error; err != nil {
		utils.RespondAppError(c, utils.NewNotFoundError("dish %d not found", id))
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExts[ext] {
		utils.RespondAppError(c, utils.NewValidationError("unsupported image type %q", ext))
		return
	}

	filename := uuid.NewString() + ext
	dst := filepath.Join("public", "uploads", filename)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	dish.ImageURLs = append(dish.ImageURLs, fmt.Sprintf("/uploads/%s", filename))
	dish.UpdatedAt = time.Now()
	if err := dc.DB.Save(&dish).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Image uploaded", dish)
}
