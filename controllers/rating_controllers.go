package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tabletap/ordering-backend/models"
	"github.com/tabletap/ordering-backend/services"
	"github.com/tabletap/ordering-backend/utils"
)

type RatingController struct {
	Reviews *services.ReviewService
}

func NewRatingController(db *gorm.DB) *RatingController {
	return &RatingController{Reviews: services.NewReviewService(db)}
}

// GetDishRating -> aggregate for one dish, zero shape when no reviews yet
func (rc *RatingController) GetDishRating(c *gin.Context) {
	dishID := parseUintParam(c, "dish_id")

	rating, err := rc.Reviews.GetDishRating(dishID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dish rating", rating)
}

// GetDishRatingsBulk -> aggregates keyed by dish id, zero defaults filled in
func (rc *RatingController) GetDishRatingsBulk(c *gin.Context) {
	type BulkReq struct {
		DishIDs []uint `json:"dish_ids" binding:"required"`
	}
	var req BulkReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	ratings, err := rc.Reviews.GetDishRatings(req.DishIDs)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	// JSON object keys are strings, keep the dish id readable
	out := make(map[string]models.DishRating, len(ratings))
	for id, rating := range ratings {
		out[strconv.FormatUint(uint64(id), 10)] = rating
	}
	utils.RespondJSON(c, http.StatusOK, "Dish ratings", out)
}
