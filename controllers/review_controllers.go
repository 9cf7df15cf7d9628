package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tabletap/ordering-backend/services"
	"github.com/tabletap/ordering-backend/utils"
)

type ReviewController struct {
	Reviews *services.ReviewService
}

func NewReviewController(db *gorm.DB) *ReviewController {
	return &ReviewController{Reviews: services.NewReviewService(db)}
}

// CreateReview -> customer reviews a dish they ordered
func (rc *ReviewController) CreateReview(c *gin.Context) {
	var input services.CreateReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	input.CustomerID = authSubjectID(c, input.CustomerID)

	review, err := rc.Reviews.CreateReview(input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Review created", review)
}

// UpdateReview -> partial update by the owning customer
func (rc *ReviewController) UpdateReview(c *gin.Context) {
	id := parseUintParam(c, "review_id")

	var input services.UpdateReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	review, err := rc.Reviews.UpdateReview(id, authSubjectID(c, 0), input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Review updated", review)
}

// DeleteReview -> delete by the owning customer
func (rc *ReviewController) DeleteReview(c *gin.Context) {
	id := parseUintParam(c, "review_id")

	if err := rc.Reviews.DeleteReview(id, authSubjectID(c, 0)); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Review deleted", gin.H{"review_id": id})
}

// CanReviewDish -> read-only eligibility check
func (rc *ReviewController) CanReviewDish(c *gin.Context) {
	dishID := parseUintParam(c, "dish_id")

	result, err := rc.Reviews.CanReviewDish(authSubjectID(c, 0), dishID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Review eligibility", result)
}

// ListReviewsByDish -> paged public listing
func (rc *ReviewController) ListReviewsByDish(c *gin.Context) {
	dishID := parseUintParam(c, "dish_id")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	reviews, err := rc.Reviews.ListReviewsByDish(dishID, limit, offset)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reviews for dish", reviews)
}

// authSubjectID prefers the authenticated subject when a token is present;
// QR-flow requests carry the customer id in the body or query instead.
func authSubjectID(c *gin.Context, fromBody uint) uint {
	if v, ok := c.Get("subjectID"); ok {
		if id, ok := v.(uint); ok && id != 0 {
			return id
		}
	}
	if fromBody != 0 {
		return fromBody
	}
	if v, _ := strconv.ParseUint(c.Query("customer_id"), 10, 64); v != 0 {
		return uint(v)
	}
	return 0
}
