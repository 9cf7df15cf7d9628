package services

import (
	"errors"
	"math"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tabletap/ordering-backend/models"
	"github.com/tabletap/ordering-backend/utils"
)

// Order statuses that qualify a customer to review a dish they ordered.
var reviewQualifyingStatuses = []string{OrderStatusCompleted, OrderStatusServed}

// ReviewService handles the review lifecycle and keeps the per-dish rating
// aggregate in sync. Every mutation and its recompute run in one transaction,
// so a failed recompute rolls the review write back instead of leaving a stale
// aggregate behind.
type ReviewService struct {
	db *gorm.DB
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{db: db}
}

type CreateReviewInput struct {
	CustomerID uint     `json:"customer_id"`
	DishID     uint     `json:"dish_id"`
	OrderID    *uint    `json:"order_id,omitempty"`
	Rating     int      `json:"rating"`
	Comment    string   `json:"comment"`
	Images     []string `json:"images,omitempty"`
}

type UpdateReviewInput struct {
	Rating  *int      `json:"rating,omitempty"`
	Comment *string   `json:"comment,omitempty"`
	Images  *[]string `json:"images,omitempty"`
}

type CanReviewResult struct {
	CanReview bool   `json:"can_review"`
	Reason    string `json:"reason,omitempty"`
}

// reviewEligibility is the single predicate behind both CanReviewDish and
// CreateReview: the customer must hold an order item for the dish on an order
// with a qualifying status, and must not have reviewed the dish already.
func (s *ReviewService) reviewEligibility(tx *gorm.DB, customerID, dishID uint) (CanReviewResult, error) {
	var orderedCount int64
	err := tx.Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.customer_id = ? AND order_items.dish_id = ? AND orders.status IN ?",
			customerID, dishID, reviewQualifyingStatuses).
		Count(&orderedCount).Error
	if err != nil {
		return CanReviewResult{}, err
	}
	if orderedCount == 0 {
		return CanReviewResult{Reason: "you must order this dish before reviewing it"}, nil
	}

	var existingCount int64
	err = tx.Model(&models.Review{}).
		Where("customer_id = ? AND dish_id = ?", customerID, dishID).
		Count(&existingCount).Error
	if err != nil {
		return CanReviewResult{}, err
	}
	if existingCount > 0 {
		return CanReviewResult{Reason: "you have already reviewed this dish"}, nil
	}

	return CanReviewResult{CanReview: true}, nil
}

// CanReviewDish is the read-only form of the predicate.
func (s *ReviewService) CanReviewDish(customerID, dishID uint) (CanReviewResult, error) {
	return s.reviewEligibility(s.db, customerID, dishID)
}

func (s *ReviewService) CreateReview(input CreateReviewInput) (*models.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, utils.NewValidationError("rating must be between 1 and 5")
	}

	var review models.Review
	err := s.db.Transaction(func(tx *gorm.DB) error {
		eligibility, err := s.reviewEligibility(tx, input.CustomerID, input.DishID)
		if err != nil {
			return err
		}
		if !eligibility.CanReview {
			return utils.NewValidationError("%s", eligibility.Reason)
		}

		review = models.Review{
			CustomerID: input.CustomerID,
			DishID:     input.DishID,
			OrderID:    input.OrderID,
			Rating:     input.Rating,
			Comment:    input.Comment,
			Images:     input.Images,
			CreatedAt:  time.Now(),
			UpdatedAt:  time.Now(),
		}
		if err := tx.Create(&review).Error; err != nil {
			return err
		}

		return s.recomputeDishRating(tx, input.DishID)
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (s *ReviewService) UpdateReview(id, customerID uint, input UpdateReviewInput) (*models.Review, error) {
	if input.Rating != nil && (*input.Rating < 1 || *input.Rating > 5) {
		return nil, utils.NewValidationError("rating must be between 1 and 5")
	}

	var review models.Review
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&review, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewNotFoundError("review %d not found", id)
			}
			return err
		}
		if review.CustomerID != customerID {
			return utils.NewValidationError("not your review")
		}

		if input.Rating != nil {
			review.Rating = *input.Rating
		}
		if input.Comment != nil {
			review.Comment = *input.Comment
		}
		if input.Images != nil {
			review.Images = *input.Images
		}
		review.UpdatedAt = time.Now()

		if err := tx.Save(&review).Error; err != nil {
			return err
		}
		// The dish id cannot change across an update, so this recompute
		// covers the only affected aggregate.
		return s.recomputeDishRating(tx, review.DishID)
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (s *ReviewService) DeleteReview(id, customerID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var review models.Review
		if err := tx.First(&review, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewNotFoundError("review %d not found", id)
			}
			return err
		}
		if review.CustomerID != customerID {
			return utils.NewValidationError("not your review")
		}

		if err := tx.Delete(&review).Error; err != nil {
			return err
		}
		return s.recomputeDishRating(tx, review.DishID)
	})
}

// ListReviewsByDish returns a page of reviews for a dish, newest first.
func (s *ReviewService) ListReviewsByDish(dishID uint, limit, offset int) ([]models.Review, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	var reviews []models.Review
	err := s.db.Where("dish_id = ?", dishID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&reviews).Error
	return reviews, err
}

// recomputeDishRating rebuilds the denormalized aggregate for one dish from
// the full review set and upserts it on dish_id. O(n) per mutation, but the
// rescan makes each recompute self-healing: whichever concurrent recompute
// lands last leaves a consistent row.
func (s *ReviewService) recomputeDishRating(tx *gorm.DB, dishID uint) error {
	var reviews []models.Review
	if err := tx.Where("dish_id = ?", dishID).Find(&reviews).Error; err != nil {
		return err
	}

	rating := models.DishRating{
		DishID:    dishID,
		UpdatedAt: time.Now(),
	}

	if len(reviews) > 0 {
		var sum int
		for _, review := range reviews {
			sum += review.Rating
			switch review.Rating {
			case 1:
				rating.Rating1++
			case 2:
				rating.Rating2++
			case 3:
				rating.Rating3++
			case 4:
				rating.Rating4++
			case 5:
				rating.Rating5++
			}
		}
		rating.TotalReviews = len(reviews)
		rating.AverageRating = math.Round(float64(sum)/float64(len(reviews))*100) / 100
	}

	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "dish_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_reviews", "average_rating",
			"rating1", "rating2", "rating3", "rating4", "rating5",
			"updated_at",
		}),
	}).Create(&rating).Error
}

// GetDishRating returns the aggregate for a dish, or the zero shape when no
// row exists yet. The read never creates a row.
func (s *ReviewService) GetDishRating(dishID uint) (*models.DishRating, error) {
	var rating models.DishRating
	err := s.db.Where("dish_id = ?", dishID).First(&rating).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.DishRating{DishID: dishID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

// GetDishRatings returns aggregates keyed by dish id, filling zero defaults
// for any requested dish without a row.
func (s *ReviewService) GetDishRatings(dishIDs []uint) (map[uint]models.DishRating, error) {
	result := make(map[uint]models.DishRating, len(dishIDs))
	for _, id := range dishIDs {
		result[id] = models.DishRating{DishID: id}
	}
	if len(dishIDs) == 0 {
		return result, nil
	}

	var ratings []models.DishRating
	if err := s.db.Where("dish_id IN ?", dishIDs).Find(&ratings).Error; err != nil {
		return nil, err
	}
	for _, rating := range ratings {
		result[rating.DishID] = rating
	}
	return result, nil
}
