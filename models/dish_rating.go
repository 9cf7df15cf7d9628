package models

import "time"

// DishRating is the denormalized per-dish review summary. One row per dish,
// overwritten in full on every review mutation.
type DishRating struct {
	ID            uint      `gorm:"primaryKey" json:"-"`
	DishID        uint      `gorm:"uniqueIndex;not null" json:"dish_id"`
	TotalReviews  int       `gorm:"not null;default:0" json:"total_reviews"`
	AverageRating float64   `gorm:"type:decimal(4,2);not null;default:0.00" json:"average_rating"`
	Rating1       int       `gorm:"not null;default:0" json:"rating1"`
	Rating2       int       `gorm:"not null;default:0" json:"rating2"`
	Rating3       int       `gorm:"not null;default:0" json:"rating3"`
	Rating4       int       `gorm:"not null;default:0" json:"rating4"`
	Rating5       int       `gorm:"not null;default:0" json:"rating5"`
	UpdatedAt     time.Time `json:"updated_at"`
}
