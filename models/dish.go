package models

import "time"

type Dish struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	TenantID    uint         `gorm:"not null;index" json:"tenant_id"`
	CategoryID  uint         `gorm:"not null" json:"category_id"`
	Category    DishCategory `gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Name        string       `gorm:"type:varchar(255);not null" json:"name"`
	Price       float64      `gorm:"type:decimal(10,2);not null" json:"price"`
	Description string       `gorm:"type:text" json:"description"`
	ImageURLs   []string     `gorm:"serializer:json;type:text" json:"image_urls"`
	Available   bool         `gorm:"not null;default:true" json:"available"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null" json:"updated_at"`
}
