package models

import "time"

type OrderItem struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	OrderID uint `gorm:"not null;index" json:"order_id"`
	// Omitting Order field from JSON to avoid recursive nesting
	Order    Order  `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	TenantID uint   `gorm:"not null;index" json:"tenant_id"`
	DishID   uint   `gorm:"not null" json:"dish_id"`
	Dish     Dish   `gorm:"foreignKey:DishID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"dish"`
	Quantity int    `gorm:"not null" json:"quantity"`
	// UnitPrice is the catalogue price snapshotted at order time. It never
	// follows later dish price changes.
	UnitPrice float64   `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Note      string    `gorm:"type:text" json:"note"`
	Status    string    `gorm:"type:varchar(20);not null;default:'Pending'" json:"status"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
