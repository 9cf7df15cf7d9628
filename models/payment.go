package models

import "time"

// Payment represents one MoMo payment attempt for an order.
type Payment struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	TenantID      uint       `json:"tenant_id" gorm:"not null;index"`
	OrderID       uint       `json:"order_id" gorm:"not null;index"`
	Order         Order      `json:"-" gorm:"foreignKey:OrderID"`
	Amount        float64    `json:"amount" gorm:"type:decimal(10,2);not null"`
	Status        string     `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	RequestID     string     `json:"request_id" gorm:"type:varchar(64);index"`
	TransactionID string     `json:"transaction_id" gorm:"type:varchar(64)"`
	PayURL        string     `json:"pay_url" gorm:"type:text"`
	PaymentTime   *time.Time `json:"payment_time,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
