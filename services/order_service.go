package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tabletap/ordering-backend/models"
	"github.com/tabletap/ordering-backend/utils"
)

// Order statuses
const (
	OrderStatusPending   = "Pending"
	OrderStatusApproved  = "Approved"
	OrderStatusServed    = "Served"
	OrderStatusCompleted = "Completed"
	OrderStatusCancelled = "Cancelled"
	OrderStatusUnsubmit  = "Unsubmit"
)

var orderStatuses = map[string]bool{
	OrderStatusPending:   true,
	OrderStatusApproved:  true,
	OrderStatusServed:    true,
	OrderStatusCompleted: true,
	OrderStatusCancelled: true,
	OrderStatusUnsubmit:  true,
}

// OrderService handles order pricing and creation.
type OrderService struct {
	db *gorm.DB
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db}
}

type OrderLineInput struct {
	DishID   uint   `json:"dish_id"`
	Quantity int    `json:"quantity"`
	Note     string `json:"note"`
}

type CreateOrderInput struct {
	TenantID   uint             `json:"tenant_id"`
	TableID    uint             `json:"table_id"`
	CustomerID *uint            `json:"customer_id,omitempty"`
	Lines      []OrderLineInput `json:"dishes"`
}

// CreateOrder resolves authoritative dish prices, computes the total and
// persists header plus items in one transaction. The dish price is snapshotted
// into each item; later catalogue price edits never touch existing orders.
func (s *OrderService) CreateOrder(input CreateOrderInput) (*models.Order, error) {
	if input.TenantID == 0 {
		return nil, utils.NewValidationError("tenant id is required")
	}
	if input.TableID == 0 {
		return nil, utils.NewValidationError("table id is required")
	}
	if len(input.Lines) == 0 {
		return nil, utils.NewValidationError("order must contain at least one item")
	}
	for _, line := range input.Lines {
		if line.DishID == 0 || line.Quantity <= 0 {
			return nil, utils.NewValidationError("each order line needs a dish id and a positive quantity")
		}
	}

	var created models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var total float64
		items := make([]models.OrderItem, 0, len(input.Lines))

		for _, line := range input.Lines {
			var dish models.Dish
			if err := tx.First(&dish, line.DishID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return utils.NewNotFoundError("dish %d not found", line.DishID)
				}
				return err
			}
			if dish.TenantID != input.TenantID {
				return utils.NewAccessDeniedError("access denied: dish %d belongs to another tenant", line.DishID)
			}

			total += dish.Price * float64(line.Quantity)
			items = append(items, models.OrderItem{
				TenantID:  input.TenantID,
				DishID:    dish.ID,
				Quantity:  line.Quantity,
				UnitPrice: dish.Price,
				Note:      line.Note,
				Status:    OrderStatusPending,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			})
		}

		now := time.Now()
		displayCode, err := s.nextDisplayCode(tx, input.TenantID, now)
		if err != nil {
			return err
		}

		created = models.Order{
			TenantID:     input.TenantID,
			TableID:      input.TableID,
			CustomerID:   input.CustomerID,
			Status:       OrderStatusPending,
			TotalAmount:  total,
			DisplayOrder: displayCode,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}

		for i := range items {
			items[i].OrderID = created.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		created.OrderItems = items
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &created, nil
}

// nextDisplayCode builds a human readable code with a per-tenant daily
// sequence suffix so two orders in the same second cannot collide.
func (s *OrderService) nextDisplayCode(tx *gorm.DB, tenantID uint, now time.Time) (string, error) {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var todayCount int64
	if err := tx.Model(&models.Order{}).
		Where("tenant_id = ? AND created_at >= ?", tenantID, startOfDay).
		Count(&todayCount).Error; err != nil {
		return "", err
	}

	return fmt.Sprintf("ORD-%s-%03d", now.Format("060102-150405"), todayCount+1), nil
}

// GetOrderByID returns the order with its items. When tenantID is non-zero a
// mismatch is rejected as a cross-tenant read.
func (s *OrderService) GetOrderByID(id, tenantID uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("order %d not found", id)
		}
		return nil, err
	}
	if tenantID != 0 && order.TenantID != tenantID {
		return nil, utils.NewAccessDeniedError("access denied: order %d belongs to another tenant", id)
	}

	if err := s.db.Where("order_id = ?", order.ID).Find(&order.OrderItems).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders returns all orders for a tenant, newest first, items included.
func (s *OrderService) ListOrders(tenantID uint) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.Preload("OrderItems").
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

// UpdateOrderStatus applies a staff-side transition and stamps completed_at
// when an order reaches Completed.
func (s *OrderService) UpdateOrderStatus(id, tenantID uint, status string) (*models.Order, error) {
	if !orderStatuses[status] {
		return nil, utils.NewValidationError("unknown order status %q", status)
	}

	order, err := s.GetOrderByID(id, tenantID)
	if err != nil {
		return nil, err
	}

	order.Status = status
	order.UpdatedAt = time.Now()
	if status == OrderStatusCompleted && order.CompletedAt == nil {
		now := time.Now()
		order.CompletedAt = &now
	}
	if err := s.db.Save(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// DeleteOrder removes the order header, items cascade.
func (s *OrderService) DeleteOrder(id, tenantID uint) error {
	order, err := s.GetOrderByID(id, tenantID)
	if err != nil {
		return err
	}
	return s.db.Select("OrderItems").Delete(order).Error
}
