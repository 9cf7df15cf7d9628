package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wcharczuk/go-chart/v2"
	"gorm.io/gorm"

	"github.com/tabletap/ordering-backend/models"
	"github.com/tabletap/ordering-backend/services"
	"github.com/tabletap/ordering-backend/utils"
)

type AdminController struct {
	DB *gorm.DB
}

func NewAdminController(db *gorm.DB) *AdminController {
	return &AdminController{DB: db}
}

// GetStats -> aggregate numbers for the admin dashboard
func (ac *AdminController) GetStats(c *gin.Context) {
	tenantID := parseUintQuery(c, "tenant_id")
	if tenantID == 0 {
		utils.RespondAppError(c, utils.NewValidationError("tenant_id query parameter is required"))
		return
	}

	var stats struct {
		TotalOrders     int64   `json:"total_orders"`
		CompletedOrders int64   `json:"completed_orders"`
		TotalRevenue    float64 `json:"total_revenue"`
		PopularDishes   []struct {
			DishID   uint    `json:"dish_id"`
			DishName string  `json:"dish_name"`
			Count    int64   `json:"count"`
			Revenue  float64 `json:"revenue"`
		} `json:"popular_dishes"`
	}

	ac.DB.Model(&models.Order{}).Where("tenant_id = ?", tenantID).Count(&stats.TotalOrders)
	ac.DB.Model(&models.Order{}).
		Where("tenant_id = ? AND status = ?", tenantID, services.OrderStatusCompleted).
		Count(&stats.CompletedOrders)
	ac.DB.Model(&models.Order{}).
		Where("tenant_id = ? AND status = ?", tenantID, services.OrderStatusCompleted).
		Select("COALESCE(SUM(total_amount), 0)").
		Row().Scan(&stats.TotalRevenue)

	ac.DB.Raw(`
		SELECT d.id as dish_id, d.name as dish_name,
		COUNT(oi.id) as count, SUM(oi.unit_price * oi.quantity) as revenue
		FROM order_items oi
		JOIN dishes d ON oi.dish_id = d.id
		WHERE oi.tenant_id = ?
		GROUP BY d.id, d.name
		ORDER BY count DESC
		LIMIT 10
	`, tenantID).Scan(&stats.PopularDishes)

	utils.RespondJSON(c, http.StatusOK, "Admin stats", stats)
}

// GetRevenueChart -> PNG bar chart of daily revenue, last 7 days
func (ac *AdminController) GetRevenueChart(c *gin.Context) {
	tenantID := parseUintQuery(c, "tenant_id")
	if tenantID == 0 {
		utils.RespondAppError(c, utils.NewValidationError("tenant_id query parameter is required"))
		return
	}

	now := time.Now()
	var bars []chart.Value
	for i := 6; i >= 0; i-- {
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -i)
		dayEnd := dayStart.AddDate(0, 0, 1)

		var revenue float64
		ac.DB.Model(&models.Order{}).
			Where("tenant_id = ? AND status = ? AND created_at >= ? AND created_at < ?",
				tenantID, services.OrderStatusCompleted, dayStart, dayEnd).
			Select("COALESCE(SUM(total_amount), 0)").
			Row().Scan(&revenue)

		bars = append(bars, chart.Value{
			Label: dayStart.Format("02/01"),
			Value: revenue,
		})
	}

	graph := chart.BarChart{
		Title:    "Revenue, last 7 days",
		Height:   400,
		BarWidth: 50,
		Bars:     bars,
	}

	c.Header("Content-Type", "image/png")
	if err := graph.Render(chart.PNG, c.Writer); err != nil {
		utils.ErrorLogger.Printf("chart render failed: %v", err)
	}
}
