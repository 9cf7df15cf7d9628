package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tabletap/ordering-backend/controllers"
	"github.com/tabletap/ordering-backend/models"
	"github.com/tabletap/ordering-backend/services"
	"github.com/tabletap/ordering-backend/utils"
)

func setupTestDBForOrders(name string) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	err = db.AutoMigrate(
		&models.Tenant{}, &models.Table{}, &models.Customer{},
		&models.DishCategory{}, &models.Dish{},
		&models.Order{}, &models.OrderItem{}, &models.Payment{},
	)
	if err != nil {
		panic(err)
	}
	// Seed: one tenant with a table and two dishes, plus a second tenant's dish
	db.Create(&models.Tenant{Name: "Pho Corner", Slug: "pho-corner"})
	db.Create(&models.Table{TenantID: 1, TableNumber: "A1", QRSlug: "qr-a1", Status: "available"})
	db.Create(&models.DishCategory{TenantID: 1, Name: "Mains"})
	db.Create(&models.Dish{TenantID: 1, CategoryID: 1, Name: "Pho Bo", Price: 50000, ImageURLs: []string{}, Available: true})
	db.Create(&models.Dish{TenantID: 1, CategoryID: 1, Name: "Iced Tea", Price: 15000, ImageURLs: []string{}, Available: true})
	db.Create(&models.Dish{TenantID: 2, CategoryID: 1, Name: "Foreign Dish", Price: 10000, ImageURLs: []string{}, Available: true})
	return db
}

func setupOrderRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	orderCtrl := controllers.NewOrderController(db, services.NewStaffBridge())
	router.POST("/orders", orderCtrl.CreateOrder)
	router.GET("/orders", orderCtrl.GetAllOrders)
	router.GET("/orders/:order_id", orderCtrl.GetOrderByID)
	router.PATCH("/orders/:order_id/status", orderCtrl.UpdateOrderStatus)
	router.DELETE("/orders/:order_id", orderCtrl.DeleteOrder)
	return router
}

func TestOrderCheckoutFlow(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders("orderflow")
	router := setupOrderRouter(db)

	payload := map[string]interface{}{
		"tenant_id": 1,
		"table_id":  1,
		"dishes": []map[string]interface{}{
			{"dish_id": 1, "quantity": 2},
			{"dish_id": 2, "quantity": 1, "note": "no ice"},
		},
	}
	body, _ := json.Marshal(payload)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/orders", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var createResp utils.JSONResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &createResp))
	assert.True(t, createResp.Success)

	created := createResp.Data.(map[string]interface{})
	assert.Equal(t, float64(2*50000+15000), created["total_amount"])
	assert.Equal(t, "Pending", created["status"])
	assert.Contains(t, created["display_order"], "ORD-")
	items := created["items"].([]interface{})
	assert.Len(t, items, 2)
	first := items[0].(map[string]interface{})
	assert.Equal(t, float64(50000), first["unit_price"])

	orderID := strconv.Itoa(int(created["id"].(float64)))

	// List for the tenant
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/orders?tenant_id=1", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var listResp utils.JSONResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	assert.Len(t, listResp.Data.([]interface{}), 1)

	// Detail
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/orders/"+orderID+"?tenant_id=1", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// Staff completes the order
	statusBody, _ := json.Marshal(map[string]interface{}{"tenant_id": 1, "status": "Completed"})
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("PATCH", "/orders/"+orderID+"/status", bytes.NewBuffer(statusBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var statusResp utils.JSONResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &statusResp))
	updated := statusResp.Data.(map[string]interface{})
	assert.Equal(t, "Completed", updated["status"])
	assert.NotNil(t, updated["completed_at"])
}

func TestCreateOrderRejectionsOverHTTP(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders("orderreject")
	router := setupOrderRouter(db)

	post := func(payload map[string]interface{}) *httptest.ResponseRecorder {
		body, _ := json.Marshal(payload)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/orders", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		return w
	}

	// Dish owned by another tenant
	w := post(map[string]interface{}{
		"tenant_id": 1, "table_id": 1,
		"dishes": []map[string]interface{}{{"dish_id": 3, "quantity": 1}},
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	var resp utils.JSONResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)

	// Unknown dish
	w = post(map[string]interface{}{
		"tenant_id": 1, "table_id": 1,
		"dishes": []map[string]interface{}{{"dish_id": 999, "quantity": 1}},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Zero quantity line rejects the whole request
	w = post(map[string]interface{}{
		"tenant_id": 1, "table_id": 1,
		"dishes": []map[string]interface{}{
			{"dish_id": 1, "quantity": 1},
			{"dish_id": 2, "quantity": 0},
		},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Empty cart
	w = post(map[string]interface{}{"tenant_id": 1, "table_id": 1, "dishes": []map[string]interface{}{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Missing tenant on the list endpoint
	w2 := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/orders", nil)
	router.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusBadRequest, w2.Code)

	// None of the rejections may have persisted anything
	var orderCount int64
	db.Model(&models.Order{}).Count(&orderCount)
	assert.Zero(t, orderCount)
}

func TestDeleteOrderRemovesItems(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders("orderdelete")
	router := setupOrderRouter(db)

	body, _ := json.Marshal(map[string]interface{}{
		"tenant_id": 1, "table_id": 1,
		"dishes": []map[string]interface{}{{"dish_id": 1, "quantity": 1}},
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/orders", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp utils.JSONResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	orderID := strconv.Itoa(int(resp.Data.(map[string]interface{})["id"].(float64)))

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("DELETE", "/orders/"+orderID+"?tenant_id=1", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var orderCount, itemCount int64
	db.Model(&models.Order{}).Count(&orderCount)
	db.Model(&models.OrderItem{}).Count(&itemCount)
	assert.Zero(t, orderCount)
	assert.Zero(t, itemCount)
}
