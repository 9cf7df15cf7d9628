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
	"github.com/tabletap/ordering-backend/utils"
)

func setupTestDBForReviews(name string) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	err = db.AutoMigrate(
		&models.Tenant{}, &models.Table{}, &models.Customer{},
		&models.DishCategory{}, &models.Dish{},
		&models.Order{}, &models.OrderItem{},
		&models.Review{}, &models.DishRating{},
	)
	if err != nil {
		panic(err)
	}
	// Seed: two customers who both completed an order containing dish 1
	db.Create(&models.Customer{Name: "An", Email: "an@example.com", Password: "x"})
	db.Create(&models.Customer{Name: "Binh", Email: "binh@example.com", Password: "x"})
	db.Create(&models.Dish{TenantID: 1, CategoryID: 1, Name: "Pho Bo", Price: 50000, ImageURLs: []string{}, Available: true})
	for customerID := uint(1); customerID <= 2; customerID++ {
		id := customerID
		order := models.Order{TenantID: 1, TableID: 1, CustomerID: &id, Status: "Completed", TotalAmount: 50000, DisplayOrder: "ORD-TEST"}
		db.Create(&order)
		db.Create(&models.OrderItem{TenantID: 1, OrderID: order.ID, DishID: 1, Quantity: 1, UnitPrice: 50000, Status: "Completed"})
	}
	return db
}

func setupReviewRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	reviewCtrl := controllers.NewReviewController(db)
	ratingCtrl := controllers.NewRatingController(db)
	router.POST("/reviews", reviewCtrl.CreateReview)
	router.PATCH("/reviews/:review_id", reviewCtrl.UpdateReview)
	router.DELETE("/reviews/:review_id", reviewCtrl.DeleteReview)
	router.GET("/dishes/:dish_id/reviews", reviewCtrl.ListReviewsByDish)
	router.GET("/dishes/:dish_id/can-review", reviewCtrl.CanReviewDish)
	router.GET("/dish-ratings/:dish_id", ratingCtrl.GetDishRating)
	router.POST("/dish-ratings/bulk", ratingCtrl.GetDishRatingsBulk)
	return router
}

func TestReviewLifecycleKeepsAggregateInSync(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForReviews("reviewflow")
	router := setupReviewRouter(db)

	postJSON := func(path string, payload interface{}) *httptest.ResponseRecorder {
		body, _ := json.Marshal(payload)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", path, bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		return w
	}

	// Eligibility before reviewing
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/dishes/1/can-review?customer_id=1", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	var eligResp utils.JSONResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &eligResp))
	assert.True(t, eligResp.Data.(map[string]interface{})["can_review"].(bool))

	// Both customers review the dish
	w = postJSON("/reviews", map[string]interface{}{"customer_id": 1, "dish_id": 1, "rating": 5, "comment": "excellent broth"})
	assert.Equal(t, http.StatusCreated, w.Code)
	var createResp utils.JSONResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &createResp))
	reviewID := strconv.Itoa(int(createResp.Data.(map[string]interface{})["id"].(float64)))

	w = postJSON("/reviews", map[string]interface{}{"customer_id": 2, "dish_id": 1, "rating": 4})
	assert.Equal(t, http.StatusCreated, w.Code)

	// Aggregate reflects both
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/dish-ratings/1", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	var ratingResp utils.JSONResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &ratingResp))
	rating := ratingResp.Data.(map[string]interface{})
	assert.Equal(t, float64(2), rating["total_reviews"])
	assert.Equal(t, 4.5, rating["average_rating"])
	assert.Equal(t, float64(1), rating["rating4"])
	assert.Equal(t, float64(1), rating["rating5"])

	// A second review from customer 1 is rejected
	w = postJSON("/reviews", map[string]interface{}{"customer_id": 1, "dish_id": 1, "rating": 3})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Customer 2 cannot touch customer 1's review
	body, _ := json.Marshal(map[string]interface{}{"rating": 1})
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("PATCH", "/reviews/"+reviewID+"?customer_id=2", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// The owner updates it, aggregate follows
	body, _ = json.Marshal(map[string]interface{}{"rating": 3, "comment": "second visit was weaker"})
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("PATCH", "/reviews/"+reviewID+"?customer_id=1", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/dish-ratings/1", nil)
	router.ServeHTTP(w, req)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &ratingResp))
	rating = ratingResp.Data.(map[string]interface{})
	assert.Equal(t, 3.5, rating["average_rating"])
	assert.Equal(t, float64(1), rating["rating3"])
	assert.Equal(t, float64(0), rating["rating5"])

	// The owner deletes it
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("DELETE", "/reviews/"+reviewID+"?customer_id=1", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/dish-ratings/1", nil)
	router.ServeHTTP(w, req)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &ratingResp))
	rating = ratingResp.Data.(map[string]interface{})
	assert.Equal(t, float64(1), rating["total_reviews"])
	assert.Equal(t, float64(4), rating["average_rating"])

	// Public listing shows the surviving review
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/dishes/1/reviews", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	var listResp utils.JSONResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	assert.Len(t, listResp.Data.([]interface{}), 1)
}

func TestReviewRequiresQualifyingOrderOverHTTP(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForReviews("reviewnoorder")
	router := setupReviewRouter(db)

	// Customer 1 never ordered dish 2
	db.Create(&models.Dish{TenantID: 1, CategoryID: 1, Name: "Banh Mi", Price: 25000, ImageURLs: []string{}, Available: true})

	body, _ := json.Marshal(map[string]interface{}{"customer_id": 1, "dish_id": 2, "rating": 5})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/reviews", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/dishes/2/can-review?customer_id=1", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	var resp utils.JSONResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.False(t, data["can_review"].(bool))
	assert.NotEmpty(t, data["reason"])
}

func TestDishRatingEndpointsZeroState(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForReviews("reviewzero")
	router := setupReviewRouter(db)

	// Unreviewed dish returns the zero shape without creating a row
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/dish-ratings/1", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp utils.JSONResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	rating := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(1), rating["dish_id"])
	assert.Equal(t, float64(0), rating["total_reviews"])
	assert.Equal(t, float64(0), rating["average_rating"])

	var rows int64
	db.Model(&models.DishRating{}).Count(&rows)
	assert.Zero(t, rows)

	// Bulk endpoint fills zero defaults for unknown dishes
	body, _ := json.Marshal(map[string]interface{}{"dish_ids": []uint{1, 77}})
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/dish-ratings/bulk", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	bulk := resp.Data.(map[string]interface{})
	assert.Len(t, bulk, 2)
	assert.Equal(t, float64(0), bulk["77"].(map[string]interface{})["total_reviews"])
}
