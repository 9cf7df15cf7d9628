package router

import (
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tabletap/ordering-backend/controllers"
	"github.com/tabletap/ordering-backend/middlewares"
	"github.com/tabletap/ordering-backend/services"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// Uploaded dish images
	uploadsPath := filepath.Join("public", "uploads")
	r.Static("/uploads", uploadsPath)

	r.Use(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/uploads/") {
			// Only image files may be served from uploads
			lower := strings.ToLower(c.Request.URL.Path)
			if !strings.HasSuffix(lower, ".jpg") &&
				!strings.HasSuffix(lower, ".jpeg") &&
				!strings.HasSuffix(lower, ".png") &&
				!strings.HasSuffix(lower, ".gif") &&
				!strings.HasSuffix(lower, ".webp") {
				c.AbortWithStatus(403)
				return
			}
		}
		c.Next()
	})

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	bridge := services.NewStaffBridge()
	momo := services.NewMoMoService(db)

	tenantCtrl := controllers.NewTenantController(db)
	tableCtrl := controllers.NewTableController(db)
	customerCtrl := controllers.NewCustomerController(db)
	categoryCtrl := controllers.NewDishCategoryController(db)
	dishCtrl := controllers.NewDishController(db)
	orderCtrl := controllers.NewOrderController(db, bridge)
	reviewCtrl := controllers.NewReviewController(db)
	ratingCtrl := controllers.NewRatingController(db)
	paymentCtrl := controllers.NewPaymentController(db, momo)
	waiterCtrl := controllers.NewWaiterController(db)
	staffCtrl := controllers.NewStaffController(db)
	adminCtrl := controllers.NewAdminController(db)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Auth endpoints get the strict limiter
	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/customers/register", customerCtrl.Register)
		public.POST("/customers/login", customerCtrl.Login)
		public.POST("/customers/otp/request", customerCtrl.RequestOTP)
		public.POST("/customers/otp/verify", customerCtrl.VerifyOTP)
		public.POST("/staff/login", staffCtrl.Login)
	}

	// -- QR SEATING FLOW (no auth, the QR slug is the entry ticket) --
	r.GET("/qr/:qr_slug", tableCtrl.ResolveTableByQR)

	// Catalogue browsing
	r.GET("/categories", categoryCtrl.GetAllCategories)
	r.GET("/dishes", dishCtrl.GetAllDishes)
	r.GET("/dishes/:dish_id", dishCtrl.GetDishByID)

	// Ordering
	r.POST("/orders", orderCtrl.CreateOrder)
	r.GET("/orders/:order_id", orderCtrl.GetOrderByID)
	r.GET("/orders/:order_id/receipt", orderCtrl.GetOrderReceipt)

	// Reviews and ratings
	r.GET("/dishes/:dish_id/reviews", reviewCtrl.ListReviewsByDish)
	r.GET("/dish-ratings/:dish_id", ratingCtrl.GetDishRating)
	r.POST("/dish-ratings/bulk", ratingCtrl.GetDishRatingsBulk)

	customer := r.Group("/")
	customer.Use(middlewares.AuthMiddleware())
	{
		customer.POST("/reviews", reviewCtrl.CreateReview)
		customer.PATCH("/reviews/:review_id", reviewCtrl.UpdateReview)
		customer.DELETE("/reviews/:review_id", reviewCtrl.DeleteReview)
		customer.GET("/dishes/:dish_id/can-review", reviewCtrl.CanReviewDish)
	}

	// Waiter calls: placing one is public (table side), handling needs staff
	r.POST("/waiter-calls", waiterCtrl.CallWaiter)

	// Payments
	r.POST("/payments/momo", paymentCtrl.CreateMoMoIntent)
	r.POST("/payments/momo/ipn", paymentCtrl.MoMoIPN)

	// ----------------------------------------------------------------
	//                      STAFF ROUTES
	// ----------------------------------------------------------------
	staff := r.Group("/staff")
	staff.Use(middlewares.AuthMiddleware())
	staff.Use(middlewares.RequireRoles("staff"))
	{
		staff.GET("/ws", waiterCtrl.StaffSocket)
		staff.GET("/waiter-calls", waiterCtrl.GetPendingCalls)
		staff.PATCH("/waiter-calls/:call_id/ack", waiterCtrl.AcknowledgeCall)

		staff.GET("/orders", orderCtrl.GetAllOrders)
		staff.PATCH("/orders/:order_id/status", orderCtrl.UpdateOrderStatus)
		staff.DELETE("/orders/:order_id", orderCtrl.DeleteOrder)

		staff.GET("/tables", tableCtrl.GetAllTables)
		staff.POST("/tables", tableCtrl.CreateTable)
		staff.PATCH("/tables/:table_id/status", tableCtrl.UpdateTableStatus)
		staff.DELETE("/tables/:table_id", tableCtrl.DeleteTable)

		staff.POST("/categories", categoryCtrl.CreateCategory)
		staff.PATCH("/categories/:category_id", categoryCtrl.UpdateCategory)
		staff.DELETE("/categories/:category_id", categoryCtrl.DeleteCategory)

		staff.POST("/dishes", dishCtrl.CreateDish)
		staff.PATCH("/dishes/:dish_id", dishCtrl.UpdateDish)
		staff.DELETE("/dishes/:dish_id", dishCtrl.DeleteDish)
		staff.POST("/dishes/:dish_id/image", dishCtrl.UploadDishImage)
	}

	admin := r.Group("/admin")
	admin.Use(middlewares.AuthMiddleware())
	admin.Use(middlewares.RequireRoles("admin"))
	{
		admin.GET("/tenants", tenantCtrl.GetAllTenants)
		admin.POST("/tenants", tenantCtrl.CreateTenant)
		admin.POST("/staff/register", staffCtrl.Register)
		admin.GET("/stats", adminCtrl.GetStats)
		admin.GET("/stats/revenue-chart", adminCtrl.GetRevenueChart)
	}

	return r
}
