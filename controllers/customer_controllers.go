package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/tabletap/ordering-backend/models"
	"github.com/tabletap/ordering-backend/utils"
)

type CustomerController struct {
	DB *gorm.DB
}

func NewCustomerController(db *gorm.DB) *CustomerController {
	return &CustomerController{DB: db}
}

// Register -> create customer account with hashed password
func (cc *CustomerController) Register(c *gin.Context) {
	type RegisterReq struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Phone    string `json:"phone"`
		Password string `json:"password" binding:"required,min=8"`
	}
	var req RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var existing int64
	cc.DB.Model(&models.Customer{}).Where("email = ?", req.Email).Count(&existing)
	if existing > 0 {
		utils.RespondAppError(c, utils.NewValidationError("email is already registered"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	customer := models.Customer{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  string(hashed),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := cc.DB.Create(&customer).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Customer registered", customer)
}

// Login -> issue a customer JWT
func (cc *CustomerController) Login(c *gin.Context) {
	type LoginReq struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	var req LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var customer models.Customer
	if err := cc.DB.Where("email = ?", req.Email).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid email or password"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(customer.Password), []byte(req.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid email or password"))
		return
	}

	token, err := utils.GenerateToken(customer.ID, 0, utils.RoleCustomer)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token":    token,
		"customer": customer,
	})
}

// RequestOTP -> issue a verification code for the email. Delivery happens
// outside this service; the code is logged for operators.
func (cc *CustomerController) RequestOTP(c *gin.Context) {
	type OTPReq struct {
		Email string `json:"email" binding:"required,email"`
	}
	var req OTPReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var customer models.Customer
	if err := cc.DB.Where("email = ?", req.Email).First(&customer).Error; err != nil {
		utils.RespondAppError(c, utils.NewNotFoundError("no account for this email"))
		return
	}

	code, err := utils.IssueOTP(req.Email)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.InfoLogger.Printf("OTP issued for %s: %s", req.Email, code)

	utils.RespondJSON(c, http.StatusOK, "OTP sent", nil)
}

// VerifyOTP -> mark the customer's email as verified
func (cc *CustomerController) VerifyOTP(c *gin.Context) {
	type VerifyReq struct {
		Email string `json:"email" binding:"required,email"`
		Code  string `json:"code" binding:"required"`
	}
	var req VerifyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := utils.VerifyOTP(req.Email, req.Code); err != nil {
		utils.RespondAppError(c, utils.NewValidationError("%s", err.Error()))
		return
	}

	if err := cc.DB.Model(&models.Customer{}).
		Where("email = ?", req.Email).
		Updates(map[string]interface{}{"email_verified": true, "updated_at": time.Now()}).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Email verified", nil)
}
