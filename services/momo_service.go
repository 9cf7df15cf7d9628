package services

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tabletap/ordering-backend/models"
	"github.com/tabletap/ordering-backend/utils"
)

// Payment statuses
const (
	PaymentStatusPending   = "pending"
	PaymentStatusSuccess   = "success"
	PaymentStatusFailed    = "failed"
	PaymentStatusExpired   = "expired"
	PaymentStatusCancelled = "cancelled"
)

const paymentTimeout = 15 * time.Minute

// MoMoService creates signed payment intents against the MoMo gateway and
// applies IPN callbacks to payments and their orders.
type MoMoService struct {
	db          *gorm.DB
	partnerCode string
	accessKey   string
	secretKey   string
	endpoint    string
	redirectURL string
	ipnURL      string
	client      *http.Client
}

func NewMoMoService(db *gorm.DB) *MoMoService {
	return &MoMoService{
		db:          db,
		partnerCode: os.Getenv("MOMO_PARTNER_CODE"),
		accessKey:   os.Getenv("MOMO_ACCESS_KEY"),
		secretKey:   os.Getenv("MOMO_SECRET_KEY"),
		endpoint:    os.Getenv("MOMO_ENDPOINT"),
		redirectURL: os.Getenv("MOMO_REDIRECT_URL"),
		ipnURL:      os.Getenv("MOMO_IPN_URL"),
		client:      &http.Client{Timeout: 15 * time.Second},
	}
}

type momoCreateRequest struct {
	PartnerCode string `json:"partnerCode"`
	AccessKey   string `json:"accessKey"`
	RequestID   string `json:"requestId"`
	Amount      int64  `json:"amount"`
	OrderID     string `json:"orderId"`
	OrderInfo   string `json:"orderInfo"`
	RedirectURL string `json:"redirectUrl"`
	IpnURL      string `json:"ipnUrl"`
	ExtraData   string `json:"extraData"`
	RequestType string `json:"requestType"`
	Signature   string `json:"signature"`
}

type momoCreateResponse struct {
	ResultCode int    `json:"resultCode"`
	Message    string `json:"message"`
	PayURL     string `json:"payUrl"`
}

// MoMoIPN is the callback body MoMo posts after the customer pays.
type MoMoIPN struct {
	PartnerCode  string `json:"partnerCode"`
	OrderID      string `json:"orderId"`
	RequestID    string `json:"requestId"`
	Amount       int64  `json:"amount"`
	OrderInfo    string `json:"orderInfo"`
	OrderType    string `json:"orderType"`
	TransID      int64  `json:"transId"`
	ResultCode   int    `json:"resultCode"`
	Message      string `json:"message"`
	PayType      string `json:"payType"`
	ResponseTime int64  `json:"responseTime"`
	ExtraData    string `json:"extraData"`
	Signature    string `json:"signature"`
}

// signCreate builds the HMAC-SHA256 signature over the alphabetically keyed
// raw string the gateway expects.
func (s *MoMoService) signCreate(req momoCreateRequest) string {
	raw := fmt.Sprintf("accessKey=%s&amount=%d&extraData=%s&ipnUrl=%s&orderId=%s&orderInfo=%s&partnerCode=%s&redirectUrl=%s&requestId=%s&requestType=%s",
		s.accessKey, req.Amount, req.ExtraData, req.IpnURL, req.OrderID,
		req.OrderInfo, req.PartnerCode, req.RedirectURL, req.RequestID, req.RequestType)
	return s.hmacHex(raw)
}

func (s *MoMoService) signIPN(ipn MoMoIPN) string {
	raw := fmt.Sprintf("accessKey=%s&amount=%d&extraData=%s&message=%s&orderId=%s&orderInfo=%s&orderType=%s&partnerCode=%s&payType=%s&requestId=%s&responseTime=%d&resultCode=%d&transId=%d",
		s.accessKey, ipn.Amount, ipn.ExtraData, ipn.Message, ipn.OrderID,
		ipn.OrderInfo, ipn.OrderType, ipn.PartnerCode, ipn.PayType,
		ipn.RequestID, ipn.ResponseTime, ipn.ResultCode, ipn.TransID)
	return s.hmacHex(raw)
}

func (s *MoMoService) hmacHex(raw string) string {
	mac := hmac.New(sha256.New, []byte(s.secretKey))
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}

// CreateIntent creates a pending payment row and asks the gateway for a pay
// URL. The order total is the authoritative amount.
func (s *MoMoService) CreateIntent(order *models.Order) (*models.Payment, error) {
	if order.Status == OrderStatusCancelled {
		return nil, utils.NewValidationError("cannot pay a cancelled order")
	}

	payment := models.Payment{
		TenantID:  order.TenantID,
		OrderID:   order.ID,
		Amount:    order.TotalAmount,
		Status:    PaymentStatusPending,
		RequestID: uuid.NewString(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	req := momoCreateRequest{
		PartnerCode: s.partnerCode,
		AccessKey:   s.accessKey,
		RequestID:   payment.RequestID,
		Amount:      int64(order.TotalAmount),
		OrderID:     fmt.Sprintf("%s-%s", order.DisplayOrder, payment.RequestID[:8]),
		OrderInfo:   fmt.Sprintf("Order %s", order.DisplayOrder),
		RedirectURL: s.redirectURL,
		IpnURL:      s.ipnURL,
		ExtraData:   "",
		RequestType: "captureWallet",
	}
	req.Signature = s.signCreate(req)

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Post(s.endpoint+"/v2/gateway/api/create", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, utils.NewInternalError("momo gateway unreachable", err)
	}
	defer resp.Body.Close()

	var gatewayResp momoCreateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gatewayResp); err != nil {
		return nil, utils.NewInternalError("invalid momo response", err)
	}
	if gatewayResp.ResultCode != 0 {
		return nil, utils.NewValidationError("momo rejected the payment: %s", gatewayResp.Message)
	}

	payment.PayURL = gatewayResp.PayURL
	if err := s.db.Create(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// HandleIPN verifies the callback signature and marks payment and order. A
// non-zero result code fails the payment but leaves the order open for retry.
func (s *MoMoService) HandleIPN(ipn MoMoIPN) (*models.Payment, error) {
	if !hmac.Equal([]byte(s.signIPN(ipn)), []byte(ipn.Signature)) {
		return nil, utils.NewAccessDeniedError("access denied: invalid IPN signature")
	}

	var payment models.Payment
	if err := s.db.Where("request_id = ?", ipn.RequestID).First(&payment).Error; err != nil {
		return nil, utils.NewNotFoundError("payment for request %s not found", ipn.RequestID)
	}
	if payment.Status != PaymentStatusPending {
		// Gateway retries IPNs, ignore anything already settled.
		return &payment, nil
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		if ipn.ResultCode == 0 {
			payment.Status = PaymentStatusSuccess
			payment.TransactionID = fmt.Sprintf("%d", ipn.TransID)
			payment.PaymentTime = &now
		} else {
			payment.Status = PaymentStatusFailed
		}
		payment.UpdatedAt = now
		if err := tx.Save(&payment).Error; err != nil {
			return err
		}

		if payment.Status == PaymentStatusSuccess {
			return tx.Model(&models.Order{}).
				Where("id = ?", payment.OrderID).
				Updates(map[string]interface{}{"status": OrderStatusApproved, "updated_at": now}).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// StartTimeoutChecker expires payments that stayed pending past the window.
func (s *MoMoService) StartTimeoutChecker() {
	go func() {
		ticker := time.NewTicker(time.Minute)
		for range ticker.C {
			cutoff := time.Now().Add(-paymentTimeout)
			result := s.db.Model(&models.Payment{}).
				Where("status = ? AND created_at < ?", PaymentStatusPending, cutoff).
				Update("status", PaymentStatusExpired)
			if result.Error != nil {
				utils.ErrorLogger.Printf("payment timeout sweep failed: %v", result.Error)
			} else if result.RowsAffected > 0 {
				utils.InfoLogger.Printf("expired %d stale payments", result.RowsAffected)
			}
		}
	}()
}
