package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tabletap/ordering-backend/models"
	"github.com/tabletap/ordering-backend/utils"
)

func TestSignCreateIsDeterministic(t *testing.T) {
	svc := &MoMoService{accessKey: "access-key", secretKey: "secret-key"}
	req := momoCreateRequest{
		PartnerCode: "PARTNERTEST",
		RequestID:   "req-1",
		Amount:      115000,
		OrderID:     "ORD-260901-120000-001-abcd1234",
		OrderInfo:   "Order ORD-260901-120000-001",
		RedirectURL: "https://example.com/redirect",
		IpnURL:      "https://example.com/ipn",
		RequestType: "captureWallet",
	}

	first := svc.signCreate(req)
	second := svc.signCreate(req)
	assert.Equal(t, first, second)
	assert.Len(t, first, 64)

	// Any field change must change the signature
	req.Amount = 115001
	assert.NotEqual(t, first, svc.signCreate(req))
}

func TestSignCreateDependsOnSecret(t *testing.T) {
	req := momoCreateRequest{RequestID: "req-1", Amount: 1000}
	a := (&MoMoService{accessKey: "k", secretKey: "secret-a"}).signCreate(req)
	b := (&MoMoService{accessKey: "k", secretKey: "secret-b"}).signCreate(req)
	assert.NotEqual(t, a, b)
}

func TestHandleIPNRejectsBadSignature(t *testing.T) {
	db := setupServiceDB(t)
	svc := &MoMoService{db: db, accessKey: "access-key", secretKey: "secret-key"}

	_, err := svc.HandleIPN(MoMoIPN{RequestID: "req-1", Signature: "forged"})
	var appErr *utils.AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, utils.KindAccessDenied, appErr.Kind)
}

func TestHandleIPNSuccessApprovesOrder(t *testing.T) {
	db := setupServiceDB(t)
	svc := &MoMoService{db: db, accessKey: "access-key", secretKey: "secret-key"}

	order := models.Order{TenantID: 1, TableID: 1, Status: OrderStatusPending, TotalAmount: 115000, DisplayOrder: "ORD-X-001"}
	assert.NoError(t, db.Create(&order).Error)
	payment := models.Payment{TenantID: 1, OrderID: order.ID, Amount: 115000, Status: PaymentStatusPending, RequestID: "req-1"}
	assert.NoError(t, db.Create(&payment).Error)

	ipn := MoMoIPN{
		PartnerCode:  "PARTNERTEST",
		OrderID:      "ORD-X-001-req-1",
		RequestID:    "req-1",
		Amount:       115000,
		TransID:      998877,
		ResultCode:   0,
		ResponseTime: 1756700000000,
	}
	ipn.Signature = svc.signIPN(ipn)

	// The response timestamp is part of the signed string; a tampered value
	// must invalidate the signature.
	tampered := ipn
	tampered.ResponseTime = 1756700000001
	assert.NotEqual(t, svc.signIPN(ipn), svc.signIPN(tampered))

	settled, err := svc.HandleIPN(ipn)
	assert.NoError(t, err)
	assert.Equal(t, PaymentStatusSuccess, settled.Status)
	assert.Equal(t, "998877", settled.TransactionID)
	assert.NotNil(t, settled.PaymentTime)

	var refreshed models.Order
	assert.NoError(t, db.First(&refreshed, order.ID).Error)
	assert.Equal(t, OrderStatusApproved, refreshed.Status)
}

func TestHandleIPNFailureLeavesOrderOpen(t *testing.T) {
	db := setupServiceDB(t)
	svc := &MoMoService{db: db, accessKey: "access-key", secretKey: "secret-key"}

	order := models.Order{TenantID: 1, TableID: 1, Status: OrderStatusPending, TotalAmount: 50000, DisplayOrder: "ORD-Y-001"}
	assert.NoError(t, db.Create(&order).Error)
	payment := models.Payment{TenantID: 1, OrderID: order.ID, Amount: 50000, Status: PaymentStatusPending, RequestID: "req-2"}
	assert.NoError(t, db.Create(&payment).Error)

	ipn := MoMoIPN{RequestID: "req-2", Amount: 50000, ResultCode: 1006, Message: "user cancelled"}
	ipn.Signature = svc.signIPN(ipn)

	settled, err := svc.HandleIPN(ipn)
	assert.NoError(t, err)
	assert.Equal(t, PaymentStatusFailed, settled.Status)

	var refreshed models.Order
	assert.NoError(t, db.First(&refreshed, order.ID).Error)
	assert.Equal(t, OrderStatusPending, refreshed.Status)
}

func TestHandleIPNIsIdempotentForSettledPayments(t *testing.T) {
	db := setupServiceDB(t)
	svc := &MoMoService{db: db, accessKey: "access-key", secretKey: "secret-key"}

	order := models.Order{TenantID: 1, TableID: 1, Status: OrderStatusPending, TotalAmount: 20000, DisplayOrder: "ORD-Z-001"}
	assert.NoError(t, db.Create(&order).Error)
	payment := models.Payment{TenantID: 1, OrderID: order.ID, Amount: 20000, Status: PaymentStatusPending, RequestID: "req-3"}
	assert.NoError(t, db.Create(&payment).Error)

	ipn := MoMoIPN{RequestID: "req-3", Amount: 20000, TransID: 42, ResultCode: 0}
	ipn.Signature = svc.signIPN(ipn)

	first, err := svc.HandleIPN(ipn)
	assert.NoError(t, err)
	assert.Equal(t, PaymentStatusSuccess, first.Status)

	// Gateway retry of the same IPN must not rewrite anything
	second, err := svc.HandleIPN(ipn)
	assert.NoError(t, err)
	assert.Equal(t, PaymentStatusSuccess, second.Status)
	assert.Equal(t, first.TransactionID, second.TransactionID)
}

func TestCreateIntentRejectsCancelledOrder(t *testing.T) {
	db := setupServiceDB(t)
	svc := &MoMoService{db: db}

	_, err := svc.CreateIntent(&models.Order{Status: OrderStatusCancelled})
	var appErr *utils.AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, utils.KindValidation, appErr.Kind)
}
