package services

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/tabletap/ordering-backend/models"
	"github.com/tabletap/ordering-backend/utils"
)

// StaffBridge forwards order events to the separate staff backend as webhook
// POSTs. Delivery is fire-and-forget: failures are logged and never surfaced
// to the customer request.
type StaffBridge struct {
	baseURL string
	secret  string
	client  *http.Client
}

func NewStaffBridge() *StaffBridge {
	return &StaffBridge{
		baseURL: os.Getenv("STAFF_BACKEND_URL"),
		secret:  os.Getenv("STAFF_BACKEND_SECRET"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type bridgeEvent struct {
	Event  string       `json:"event"`
	SentAt time.Time    `json:"sent_at"`
	Order  models.Order `json:"order"`
}

func (b *StaffBridge) NotifyOrderCreated(order models.Order) {
	b.send(bridgeEvent{Event: "order.created", SentAt: time.Now(), Order: order})
}

func (b *StaffBridge) NotifyOrderStatus(order models.Order) {
	b.send(bridgeEvent{Event: "order.status_changed", SentAt: time.Now(), Order: order})
}

func (b *StaffBridge) send(event bridgeEvent) {
	if b.baseURL == "" {
		return
	}

	go func() {
		body, err := json.Marshal(event)
		if err != nil {
			utils.ErrorLogger.Printf("staff bridge: marshal failed: %v", err)
			return
		}

		req, err := http.NewRequest(http.MethodPost, b.baseURL+"/webhooks/orders", bytes.NewReader(body))
		if err != nil {
			utils.ErrorLogger.Printf("staff bridge: build request failed: %v", err)
			return
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Staff-Secret", b.secret)

		resp, err := b.client.Do(req)
		if err != nil {
			utils.ErrorLogger.Printf("staff bridge: %s delivery failed: %v", event.Event, err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			utils.ErrorLogger.Printf("staff bridge: %s rejected with status %d", event.Event, resp.StatusCode)
		}
	}()
}
