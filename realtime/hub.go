package realtime

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/tabletap/ordering-backend/models"
	"github.com/tabletap/ordering-backend/utils"
)

// Event types
const (
	EventWaiterCall    = "waiter_call"
	EventWaiterAck     = "waiter_call_ack"
	EventOrderCreated  = "order_created"
	EventOrderUpdate   = "order_update"
	EventPaymentUpdate = "payment_update"
	EventTableUpdate   = "table_update"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub holds every connected staff client, grouped by tenant so waiter calls do
// not leak across restaurants.
type Hub struct {
	clients map[*websocket.Conn]uint // conn -> tenant id
	mutex   sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]uint),
}

// RegisterClient adds a staff connection for a tenant.
func RegisterClient(conn *websocket.Conn, tenantID uint) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = tenantID
}

// UnregisterClient drops and closes a connection.
func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

// BroadcastWaiterCall notifies the tenant's staff that a table wants service.
func BroadcastWaiterCall(call models.WaiterCall) {
	broadcast(call.TenantID, Message{
		Event: EventWaiterCall,
		Data:  call,
	})
}

// BroadcastWaiterAck tells other staff screens a call was taken.
func BroadcastWaiterAck(call models.WaiterCall) {
	broadcast(call.TenantID, Message{
		Event: EventWaiterAck,
		Data:  call,
	})
}

// BroadcastOrderCreated pushes a fresh order to the tenant's staff screens.
func BroadcastOrderCreated(order models.Order) {
	broadcast(order.TenantID, Message{
		Event: EventOrderCreated,
		Data:  order,
	})
}

// BroadcastOrderUpdate pushes a status change.
func BroadcastOrderUpdate(order models.Order) {
	broadcast(order.TenantID, Message{
		Event: EventOrderUpdate,
		Data:  order,
	})
}

// BroadcastPaymentUpdate pushes a payment status change.
func BroadcastPaymentUpdate(payment models.Payment) {
	broadcast(payment.TenantID, Message{
		Event: EventPaymentUpdate,
		Data:  payment,
	})
}

// BroadcastTableUpdate pushes a table status change.
func BroadcastTableUpdate(table models.Table) {
	broadcast(table.TenantID, Message{
		Event: EventTableUpdate,
		Data:  table,
	})
}

func broadcast(tenantID uint, msg Message) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling message: %v", err)
		return
	}

	for conn, connTenant := range hub.clients {
		if connTenant != tenantID {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Printf("Error sending message to client: %v", err)
		}
	}
}
