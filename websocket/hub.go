package websocket

import (
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event types pushed to connected clients.
const (
	EventWalletCredit     = "wallet_credit"
	EventWithdrawalUpdate = "withdrawal_update"
)

// Notification is a message sent over WebSocket
type Notification struct {
	Type    string      `json:"type"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	UserID  string      `json:"userID,omitempty"`
}

// Client is a connected WebSocket client
type Client struct {
	UserID primitive.ObjectID
	Conn   *websocket.Conn
}

// Hub maintains the set of active clients and routes events to them
type Hub struct {
	clients    map[primitive.ObjectID]*Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[primitive.ObjectID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if client.UserID != primitive.NilObjectID {
				h.clients[client.UserID] = client
			}
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.UserID]; ok {
				delete(h.clients, client.UserID)
			}
			client.Conn.Close()
			h.mu.Unlock()
		}
	}
}

// SendToUser sends a message to a specific user
func (h *Hub) SendToUser(userID primitive.ObjectID, notification Notification) error {
	h.mu.RLock()
	client, ok := h.clients[userID]
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("user not connected")
	}
	return client.Conn.WriteJSON(notification)
}

// NotifyWalletCredit pushes a wallet-credit event (bonus paid, ROI
// credited, ...) to the user if they are connected.
func (h *Hub) NotifyWalletCredit(userID primitive.ObjectID, walletType string, amount float64, reason string) error {
	return h.SendToUser(userID, Notification{
		Type:    EventWalletCredit,
		Message: reason,
		Data: map[string]interface{}{
			"walletType": walletType,
			"amount":     amount,
		},
		UserID: userID.Hex(),
	})
}

// NotifyWithdrawalUpdate tells the user their withdrawal was decided.
func (h *Hub) NotifyWithdrawalUpdate(userID primitive.ObjectID, data interface{}) error {
	return h.SendToUser(userID, Notification{
		Type:    EventWithdrawalUpdate,
		Message: "Your withdrawal status has been updated",
		Data:    data,
	})
}
