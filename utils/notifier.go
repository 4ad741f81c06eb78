package utils

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/stackvest/stackvest_backend/models"
	"github.com/stackvest/stackvest_backend/websocket"
)

// WalletNotifier persists wallet-credit notifications and pushes them to
// connected WebSocket clients. All delivery is best effort.
type WalletNotifier struct {
	collection *mongo.Collection
	hub        *websocket.Hub
}

func NewWalletNotifier(db *mongo.Database, hub *websocket.Hub) *WalletNotifier {
	return &WalletNotifier{
		collection: db.Collection("notifications"),
		hub:        hub,
	}
}

// WalletCredited records the credit as a notification and pushes it live.
func (n *WalletNotifier) WalletCredited(userID primitive.ObjectID, t models.WalletType, amount float64, reason string) {
	notification := models.Notification{
		UserID:  userID,
		Title:   "Wallet credited",
		Message: fmt.Sprintf("%.2f credited to your %s wallet: %s", amount, t, reason),
		Type:    "wallet_credit",
		Data: map[string]interface{}{
			"walletType": string(t),
			"amount":     amount,
		},
		CreatedAt: time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := n.collection.InsertOne(ctx, notification); err != nil {
		log.Printf("Failed to store notification for user %s: %v", userID.Hex(), err)
	}

	if n.hub != nil {
		// Only delivered when the user is connected; ignore otherwise.
		_ = n.hub.NotifyWalletCredit(userID, string(t), amount, reason)
	}
}
