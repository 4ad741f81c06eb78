package utils

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"

	"github.com/stackvest/stackvest_backend/models"
	"github.com/stackvest/stackvest_backend/websocket"
)

// WithdrawalMailer sends withdrawal decision emails over SMTP and pushes
// the decision to the user's WebSocket connection when one is open.
type WithdrawalMailer struct {
	hub *websocket.Hub
}

func NewWithdrawalMailer(hub *websocket.Hub) *WithdrawalMailer {
	return &WithdrawalMailer{hub: hub}
}

// WithdrawalDecided notifies the user about an approved or rejected
// withdrawal. Best effort: failures are logged, never propagated.
func (m *WithdrawalMailer) WithdrawalDecided(email, fullName string, w *models.Withdrawal) {
	if m.hub != nil {
		if err := m.hub.NotifyWithdrawalUpdate(w.UserID, w); err != nil {
			log.Printf("Withdrawal push for user %s skipped: %v", w.UserID.Hex(), err)
		}
	}
	smtpHost := os.Getenv("SMTP_HOST")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	if smtpHost == "" {
		return
	}
	smtpPort := 2525
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			smtpPort = port
		}
	}

	var subject, body string
	if w.Status == models.WithdrawalApproved {
		subject = "Your withdrawal has been approved"
		body = fmt.Sprintf("Dear %s,\n\nYour withdrawal of %.2f from your %s wallet has been approved. After charges of %.2f, %.2f is on its way to %s.\n\nBest regards,\nStackvest",
			fullName, w.Amount, w.WalletType, w.Charges, w.FinalAmount, w.PayoutAddress)
	} else {
		subject = "Your withdrawal has been rejected"
		body = fmt.Sprintf("Dear %s,\n\nYour withdrawal of %.2f from your %s wallet was rejected: %s. The funds are available in your wallet again.\n\nBest regards,\nStackvest",
			fullName, w.Amount, w.WalletType, w.RejectionReason)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", smtpUser)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPass)
	if err := dialer.DialAndSend(msg); err != nil {
		log.Printf("Failed to send withdrawal email to %s: %v", email, err)
	}
}
