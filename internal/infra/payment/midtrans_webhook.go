package payment

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"time"
)

// MidtransNotification is the typed shape of a Midtrans HTTP notification.
// Only the fields below participate in processing; anything else the provider
// sends is ignored rather than passed through.
type MidtransNotification struct {
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	PaymentType       string `json:"payment_type"`
	TransactionTime   string `json:"transaction_time"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
}

// Complete reports whether the signed fields are all present. Missing fields
// are rejected before any signature work so the response does not reveal
// which checks run.
func (n *MidtransNotification) Complete() bool {
	return n.OrderID != "" && n.StatusCode != "" && n.GrossAmount != "" && n.SignatureKey != ""
}

// OccurredAt parses the provider timestamp ("2006-01-02 15:04:05", provider
// local time). Returns nil when absent or malformed.
func (n *MidtransNotification) OccurredAt() *time.Time {
	if n.TransactionTime == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02 15:04:05", n.TransactionTime)
	if err != nil {
		return nil
	}
	return &t
}

// VerifyMidtransSignature checks the notification against the merchant server
// key. Midtrans signs sha512(order_id + status_code + gross_amount + server_key)
// and attaches the hex digest as signature_key. This check is the sole trust
// boundary for the webhook endpoint; comparison is constant-time.
func VerifyMidtransSignature(serverKey string, n *MidtransNotification) bool {
	sum := sha512.Sum512([]byte(n.OrderID + n.StatusCode + n.GrossAmount + serverKey))
	expected := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(expected), []byte(n.SignatureKey)) == 1
}
