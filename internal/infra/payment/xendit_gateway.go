package payment

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"agency-payments/internal/domain/model"
	"agency-payments/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.PaymentGateway = (*XenditGateway)(nil)

// XenditGateway implements PaymentGateway against the Xendit invoice API.
type XenditGateway struct {
	secretKey       string
	baseURL         string
	siteURL         string
	invoiceDuration int // seconds the hosted invoice stays payable
	client          *http.Client
}

func NewXenditGateway(secretKey, siteURL string, invoiceDuration time.Duration, timeout time.Duration) *XenditGateway {
	if invoiceDuration <= 0 {
		invoiceDuration = 24 * time.Hour
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &XenditGateway{
		secretKey:       secretKey,
		baseURL:         "https://api.xendit.co",
		siteURL:         siteURL,
		invoiceDuration: int(invoiceDuration.Seconds()),
		client:          &http.Client{Timeout: timeout},
	}
}

func (g *XenditGateway) Name() string { return "xendit" }

type xenditInvoiceRequest struct {
	ExternalID         string         `json:"external_id"`
	Amount             int64          `json:"amount"`
	PayerEmail         string         `json:"payer_email"`
	Description        string         `json:"description"`
	InvoiceDuration    int            `json:"invoice_duration"`
	Customer           xenditCustomer `json:"customer"`
	SuccessRedirectURL string         `json:"success_redirect_url"`
	FailureRedirectURL string         `json:"failure_redirect_url"`
}

type xenditCustomer struct {
	GivenNames   string `json:"given_names"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobile_number,omitempty"`
}

type xenditInvoiceResponse struct {
	ID         string `json:"id"`
	InvoiceURL string `json:"invoice_url"`
	Status     string `json:"status"`
	Message    string `json:"message"` // set on API errors
}

// CreateTransaction creates a hosted invoice for the order, external_id set
// to the order id.
func (g *XenditGateway) CreateTransaction(ctx context.Context, o *model.Order) (*adapter.CheckoutSession, error) {
	reqBody := xenditInvoiceRequest{
		ExternalID:      o.ID,
		Amount:          o.Amount,
		PayerEmail:      o.CustomerEmail,
		Description:     "Pembayaran untuk " + o.PackageName,
		InvoiceDuration: g.invoiceDuration,
		Customer: xenditCustomer{
			GivenNames: o.CustomerName,
			Email:      o.CustomerEmail,
		},
		SuccessRedirectURL: fmt.Sprintf("%s/payment/success?order_id=%s", g.siteURL, o.ID),
		FailureRedirectURL: fmt.Sprintf("%s/payment/failed?order_id=%s", g.siteURL, o.ID),
	}
	if o.CustomerPhone != nil {
		reqBody.Customer.MobileNumber = *o.CustomerPhone
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request data: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v2/invoices", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(g.secretKey, "")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("xendit error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result xenditInvoiceResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, body: %s", err, string(body))
	}
	if result.ID == "" || result.InvoiceURL == "" {
		return nil, fmt.Errorf("xendit response missing id or invoice_url: %s", result.Message)
	}

	return &adapter.CheckoutSession{TransactionID: result.ID, RedirectURL: result.InvoiceURL}, nil
}

// XenditCallback is the subset of a Xendit invoice callback this service
// consumes.
type XenditCallback struct {
	ID            string `json:"id"`
	ExternalID    string `json:"external_id"`
	Status        string `json:"status"`
	PaymentMethod string `json:"payment_method"`
	PaidAt        string `json:"paid_at"` // RFC3339
}

// PaidTime parses the paid_at timestamp; nil when absent or malformed.
func (c *XenditCallback) PaidTime() *time.Time {
	if c.PaidAt == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, c.PaidAt)
	if err != nil {
		return nil
	}
	return &t
}

// VerifyXenditCallbackToken checks the x-callback-token header against the
// configured verification token in constant time. Xendit callbacks carry no
// payload signature; the shared token is the trust boundary.
func VerifyXenditCallbackToken(expected, got string) bool {
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(got)) == 1
}
