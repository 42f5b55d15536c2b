package payment

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"agency-payments/internal/domain/model"
	"agency-payments/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.PaymentGateway = (*MidtransGateway)(nil)

// MidtransGateway implements PaymentGateway against the Midtrans Snap API.
type MidtransGateway struct {
	serverKey string
	baseURL   string
	siteURL   string // browser redirect target base, e.g. https://example.com
	client    *http.Client
}

// NewMidtransGateway creates a Snap gateway. siteURL is the public site base
// used to build the finish/error redirect URLs.
func NewMidtransGateway(serverKey string, sandbox bool, siteURL string, timeout time.Duration) *MidtransGateway {
	baseURL := "https://app.midtrans.com/snap/v1"
	if sandbox {
		baseURL = "https://app.sandbox.midtrans.com/snap/v1"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &MidtransGateway{
		serverKey: serverKey,
		baseURL:   baseURL,
		siteURL:   siteURL,
		client:    &http.Client{Timeout: timeout},
	}
}

func (g *MidtransGateway) Name() string { return "midtrans" }

type snapTransactionRequest struct {
	TransactionDetails struct {
		OrderID     string `json:"order_id"`
		GrossAmount int64  `json:"gross_amount"`
	} `json:"transaction_details"`
	CustomerDetails struct {
		FirstName string `json:"first_name"`
		Email     string `json:"email"`
		Phone     string `json:"phone,omitempty"`
	} `json:"customer_details"`
	ItemDetails []snapItem `json:"item_details"`
	Callbacks   struct {
		Finish  string `json:"finish"`
		Error   string `json:"error"`
		Pending string `json:"pending"`
	} `json:"callbacks"`
}

type snapItem struct {
	ID       string `json:"id"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	Name     string `json:"name"`
}

type snapTransactionResponse struct {
	Token         string   `json:"token"`
	RedirectURL   string   `json:"redirect_url"`
	ErrorMessages []string `json:"error_messages"`
}

// CreateTransaction creates a Snap transaction for the order. The merchant
// reference is the order id and the amount is the one already validated and
// persisted on the order.
func (g *MidtransGateway) CreateTransaction(ctx context.Context, o *model.Order) (*adapter.CheckoutSession, error) {
	var reqBody snapTransactionRequest
	reqBody.TransactionDetails.OrderID = o.ID
	reqBody.TransactionDetails.GrossAmount = o.Amount
	reqBody.CustomerDetails.FirstName = o.CustomerName
	reqBody.CustomerDetails.Email = o.CustomerEmail
	if o.CustomerPhone != nil {
		reqBody.CustomerDetails.Phone = *o.CustomerPhone
	}

	itemID := ""
	if o.PackageID != nil {
		itemID = *o.PackageID
	}
	name := o.PackageName
	if len(name) > 50 { // Snap item name limit
		name = name[:50]
	}
	reqBody.ItemDetails = []snapItem{{ID: itemID, Price: o.Amount, Quantity: 1, Name: name}}

	reqBody.Callbacks.Finish = fmt.Sprintf("%s/payment/success?order_id=%s", g.siteURL, o.ID)
	reqBody.Callbacks.Error = fmt.Sprintf("%s/payment/failed?order_id=%s", g.siteURL, o.ID)
	reqBody.Callbacks.Pending = fmt.Sprintf("%s/payment/success?order_id=%s", g.siteURL, o.ID)

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request data: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/transactions", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(g.serverKey+":")))

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
		return nil, fmt.Errorf("midtrans error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result snapTransactionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, body: %s", err, string(body))
	}
	if len(result.ErrorMessages) > 0 {
		return nil, fmt.Errorf("midtrans errors: %v", result.ErrorMessages)
	}
	if result.Token == "" || result.RedirectURL == "" {
		return nil, fmt.Errorf("midtrans response missing token or redirect_url")
	}

	return &adapter.CheckoutSession{TransactionID: result.Token, RedirectURL: result.RedirectURL}, nil
}
