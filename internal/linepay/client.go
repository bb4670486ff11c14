// Package linepay implements the slice of the LINE Pay v3 API this backend
// uses: reserving a payment (request) and capturing it (confirm).
package linepay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	productionBaseURL = "https://api-pay.line.me"
	sandboxBaseURL    = "https://sandbox-api-pay.line.me"

	returnCodeOK = "0000"
)

// ErrGateway covers every provider-side failure. Callers treat all confirm
// failures uniformly as "payment not completed".
var ErrGateway = errors.New("gateway_error")

type Client struct {
	channelID     string
	channelSecret string
	baseURL       string
	httpClient    *http.Client
}

// NewClient returns a LINE Pay client. sandbox selects the sandbox host,
// used whenever Checkout mode is off.
func NewClient(channelID, channelSecret string, sandbox bool, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	baseURL := productionBaseURL
	if sandbox {
		baseURL = sandboxBaseURL
	}
	return &Client{
		channelID:     channelID,
		channelSecret: channelSecret,
		baseURL:       baseURL,
		httpClient:    httpClient,
	}
}

// ReserveRequest describes one payment reservation. ShippingFeeInquiryURL,
// when set, turns on the Checkout shipping flow: the gateway will POST the
// inquiry URL to fetch shipping methods before redirecting to ConfirmURL.
type ReserveRequest struct {
	OrderID               string
	Title                 string
	Amount                int64
	UnitPrice             int64
	Quantity              int64
	Currency              string
	ConfirmURL            string
	CancelURL             string
	ShippingFeeInquiryURL string
}

// Reservation is the successful outcome of Reserve: the gateway-assigned
// transaction id and the URL the user completes payment at.
type Reservation struct {
	TransactionID string
	PaymentURL    string
}

type apiResponse struct {
	ReturnCode    string `json:"returnCode"`
	ReturnMessage string `json:"returnMessage"`
	Info          struct {
		TransactionID json.Number `json:"transactionId"`
		PaymentURL    struct {
			Web string `json:"web"`
			App string `json:"app"`
		} `json:"paymentUrl"`
	} `json:"info"`
}

// Reserve calls POST /v3/payments/request. There is no partial success: any
// non-0000 return code or transport failure yields an error and no
// reservation exists.
func (c *Client) Reserve(ctx context.Context, req *ReserveRequest) (*Reservation, error) {
	payload := map[string]any{
		"amount":   req.Amount,
		"currency": req.Currency,
		"orderId":  req.OrderID,
		"packages": []map[string]any{
			{
				"id":     req.OrderID,
				"amount": req.Amount,
				"name":   "LDC テイクアウト",
				"products": []map[string]any{
					{
						"name":     req.Title,
						"quantity": req.Quantity,
						"price":    req.UnitPrice,
					},
				},
			},
		},
		"redirectUrls": map[string]string{
			"confirmUrl": req.ConfirmURL,
			"cancelUrl":  req.CancelURL,
		},
	}
	if req.ShippingFeeInquiryURL != "" {
		payload["options"] = map[string]any{
			"shipping": map[string]any{
				"type":           "SHIPPING",
				"feeInquiryUrl":  req.ShippingFeeInquiryURL,
				"feeInquiryType": "CONDITION",
			},
		}
	}
	resp, err := c.post(ctx, "/v3/payments/request", payload)
	if err != nil {
		return nil, err
	}
	return &Reservation{
		TransactionID: resp.Info.TransactionID.String(),
		PaymentURL:    resp.Info.PaymentURL.Web,
	}, nil
}

// Confirm captures a reserved payment. amount must equal the reserved amount
// plus any shipping fee the user picked.
func (c *Client) Confirm(ctx context.Context, transactionID string, amount int64, currency string) error {
	payload := map[string]any{
		"amount":   amount,
		"currency": currency,
	}
	_, err := c.post(ctx, "/v3/payments/"+transactionID+"/confirm", payload)
	return err
}

func (c *Client) post(ctx context.Context, path string, payload any) (*apiResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	nonce := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-LINE-ChannelId", c.channelID)
	req.Header.Set("X-LINE-Authorization-Nonce", nonce)
	req.Header.Set("X-LINE-Authorization", c.sign(path, string(body), nonce))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrGateway, err)
	}
	var decoded apiResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrGateway, err)
	}
	if decoded.ReturnCode != returnCodeOK {
		return nil, fmt.Errorf("%w: returnCode=%s message=%s", ErrGateway, decoded.ReturnCode, decoded.ReturnMessage)
	}
	return &decoded, nil
}

// sign builds the X-LINE-Authorization value:
// base64(HMAC-SHA256(channelSecret, channelSecret + uri + body + nonce)).
func (c *Client) sign(uri, body, nonce string) string {
	mac := hmac.New(sha256.New, []byte(c.channelSecret))
	mac.Write([]byte(c.channelSecret + uri + body + nonce))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
