package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"shpfusion-api/internal/config"
)

type PaypalClient interface {
	CreateOrder(ctx context.Context, req *PaypalCreateOrderRequest) (*PaypalCreateOrderResponse, error)
	CaptureOrder(ctx context.Context, paypalOrderID string) (*PaypalCaptureResult, error)
}

type paypalClientImpl struct {
	httpClient         *http.Client
	baseApiURL         string
	paypalClientID     string
	paypalClientSecret string
}

type PaypalCreateOrderRequest struct {
	// our order id, used as reference_id and the idempotency request id
	OrderID     string
	Description string
	// two-decimal string, e.g. "19.99"
	Amount    string
	BrandName string
	ReturnURL string
	CancelURL string
}

type PaypalCreateOrderResponse struct {
	PaypalOrderID string
	ApproveURL    string
}

type PaypalCaptureResult struct {
	Status    string // COMPLETED on success
	CaptureID string
	Message   string
}

type paypalLink struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

type paypalOrderResult struct {
	ID      string       `json:"id"`
	Status  string       `json:"status"`
	Message string       `json:"message"`
	Links   []paypalLink `json:"links"`

	PurchaseUnits []struct {
		Payments struct {
			Captures []struct {
				ID string `json:"id"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

func NewPaypalClient(paypalCfg *config.Paypal) PaypalClient {
	return &paypalClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL:         paypalCfg.BaseApiURL,
		paypalClientID:     paypalCfg.ClientID,
		paypalClientSecret: paypalCfg.ClientSecret,
	}
}

func (c *paypalClientImpl) getAccessToken(ctx context.Context) (string, error) {
	auth := base64.StdEncoding.EncodeToString(
		[]byte(c.paypalClientID + ":" + c.paypalClientSecret),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/v1/oauth2/token",
		bytes.NewBufferString("grant_type=client_credentials"))
	if err != nil {
		return "", fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("paypal token error %d: %s", resp.StatusCode, string(b))
	}

	var res struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}

	return res.AccessToken, nil
}

func (c *paypalClientImpl) CreateOrder(ctx context.Context, orderReq *PaypalCreateOrderRequest) (*PaypalCreateOrderResponse, error) {
	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get paypal access token: %w", err)
	}

	payload := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{
			{
				"reference_id": orderReq.OrderID,
				"description":  orderReq.Description,
				"amount": map[string]string{
					"currency_code": "USD",
					"value":         orderReq.Amount,
				},
			},
		},
		"payment_source": map[string]interface{}{
			"paypal": map[string]interface{}{
				"experience_context": map[string]string{
					"payment_method_preference": "IMMEDIATE_PAYMENT_REQUIRED",
					"brand_name":                orderReq.BrandName,
					"locale":                    "en-US",
					"landing_page":              "LOGIN",
					"user_action":               "PAY_NOW",
					"return_url":                orderReq.ReturnURL,
					"cancel_url":                orderReq.CancelURL,
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal req payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/v2/checkout/orders",
		bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	// dedupes retried creates for the same order
	req.Header.Set("PayPal-Request-Id", orderReq.OrderID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paypal create order request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("paypal error %d: %s", resp.StatusCode, string(b))
	}

	var result paypalOrderResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode paypal response: %w", err)
	}

	approveURL := extractApproveURL(result.Links)
	if approveURL == "" {
		return nil, fmt.Errorf("paypal order %s has no approval link", result.ID)
	}

	return &PaypalCreateOrderResponse{
		PaypalOrderID: result.ID,
		ApproveURL:    approveURL,
	}, nil
}

func (c *paypalClientImpl) CaptureOrder(ctx context.Context, paypalOrderID string) (*PaypalCaptureResult, error) {
	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get paypal access token: %w", err)
	}

	url := fmt.Sprintf("%s/v2/checkout/orders/%s/capture", c.baseApiURL, paypalOrderID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create capture request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paypal capture request failed: %w", err)
	}
	defer resp.Body.Close()

	var result paypalOrderResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode capture response: %w", err)
	}

	capture := &PaypalCaptureResult{
		Status:  result.Status,
		Message: result.Message,
	}
	if len(result.PurchaseUnits) > 0 && len(result.PurchaseUnits[0].Payments.Captures) > 0 {
		capture.CaptureID = result.PurchaseUnits[0].Payments.Captures[0].ID
	}

	// a non-2xx capture is reported through the result, not an error: the
	// caller marks the order failed with the provider's message
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if capture.Message == "" {
			capture.Message = fmt.Sprintf("paypal capture failed with status %d", resp.StatusCode)
		}
		capture.Status = "FAILED"
	}

	return capture, nil
}

func extractApproveURL(links []paypalLink) string {
	for _, link := range links {
		if link.Rel == "payer-action" || link.Rel == "approve" {
			return link.Href
		}
	}
	return ""
}
