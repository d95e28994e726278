package iugu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/Reacta/iugu-gateway/internal/domain"
	"github.com/Reacta/iugu-gateway/internal/domain/models"
	"github.com/Reacta/iugu-gateway/internal/domain/ports"
	"github.com/Reacta/iugu-gateway/pkg/observability"
)

// DefaultBaseURL is the production endpoint of the Iugu v1 API
const DefaultBaseURL = "https://api.iugu.com"

// Config holds the credentials and mode the client authenticates with
type Config struct {
	BaseURL   string
	APIKey    string
	AccountID string
	TestMode  bool
}

// Client implements ports.InvoiceGateway against the Iugu HTTP API.
// All requests authenticate with basic auth: API key as username, empty
// password.
type Client struct {
	config     Config
	httpClient ports.HTTPClient
	logger     ports.Logger
}

// NewClient creates a new Iugu client with dependency injection
func NewClient(config Config, httpClient ports.HTTPClient, logger ports.Logger) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	return &Client{
		config:     config,
		httpClient: httpClient,
		logger:     logger,
	}
}

// NewClientWithDefaults creates a new Iugu client with a default HTTP client
func NewClientWithDefaults(config Config, logger ports.Logger) *Client {
	return NewClient(config, &http.Client{Timeout: 30 * time.Second}, logger)
}

type tokenRequest struct {
	AccountID string        `json:"account_id"`
	Method    string        `json:"method"`
	Test      bool          `json:"test"`
	Data      tokenCardData `json:"data"`
}

type tokenCardData struct {
	Number            string `json:"number"`
	VerificationValue string `json:"verification_value"`
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	Month             int    `json:"month"`
	Year              int    `json:"year"`
}

type tokenResponse struct {
	ID     string          `json:"id"`
	Errors json.RawMessage `json:"errors"`
}

type chargeItem struct {
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	PriceCents  int64  `json:"price_cents"`
}

type payerAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	ZipCode string `json:"zip_code"`
}

type chargePayer struct {
	Name        string       `json:"name"`
	PhonePrefix string       `json:"phone_prefix,omitempty"`
	Phone       string       `json:"phone"`
	Email       string       `json:"email"`
	Address     payerAddress `json:"address"`
}

type chargeRequest struct {
	Token           string       `json:"token"`
	Email           string       `json:"email"`
	Months          int          `json:"months"`
	Items           []chargeItem `json:"items"`
	NotificationURL string       `json:"notification_url"`
	Payer           chargePayer  `json:"payer"`
}

type chargeResponse struct {
	InvoiceID string          `json:"invoice_id"`
	Success   bool            `json:"success"`
	Errors    json.RawMessage `json:"errors"`
}

type invoiceResponse struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Errors json.RawMessage `json:"errors"`
}

// CreatePaymentToken implements ports.InvoiceGateway.CreatePaymentToken
func (c *Client) CreatePaymentToken(ctx context.Context, req *ports.TokenRequest) (*ports.PaymentToken, error) {
	first, last := splitHolderName(req.Card.HolderName)

	apiReq := tokenRequest{
		AccountID: req.AccountID,
		Method:    "credit_card",
		Test:      req.Test,
		Data: tokenCardData{
			Number:            req.Card.Number,
			VerificationValue: req.Card.VerificationValue,
			FirstName:         first,
			LastName:          last,
			Month:             req.Card.Month,
			Year:              req.Card.Year,
		},
	}

	var resp tokenResponse
	if err := c.postJSON(ctx, "create_token", "/v1/payment_token", apiReq, &resp); err != nil {
		return nil, err
	}

	if msgs := parseProviderErrors(resp.Errors); len(msgs) > 0 {
		return nil, domain.NewTokenError(msgs)
	}
	if resp.ID == "" {
		return nil, domain.NewTokenError([]string{"provider returned no token"})
	}

	return &ports.PaymentToken{ID: resp.ID}, nil
}

// CreateCharge implements ports.InvoiceGateway.CreateCharge
func (c *Client) CreateCharge(ctx context.Context, req *ports.ChargeRequest) (*ports.ChargeResult, error) {
	prefix, local := splitPhone(req.Payer.Phone)

	items := make([]chargeItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, chargeItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			PriceCents:  it.PriceCents,
		})
	}

	apiReq := chargeRequest{
		Token:           req.Token,
		Email:           req.Email,
		Months:          req.Months,
		Items:           items,
		NotificationURL: req.NotificationURL,
		Payer: chargePayer{
			Name:        req.Payer.Name,
			PhonePrefix: prefix,
			Phone:       local,
			Email:       req.Payer.Email,
			Address: payerAddress{
				Street:  req.Payer.Address.Street,
				City:    req.Payer.Address.City,
				State:   req.Payer.Address.State,
				Country: req.Payer.Address.Country,
				ZipCode: req.Payer.Address.ZipCode,
			},
		},
	}

	var resp chargeResponse
	if err := c.postJSON(ctx, "create_charge", "/v1/charge", apiReq, &resp); err != nil {
		return nil, err
	}

	if msgs := parseProviderErrors(resp.Errors); len(msgs) > 0 {
		return nil, domain.NewChargeError(msgs)
	}
	if resp.InvoiceID == "" {
		return nil, domain.NewChargeError([]string{"provider returned no invoice id"})
	}

	return &ports.ChargeResult{InvoiceID: resp.InvoiceID}, nil
}

// FetchInvoice implements ports.InvoiceGateway.FetchInvoice
func (c *Client) FetchInvoice(ctx context.Context, invoiceID string) (*models.Invoice, error) {
	var resp invoiceResponse
	path := fmt.Sprintf("/v1/invoices/%s", url.PathEscape(invoiceID))
	if err := c.do(ctx, "fetch_invoice", http.MethodGet, path, "", nil, &resp); err != nil {
		return nil, err
	}
	return c.toInvoice(invoiceID, &resp), nil
}

// CaptureInvoice implements ports.InvoiceGateway.CaptureInvoice.
// The capture endpoint takes a form-encoded POST, unlike the JSON endpoints.
func (c *Client) CaptureInvoice(ctx context.Context, invoiceID string) (*models.Invoice, error) {
	var resp invoiceResponse
	path := fmt.Sprintf("/v1/invoices/%s/capture", url.PathEscape(invoiceID))
	body := strings.NewReader(url.Values{}.Encode())
	if err := c.do(ctx, "capture_invoice", http.MethodPost, path, "application/x-www-form-urlencoded", body, &resp); err != nil {
		return nil, err
	}
	return c.toInvoice(invoiceID, &resp), nil
}

// RefundInvoice implements ports.InvoiceGateway.RefundInvoice
func (c *Client) RefundInvoice(ctx context.Context, invoiceID string) error {
	return c.invoiceAction(ctx, "refund_invoice", invoiceID, "refund")
}

// CancelInvoice implements ports.InvoiceGateway.CancelInvoice
func (c *Client) CancelInvoice(ctx context.Context, invoiceID string) error {
	return c.invoiceAction(ctx, "cancel_invoice", invoiceID, "cancel")
}

func (c *Client) invoiceAction(ctx context.Context, operation, invoiceID, action string) error {
	var resp invoiceResponse
	path := fmt.Sprintf("/v1/invoices/%s/%s", url.PathEscape(invoiceID), action)
	if err := c.do(ctx, operation, http.MethodPost, path, "application/json", bytes.NewReader([]byte("{}")), &resp); err != nil {
		return err
	}
	if msgs := parseProviderErrors(resp.Errors); len(msgs) > 0 {
		return domain.NewChargeError(msgs)
	}
	return nil
}

func (c *Client) toInvoice(invoiceID string, resp *invoiceResponse) *models.Invoice {
	id := resp.ID
	if id == "" {
		id = invoiceID
	}
	return &models.Invoice{
		ID:     id,
		Status: models.InvoiceStatus(resp.Status),
		Errors: parseProviderErrors(resp.Errors),
	}
}

func (c *Client) postJSON(ctx context.Context, operation, path string, reqBody interface{}, out interface{}) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return domain.WrapUnknownError("failed to marshal request", err)
	}
	return c.do(ctx, operation, http.MethodPost, path, "application/json", bytes.NewReader(payload), out)
}

// do issues one request against the provider and decodes the JSON response.
// Transport and provider-availability failures come back as unknown-kind
// gateway errors; callers classify payload-level rejections themselves.
func (c *Client) do(ctx context.Context, operation, method, path, contentType string, body io.Reader, out interface{}) error {
	start := time.Now()

	httpReq, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, body)
	if err != nil {
		return domain.WrapUnknownError("failed to create request", err)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.SetBasicAuth(c.config.APIKey, "")

	if c.logger != nil {
		c.logger.Debug("making request to Iugu",
			ports.String("operation", operation),
			ports.String("method", method),
		)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		observability.ObserveGatewayRequest(operation, "network_error", time.Since(start))
		return domain.WrapUnknownError("failed to connect to billing provider", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		observability.ObserveGatewayRequest(operation, "read_error", time.Since(start))
		return domain.WrapUnknownError("failed to read provider response", err)
	}

	if httpResp.StatusCode >= 500 {
		observability.ObserveGatewayRequest(operation, "provider_error", time.Since(start))
		return domain.WrapUnknownError(
			fmt.Sprintf("billing provider unavailable (status %d)", httpResp.StatusCode), nil)
	}

	// 4xx responses still carry an errors payload the caller classifies
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			observability.ObserveGatewayRequest(operation, "decode_error", time.Since(start))
			return domain.WrapUnknownError("failed to decode provider response", err)
		}
	}

	observability.ObserveGatewayRequest(operation, "ok", time.Since(start))
	return nil
}

// parseProviderErrors normalizes the provider's errors payload, which may be
// an object of field -> message list, a flat list, or a bare string.
func parseProviderErrors(raw json.RawMessage) []string {
	if len(raw) == 0 || string(raw) == "null" || string(raw) == "{}" || string(raw) == `""` {
		return nil
	}

	var byField map[string][]string
	if err := json.Unmarshal(raw, &byField); err == nil {
		keys := make([]string, 0, len(byField))
		for k := range byField {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var msgs []string
		for _, k := range keys {
			msgs = append(msgs, byField[k]...)
		}
		return msgs
	}

	var byFieldSingle map[string]string
	if err := json.Unmarshal(raw, &byFieldSingle); err == nil {
		keys := make([]string, 0, len(byFieldSingle))
		for k := range byFieldSingle {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var msgs []string
		for _, k := range keys {
			msgs = append(msgs, byFieldSingle[k])
		}
		return msgs
	}

	var flat []string
	if err := json.Unmarshal(raw, &flat); err == nil {
		return flat
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if single == "" {
			return nil
		}
		return []string{single}
	}

	return []string{string(raw)}
}
