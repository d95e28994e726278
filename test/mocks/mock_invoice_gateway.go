package mocks

import (
	"context"
	"sync"

	"github.com/Reacta/iugu-gateway/internal/domain/models"
	"github.com/Reacta/iugu-gateway/internal/domain/ports"
)

// MockInvoiceGateway is a mock implementation of InvoiceGateway for testing
type MockInvoiceGateway struct {
	mu sync.Mutex

	// Responses to return
	tokenResponse  *ports.PaymentToken
	tokenError     error
	chargeResponse *ports.ChargeResult
	chargeError    error
	fetchResponse  *models.Invoice
	fetchError     error
	captureResult  *models.Invoice
	captureError   error
	refundError    error
	cancelError    error

	// Call tracking
	TokenCalls   int
	ChargeCalls  int
	FetchCalls   int
	CaptureCalls int
	RefundCalls  int
	CancelCalls  int

	// Last request received
	LastTokenReq       *ports.TokenRequest
	LastChargeReq      *ports.ChargeRequest
	LastFetchInvoice   string
	LastCaptureInvoice string
	LastRefundInvoice  string
	LastCancelInvoice  string
}

// NewMockInvoiceGateway creates a new mock invoice gateway
func NewMockInvoiceGateway() *MockInvoiceGateway {
	return &MockInvoiceGateway{}
}

// SetTokenResponse sets the response to return from CreatePaymentToken
func (m *MockInvoiceGateway) SetTokenResponse(token *ports.PaymentToken, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokenResponse = token
	m.tokenError = err
}

// SetChargeResponse sets the response to return from CreateCharge
func (m *MockInvoiceGateway) SetChargeResponse(result *ports.ChargeResult, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chargeResponse = result
	m.chargeError = err
}

// SetFetchResponse sets the response to return from FetchInvoice
func (m *MockInvoiceGateway) SetFetchResponse(invoice *models.Invoice, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchResponse = invoice
	m.fetchError = err
}

// SetCaptureResponse sets the response to return from CaptureInvoice
func (m *MockInvoiceGateway) SetCaptureResponse(invoice *models.Invoice, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.captureResult = invoice
	m.captureError = err
}

// SetRefundError sets the error to return from RefundInvoice
func (m *MockInvoiceGateway) SetRefundError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refundError = err
}

// SetCancelError sets the error to return from CancelInvoice
func (m *MockInvoiceGateway) SetCancelError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelError = err
}

// CreatePaymentToken implements InvoiceGateway.CreatePaymentToken
func (m *MockInvoiceGateway) CreatePaymentToken(ctx context.Context, req *ports.TokenRequest) (*ports.PaymentToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TokenCalls++
	m.LastTokenReq = req
	return m.tokenResponse, m.tokenError
}

// CreateCharge implements InvoiceGateway.CreateCharge
func (m *MockInvoiceGateway) CreateCharge(ctx context.Context, req *ports.ChargeRequest) (*ports.ChargeResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChargeCalls++
	m.LastChargeReq = req
	return m.chargeResponse, m.chargeError
}

// FetchInvoice implements InvoiceGateway.FetchInvoice
func (m *MockInvoiceGateway) FetchInvoice(ctx context.Context, invoiceID string) (*models.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchCalls++
	m.LastFetchInvoice = invoiceID
	return m.fetchResponse, m.fetchError
}

// CaptureInvoice implements InvoiceGateway.CaptureInvoice
func (m *MockInvoiceGateway) CaptureInvoice(ctx context.Context, invoiceID string) (*models.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CaptureCalls++
	m.LastCaptureInvoice = invoiceID
	return m.captureResult, m.captureError
}

// RefundInvoice implements InvoiceGateway.RefundInvoice
func (m *MockInvoiceGateway) RefundInvoice(ctx context.Context, invoiceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RefundCalls++
	m.LastRefundInvoice = invoiceID
	return m.refundError
}

// CancelInvoice implements InvoiceGateway.CancelInvoice
func (m *MockInvoiceGateway) CancelInvoice(ctx context.Context, invoiceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CancelCalls++
	m.LastCancelInvoice = invoiceID
	return m.cancelError
}

// Reset resets all mock state
func (m *MockInvoiceGateway) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokenResponse = nil
	m.tokenError = nil
	m.chargeResponse = nil
	m.chargeError = nil
	m.fetchResponse = nil
	m.fetchError = nil
	m.captureResult = nil
	m.captureError = nil
	m.refundError = nil
	m.cancelError = nil
	m.TokenCalls = 0
	m.ChargeCalls = 0
	m.FetchCalls = 0
	m.CaptureCalls = 0
	m.RefundCalls = 0
	m.CancelCalls = 0
	m.LastTokenReq = nil
	m.LastChargeReq = nil
	m.LastFetchInvoice = ""
	m.LastCaptureInvoice = ""
	m.LastRefundInvoice = ""
	m.LastCancelInvoice = ""
}
