package ports

import (
	"context"

	"github.com/Reacta/iugu-gateway/internal/domain/models"
)

// CardDetails carries the raw card input for tokenization. Never persisted,
// never logged.
type CardDetails struct {
	Number            string
	VerificationValue string
	HolderName        string
	Month             int
	Year              int
}

// TokenRequest represents a tokenization request
type TokenRequest struct {
	AccountID string
	Test      bool
	Card      CardDetails
}

// PaymentToken is a provider-issued single-use card token
type PaymentToken struct {
	ID string
}

// ChargeItem is one billable line of a charge
type ChargeItem struct {
	Description string
	Quantity    int
	PriceCents  int64
}

// Payer identifies who is being charged
type Payer struct {
	Name        string
	PhonePrefix string
	Phone       string
	Email       string
	Address     models.Address
}

// ChargeRequest represents a charge creation request
type ChargeRequest struct {
	Token           string
	Email           string
	Months          int
	Items           []ChargeItem
	NotificationURL string
	Payer           Payer
}

// ChargeResult carries the authorization reference of a created charge
type ChargeResult struct {
	InvoiceID string
}

// InvoiceGateway is the normalized client for the remote billing provider.
// Provider-side rejections come back as *domain.GatewayError with the
// appropriate kind; transport failures are wrapped the same way. No call
// panics across this boundary.
type InvoiceGateway interface {
	// CreatePaymentToken tokenizes card details
	CreatePaymentToken(ctx context.Context, req *TokenRequest) (*PaymentToken, error)

	// CreateCharge creates a charge against a token and returns the invoice id
	CreateCharge(ctx context.Context, req *ChargeRequest) (*ChargeResult, error)

	// FetchInvoice retrieves the current status of an invoice
	FetchInvoice(ctx context.Context, invoiceID string) (*models.Invoice, error)

	// CaptureInvoice captures an authorized invoice and returns its resulting state.
	// Capturing an already-paid invoice is a provider-side no-op success.
	CaptureInvoice(ctx context.Context, invoiceID string) (*models.Invoice, error)

	// RefundInvoice refunds a paid invoice
	RefundInvoice(ctx context.Context, invoiceID string) error

	// CancelInvoice cancels a not-yet-paid invoice
	CancelInvoice(ctx context.Context, invoiceID string) error
}
