package models

import (
	"fmt"

	"github.com/Reacta/iugu-gateway/internal/domain"
	"github.com/shopspring/decimal"
)

// PaymentState is the local lifecycle state of a payment, driven by this
// service through explicit transition calls
type PaymentState string

const (
	PaymentStateCheckout   PaymentState = "checkout"
	PaymentStatePending    PaymentState = "pending"
	PaymentStateProcessing PaymentState = "processing"
	PaymentStateCompleted  PaymentState = "completed"
	PaymentStateVoid       PaymentState = "void"
)

// InvoiceStatus is the remote provider's status for a charge
type InvoiceStatus string

const (
	InvoiceStatusPending           InvoiceStatus = "pending"
	InvoiceStatusPaid              InvoiceStatus = "paid"
	InvoiceStatusInAnalysis        InvoiceStatus = "in_analysis"
	InvoiceStatusCanceled          InvoiceStatus = "canceled"
	InvoiceStatusRefunded          InvoiceStatus = "refunded"
	InvoiceStatusPartiallyRefunded InvoiceStatus = "partially_refunded"
)

// Invoice is the local view of a remote charge: the opaque id and the
// last-known status. It is fetched, never mutated locally.
type Invoice struct {
	ID     string
	Status InvoiceStatus
	Errors []string
}

// Payment references the host platform's payment record. ResponseCode holds
// the remote invoice id and is set if and only if a charge has been created.
type Payment struct {
	Number       string
	OrderNumber  string
	Amount       decimal.Decimal
	Installments int
	ResponseCode string
	State        PaymentState
}

// Authorized reports whether a remote charge exists for this payment
func (p *Payment) Authorized() bool {
	return p.ResponseCode != ""
}

// Pend transitions the payment to pending. Already pending is a no-op.
func (p *Payment) Pend() error {
	return p.transition(PaymentStatePending, PaymentStateCheckout, PaymentStateProcessing)
}

// StartProcessing transitions the payment to processing. Already processing is a no-op.
func (p *Payment) StartProcessing() error {
	return p.transition(PaymentStateProcessing, PaymentStateCheckout, PaymentStatePending)
}

// Complete transitions the payment to completed. Already completed is a no-op.
func (p *Payment) Complete() error {
	return p.transition(PaymentStateCompleted, PaymentStateCheckout, PaymentStatePending, PaymentStateProcessing)
}

// Void transitions the payment to void. Already void is a no-op.
func (p *Payment) Void() error {
	return p.transition(PaymentStateVoid, PaymentStateCheckout, PaymentStatePending, PaymentStateProcessing, PaymentStateCompleted)
}

func (p *Payment) transition(to PaymentState, from ...PaymentState) error {
	if p.State == to {
		return nil
	}
	for _, s := range from {
		if p.State == s {
			p.State = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, p.State, to)
}

// ApplyInvoiceStatus maps a remote invoice status onto the local payment
// state. It returns true when a mapping rule matched; statuses with no rule
// (canceled, in_analysis and anything unrecognized) leave the payment as-is.
// Re-applying the same status is a no-op, so webhook redelivery is safe.
func (p *Payment) ApplyInvoiceStatus(status InvoiceStatus) (bool, error) {
	switch status {
	case InvoiceStatusPending:
		return true, p.Pend()
	case InvoiceStatusPaid:
		return true, p.Complete()
	case InvoiceStatusRefunded:
		return true, p.Void()
	default:
		return false, nil
	}
}

// Address is the payer's billing address as the host platform supplies it
type Address struct {
	Name    string
	Phone   string
	Street  string
	City    string
	State   string
	Country string
	ZipCode string
}

// LineItem is one purchasable line of an order
type LineItem struct {
	Description string
	Quantity    int
	Price       decimal.Decimal
}

// Adjustment is a synthetic charge added to an order, here only the
// installment-tax adjustment created during authorization
type Adjustment struct {
	ID          string
	OrderNumber string
	Label       string
	Amount      decimal.Decimal
	Eligible    bool
}

// Order references the host platform's order record
type Order struct {
	Number         string
	Email          string
	Total          decimal.Decimal
	ShipTotal      decimal.Decimal
	LineItems      []LineItem
	Adjustments    []Adjustment
	BillingAddress Address
}
