package payment

import (
	"context"
	"errors"
	"strings"

	"github.com/Reacta/iugu-gateway/internal/config"
	"github.com/Reacta/iugu-gateway/internal/domain"
	"github.com/Reacta/iugu-gateway/internal/domain/models"
	"github.com/Reacta/iugu-gateway/internal/domain/ports"
	"github.com/Reacta/iugu-gateway/pkg/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Result is the normalized outcome of an orchestrator operation. Success
// carries the authorization reference; failure carries a translated message
// and the error kind. No raw error or panic crosses this boundary.
type Result struct {
	Success       bool
	Message       string
	Authorization string
	Kind          domain.ErrorKind
}

// Options carries the checkout context the host platform supplies with each
// authorization: the combined "ORDER-PAYMENT" reference and contact emails.
type Options struct {
	OrderID       string
	Email         string
	CustomerEmail string
}

// Service drives the authorize/capture/void/cancel protocol against the
// remote gateway and reconciles remote invoice status into local payment
// state. One invocation performs at most two sequential remote calls; no
// retries are attempted here.
type Service struct {
	cfg      config.GatewayConfig
	db       ports.TransactionManager
	payments ports.PaymentRepository
	orders   ports.OrderRepository
	gateway  ports.InvoiceGateway
	logger   ports.Logger
}

// NewService creates a new payment orchestrator
func NewService(
	cfg config.GatewayConfig,
	db ports.TransactionManager,
	payments ports.PaymentRepository,
	orders ports.OrderRepository,
	gateway ports.InvoiceGateway,
	logger ports.Logger,
) *Service {
	return &Service{
		cfg:      cfg,
		db:       db,
		payments: payments,
		orders:   orders,
		gateway:  gateway,
		logger:   logger,
	}
}

// InstallmentsOptions returns the eligible installment offers for amount
func (s *Service) InstallmentsOptions(amount float64) []domain.InstallmentOffer {
	return domain.ComputeOffers(amount, s.cfg.InstallmentConfig())
}

// Authorize tokenizes the card, selects the payer's installment offer, and
// creates the remote charge. When the offer's total exceeds the order total,
// the installment-tax adjustment and the remote charge are created within a
// single local transaction: the adjustment is never committed without a
// successful charge.
func (s *Service) Authorize(ctx context.Context, amount decimal.Decimal, card ports.CardDetails, opts Options) *Result {
	pmt, order, failed := s.resolvePaymentAndOrder(ctx, opts.OrderID)
	if failed != nil {
		return failed
	}
	if pmt.Installments <= 0 {
		return failure(domain.ErrorKindPrecondition, msgMissingInstallments)
	}

	token, err := s.gateway.CreatePaymentToken(ctx, &ports.TokenRequest{
		AccountID: s.cfg.AccountID,
		Test:      s.cfg.TestMode,
		Card:      card,
	})
	if err != nil {
		s.logger.Warn("tokenization failed",
			ports.String("payment", pmt.Number),
			ports.Err(err))
		return s.failureFromError(err)
	}

	offers := s.InstallmentsOptions(order.Total.InexactFloat64())
	idx := pmt.Installments - 1
	if idx >= len(offers) {
		return failure(domain.ErrorKindPrecondition, msgOfferUnavailable)
	}
	selected := offers[idx]

	var invoiceID string
	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		offerTotal := decimal.NewFromFloat(selected.TotalValue)
		adjusted := false

		if offerTotal.GreaterThan(order.Total) {
			adjustment := &models.Adjustment{
				ID:          uuid.New().String(),
				OrderNumber: order.Number,
				Label:       adjustmentLabel,
				Amount:      offerTotal.Sub(order.Total),
				Eligible:    true,
			}
			if err := s.orders.CreateAdjustment(ctx, tx, adjustment); err != nil {
				return err
			}
			if err := s.orders.UpdateTotal(ctx, tx, order.Number, offerTotal); err != nil {
				return err
			}
			order.Adjustments = append(order.Adjustments, *adjustment)
			order.Total = offerTotal
			adjusted = true
		}

		result, err := s.gateway.CreateCharge(ctx, s.buildChargeRequest(pmt, order, token.ID, opts))
		if err != nil {
			return err
		}
		invoiceID = result.InvoiceID

		if err := s.payments.SetResponseCode(ctx, tx, pmt.Number, invoiceID); err != nil {
			return err
		}
		if err := pmt.StartProcessing(); err != nil {
			return err
		}
		if err := s.payments.UpdateState(ctx, tx, pmt.Number, pmt.State); err != nil {
			return err
		}
		if adjusted {
			if err := s.payments.UpdateAmount(ctx, tx, pmt.Number, order.Total); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if invoiceID != "" {
			// The remote charge exists but the local transaction did not
			// commit. Nothing here can roll the charge back; surface it
			// loudly for manual reconciliation instead of guessing.
			s.logger.Error("fatal inconsistency: remote charge created but local transaction failed",
				ports.String("invoice_id", invoiceID),
				ports.String("payment", pmt.Number),
				ports.Err(err))
			observability.RecordReconciliationGap()
			return failure(domain.ErrorKindUnknown, msgGatewayFailure)
		}
		s.logger.Warn("charge creation failed",
			ports.String("payment", pmt.Number),
			ports.Err(err))
		return s.failureFromError(err)
	}

	pmt.ResponseCode = invoiceID
	observability.RecordPaymentTransition(string(pmt.State))
	s.logger.Info("charge authorized",
		ports.String("payment", pmt.Number),
		ports.String("invoice_id", invoiceID),
		ports.Int("installments", pmt.Installments),
		ports.Bool("tax_applied", selected.TaxApplied))

	return &Result{Success: true, Message: msgChargeSuccess, Authorization: invoiceID}
}

// Purchase authorizes and, if successful, captures in one step
func (s *Service) Purchase(ctx context.Context, amount decimal.Decimal, card ports.CardDetails, opts Options) *Result {
	result := s.Authorize(ctx, amount, card, opts)
	if !result.Success {
		return result
	}
	return s.Capture(ctx, result.Authorization)
}

// Capture captures the invoice behind an authorization reference. An
// already-paid invoice short-circuits to success without a capture call.
func (s *Service) Capture(ctx context.Context, responseCode string) *Result {
	if responseCode == "" {
		return failure(domain.ErrorKindPrecondition, msgMissingReference)
	}

	invoice, err := s.gateway.FetchInvoice(ctx, responseCode)
	if err != nil {
		return s.failureFromError(err)
	}
	if invoice.Status == models.InvoiceStatusPaid {
		return &Result{Success: true, Message: msgCaptureSuccess, Authorization: responseCode}
	}

	captured, err := s.gateway.CaptureInvoice(ctx, responseCode)
	if err != nil {
		return s.failureFromError(err)
	}
	if captured.Status == models.InvoiceStatusPaid {
		return &Result{Success: true, Message: msgCaptureSuccess, Authorization: responseCode}
	}

	message := translateProviderMessages(captured.Errors)
	if message == "" {
		message = msgGatewayFailure
	}
	s.logger.Warn("capture rejected",
		ports.String("invoice_id", responseCode),
		ports.String("status", string(captured.Status)))
	return failure(domain.ErrorKindCharge, message)
}

// Void reverses an authorization: refund when the invoice is paid, cancel
// otherwise. An already-canceled invoice short-circuits to success.
func (s *Service) Void(ctx context.Context, responseCode string) *Result {
	return s.refundOrCancel(ctx, responseCode, msgVoidSuccess)
}

// Cancel is Void under the cancellation label
func (s *Service) Cancel(ctx context.Context, responseCode string) *Result {
	return s.refundOrCancel(ctx, responseCode, msgCancelSuccess)
}

func (s *Service) refundOrCancel(ctx context.Context, responseCode, successMessage string) *Result {
	if responseCode == "" {
		return failure(domain.ErrorKindPrecondition, msgMissingReference)
	}

	invoice, err := s.gateway.FetchInvoice(ctx, responseCode)
	if err != nil {
		return s.failureFromError(err)
	}

	switch invoice.Status {
	case models.InvoiceStatusCanceled:
		return &Result{Success: true, Message: successMessage, Authorization: responseCode}
	case models.InvoiceStatusPaid:
		err = s.gateway.RefundInvoice(ctx, responseCode)
	default:
		err = s.gateway.CancelInvoice(ctx, responseCode)
	}
	if err != nil {
		s.logger.Warn("refund/cancel rejected",
			ports.String("invoice_id", responseCode),
			ports.Err(err))
		return s.failureFromError(err)
	}

	return &Result{Success: true, Message: successMessage, Authorization: responseCode}
}

// UpdatePayment fetches the current remote invoice status for a resolved
// payment and applies the status mapping onto local payment state. It
// returns true when a mapping rule matched and was applied; re-applying an
// unchanged status is a no-op. Payments without an authorization reference
// report false.
func (s *Service) UpdatePayment(ctx context.Context, pmt *models.Payment) (bool, error) {
	if pmt == nil || !pmt.Authorized() {
		return false, nil
	}

	invoice, err := s.gateway.FetchInvoice(ctx, pmt.ResponseCode)
	if err != nil {
		return false, err
	}

	previous := pmt.State
	applied, err := pmt.ApplyInvoiceStatus(invoice.Status)
	if err != nil {
		return false, err
	}
	if !applied {
		return false, nil
	}

	if pmt.State != previous {
		if err := s.payments.UpdateState(ctx, nil, pmt.Number, pmt.State); err != nil {
			return false, err
		}
		observability.RecordPaymentTransition(string(pmt.State))
		s.logger.Info("payment state reconciled",
			ports.String("payment", pmt.Number),
			ports.String("invoice_status", string(invoice.Status)),
			ports.String("state", string(pmt.State)))
	}
	return true, nil
}

func (s *Service) resolvePaymentAndOrder(ctx context.Context, orderID string) (*models.Payment, *models.Order, *Result) {
	parts := strings.SplitN(orderID, "-", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, nil, failure(domain.ErrorKindPrecondition, msgPaymentNotFound)
	}
	orderNumber, paymentNumber := parts[0], parts[1]

	pmt, err := s.payments.GetByNumber(ctx, nil, paymentNumber)
	if err != nil {
		return nil, nil, failure(domain.ErrorKindPrecondition, msgPaymentNotFound)
	}
	order, err := s.orders.GetByNumber(ctx, nil, orderNumber)
	if err != nil {
		return nil, nil, failure(domain.ErrorKindPrecondition, msgOrderNotFound)
	}
	return pmt, order, nil
}

func (s *Service) buildChargeRequest(pmt *models.Payment, order *models.Order, token string, opts Options) *ports.ChargeRequest {
	items := make([]ports.ChargeItem, 0, len(order.LineItems)+len(order.Adjustments)+1)
	for _, it := range order.LineItems {
		items = append(items, ports.ChargeItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			PriceCents:  toCents(it.Price),
		})
	}
	if order.ShipTotal.IsPositive() {
		items = append(items, ports.ChargeItem{
			Description: "Shipping",
			Quantity:    1,
			PriceCents:  toCents(order.ShipTotal),
		})
	}
	for _, adj := range order.Adjustments {
		items = append(items, ports.ChargeItem{
			Description: adj.Label,
			Quantity:    1,
			PriceCents:  toCents(adj.Amount),
		})
	}

	return &ports.ChargeRequest{
		Token:           token,
		Email:           opts.Email,
		Months:          pmt.Installments,
		Items:           items,
		NotificationURL: s.cfg.WebhookURL,
		Payer: ports.Payer{
			Name:    order.BillingAddress.Name,
			Phone:   order.BillingAddress.Phone,
			Email:   opts.CustomerEmail,
			Address: order.BillingAddress,
		},
	}
}

// failureFromError folds a gateway error into a normalized failure. Provider
// rejections carry the translated provider detail; anything unclassified
// collapses into the generic message so no internal detail leaks.
func (s *Service) failureFromError(err error) *Result {
	kind := domain.KindOf(err)
	switch kind {
	case domain.ErrorKindToken, domain.ErrorKindCharge:
		message := translateProviderMessages(domain.ProviderMessagesOf(err))
		if message == "" {
			message = msgGatewayFailure
		}
		return failure(kind, message)
	case domain.ErrorKindPrecondition:
		var gwErr *domain.GatewayError
		if errors.As(err, &gwErr) {
			return failure(kind, gwErr.Message)
		}
		return failure(kind, msgGatewayFailure)
	default:
		return failure(domain.ErrorKindUnknown, msgGatewayFailure)
	}
}

func failure(kind domain.ErrorKind, message string) *Result {
	return &Result{Success: false, Message: message, Kind: kind}
}

func toCents(v decimal.Decimal) int64 {
	return v.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
