package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/Reacta/iugu-gateway/internal/config"
	"github.com/Reacta/iugu-gateway/internal/domain"
	"github.com/Reacta/iugu-gateway/internal/domain/models"
	"github.com/Reacta/iugu-gateway/internal/domain/ports"
	"github.com/Reacta/iugu-gateway/test/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	service  *Service
	payments *mocks.MockPaymentRepository
	orders   *mocks.MockOrderRepository
	gateway  *mocks.MockInvoiceGateway
	tx       *mocks.MockTransactionManager
	logger   *mocks.MockLogger
}

func newFixture(cfg config.GatewayConfig) *fixture {
	f := &fixture{
		payments: mocks.NewMockPaymentRepository(),
		orders:   mocks.NewMockOrderRepository(),
		gateway:  mocks.NewMockInvoiceGateway(),
		tx:       mocks.NewMockTransactionManager(),
		logger:   mocks.NewMockLogger(),
	}
	f.service = NewService(cfg, f.tx, f.payments, f.orders, f.gateway, f.logger)
	return f
}

func defaultGatewayConfig() config.GatewayConfig {
	return config.GatewayConfig{
		TestMode:        true,
		AccountID:       "acc-123",
		APIKey:          "key",
		MaxInstallments: 12,
		WebhookURL:      "https://shop.example.com/webhooks/iugu",
	}
}

func seedCheckout(f *fixture, installments int) {
	f.payments.Seed(models.Payment{
		Number:       "P1",
		OrderNumber:  "R1",
		Amount:       decimal.NewFromInt(100),
		Installments: installments,
		State:        models.PaymentStateCheckout,
	})
	f.orders.Seed(models.Order{
		Number: "R1",
		Email:  "buyer@example.com",
		Total:  decimal.NewFromInt(100),
		LineItems: []models.LineItem{
			{Description: "Widget", Quantity: 2, Price: decimal.NewFromFloat(45.00)},
		},
		ShipTotal: decimal.NewFromInt(10),
		BillingAddress: models.Address{
			Name:  "JOAO DA SILVA",
			Phone: "(11) 98888-7777",
		},
	})
}

var card = ports.CardDetails{
	Number:            "4111111111111111",
	VerificationValue: "123",
	HolderName:        "JOAO DA SILVA",
	Month:             12,
	Year:              2030,
}

var opts = Options{
	OrderID:       "R1-P1",
	Email:         "buyer@example.com",
	CustomerEmail: "buyer@example.com",
}

func TestAuthorize_Success(t *testing.T) {
	f := newFixture(defaultGatewayConfig())
	seedCheckout(f, 2)
	f.gateway.SetTokenResponse(&ports.PaymentToken{ID: "tok_1"}, nil)
	f.gateway.SetChargeResponse(&ports.ChargeResult{InvoiceID: "inv_1"}, nil)

	result := f.service.Authorize(context.Background(), decimal.NewFromInt(100), card, opts)

	require.True(t, result.Success)
	assert.Equal(t, msgChargeSuccess, result.Message)
	assert.Equal(t, "inv_1", result.Authorization)

	// no tax schedule means the offer total equals the order total
	assert.Equal(t, 0, f.orders.CreateAdjustmentCalls)
	assert.Equal(t, 0, f.payments.UpdateAmountCalls)

	stored := f.payments.Stored("P1")
	assert.Equal(t, "inv_1", stored.ResponseCode)
	assert.Equal(t, models.PaymentStateProcessing, stored.State)

	req := f.gateway.LastChargeReq
	require.NotNil(t, req)
	assert.Equal(t, "tok_1", req.Token)
	assert.Equal(t, 2, req.Months)
	assert.Equal(t, "https://shop.example.com/webhooks/iugu", req.NotificationURL)
	require.Len(t, req.Items, 2)
	assert.Equal(t, "Widget", req.Items[0].Description)
	assert.Equal(t, int64(4500), req.Items[0].PriceCents)
	assert.Equal(t, "Shipping", req.Items[1].Description)
	assert.Equal(t, int64(1000), req.Items[1].PriceCents)
	assert.Equal(t, "JOAO DA SILVA", req.Payer.Name)
}

func TestAuthorize_AppliesInstallmentTaxAdjustment(t *testing.T) {
	cfg := defaultGatewayConfig()
	cfg.TaxSchedule = domain.TaxSchedule{2: 1}
	f := newFixture(cfg)
	seedCheckout(f, 2)
	f.gateway.SetTokenResponse(&ports.PaymentToken{ID: "tok_1"}, nil)
	f.gateway.SetChargeResponse(&ports.ChargeResult{InvoiceID: "inv_1"}, nil)

	result := f.service.Authorize(context.Background(), decimal.NewFromInt(100), card, opts)

	require.True(t, result.Success)
	require.Equal(t, 1, f.orders.CreateAdjustmentCalls)
	adjustment := f.orders.Adjustments[0]
	assert.Equal(t, adjustmentLabel, adjustment.Label)
	assert.True(t, adjustment.Eligible)
	assert.True(t, adjustment.Amount.Equal(decimal.NewFromInt(1)), "got %s", adjustment.Amount)

	// order total and payment amount both follow the taxed offer
	assert.True(t, f.orders.Stored("R1").Total.Equal(decimal.NewFromInt(101)))
	assert.True(t, f.payments.Stored("P1").Amount.Equal(decimal.NewFromInt(101)))

	// the adjustment is billed as a charge item
	req := f.gateway.LastChargeReq
	require.Len(t, req.Items, 3)
	assert.Equal(t, adjustmentLabel, req.Items[2].Description)
	assert.Equal(t, int64(100), req.Items[2].PriceCents)
}

func TestAuthorize_TokenRejected(t *testing.T) {
	f := newFixture(defaultGatewayConfig())
	seedCheckout(f, 2)
	f.gateway.SetTokenResponse(nil, domain.NewTokenError([]string{"is not a valid credit card number"}))

	result := f.service.Authorize(context.Background(), decimal.NewFromInt(100), card, opts)

	require.False(t, result.Success)
	assert.Equal(t, domain.ErrorKindToken, result.Kind)
	assert.Equal(t, "Invalid credit card number", result.Message)

	// nothing was charged or adjusted
	assert.Equal(t, 0, f.gateway.ChargeCalls)
	assert.Equal(t, 0, f.orders.CreateAdjustmentCalls)
	assert.Equal(t, 0, f.tx.Calls)
}

func TestAuthorize_ChargeRejected(t *testing.T) {
	f := newFixture(defaultGatewayConfig())
	seedCheckout(f, 2)
	f.gateway.SetTokenResponse(&ports.PaymentToken{ID: "tok_1"}, nil)
	f.gateway.SetChargeResponse(nil, domain.NewChargeError([]string{"card declined"}))

	result := f.service.Authorize(context.Background(), decimal.NewFromInt(100), card, opts)

	require.False(t, result.Success)
	assert.Equal(t, domain.ErrorKindCharge, result.Kind)
	assert.Equal(t, "card declined", result.Message)
	assert.Equal(t, 0, f.payments.SetResponseCodeCalls)
	assert.Equal(t, "", f.payments.Stored("P1").ResponseCode)
}

func TestAuthorize_CommitFailureAfterCharge(t *testing.T) {
	f := newFixture(defaultGatewayConfig())
	seedCheckout(f, 2)
	f.gateway.SetTokenResponse(&ports.PaymentToken{ID: "tok_1"}, nil)
	f.gateway.SetChargeResponse(&ports.ChargeResult{InvoiceID: "inv_1"}, nil)
	f.tx.CommitError = errors.New("connection reset")

	result := f.service.Authorize(context.Background(), decimal.NewFromInt(100), card, opts)

	require.False(t, result.Success)
	assert.Equal(t, domain.ErrorKindUnknown, result.Kind)
	assert.Equal(t, msgGatewayFailure, result.Message)
	require.Len(t, f.logger.ErrorCalls, 1)
}

func TestAuthorize_Preconditions(t *testing.T) {
	t.Run("missing installments", func(t *testing.T) {
		f := newFixture(defaultGatewayConfig())
		seedCheckout(f, 0)

		result := f.service.Authorize(context.Background(), decimal.NewFromInt(100), card, opts)

		require.False(t, result.Success)
		assert.Equal(t, domain.ErrorKindPrecondition, result.Kind)
		assert.Equal(t, msgMissingInstallments, result.Message)
		assert.Equal(t, 0, f.gateway.TokenCalls)
	})

	t.Run("malformed order reference", func(t *testing.T) {
		f := newFixture(defaultGatewayConfig())

		result := f.service.Authorize(context.Background(), decimal.NewFromInt(100), card, Options{OrderID: "R1"})

		require.False(t, result.Success)
		assert.Equal(t, msgPaymentNotFound, result.Message)
	})

	t.Run("unknown payment", func(t *testing.T) {
		f := newFixture(defaultGatewayConfig())

		result := f.service.Authorize(context.Background(), decimal.NewFromInt(100), card, opts)

		require.False(t, result.Success)
		assert.Equal(t, msgPaymentNotFound, result.Message)
	})

	t.Run("installment count beyond offers", func(t *testing.T) {
		f := newFixture(defaultGatewayConfig())
		seedCheckout(f, 15)
		f.gateway.SetTokenResponse(&ports.PaymentToken{ID: "tok_1"}, nil)

		result := f.service.Authorize(context.Background(), decimal.NewFromInt(100), card, opts)

		require.False(t, result.Success)
		assert.Equal(t, msgOfferUnavailable, result.Message)
		assert.Equal(t, 0, f.gateway.ChargeCalls)
	})
}

func TestCapture(t *testing.T) {
	t.Run("already paid short-circuits", func(t *testing.T) {
		f := newFixture(defaultGatewayConfig())
		f.gateway.SetFetchResponse(&models.Invoice{ID: "inv_1", Status: models.InvoiceStatusPaid}, nil)

		result := f.service.Capture(context.Background(), "inv_1")

		require.True(t, result.Success)
		assert.Equal(t, msgCaptureSuccess, result.Message)
		assert.Equal(t, 0, f.gateway.CaptureCalls)
	})

	t.Run("captures a pending invoice", func(t *testing.T) {
		f := newFixture(defaultGatewayConfig())
		f.gateway.SetFetchResponse(&models.Invoice{ID: "inv_1", Status: models.InvoiceStatusPending}, nil)
		f.gateway.SetCaptureResponse(&models.Invoice{ID: "inv_1", Status: models.InvoiceStatusPaid}, nil)

		result := f.service.Capture(context.Background(), "inv_1")

		require.True(t, result.Success)
		assert.Equal(t, 1, f.gateway.CaptureCalls)
		assert.Equal(t, "inv_1", f.gateway.LastCaptureInvoice)
	})

	t.Run("capture rejected with provider detail", func(t *testing.T) {
		f := newFixture(defaultGatewayConfig())
		f.gateway.SetFetchResponse(&models.Invoice{ID: "inv_1", Status: models.InvoiceStatusPending}, nil)
		f.gateway.SetCaptureResponse(&models.Invoice{
			ID:     "inv_1",
			Status: models.InvoiceStatusPending,
			Errors: []string{"capture window expired"},
		}, nil)

		result := f.service.Capture(context.Background(), "inv_1")

		require.False(t, result.Success)
		assert.Equal(t, domain.ErrorKindCharge, result.Kind)
		assert.Equal(t, "capture window expired", result.Message)
	})

	t.Run("missing reference", func(t *testing.T) {
		f := newFixture(defaultGatewayConfig())

		result := f.service.Capture(context.Background(), "")

		require.False(t, result.Success)
		assert.Equal(t, msgMissingReference, result.Message)
		assert.Equal(t, 0, f.gateway.FetchCalls)
	})
}

func TestVoidAndCancel(t *testing.T) {
	t.Run("already canceled short-circuits", func(t *testing.T) {
		f := newFixture(defaultGatewayConfig())
		f.gateway.SetFetchResponse(&models.Invoice{ID: "inv_1", Status: models.InvoiceStatusCanceled}, nil)

		result := f.service.Void(context.Background(), "inv_1")

		require.True(t, result.Success)
		assert.Equal(t, msgVoidSuccess, result.Message)
		assert.Equal(t, 0, f.gateway.RefundCalls)
		assert.Equal(t, 0, f.gateway.CancelCalls)
	})

	t.Run("paid invoice is refunded", func(t *testing.T) {
		f := newFixture(defaultGatewayConfig())
		f.gateway.SetFetchResponse(&models.Invoice{ID: "inv_1", Status: models.InvoiceStatusPaid}, nil)

		result := f.service.Void(context.Background(), "inv_1")

		require.True(t, result.Success)
		assert.Equal(t, 1, f.gateway.RefundCalls)
		assert.Equal(t, 0, f.gateway.CancelCalls)
	})

	t.Run("pending invoice is canceled", func(t *testing.T) {
		f := newFixture(defaultGatewayConfig())
		f.gateway.SetFetchResponse(&models.Invoice{ID: "inv_1", Status: models.InvoiceStatusPending}, nil)

		result := f.service.Cancel(context.Background(), "inv_1")

		require.True(t, result.Success)
		assert.Equal(t, msgCancelSuccess, result.Message)
		assert.Equal(t, 0, f.gateway.RefundCalls)
		assert.Equal(t, 1, f.gateway.CancelCalls)
	})

	t.Run("refund rejection surfaces", func(t *testing.T) {
		f := newFixture(defaultGatewayConfig())
		f.gateway.SetFetchResponse(&models.Invoice{ID: "inv_1", Status: models.InvoiceStatusPaid}, nil)
		f.gateway.SetRefundError(domain.NewChargeError([]string{"refund not allowed"}))

		result := f.service.Void(context.Background(), "inv_1")

		require.False(t, result.Success)
		assert.Equal(t, "refund not allowed", result.Message)
	})
}

func TestUpdatePayment(t *testing.T) {
	t.Run("unauthorized payment reports false", func(t *testing.T) {
		f := newFixture(defaultGatewayConfig())

		applied, err := f.service.UpdatePayment(context.Background(), &models.Payment{Number: "P1"})

		require.NoError(t, err)
		assert.False(t, applied)
		assert.Equal(t, 0, f.gateway.FetchCalls)
	})

	t.Run("paid invoice completes the payment", func(t *testing.T) {
		f := newFixture(defaultGatewayConfig())
		f.payments.Seed(models.Payment{Number: "P1", ResponseCode: "inv_1", State: models.PaymentStateProcessing})
		f.gateway.SetFetchResponse(&models.Invoice{ID: "inv_1", Status: models.InvoiceStatusPaid}, nil)

		pmt, _ := f.payments.GetByNumber(context.Background(), nil, "P1")
		applied, err := f.service.UpdatePayment(context.Background(), pmt)

		require.NoError(t, err)
		assert.True(t, applied)
		assert.Equal(t, models.PaymentStateCompleted, pmt.State)
		assert.Equal(t, models.PaymentStateCompleted, f.payments.Stored("P1").State)
	})

	t.Run("redelivered status skips the write", func(t *testing.T) {
		f := newFixture(defaultGatewayConfig())
		f.payments.Seed(models.Payment{Number: "P1", ResponseCode: "inv_1", State: models.PaymentStateCompleted})
		f.gateway.SetFetchResponse(&models.Invoice{ID: "inv_1", Status: models.InvoiceStatusPaid}, nil)

		pmt, _ := f.payments.GetByNumber(context.Background(), nil, "P1")
		applied, err := f.service.UpdatePayment(context.Background(), pmt)

		require.NoError(t, err)
		assert.True(t, applied)
		assert.Equal(t, 0, f.payments.UpdateStateCalls)
	})

	t.Run("status without a rule reports false", func(t *testing.T) {
		f := newFixture(defaultGatewayConfig())
		f.payments.Seed(models.Payment{Number: "P1", ResponseCode: "inv_1", State: models.PaymentStateProcessing})
		f.gateway.SetFetchResponse(&models.Invoice{ID: "inv_1", Status: models.InvoiceStatusInAnalysis}, nil)

		pmt, _ := f.payments.GetByNumber(context.Background(), nil, "P1")
		applied, err := f.service.UpdatePayment(context.Background(), pmt)

		require.NoError(t, err)
		assert.False(t, applied)
		assert.Equal(t, models.PaymentStateProcessing, pmt.State)
	})

	t.Run("fetch failure propagates", func(t *testing.T) {
		f := newFixture(defaultGatewayConfig())
		f.gateway.SetFetchResponse(nil, domain.WrapUnknownError("provider down", nil))

		_, err := f.service.UpdatePayment(context.Background(), &models.Payment{Number: "P1", ResponseCode: "inv_1"})

		require.Error(t, err)
	})
}

func TestPurchase(t *testing.T) {
	t.Run("authorizes then captures", func(t *testing.T) {
		f := newFixture(defaultGatewayConfig())
		seedCheckout(f, 2)
		f.gateway.SetTokenResponse(&ports.PaymentToken{ID: "tok_1"}, nil)
		f.gateway.SetChargeResponse(&ports.ChargeResult{InvoiceID: "inv_1"}, nil)
		f.gateway.SetFetchResponse(&models.Invoice{ID: "inv_1", Status: models.InvoiceStatusPaid}, nil)

		result := f.service.Purchase(context.Background(), decimal.NewFromInt(100), card, opts)

		require.True(t, result.Success)
		assert.Equal(t, msgCaptureSuccess, result.Message)
		assert.Equal(t, "inv_1", result.Authorization)
	})

	t.Run("authorization failure stops the chain", func(t *testing.T) {
		f := newFixture(defaultGatewayConfig())
		seedCheckout(f, 2)
		f.gateway.SetTokenResponse(nil, domain.NewTokenError([]string{"declined"}))

		result := f.service.Purchase(context.Background(), decimal.NewFromInt(100), card, opts)

		require.False(t, result.Success)
		assert.Equal(t, 0, f.gateway.FetchCalls)
	})
}

func TestInstallmentsOptions(t *testing.T) {
	cfg := defaultGatewayConfig()
	cfg.MaxInstallments = 3
	f := newFixture(cfg)

	offers := f.service.InstallmentsOptions(90)

	require.Len(t, offers, 3)
	assert.Equal(t, 30.0, offers[2].UnitValue)
}
