package webhook

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Reacta/iugu-gateway/internal/domain/models"
	"github.com/Reacta/iugu-gateway/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReconciler struct {
	applied bool
	err     error
	calls   int
	lastPmt *models.Payment
}

func (s *stubReconciler) UpdatePayment(ctx context.Context, pmt *models.Payment) (bool, error) {
	s.calls++
	s.lastPmt = pmt
	return s.applied, s.err
}

func newWebhookFixture(applied bool, err error) (*Handler, *mocks.MockPaymentRepository, *stubReconciler) {
	payments := mocks.NewMockPaymentRepository()
	reconciler := &stubReconciler{applied: applied, err: err}
	handler := NewHandler(payments, reconciler, mocks.NewMockLogger())
	return handler, payments, reconciler
}

func post(handler *Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/iugu", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.HandleNotification(rec, req)
	return rec
}

func TestHandleNotification_Applied(t *testing.T) {
	handler, payments, reconciler := newWebhookFixture(true, nil)
	payments.Seed(models.Payment{Number: "P1", ResponseCode: "inv_1", State: models.PaymentStateProcessing})

	rec := post(handler, `{"event":"invoice.status_changed","data":{"id":"inv_1"}}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, reconciler.calls)
	assert.Equal(t, "P1", reconciler.lastPmt.Number)
}

func TestHandleNotification_UnknownInvoice(t *testing.T) {
	handler, _, reconciler := newWebhookFixture(true, nil)

	rec := post(handler, `{"data":{"id":"inv_missing"}}`)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, 0, reconciler.calls)
}

func TestHandleNotification_Unapplied(t *testing.T) {
	handler, payments, _ := newWebhookFixture(false, nil)
	payments.Seed(models.Payment{Number: "P1", ResponseCode: "inv_1"})

	rec := post(handler, `{"data":{"id":"inv_1"}}`)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandleNotification_ReconciliationError(t *testing.T) {
	handler, payments, _ := newWebhookFixture(false, errors.New("provider down"))
	payments.Seed(models.Payment{Number: "P1", ResponseCode: "inv_1"})

	rec := post(handler, `{"data":{"id":"inv_1"}}`)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandleNotification_MalformedPayload(t *testing.T) {
	handler, _, reconciler := newWebhookFixture(true, nil)

	assert.Equal(t, http.StatusBadRequest, post(handler, `not json`).Code)
	assert.Equal(t, http.StatusBadRequest, post(handler, `{"data":{}}`).Code)
	assert.Equal(t, 0, reconciler.calls)
}

func TestHandleNotification_MethodNotAllowed(t *testing.T) {
	handler, _, _ := newWebhookFixture(true, nil)

	req := httptest.NewRequest(http.MethodGet, "/webhooks/iugu", nil)
	rec := httptest.NewRecorder()
	handler.HandleNotification(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
