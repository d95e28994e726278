package webhook

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Reacta/iugu-gateway/internal/domain/models"
	"github.com/Reacta/iugu-gateway/internal/domain/ports"
	"github.com/Reacta/iugu-gateway/pkg/observability"
)

// Reconciler applies the remote invoice status onto a local payment
type Reconciler interface {
	UpdatePayment(ctx context.Context, pmt *models.Payment) (bool, error)
}

// Handler receives Iugu invoice status notifications and reconciles the
// referenced payment. Notifications for unknown invoices, or statuses with
// no local mapping, are answered with 403 so Iugu keeps retrying until the
// payment reaches a reconcilable state.
type Handler struct {
	payments   ports.PaymentRepository
	reconciler Reconciler
	logger     ports.Logger
}

// NewHandler creates a new webhook handler
func NewHandler(payments ports.PaymentRepository, reconciler Reconciler, logger ports.Logger) *Handler {
	return &Handler{
		payments:   payments,
		reconciler: reconciler,
		logger:     logger,
	}
}

type notification struct {
	Event string `json:"event"`
	Data  struct {
		ID string `json:"id"`
	} `json:"data"`
}

// HandleNotification processes an invoice status notification
// POST /webhooks/iugu
func (h *Handler) HandleNotification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var payload notification
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Data.ID == "" {
		h.logger.Warn("malformed webhook payload", ports.Err(err))
		observability.RecordWebhookEvent("malformed")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	pmt, err := h.payments.GetByResponseCode(ctx, nil, payload.Data.ID)
	if err != nil {
		h.logger.Warn("webhook for unknown invoice",
			ports.String("invoice_id", payload.Data.ID))
		observability.RecordWebhookEvent("unknown_invoice")
		w.WriteHeader(http.StatusForbidden)
		return
	}

	applied, err := h.reconciler.UpdatePayment(ctx, pmt)
	if err != nil {
		h.logger.Error("webhook reconciliation failed",
			ports.String("invoice_id", payload.Data.ID),
			ports.String("payment", pmt.Number),
			ports.Err(err))
		observability.RecordWebhookEvent("error")
		w.WriteHeader(http.StatusForbidden)
		return
	}
	if !applied {
		observability.RecordWebhookEvent("unapplied")
		w.WriteHeader(http.StatusForbidden)
		return
	}

	h.logger.Info("webhook applied",
		ports.String("invoice_id", payload.Data.ID),
		ports.String("payment", pmt.Number),
		ports.String("state", string(pmt.State)))
	observability.RecordWebhookEvent("applied")
	w.WriteHeader(http.StatusOK)
}
