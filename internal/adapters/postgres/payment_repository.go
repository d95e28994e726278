package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Reacta/iugu-gateway/internal/domain"
	"github.com/Reacta/iugu-gateway/internal/domain/models"
	"github.com/Reacta/iugu-gateway/internal/domain/ports"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// PaymentRepository implements ports.PaymentRepository using pgx
type PaymentRepository struct {
	pool ports.DBTX
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *DBExecutor) *PaymentRepository {
	return &PaymentRepository{pool: db.GetDB()}
}

func (r *PaymentRepository) querier(db ports.DBTX) ports.DBTX {
	if db != nil {
		return db
	}
	return r.pool
}

const paymentColumns = `number, order_number, amount, installments, COALESCE(response_code, ''), state`

// GetByNumber retrieves a payment by its number
func (r *PaymentRepository) GetByNumber(ctx context.Context, db ports.DBTX, number string) (*models.Payment, error) {
	row := r.querier(db).QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE number = $1`, number)
	return scanPayment(row)
}

// GetByResponseCode retrieves a payment by the remote invoice id recorded on it
func (r *PaymentRepository) GetByResponseCode(ctx context.Context, db ports.DBTX, responseCode string) (*models.Payment, error) {
	row := r.querier(db).QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE response_code = $1`, responseCode)
	return scanPayment(row)
}

// SetResponseCode records the remote invoice id on the payment
func (r *PaymentRepository) SetResponseCode(ctx context.Context, db ports.DBTX, number, responseCode string) error {
	tag, err := r.querier(db).Exec(ctx,
		`UPDATE payments SET response_code = $2, updated_at = now() WHERE number = $1`,
		number, responseCode)
	if err != nil {
		return fmt.Errorf("set response code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPaymentNotFound
	}
	return nil
}

// UpdateState persists a local payment state transition
func (r *PaymentRepository) UpdateState(ctx context.Context, db ports.DBTX, number string, state models.PaymentState) error {
	tag, err := r.querier(db).Exec(ctx,
		`UPDATE payments SET state = $2, updated_at = now() WHERE number = $1`,
		number, string(state))
	if err != nil {
		return fmt.Errorf("update payment state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPaymentNotFound
	}
	return nil
}

// UpdateAmount persists the payment amount after a tax adjustment raised the order total
func (r *PaymentRepository) UpdateAmount(ctx context.Context, db ports.DBTX, number string, amount decimal.Decimal) error {
	tag, err := r.querier(db).Exec(ctx,
		`UPDATE payments SET amount = $2, updated_at = now() WHERE number = $1`,
		number, amount)
	if err != nil {
		return fmt.Errorf("update payment amount: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPaymentNotFound
	}
	return nil
}

func scanPayment(row pgx.Row) (*models.Payment, error) {
	var p models.Payment
	var state string
	err := row.Scan(&p.Number, &p.OrderNumber, &p.Amount, &p.Installments, &p.ResponseCode, &state)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("scan payment: %w", err)
	}
	p.State = models.PaymentState(state)
	return &p, nil
}
