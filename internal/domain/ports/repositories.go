package ports

import (
	"context"

	"github.com/Reacta/iugu-gateway/internal/domain/models"
	"github.com/shopspring/decimal"
)

// PaymentRepository persists the host platform's payment records this
// service drives. Methods accept a DBTX so callers can scope writes to an
// enclosing transaction; nil falls back to the pool.
type PaymentRepository interface {
	GetByNumber(ctx context.Context, db DBTX, number string) (*models.Payment, error)
	GetByResponseCode(ctx context.Context, db DBTX, responseCode string) (*models.Payment, error)
	SetResponseCode(ctx context.Context, db DBTX, number, responseCode string) error
	UpdateState(ctx context.Context, db DBTX, number string, state models.PaymentState) error
	UpdateAmount(ctx context.Context, db DBTX, number string, amount decimal.Decimal) error
}

// OrderRepository reads orders and applies the installment-tax adjustment
type OrderRepository interface {
	GetByNumber(ctx context.Context, db DBTX, number string) (*models.Order, error)
	CreateAdjustment(ctx context.Context, db DBTX, adjustment *models.Adjustment) error
	UpdateTotal(ctx context.Context, db DBTX, number string, total decimal.Decimal) error
}
