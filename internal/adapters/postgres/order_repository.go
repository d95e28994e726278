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

// OrderRepository implements ports.OrderRepository using pgx
type OrderRepository struct {
	pool ports.DBTX
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *DBExecutor) *OrderRepository {
	return &OrderRepository{pool: db.GetDB()}
}

func (r *OrderRepository) querier(db ports.DBTX) ports.DBTX {
	if db != nil {
		return db
	}
	return r.pool
}

// GetByNumber retrieves an order with its line items and eligible adjustments
func (r *OrderRepository) GetByNumber(ctx context.Context, db ports.DBTX, number string) (*models.Order, error) {
	q := r.querier(db)

	var o models.Order
	err := q.QueryRow(ctx,
		`SELECT number, email, total, ship_total,
		        bill_name, bill_phone, bill_street, bill_city, bill_state, bill_country, bill_zip
		 FROM orders WHERE number = $1`, number).
		Scan(&o.Number, &o.Email, &o.Total, &o.ShipTotal,
			&o.BillingAddress.Name, &o.BillingAddress.Phone, &o.BillingAddress.Street,
			&o.BillingAddress.City, &o.BillingAddress.State, &o.BillingAddress.Country,
			&o.BillingAddress.ZipCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	items, err := r.lineItems(ctx, q, number)
	if err != nil {
		return nil, err
	}
	o.LineItems = items

	adjustments, err := r.eligibleAdjustments(ctx, q, number)
	if err != nil {
		return nil, err
	}
	o.Adjustments = adjustments

	return &o, nil
}

func (r *OrderRepository) lineItems(ctx context.Context, q ports.DBTX, number string) ([]models.LineItem, error) {
	rows, err := q.Query(ctx,
		`SELECT description, quantity, price FROM line_items WHERE order_number = $1 ORDER BY id`, number)
	if err != nil {
		return nil, fmt.Errorf("query line items: %w", err)
	}
	defer rows.Close()

	var items []models.LineItem
	for rows.Next() {
		var it models.LineItem
		if err := rows.Scan(&it.Description, &it.Quantity, &it.Price); err != nil {
			return nil, fmt.Errorf("scan line item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *OrderRepository) eligibleAdjustments(ctx context.Context, q ports.DBTX, number string) ([]models.Adjustment, error) {
	rows, err := q.Query(ctx,
		`SELECT id, order_number, label, amount, eligible
		 FROM adjustments WHERE order_number = $1 AND eligible ORDER BY created_at`, number)
	if err != nil {
		return nil, fmt.Errorf("query adjustments: %w", err)
	}
	defer rows.Close()

	var adjustments []models.Adjustment
	for rows.Next() {
		var a models.Adjustment
		if err := rows.Scan(&a.ID, &a.OrderNumber, &a.Label, &a.Amount, &a.Eligible); err != nil {
			return nil, fmt.Errorf("scan adjustment: %w", err)
		}
		adjustments = append(adjustments, a)
	}
	return adjustments, rows.Err()
}

// CreateAdjustment inserts a synthetic order adjustment
func (r *OrderRepository) CreateAdjustment(ctx context.Context, db ports.DBTX, adjustment *models.Adjustment) error {
	_, err := r.querier(db).Exec(ctx,
		`INSERT INTO adjustments (id, order_number, label, amount, eligible, created_at)
		 VALUES ($1, $2, $3, $4, $5, now())`,
		adjustment.ID, adjustment.OrderNumber, adjustment.Label, adjustment.Amount, adjustment.Eligible)
	if err != nil {
		return fmt.Errorf("create adjustment: %w", err)
	}
	return nil
}

// UpdateTotal persists a recomputed order total
func (r *OrderRepository) UpdateTotal(ctx context.Context, db ports.DBTX, number string, total decimal.Decimal) error {
	tag, err := r.querier(db).Exec(ctx,
		`UPDATE orders SET total = $2, updated_at = now() WHERE number = $1`,
		number, total)
	if err != nil {
		return fmt.Errorf("update order total: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}
