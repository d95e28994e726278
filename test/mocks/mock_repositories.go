package mocks

import (
	"context"
	"sync"

	"github.com/Reacta/iugu-gateway/internal/domain"
	"github.com/Reacta/iugu-gateway/internal/domain/models"
	"github.com/Reacta/iugu-gateway/internal/domain/ports"
	"github.com/shopspring/decimal"
)

// MockPaymentRepository is an in-memory PaymentRepository for testing
type MockPaymentRepository struct {
	mu       sync.Mutex
	payments map[string]*models.Payment

	GetByNumberCalls       int
	GetByResponseCodeCalls int
	SetResponseCodeCalls   int
	UpdateStateCalls       int
	UpdateAmountCalls      int

	// Errors to force
	UpdateStateErr error
}

// NewMockPaymentRepository creates an empty in-memory payment repository
func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{payments: map[string]*models.Payment{}}
}

// Seed stores a copy of the payment keyed by its number
func (m *MockPaymentRepository) Seed(pmt models.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := pmt
	m.payments[pmt.Number] = &stored
}

// Stored returns the stored payment for number, or nil
func (m *MockPaymentRepository) Stored(number string) *models.Payment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.payments[number]
}

// GetByNumber implements PaymentRepository.GetByNumber
func (m *MockPaymentRepository) GetByNumber(ctx context.Context, db ports.DBTX, number string) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetByNumberCalls++
	pmt, ok := m.payments[number]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	copied := *pmt
	return &copied, nil
}

// GetByResponseCode implements PaymentRepository.GetByResponseCode
func (m *MockPaymentRepository) GetByResponseCode(ctx context.Context, db ports.DBTX, responseCode string) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetByResponseCodeCalls++
	for _, pmt := range m.payments {
		if pmt.ResponseCode == responseCode {
			copied := *pmt
			return &copied, nil
		}
	}
	return nil, domain.ErrPaymentNotFound
}

// SetResponseCode implements PaymentRepository.SetResponseCode
func (m *MockPaymentRepository) SetResponseCode(ctx context.Context, db ports.DBTX, number, responseCode string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetResponseCodeCalls++
	pmt, ok := m.payments[number]
	if !ok {
		return domain.ErrPaymentNotFound
	}
	pmt.ResponseCode = responseCode
	return nil
}

// UpdateState implements PaymentRepository.UpdateState
func (m *MockPaymentRepository) UpdateState(ctx context.Context, db ports.DBTX, number string, state models.PaymentState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateStateCalls++
	if m.UpdateStateErr != nil {
		return m.UpdateStateErr
	}
	pmt, ok := m.payments[number]
	if !ok {
		return domain.ErrPaymentNotFound
	}
	pmt.State = state
	return nil
}

// UpdateAmount implements PaymentRepository.UpdateAmount
func (m *MockPaymentRepository) UpdateAmount(ctx context.Context, db ports.DBTX, number string, amount decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateAmountCalls++
	pmt, ok := m.payments[number]
	if !ok {
		return domain.ErrPaymentNotFound
	}
	pmt.Amount = amount
	return nil
}

// MockOrderRepository is an in-memory OrderRepository for testing
type MockOrderRepository struct {
	mu     sync.Mutex
	orders map[string]*models.Order

	GetByNumberCalls      int
	CreateAdjustmentCalls int
	UpdateTotalCalls      int

	Adjustments []models.Adjustment
}

// NewMockOrderRepository creates an empty in-memory order repository
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{orders: map[string]*models.Order{}}
}

// Seed stores a copy of the order keyed by its number
func (m *MockOrderRepository) Seed(order models.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := order
	m.orders[order.Number] = &stored
}

// Stored returns the stored order for number, or nil
func (m *MockOrderRepository) Stored(number string) *models.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.orders[number]
}

// GetByNumber implements OrderRepository.GetByNumber
func (m *MockOrderRepository) GetByNumber(ctx context.Context, db ports.DBTX, number string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetByNumberCalls++
	order, ok := m.orders[number]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	copied := *order
	return &copied, nil
}

// CreateAdjustment implements OrderRepository.CreateAdjustment
func (m *MockOrderRepository) CreateAdjustment(ctx context.Context, db ports.DBTX, adjustment *models.Adjustment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateAdjustmentCalls++
	m.Adjustments = append(m.Adjustments, *adjustment)
	return nil
}

// UpdateTotal implements OrderRepository.UpdateTotal
func (m *MockOrderRepository) UpdateTotal(ctx context.Context, db ports.DBTX, number string, total decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateTotalCalls++
	order, ok := m.orders[number]
	if !ok {
		return domain.ErrOrderNotFound
	}
	order.Total = total
	return nil
}
