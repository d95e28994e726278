package models

import (
	"testing"

	"github.com/Reacta/iugu-gateway/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayment_Transitions(t *testing.T) {
	t.Run("checkout to processing", func(t *testing.T) {
		pmt := &Payment{State: PaymentStateCheckout}
		require.NoError(t, pmt.StartProcessing())
		assert.Equal(t, PaymentStateProcessing, pmt.State)
	})

	t.Run("processing to completed", func(t *testing.T) {
		pmt := &Payment{State: PaymentStateProcessing}
		require.NoError(t, pmt.Complete())
		assert.Equal(t, PaymentStateCompleted, pmt.State)
	})

	t.Run("completed to void", func(t *testing.T) {
		pmt := &Payment{State: PaymentStateCompleted}
		require.NoError(t, pmt.Void())
		assert.Equal(t, PaymentStateVoid, pmt.State)
	})

	t.Run("same state is a no-op", func(t *testing.T) {
		pmt := &Payment{State: PaymentStateCompleted}
		require.NoError(t, pmt.Complete())
		assert.Equal(t, PaymentStateCompleted, pmt.State)
	})

	t.Run("completed cannot pend", func(t *testing.T) {
		pmt := &Payment{State: PaymentStateCompleted}
		err := pmt.Pend()
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		assert.Equal(t, PaymentStateCompleted, pmt.State)
	})

	t.Run("void is terminal", func(t *testing.T) {
		pmt := &Payment{State: PaymentStateVoid}
		assert.ErrorIs(t, pmt.Complete(), domain.ErrInvalidTransition)
		assert.ErrorIs(t, pmt.StartProcessing(), domain.ErrInvalidTransition)
		assert.Equal(t, PaymentStateVoid, pmt.State)
	})
}

func TestPayment_ApplyInvoiceStatus(t *testing.T) {
	tests := []struct {
		name        string
		status      InvoiceStatus
		startState  PaymentState
		wantApplied bool
		wantState   PaymentState
	}{
		{"pending pends", InvoiceStatusPending, PaymentStateProcessing, true, PaymentStatePending},
		{"paid completes", InvoiceStatusPaid, PaymentStateProcessing, true, PaymentStateCompleted},
		{"refunded voids", InvoiceStatusRefunded, PaymentStateCompleted, true, PaymentStateVoid},
		{"canceled has no rule", InvoiceStatusCanceled, PaymentStateProcessing, false, PaymentStateProcessing},
		{"in_analysis has no rule", InvoiceStatusInAnalysis, PaymentStateProcessing, false, PaymentStateProcessing},
		{"unknown status ignored", InvoiceStatus("weird"), PaymentStateProcessing, false, PaymentStateProcessing},
		{"redelivery is idempotent", InvoiceStatusPaid, PaymentStateCompleted, true, PaymentStateCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pmt := &Payment{State: tt.startState}
			applied, err := pmt.ApplyInvoiceStatus(tt.status)
			require.NoError(t, err)
			assert.Equal(t, tt.wantApplied, applied)
			assert.Equal(t, tt.wantState, pmt.State)
		})
	}
}

func TestPayment_Authorized(t *testing.T) {
	assert.False(t, (&Payment{}).Authorized())
	assert.True(t, (&Payment{ResponseCode: "INV-1"}).Authorized())
}
