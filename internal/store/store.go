package store

import (
	"context"
	"errors"
	"time"

	"commerce-mollie/internal/commerce"
	"commerce-mollie/internal/provider"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("order payment not found")

// Record is the payment state persisted per commerce order: the mollie
// reference properties plus the last verified transaction state.
type Record struct {
	OrderNumber         string
	MollieOrderID       string
	MolliePaymentID     string
	MolliePaymentMethod string
	TransactionID       string
	AmountAuthorized    decimal.Decimal
	Status              commerce.PaymentStatus
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// OrderView rebuilds the minimal commerce order view the callback paths
// need: the persisted mollie properties and the current transaction state.
func (r *Record) OrderView() *commerce.Order {
	return &commerce.Order{
		OrderNumber: r.OrderNumber,
		Properties: map[string]string{
			provider.MetaOrderID:       r.MollieOrderID,
			provider.MetaPaymentID:     r.MolliePaymentID,
			provider.MetaPaymentMethod: r.MolliePaymentMethod,
		},
		Transaction: commerce.TransactionInfo{
			TransactionID:    r.TransactionID,
			AmountAuthorized: r.AmountAuthorized,
			Status:           r.Status,
		},
	}
}

// Repository persists order payment records.
type Repository interface {
	Get(ctx context.Context, orderNumber string) (*Record, error)
	Save(ctx context.Context, rec *Record) error

	// ApplyCallback merges a callback outcome into the stored record:
	// metadata keys overwrite the stored mollie properties, and a non-nil
	// update replaces status (and amount, when positive).
	ApplyCallback(ctx context.Context, orderNumber string, update *commerce.TransactionUpdate, metadata map[string]string) error
}
