package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"commerce-mollie/internal/commerce"
	"commerce-mollie/internal/provider"
)

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context, orderNumber string) (*Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT order_number, mollie_order_id, mollie_payment_id, mollie_payment_method,
		       transaction_id, amount_authorized, status, created_at, updated_at
		FROM order_payments WHERE order_number = $1
	`, orderNumber)

	var rec Record
	var amount string
	err := row.Scan(
		&rec.OrderNumber, &rec.MollieOrderID, &rec.MolliePaymentID, &rec.MolliePaymentMethod,
		&rec.TransactionID, &amount, &rec.Status, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rec.AmountAuthorized, err = parseAmount(amount)
	if err != nil {
		return nil, err
	}

	return &rec, nil
}

func (r *repository) Save(ctx context.Context, rec *Record) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO order_payments (order_number,
		mollie_order_id,
		mollie_payment_id,
		mollie_payment_method,
		transaction_id,
		amount_authorized,
		status,
		created_at,
		updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (order_number) DO UPDATE SET
			mollie_order_id = EXCLUDED.mollie_order_id,
			mollie_payment_id = EXCLUDED.mollie_payment_id,
			mollie_payment_method = EXCLUDED.mollie_payment_method,
			transaction_id = EXCLUDED.transaction_id,
			amount_authorized = EXCLUDED.amount_authorized,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
	`,
		rec.OrderNumber, rec.MollieOrderID, rec.MolliePaymentID, rec.MolliePaymentMethod,
		rec.TransactionID, rec.AmountAuthorized.StringFixed(2), string(rec.Status), time.Now(),
	)
	return err
}

func (r *repository) ApplyCallback(ctx context.Context, orderNumber string, update *commerce.TransactionUpdate, metadata map[string]string) error {
	rec, err := r.Get(ctx, orderNumber)
	if err != nil {
		return err
	}

	if v, ok := metadata[provider.MetaOrderID]; ok && v != "" {
		rec.MollieOrderID = v
	}
	if v, ok := metadata[provider.MetaPaymentID]; ok && v != "" {
		rec.MolliePaymentID = v
	}
	if v, ok := metadata[provider.MetaPaymentMethod]; ok && v != "" {
		rec.MolliePaymentMethod = v
	}

	if update != nil {
		rec.Status = update.Status
		if update.TransactionID != "" {
			rec.TransactionID = update.TransactionID
		}
		if update.AmountAuthorized.IsPositive() {
			rec.AmountAuthorized = update.AmountAuthorized
		}
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE order_payments SET
			mollie_order_id = $1,
			mollie_payment_id = $2,
			mollie_payment_method = $3,
			transaction_id = $4,
			amount_authorized = $5,
			status = $6,
			updated_at = $7
		WHERE order_number = $8
	`,
		rec.MollieOrderID, rec.MolliePaymentID, rec.MolliePaymentMethod,
		rec.TransactionID, rec.AmountAuthorized.StringFixed(2), string(rec.Status), time.Now(), orderNumber,
	)
	return err
}
