package commerce

import (
	"context"

	"github.com/shopspring/decimal"
)

type Currency struct {
	ID   string
	Code string
}

type Country struct {
	ID   string
	Code string
}

type PaymentMethod struct {
	ID   string
	Name string
	Sku  string
}

type ShippingMethod struct {
	ID   string
	Name string
	Sku  string
}

// Services are the commerce engine lookups the payment provider depends on.
// The engine owns the implementations; this package only defines the contract.
type Services interface {
	GetCurrency(ctx context.Context, id string) (Currency, error)
	GetCountry(ctx context.Context, id string) (Country, error)
	GetPaymentMethod(ctx context.Context, id string) (PaymentMethod, error)
	GetShippingMethod(ctx context.Context, id string) (ShippingMethod, error)

	// RefundableAmount returns the order's total refundable amount, i.e. the
	// authorized amount minus anything already refunded through the engine.
	RefundableAmount(ctx context.Context, order *Order) (decimal.Decimal, error)
}

// StaticServices is a fixed-value Services implementation for hosts where
// currency, country and method data come from configuration rather than a
// catalog lookup. The refundable amount falls back to the order's authorized
// amount.
type StaticServices struct {
	Currency       Currency
	Country        Country
	PaymentMethod  PaymentMethod
	ShippingMethod ShippingMethod
}

func (s StaticServices) GetCurrency(ctx context.Context, id string) (Currency, error) {
	return s.Currency, nil
}

func (s StaticServices) GetCountry(ctx context.Context, id string) (Country, error) {
	return s.Country, nil
}

func (s StaticServices) GetPaymentMethod(ctx context.Context, id string) (PaymentMethod, error) {
	return s.PaymentMethod, nil
}

func (s StaticServices) GetShippingMethod(ctx context.Context, id string) (ShippingMethod, error) {
	return s.ShippingMethod, nil
}

func (s StaticServices) RefundableAmount(ctx context.Context, order *Order) (decimal.Decimal, error) {
	return order.Transaction.AmountAuthorized, nil
}
