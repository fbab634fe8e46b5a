package commerce

import (
	"github.com/shopspring/decimal"
)

// Price is a monetary value split into its tax components.
// Invariant: WithTax = WithoutTax + Tax.
type Price struct {
	WithTax    decimal.Decimal
	WithoutTax decimal.Decimal
	Tax        decimal.Decimal
}

// PriceAdjustment is a named, signed price delta. A negative WithTax
// classifies the adjustment as a discount, otherwise as a fee.
type PriceAdjustment struct {
	Name  string
	Price Price
}

// AdjustedPrice carries a price before adjustments, the folded result and
// the individual adjustments that were applied.
type AdjustedPrice struct {
	WithoutAdjustments Price
	Value              Price
	TotalAdjustment    Price
	Adjustments        []PriceAdjustment
}

// AmountAdjustment is a flat adjustment on the transaction amount.
// A non-empty GiftCardCode marks the adjustment as a gift card redemption.
type AmountAdjustment struct {
	Name         string
	Amount       decimal.Decimal
	GiftCardCode string
}

// AdjustedAmount is the final chargeable amount with its flat adjustments.
type AdjustedAmount struct {
	Value       decimal.Decimal
	Adjustments []AmountAdjustment
}

type OrderLine struct {
	Sku        string
	Name       string
	Quantity   int
	TaxRate    decimal.Decimal // fraction, e.g. 0.21 for 21%
	UnitPrice  AdjustedPrice
	TotalPrice AdjustedPrice
	Properties map[string]string
}

// Property returns the named dynamic property, or "" when absent.
func (l OrderLine) Property(alias string) string {
	if l.Properties == nil {
		return ""
	}
	return l.Properties[alias]
}

type CustomerInfo struct {
	FirstName string
	LastName  string
	Email     string
}

// PaymentDetails describes the order's payment method selection and fee.
type PaymentDetails struct {
	CountryID       string
	PaymentMethodID string
	TaxRate         decimal.Decimal
	TotalPrice      AdjustedPrice
}

// ShippingDetails describes the order's shipping method selection and fee.
// An empty ShippingMethodID means no shipping method was chosen.
type ShippingDetails struct {
	ShippingMethodID string
	TaxRate          decimal.Decimal
	TotalPrice       AdjustedPrice
}

// TransactionInfo is the payment state the commerce engine currently
// persists for an order.
type TransactionInfo struct {
	TransactionID    string
	AmountAuthorized decimal.Decimal
	Status           PaymentStatus
}

// Order is a read-only view of a commerce order as exposed by the engine.
type Order struct {
	OrderNumber string
	// Reference is the engine-generated durable order reference, passed to
	// the payment provider as opaque metadata.
	Reference         string
	CurrencyID        string
	Customer          CustomerInfo
	Payment           PaymentDetails
	Shipping          ShippingDetails
	OrderLines        []OrderLine
	SubtotalPrice     AdjustedPrice
	TotalPrice        AdjustedPrice
	TransactionAmount AdjustedAmount
	Properties        map[string]string
	Transaction       TransactionInfo
}

// Property returns the named dynamic property, or "" when absent.
func (o *Order) Property(alias string) string {
	if o.Properties == nil {
		return ""
	}
	return o.Properties[alias]
}
