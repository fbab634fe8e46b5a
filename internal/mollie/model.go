package mollie

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a mollie monetary value: an ISO currency code and a decimal
// string with exactly two decimals.
type Amount struct {
	Currency string `json:"currency"`
	Value    string `json:"value"`
}

func NewAmount(currency string, v decimal.Decimal) Amount {
	return Amount{
		Currency: strings.ToUpper(currency),
		Value:    v.StringFixed(2),
	}
}

// Decimal parses the amount value. Nil-safe; unset or malformed values
// read as zero.
func (a *Amount) Decimal() decimal.Decimal {
	if a == nil || a.Value == "" {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(a.Value)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Line types understood by the mollie API.
const (
	LineTypePhysical    = "physical"
	LineTypeDiscount    = "discount"
	LineTypeSurcharge   = "surcharge"
	LineTypeShippingFee = "shipping_fee"
	LineTypeGiftCard    = "gift_card"
)

// Resource statuses. Payment-level and order-level vocabularies share this
// set; which values occur depends on the API generation that produced the
// resource.
const (
	ResourceStatusOpen       = "open"
	ResourceStatusCreated    = "created"
	ResourceStatusPending    = "pending"
	ResourceStatusAuthorized = "authorized"
	ResourceStatusPaid       = "paid"
	ResourceStatusShipping   = "shipping"
	ResourceStatusCompleted  = "completed"
	ResourceStatusCanceled   = "canceled"
	ResourceStatusExpired    = "expired"
	ResourceStatusFailed     = "failed"
)

const (
	LineStatusAuthorized = "authorized"
	RefundStatusFailed   = "failed"
)

// PaymentLine is one line of a payment request.
type PaymentLine struct {
	Type        string   `json:"type,omitempty"`
	Sku         string   `json:"sku,omitempty"`
	Description string   `json:"description"`
	Quantity    int      `json:"quantity"`
	UnitPrice   Amount   `json:"unitPrice"`
	VatRate     string   `json:"vatRate"`
	VatAmount   Amount   `json:"vatAmount"`
	TotalAmount Amount   `json:"totalAmount"`
	Categories  []string `json:"categories,omitempty"`
}

type Address struct {
	GivenName       string `json:"givenName,omitempty"`
	FamilyName      string `json:"familyName,omitempty"`
	Email           string `json:"email,omitempty"`
	StreetAndNumber string `json:"streetAndNumber,omitempty"`
	City            string `json:"city,omitempty"`
	Region          string `json:"region,omitempty"`
	PostalCode      string `json:"postalCode,omitempty"`
	Country         string `json:"country,omitempty"`
}

type PaymentRequest struct {
	Amount         Amount        `json:"amount"`
	Description    string        `json:"description"`
	RedirectURL    string        `json:"redirectUrl"`
	WebhookURL     string        `json:"webhookUrl,omitempty"`
	Locale         string        `json:"locale,omitempty"`
	Method         string        `json:"method,omitempty"`
	Methods        []string      `json:"methods,omitempty"`
	CaptureMode    string        `json:"captureMode,omitempty"`
	Lines          []PaymentLine `json:"lines,omitempty"`
	BillingAddress *Address      `json:"billingAddress,omitempty"`
	Metadata       string        `json:"metadata,omitempty"`
}

// StatusReason explains a failed payment.
type StatusReason struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

// ResourceLine is a line of a resource as reported back by mollie. Only the
// fields the adapter inspects are mapped.
type ResourceLine struct {
	Sku    string `json:"sku,omitempty"`
	Status string `json:"status,omitempty"`
}

type Link struct {
	Href string `json:"href"`
	Type string `json:"type,omitempty"`
}

type Links struct {
	Checkout *Link `json:"checkout,omitempty"`
}

type Embedded struct {
	Payments []Resource `json:"payments,omitempty"`
	Refunds  []Refund   `json:"refunds,omitempty"`
}

// Resource is the remote representation of a checkout attempt. Depending on
// the API generation this is a payment or an order; the adapter only ever
// stores its id and re-reads the rest.
type Resource struct {
	ID             string         `json:"id"`
	OrderID        string         `json:"orderId,omitempty"`
	Status         string         `json:"status"`
	Method         string         `json:"method,omitempty"`
	Amount         Amount         `json:"amount"`
	AmountRefunded *Amount        `json:"amountRefunded,omitempty"`
	StatusReason   *StatusReason  `json:"statusReason,omitempty"`
	Lines          []ResourceLine `json:"lines,omitempty"`
	Embedded       *Embedded      `json:"_embedded,omitempty"`
	Links          Links          `json:"_links"`
}

// CheckoutURL returns the hosted payment page link, or "" when absent.
func (r *Resource) CheckoutURL() string {
	if r.Links.Checkout == nil {
		return ""
	}
	return r.Links.Checkout.Href
}

// RefundedAmount returns the refunded total reported on the resource itself.
func (r *Resource) RefundedAmount() decimal.Decimal {
	return r.AmountRefunded.Decimal()
}

type Refund struct {
	ID     string `json:"id"`
	Amount Amount `json:"amount"`
	Status string `json:"status"`
}

type refundList struct {
	Embedded struct {
		Refunds []Refund `json:"refunds"`
	} `json:"_embedded"`
}
