package provider

import (
	"context"
	"fmt"
	"net/http"

	"commerce-mollie/internal/commerce"
	"commerce-mollie/internal/config"
	"commerce-mollie/internal/logger"
	"commerce-mollie/internal/mollie"
	"commerce-mollie/internal/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Persisted order property keys. These are the durable contract between the
// adapter and the commerce engine's storage; renaming them breaks existing
// orders.
const (
	MetaOrderID       = "mollieOrderId"
	MetaPaymentID     = "molliePaymentId"
	MetaPaymentMethod = "molliePaymentMethod"
)

const failureReasonParam = "mollieFailureReason"

// Provider bridges the commerce engine with the mollie hosted payment page.
// It is stateless: every operation reads the authoritative state fresh from
// mollie, and is safe to call concurrently for different orders. The engine
// is expected to serialize lifecycle calls for the same order.
type Provider struct {
	settings config.ProviderSettings
	services commerce.Services
	clients  func(apiKey string) mollie.Client
}

func New(settings config.ProviderSettings, services commerce.Services) *Provider {
	return &Provider{
		settings: settings,
		services: services,
		clients:  mollie.NewClient,
	}
}

// CheckoutResult tells the engine where to send the shopper's browser, and
// which properties to persist on the order.
type CheckoutResult struct {
	CheckoutURL string
	Method      string
	Metadata    map[string]string
}

// GenerateCheckout creates the mollie payment for the order and returns the
// hosted checkout URL. Must be called at most once per checkout attempt; the
// returned metadata holds the only durable reference to the created resource.
func (p *Provider) GenerateCheckout(ctx context.Context, order *commerce.Order) (*CheckoutResult, error) {
	client, err := p.client()
	if err != nil {
		return nil, err
	}

	if p.settings.CallbackURL == "" {
		return nil, fmt.Errorf("%w: MOLLIE_CALLBACK_URL", config.ErrMissingSetting)
	}

	currency, err := p.services.GetCurrency(ctx, order.CurrencyID)
	if err != nil {
		return nil, err
	}

	country, err := p.services.GetCountry(ctx, order.Payment.CountryID)
	if err != nil {
		return nil, err
	}

	paymentMethod, err := p.services.GetPaymentMethod(ctx, order.Payment.PaymentMethodID)
	if err != nil {
		return nil, err
	}

	var shippingMethod *commerce.ShippingMethod
	if order.Shipping.ShippingMethodID != "" {
		sm, err := p.services.GetShippingMethod(ctx, order.Shipping.ShippingMethodID)
		if err != nil {
			return nil, err
		}
		shippingMethod = &sm
	}

	locale := p.settings.Locale
	if locale == "" {
		locale = "en_US"
	}

	// The redirect goes back through the callback endpoint because the
	// final destination depends on the payment outcome.
	redirectURL, err := utils.AppendQueryParam(p.settings.CallbackURL, "redirect", "true")
	if err != nil {
		return nil, err
	}

	req := &mollie.PaymentRequest{
		Amount:         mollie.NewAmount(currency.Code, order.TransactionAmount.Value),
		Description:    order.OrderNumber,
		Lines:          assembleLines(order, currency, paymentMethod, shippingMethod, p.settings),
		Metadata:       order.Reference,
		RedirectURL:    redirectURL,
		WebhookURL:     p.settings.CallbackURL,
		Locale:         locale,
		BillingAddress: buildBillingAddress(order, country, p.settings),
	}

	if p.settings.ManualCapture {
		req.CaptureMode = "manual"
	}

	if methods := splitTrim(p.settings.PaymentMethods); len(methods) == 1 {
		req.Method = methods[0]
	} else if len(methods) > 1 {
		req.Methods = methods
	}

	res, err := client.CreatePayment(ctx, req)
	if err != nil {
		return nil, err
	}

	checkoutURL := res.CheckoutURL()
	if checkoutURL == "" {
		return nil, fmt.Errorf("%w: payment %s has no checkout link", mollie.ErrRemote, res.ID)
	}

	return &CheckoutResult{
		CheckoutURL: checkoutURL,
		Method:      http.MethodGet,
		Metadata: map[string]string{
			MetaOrderID:       res.OrderID,
			MetaPaymentID:     res.ID,
			MetaPaymentMethod: res.Method,
		},
	}, nil
}

// FetchStatus re-reads the payment and re-derives the internal status from
// mollie's authoritative state.
func (p *Provider) FetchStatus(ctx context.Context, order *commerce.Order) (*commerce.TransactionUpdate, error) {
	return p.readStatus(ctx, order, func(context.Context, mollie.Client, string) error { return nil })
}

// Cancel cancels the payment upstream, then re-reads it so the returned
// status reflects what mollie actually did rather than an assumption.
func (p *Provider) Cancel(ctx context.Context, order *commerce.Order) (*commerce.TransactionUpdate, error) {
	return p.readStatus(ctx, order, func(ctx context.Context, client mollie.Client, id string) error {
		return client.CancelPayment(ctx, id)
	})
}

// Capture captures a manually-capturable payment, then re-reads it.
func (p *Provider) Capture(ctx context.Context, order *commerce.Order) (*commerce.TransactionUpdate, error) {
	return p.readStatus(ctx, order, func(ctx context.Context, client mollie.Client, id string) error {
		return client.CreateCapture(ctx, id)
	})
}

// readStatus runs an optional remote action and then always re-fetches and
// re-translates the payment.
func (p *Provider) readStatus(
	ctx context.Context,
	order *commerce.Order,
	action func(ctx context.Context, client mollie.Client, paymentID string) error,
) (*commerce.TransactionUpdate, error) {
	client, err := p.client()
	if err != nil {
		return nil, err
	}

	paymentID, err := p.resolvePaymentID(ctx, client, order)
	if err != nil {
		return nil, err
	}

	if err := action(ctx, client, paymentID); err != nil {
		return nil, err
	}

	res, err := client.GetPayment(ctx, paymentID, false)
	if err != nil {
		return nil, err
	}

	status, err := p.paymentStatus(ctx, client, order, res)
	if err != nil {
		return nil, err
	}

	return &commerce.TransactionUpdate{
		TransactionID: order.Transaction.TransactionID,
		Status:        status,
	}, nil
}

// Refund refunds the given amount against the payment. A refund that mollie
// itself reports as failed is fatal. The resulting status is decided from the
// requested amount against the order's refundable amount, without waiting for
// a later status read.
func (p *Provider) Refund(ctx context.Context, order *commerce.Order, amount decimal.Decimal) (*commerce.TransactionUpdate, error) {
	client, err := p.client()
	if err != nil {
		return nil, err
	}

	paymentID, err := p.resolvePaymentID(ctx, client, order)
	if err != nil {
		return nil, err
	}

	currency, err := p.services.GetCurrency(ctx, order.CurrencyID)
	if err != nil {
		return nil, err
	}

	refund, err := client.CreateRefund(ctx, paymentID, mollie.NewAmount(currency.Code, amount))
	if err != nil {
		return nil, err
	}

	if refund.Status == mollie.RefundStatusFailed {
		return nil, fmt.Errorf("%w: order %s, mollie payment %s", ErrRefundFailed, order.OrderNumber, paymentID)
	}

	refundable, err := p.services.RefundableAmount(ctx, order)
	if err != nil {
		return nil, err
	}

	status := commerce.StatusPartiallyRefunded
	if amount.GreaterThanOrEqual(refundable) {
		status = commerce.StatusRefunded
	}

	return &commerce.TransactionUpdate{
		TransactionID: order.Transaction.TransactionID,
		Status:        status,
	}, nil
}

// resolvePaymentID looks up the mollie payment id from the order's persisted
// properties, falling back to scanning the parent mollie order's embedded
// payments for the first paid one.
func (p *Provider) resolvePaymentID(ctx context.Context, client mollie.Client, order *commerce.Order) (string, error) {
	if id := order.Property(MetaPaymentID); id != "" {
		return id, nil
	}

	mollieOrderID := order.Property(MetaOrderID)
	if mollieOrderID == "" {
		return "", fmt.Errorf("%w: mollie order id missing on order %s", ErrReferenceNotFound, order.OrderNumber)
	}

	res, err := client.GetOrder(ctx, mollieOrderID)
	if err != nil {
		return "", err
	}

	if res.Embedded != nil {
		for _, payment := range res.Embedded.Payments {
			if payment.Status == mollie.ResourceStatusPaid {
				return payment.ID, nil
			}
		}
	}

	return "", fmt.Errorf("%w: mollie payment id could not be resolved for order %s", ErrReferenceNotFound, order.OrderNumber)
}

// paymentStatus translates a freshly read resource. The refund list is only
// consulted when the resource does not yet report a refunded amount.
func (p *Provider) paymentStatus(ctx context.Context, client mollie.Client, order *commerce.Order, res *mollie.Resource) (commerce.PaymentStatus, error) {
	if res.RefundedAmount().IsPositive() {
		refundable, err := p.services.RefundableAmount(ctx, order)
		if err != nil {
			return "", err
		}
		return translateStatus(res, nil, refundable), nil
	}

	refunds, err := client.ListRefunds(ctx, res.ID)
	if err != nil {
		return "", err
	}

	return translateStatus(res, refunds, decimal.Zero), nil
}

func (p *Provider) client() (mollie.Client, error) {
	key, err := p.settings.APIKey()
	if err != nil {
		return nil, err
	}
	return p.clients(key), nil
}

func (p *Provider) log(order *commerce.Order) *zap.Logger {
	return logger.L().With(zap.String("order_number", order.OrderNumber))
}
