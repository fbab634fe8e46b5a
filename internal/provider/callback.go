package provider

import (
	"context"
	"fmt"

	"commerce-mollie/internal/commerce"
	"commerce-mollie/internal/config"
	"commerce-mollie/internal/utils"

	"go.uber.org/zap"
)

// CallbackRequest is an inbound notification, already parsed from HTTP.
// Redirect marks the browser-return path; PaymentID carries the webhook
// body's id field.
type CallbackRequest struct {
	Redirect  bool
	PaymentID string
}

// CallbackResult is the normalized outcome of either callback path: an
// optional status update plus properties to persist, and either a redirect
// target for the browser or a plain acknowledgement.
type CallbackResult struct {
	RedirectURL string
	Transaction *commerce.TransactionUpdate
	Metadata    map[string]string
}

// ProcessCallback routes the notification to the redirect or webhook path
// based on the redirect marker.
func (p *Provider) ProcessCallback(ctx context.Context, order *commerce.Order, req CallbackRequest) (*CallbackResult, error) {
	if req.Redirect {
		return p.processRedirect(ctx, order)
	}
	return p.processWebhook(ctx, order, req.PaymentID)
}

// processRedirect handles the shopper's browser returning from the hosted
// payment page. The request is unauthenticated, so it only decides where to
// send the browser. The pending case is the one exception: a provisional
// status is recorded because mollie sends no webhook for pending payments.
func (p *Provider) processRedirect(ctx context.Context, order *commerce.Order) (*CallbackResult, error) {
	if err := p.requireCallbackURLs(); err != nil {
		return nil, err
	}

	client, err := p.client()
	if err != nil {
		return nil, err
	}

	paymentID, err := p.resolvePaymentID(ctx, client, order)
	if err != nil {
		return nil, err
	}

	p.log(order).Debug("processing redirect callback", zap.String("mollie_payment_id", paymentID))

	res, err := client.GetPayment(ctx, paymentID, true)
	if err != nil {
		return nil, err
	}

	status, err := p.paymentStatus(ctx, client, order, res)
	if err != nil {
		return nil, err
	}

	switch status {
	case commerce.StatusError:
		// Mollie redirects the shopper here when the payment failed; forward
		// the failure reason to the error page.
		reason := ""
		if res.StatusReason != nil {
			reason = res.StatusReason.Code
		}
		errorURL, err := utils.AppendQueryParam(p.settings.ErrorURL, failureReasonParam, reason)
		if err != nil {
			return nil, err
		}
		return &CallbackResult{RedirectURL: errorURL}, nil

	case commerce.StatusCancelled:
		return &CallbackResult{RedirectURL: p.settings.CancelURL}, nil
	}

	result := &CallbackResult{RedirectURL: p.settings.ContinueURL}

	// Mollie won't send a webhook for a pending payment, so the order is
	// finalized here with a pending status before the confirmation page.
	if status == commerce.StatusPendingExternalSystem {
		result.Transaction = &commerce.TransactionUpdate{
			TransactionID:    paymentID,
			AmountAuthorized: res.Amount.Decimal(),
			Status:           commerce.StatusPendingExternalSystem,
		}
	}

	return result, nil
}

// processWebhook handles a server-to-server notification. The webhook body's
// id must match the id persisted on the order; anything else is acknowledged
// without touching the order.
func (p *Provider) processWebhook(ctx context.Context, order *commerce.Order, webhookID string) (*CallbackResult, error) {
	client, err := p.client()
	if err != nil {
		return nil, err
	}

	paymentID, err := p.resolvePaymentID(ctx, client, order)
	if err != nil {
		return nil, err
	}

	if webhookID != paymentID {
		p.log(order).Warn("webhook id does not match order's mollie payment id",
			zap.String("webhook_id", webhookID),
			zap.String("mollie_payment_id", paymentID),
		)
		return &CallbackResult{}, nil
	}

	res, err := client.GetPayment(ctx, paymentID, false)
	if err != nil {
		return nil, err
	}

	status, err := p.paymentStatus(ctx, client, order, res)
	if err != nil {
		return nil, err
	}

	p.log(order).Debug("processing webhook callback",
		zap.String("mollie_payment_id", paymentID),
		zap.String("mollie_status", res.Status),
	)

	// Mollie sends cancelled notifications for unfinalized orders, so only
	// orders that actually reached an authorized state may be cancelled.
	if status == commerce.StatusCancelled && order.Transaction.Status != commerce.StatusAuthorized {
		return &CallbackResult{}, nil
	}

	return &CallbackResult{
		Transaction: &commerce.TransactionUpdate{
			TransactionID:    paymentID,
			AmountAuthorized: res.Amount.Decimal(),
			Status:           status,
		},
		Metadata: map[string]string{
			MetaPaymentMethod: res.Method,
			MetaPaymentID:     res.ID,
		},
	}, nil
}

func (p *Provider) requireCallbackURLs() error {
	missing := ""
	switch {
	case p.settings.ContinueURL == "":
		missing = "MOLLIE_CONTINUE_URL"
	case p.settings.CancelURL == "":
		missing = "MOLLIE_CANCEL_URL"
	case p.settings.ErrorURL == "":
		missing = "MOLLIE_ERROR_URL"
	default:
		return nil
	}
	return fmt.Errorf("%w: %s", config.ErrMissingSetting, missing)
}
