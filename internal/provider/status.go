package provider

import (
	"commerce-mollie/internal/commerce"
	"commerce-mollie/internal/mollie"

	"github.com/shopspring/decimal"
)

// translateStatus maps a resource snapshot plus a refund-list snapshot into
// the internal payment status. Deterministic; first match wins:
//
//  1. A reported refunded amount decides Refunded vs PartiallyRefunded against
//     the order's refundable amount.
//  2. Any listed refund that is not failed reports the payment as fully
//     Refunded until the resource's own refunded amount catches up. This is a
//     deliberate conservative approximation, kept as-is.
//  3. Otherwise the resource-level status decides.
func translateStatus(res *mollie.Resource, refunds []mollie.Refund, refundable decimal.Decimal) commerce.PaymentStatus {
	refunded := res.RefundedAmount()
	if refunded.IsPositive() {
		if refunded.GreaterThanOrEqual(refundable) {
			return commerce.StatusRefunded
		}
		return commerce.StatusPartiallyRefunded
	}

	for _, refund := range refunds {
		if refund.Status != mollie.RefundStatusFailed {
			return commerce.StatusRefunded
		}
	}

	switch res.Status {
	case mollie.ResourceStatusShipping:
		// A shipping order has at least one authorized or paid line. Any line
		// still authorized keeps the whole order authorized.
		for _, line := range res.Lines {
			if line.Status == mollie.LineStatusAuthorized {
				return commerce.StatusAuthorized
			}
		}
		return commerce.StatusCaptured
	case mollie.ResourceStatusPaid, mollie.ResourceStatusCompleted:
		return commerce.StatusCaptured
	case mollie.ResourceStatusCanceled, mollie.ResourceStatusExpired:
		return commerce.StatusCancelled
	case mollie.ResourceStatusAuthorized:
		return commerce.StatusAuthorized
	case mollie.ResourceStatusFailed:
		return commerce.StatusError
	default:
		return commerce.StatusPendingExternalSystem
	}
}
