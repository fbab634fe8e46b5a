package provider

import "errors"

var (
	// ErrReferenceNotFound means a required mollie identifier is missing from
	// the order's persisted properties. Distinct from remote errors so callers
	// can tell a corrupted order apart from a mollie outage.
	ErrReferenceNotFound = errors.New("mollie reference not found on order")

	// ErrRefundFailed means mollie accepted the refund call but reported the
	// refund itself as failed.
	ErrRefundFailed = errors.New("mollie refund failed")
)
