package commerce

import "github.com/shopspring/decimal"

// PaymentStatus is the internal payment state machine. Every status
// vocabulary of the remote provider funnels into this enum; it is the only
// payment state the commerce engine persists.
type PaymentStatus string

const (
	StatusPendingExternalSystem PaymentStatus = "PENDING_EXTERNAL_SYSTEM"
	StatusAuthorized            PaymentStatus = "AUTHORIZED"
	StatusCaptured              PaymentStatus = "CAPTURED"
	StatusCancelled             PaymentStatus = "CANCELLED"
	StatusRefunded              PaymentStatus = "REFUNDED"
	StatusPartiallyRefunded     PaymentStatus = "PARTIALLY_REFUNDED"
	StatusError                 PaymentStatus = "ERROR"
)

// TransactionUpdate is a status transition derived from a verified remote
// read. A zero AmountAuthorized leaves the persisted amount unchanged.
type TransactionUpdate struct {
	TransactionID    string
	AmountAuthorized decimal.Decimal
	Status           PaymentStatus
}
