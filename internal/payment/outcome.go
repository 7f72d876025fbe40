package payment

import "github.com/noah-isme/ecom-api/internal/payment/vnpay"

// NotifyOutcome classifies how a gateway notification was handled. Each
// outcome maps to exactly one gateway acknowledgement code.
type NotifyOutcome int

const (
	OutcomeInternalError NotifyOutcome = iota
	OutcomeConfirmed
	OutcomeAlreadyPaid
	OutcomeMissingParams
	OutcomeInvalidOrderID
	OutcomeOrderNotFound
	OutcomeAlreadyConfirmed
	OutcomeInvalidAmount
	OutcomeInvalidSignature
)

var outcomeNames = map[NotifyOutcome]string{
	OutcomeInternalError:    "internal_error",
	OutcomeConfirmed:        "confirmed",
	OutcomeAlreadyPaid:      "already_paid",
	OutcomeMissingParams:    "missing_params",
	OutcomeInvalidOrderID:   "invalid_order_id",
	OutcomeOrderNotFound:    "order_not_found",
	OutcomeAlreadyConfirmed: "already_confirmed",
	OutcomeInvalidAmount:    "invalid_amount",
	OutcomeInvalidSignature: "invalid_signature",
}

func (o NotifyOutcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return "unknown"
}

// Code returns the acknowledgement code sent to the gateway.
func (o NotifyOutcome) Code() string {
	switch o {
	case OutcomeConfirmed, OutcomeAlreadyPaid:
		return vnpay.RspConfirmSuccess
	case OutcomeMissingParams, OutcomeInvalidOrderID, OutcomeOrderNotFound:
		return vnpay.RspOrderNotFound
	case OutcomeAlreadyConfirmed:
		return vnpay.RspAlreadyConfirmed
	case OutcomeInvalidAmount:
		return vnpay.RspInvalidAmount
	case OutcomeInvalidSignature:
		return vnpay.RspInvalidChecksum
	default:
		return vnpay.RspUnknownError
	}
}

// Message returns the acknowledgement message sent to the gateway.
func (o NotifyOutcome) Message() string {
	switch o {
	case OutcomeConfirmed, OutcomeAlreadyPaid:
		return "Confirm Success"
	case OutcomeMissingParams:
		return "Missing parameters"
	case OutcomeInvalidOrderID:
		return "Invalid Order ID"
	case OutcomeOrderNotFound:
		return "Order not found"
	case OutcomeAlreadyConfirmed:
		return "Order already confirmed"
	case OutcomeInvalidAmount:
		return "Invalid amount"
	case OutcomeInvalidSignature:
		return "Invalid Checksum"
	default:
		return "Unknown error"
	}
}
