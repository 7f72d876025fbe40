package order

import dbgen "github.com/noah-isme/ecom-api/internal/db/gen"

// manualTransitions lists the status changes store owners and admins may apply.
// paid and payment_failed are reserved for the payment notification.
var manualTransitions = map[dbgen.OrderStatus][]dbgen.OrderStatus{
	dbgen.OrderStatusPending:       {dbgen.OrderStatusCancelled},
	dbgen.OrderStatusPaymentFailed: {dbgen.OrderStatusCancelled},
	dbgen.OrderStatusPaid:          {dbgen.OrderStatusProcessing, dbgen.OrderStatusCancelled},
	dbgen.OrderStatusProcessing:    {dbgen.OrderStatusShipped, dbgen.OrderStatusCancelled},
	dbgen.OrderStatusShipped:       {dbgen.OrderStatusDelivered},
}

// IsPaymentManaged reports whether status may only be set by the payment reconciler.
func IsPaymentManaged(status dbgen.OrderStatus) bool {
	return status == dbgen.OrderStatusPaid || status == dbgen.OrderStatusPaymentFailed
}

// CanTransition reports whether a manual change from current to next is allowed.
func CanTransition(current, next dbgen.OrderStatus) bool {
	for _, allowed := range manualTransitions[current] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AwaitingPayment reports whether the order can still be paid.
func AwaitingPayment(status dbgen.OrderStatus) bool {
	return status == dbgen.OrderStatusPending || status == dbgen.OrderStatusPaymentFailed
}
