package events

// Topic constants for domain events emitted by the platform.
const (
	TopicOrderCreated       = "order.created"
	TopicOrderPaid          = "order.paid"
	TopicPaymentFailed      = "payment.failed"
	TopicOrderStatusChanged = "order.status_changed"
)
