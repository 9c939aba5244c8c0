package enums

// OutboxEventType names a domain event persisted through the outbox.
type OutboxEventType string

const (
	EventTransactionApproved OutboxEventType = "transaction.approved"
	EventTransactionRejected OutboxEventType = "transaction.rejected"
	EventOrderApproved       OutboxEventType = "order.approved"
	EventOrderRejected       OutboxEventType = "order.rejected"
	EventOrderRefunded       OutboxEventType = "order.refunded"
	EventOrderStatusChanged  OutboxEventType = "order.status_changed"
	EventTaskApproved        OutboxEventType = "task.approved"
	EventTaskRejected        OutboxEventType = "task.rejected"
)

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateTransaction OutboxAggregateType = "transaction"
	AggregateOrder       OutboxAggregateType = "order"
	AggregateTask        OutboxAggregateType = "task"
)
