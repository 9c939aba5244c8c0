package enums

// AuditAction labels an admin action recorded in the audit log.
type AuditAction string

const (
	AuditActionTransactionApprove AuditAction = "transaction_approve"
	AuditActionTransactionReject  AuditAction = "transaction_reject"
	AuditActionOrderApprove       AuditAction = "order_approve"
	AuditActionOrderReject        AuditAction = "order_reject"
	AuditActionOrderRefund        AuditAction = "order_refund"
	AuditActionOrderSetStatus     AuditAction = "order_set_status"
	AuditActionTaskApprove        AuditAction = "task_approve"
	AuditActionTaskReject         AuditAction = "task_reject"
	AuditActionBulk               AuditAction = "bulk_action"
)

// String implements fmt.Stringer.
func (a AuditAction) String() string {
	return string(a)
}
