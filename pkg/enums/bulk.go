package enums

import "fmt"

// BulkEntity names the entity family a bulk action targets.
type BulkEntity string

const (
	BulkEntityTransactions BulkEntity = "transactions"
	BulkEntityOrders       BulkEntity = "orders"
	BulkEntityTasks        BulkEntity = "tasks"
)

var validBulkEntities = []BulkEntity{
	BulkEntityTransactions,
	BulkEntityOrders,
	BulkEntityTasks,
}

// String implements fmt.Stringer.
func (b BulkEntity) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BulkEntity.
func (b BulkEntity) IsValid() bool {
	for _, candidate := range validBulkEntities {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBulkEntity converts raw input into a BulkEntity.
func ParseBulkEntity(value string) (BulkEntity, error) {
	for _, candidate := range validBulkEntities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid bulk entity %q", value)
}

// BulkAction names the operation applied to every id in a bulk request.
type BulkAction string

const (
	BulkActionApprove BulkAction = "approve"
	BulkActionReject  BulkAction = "reject"
	BulkActionCancel  BulkAction = "cancel"
)

var validBulkActions = []BulkAction{
	BulkActionApprove,
	BulkActionReject,
	BulkActionCancel,
}

// String implements fmt.Stringer.
func (b BulkAction) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BulkAction.
func (b BulkAction) IsValid() bool {
	for _, candidate := range validBulkActions {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBulkAction converts raw input into a BulkAction.
func ParseBulkAction(value string) (BulkAction, error) {
	for _, candidate := range validBulkActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid bulk action %q", value)
}

// BulkItemStatus is the per-item outcome recorded in a bulk result.
type BulkItemStatus string

const (
	BulkItemStatusApproved BulkItemStatus = "approved"
	BulkItemStatusRejected BulkItemStatus = "rejected"
	BulkItemStatusError    BulkItemStatus = "error"
)

// String implements fmt.Stringer.
func (b BulkItemStatus) String() string {
	return string(b)
}
