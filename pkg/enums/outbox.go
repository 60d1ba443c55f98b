package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateBasket    OutboxAggregateType = "basket"
	AggregateShare     OutboxAggregateType = "share"
	AggregateStuff     OutboxAggregateType = "stuff"
	AggregatePurchased OutboxAggregateType = "purchased"
	AggregateOrder     OutboxAggregateType = "order"
	AggregateAssign    OutboxAggregateType = "assign"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateBasket,
	AggregateShare,
	AggregateStuff,
	AggregatePurchased,
	AggregateOrder,
	AggregateAssign,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventBasketUpdated     OutboxEventType = "basket_updated"
	EventBasketCompleted   OutboxEventType = "basket_completed"
	EventShareCreated      OutboxEventType = "share_created"
	EventShareUpdated      OutboxEventType = "share_updated"
	EventShareDeleted      OutboxEventType = "share_deleted"
	EventStuffCreated      OutboxEventType = "stuff_created"
	EventStuffUpdated      OutboxEventType = "stuff_updated"
	EventStuffDeleted      OutboxEventType = "stuff_deleted"
	EventPurchaseRecorded  OutboxEventType = "purchase_recorded"
	EventPurchaseReverted  OutboxEventType = "purchase_reverted"
	EventOrderCreated      OutboxEventType = "order_created"
	EventOrderCanceled     OutboxEventType = "order_canceled"
	EventOrderStateChanged OutboxEventType = "order_state_changed"
	EventAssignUpdated     OutboxEventType = "assign_updated"
)

var validOutboxEventTypes = []OutboxEventType{
	EventBasketUpdated,
	EventBasketCompleted,
	EventShareCreated,
	EventShareUpdated,
	EventShareDeleted,
	EventStuffCreated,
	EventStuffUpdated,
	EventStuffDeleted,
	EventPurchaseRecorded,
	EventPurchaseReverted,
	EventOrderCreated,
	EventOrderCanceled,
	EventOrderStateChanged,
	EventAssignUpdated,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
