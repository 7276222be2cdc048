package models

import "errors"

type OrderStatus string

const (
	OrderStatusDraft        OrderStatus = "draft"
	OrderStatusConfirmed    OrderStatus = "confirmed"
	OrderStatusInProduction OrderStatus = "in_production"
	OrderStatusReady        OrderStatus = "ready"
	OrderStatusShipped      OrderStatus = "shipped"
	OrderStatusDelivered    OrderStatus = "delivered"
	OrderStatusClosed       OrderStatus = "closed"
	OrderStatusCancelled    OrderStatus = "cancelled"
)

// IsTerminal reports whether the readiness engine must never change the
// status anymore, whatever the aggregates say.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusCancelled, OrderStatusClosed, OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusConfirmed, OrderStatusInProduction, OrderStatusReady,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusClosed, OrderStatusCancelled:
		return true
	}
	return false
}

type OrderSourceType string

const (
	OrderSourceTypeStock      OrderSourceType = "stock"
	OrderSourceTypeProduction OrderSourceType = "production"
	OrderSourceTypeBoth       OrderSourceType = "both"
)

func (t OrderSourceType) IsValid() bool {
	switch t {
	case OrderSourceTypeStock, OrderSourceTypeProduction, OrderSourceTypeBoth:
		return true
	}
	return false
}

// InvolvesProduction reports whether production cuts feed this order's
// readiness, which decides the fallback status when an order regresses
// below the ready threshold.
func (t OrderSourceType) InvolvesProduction() bool {
	return t == OrderSourceTypeProduction || t == OrderSourceTypeBoth
}

type CuttingPlanStatus string

const (
	CuttingPlanStatusPlanned    CuttingPlanStatus = "planned"
	CuttingPlanStatusInProgress CuttingPlanStatus = "in_progress"
	CuttingPlanStatusCompleted  CuttingPlanStatus = "completed"
	CuttingPlanStatusCancelled  CuttingPlanStatus = "cancelled"
)

type BobinStatus string

const (
	BobinStatusProduced  BobinStatus = "produced"
	BobinStatusWarehouse BobinStatus = "warehouse"
	BobinStatusReady     BobinStatus = "ready"
	BobinStatusShipped   BobinStatus = "shipped"
	BobinStatusScrapped  BobinStatus = "scrapped"
)

func (s BobinStatus) IsValid() bool {
	switch s {
	case BobinStatusProduced, BobinStatusWarehouse, BobinStatusReady, BobinStatusShipped, BobinStatusScrapped:
		return true
	}
	return false
}

// CountsAsReady reports whether a bobin's kg feeds production readiness.
func (s BobinStatus) CountsAsReady() bool {
	switch s {
	case BobinStatusProduced, BobinStatusWarehouse, BobinStatusReady:
		return true
	}
	return false
}

// bobinTransitions lists the allowed moves of the bobin state machine.
// ready -> warehouse covers a staging mistake being walked back.
var bobinTransitions = map[BobinStatus][]BobinStatus{
	BobinStatusProduced:  {BobinStatusWarehouse, BobinStatusScrapped},
	BobinStatusWarehouse: {BobinStatusReady, BobinStatusScrapped},
	BobinStatusReady:     {BobinStatusShipped, BobinStatusWarehouse},
}

func (s BobinStatus) CanTransitionTo(next BobinStatus) bool {
	for _, allowed := range bobinTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type MovementDirection string

const (
	MovementDirectionIn  MovementDirection = "in"
	MovementDirectionOut MovementDirection = "out"
)

type MovementReason string

const (
	MovementReasonCuttingSource    MovementReason = "cutting_source"
	MovementReasonCuttingLeftover  MovementReason = "cutting_leftover"
	MovementReasonWarehouseEntry   MovementReason = "warehouse_entry"
	MovementReasonOrderStockEntry  MovementReason = "order_stock_entry"
	MovementReasonEntryReversal    MovementReason = "entry_reversal"
	MovementReasonManualAdjustment MovementReason = "manual_adjustment"
)

// MovementReferenceType tags the detail record that caused a stock movement.
type MovementReferenceType string

const (
	MovementReferenceCuttingEntry    MovementReferenceType = "CE"
	MovementReferenceOrderStockEntry MovementReferenceType = "OSE"
	MovementReferenceAdjustment      MovementReferenceType = "ADJ"
)

var ErrInvalidStatusTransition = errors.New("invalid status transition")
