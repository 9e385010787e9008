package enums

// LineStockStatus describes how much of a requested order line is covered by
// on-hand stock.
type LineStockStatus string

const (
	LineStockInStock   LineStockStatus = "In Stock"
	LineStockPartial   LineStockStatus = "Partial"
	LineStockBackorder LineStockStatus = "Backorder"
)

// AllocationStatus tracks the allocation log row for an order line.
type AllocationStatus string

const (
	AllocationPending   AllocationStatus = "Pending"
	AllocationFulfilled AllocationStatus = "Fulfilled"
)

// OrderStockStatus is the customer-order aggregate derived from its lines.
type OrderStockStatus string

const (
	OrderStockAllocated         OrderStockStatus = "Allocated"
	OrderStockAwaitingStock     OrderStockStatus = "Awaiting Stock"
	OrderStockPartialAllocation OrderStockStatus = "Partial Allocation"
)
