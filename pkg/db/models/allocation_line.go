package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/warelogic/ims-backend/pkg/enums"
)

// AllocationLine tracks how much of a requested order line is covered by
// stock vs. backordered. Fulfillment shifts quantity from backordered to
// allocated as receipts arrive.
type AllocationLine struct {
	ID               uuid.UUID              `gorm:"column:id;type:uuid;default:(gen_random_uuid());primaryKey"`
	OrderID          string                 `gorm:"column:order_id;not null;index:idx_allocation_lines_order_item,priority:1"`
	ItemCode         string                 `gorm:"column:item_code;not null;index:idx_allocation_lines_order_item,priority:2"`
	QtyRequested     int                    `gorm:"column:qty_requested;not null"`
	QtyAllocated     int                    `gorm:"column:qty_allocated;not null;default:0"`
	QtyBackordered   int                    `gorm:"column:qty_backordered;not null;default:0"`
	StockStatus      enums.LineStockStatus  `gorm:"column:stock_status;not null"`
	AllocationStatus enums.AllocationStatus `gorm:"column:allocation_status;not null;default:Pending"`
	CreatedAt        time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

// CustomerOrder carries the aggregate stock status derived from its
// allocation lines.
type CustomerOrder struct {
	ID          uuid.UUID              `gorm:"column:id;type:uuid;default:(gen_random_uuid());primaryKey"`
	OrderID     string                 `gorm:"column:order_id;not null;uniqueIndex"`
	Customer    string                 `gorm:"column:customer"`
	StockStatus enums.OrderStockStatus `gorm:"column:stock_status"`
	CreatedAt   time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
