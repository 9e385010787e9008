package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/warelogic/ims-backend/pkg/enums"
)

// Backorder records a shortage against a customer order awaiting inbound
// stock. Closed is terminal; qty_fulfilled never exceeds qty_requested.
type Backorder struct {
	ID           uuid.UUID             `gorm:"column:id;type:uuid;default:(gen_random_uuid());primaryKey"`
	BackorderID  string                `gorm:"column:backorder_id;not null;uniqueIndex"`
	OrderID      string                `gorm:"column:order_id;not null;index"`
	ItemCode     string                `gorm:"column:item_code;not null;index"`
	QtyRequested int                   `gorm:"column:qty_requested;not null"`
	QtyFulfilled int                   `gorm:"column:qty_fulfilled;not null;default:0"`
	Status       enums.BackorderStatus `gorm:"column:status;not null;default:Open"`
	Notes        string                `gorm:"column:notes"`
	CreatedAt    time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// BackorderFulfillmentLog is the append-only record of each allocation a
// backorder received from an inbound transaction.
type BackorderFulfillmentLog struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:(gen_random_uuid());primaryKey"`
	BackorderID  string    `gorm:"column:backorder_id;not null;index"`
	OrderID      string    `gorm:"column:order_id;not null"`
	ItemCode     string    `gorm:"column:item_code;not null"`
	QtyFulfilled int       `gorm:"column:qty_fulfilled;not null"`
	InboundTxnID string    `gorm:"column:inbound_txn_id"`
	Timestamp    time.Time `gorm:"column:timestamp;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}
