package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/warelogic/ims-backend/pkg/enums"
)

// MovementLogEntry is an append-only audit row. Entries are immutable once
// written; they record what happened, not what the ledger should say now.
type MovementLogEntry struct {
	ID                uuid.UUID            `gorm:"column:id;type:uuid;default:(gen_random_uuid());primaryKey"`
	Timestamp         time.Time            `gorm:"column:timestamp;not null;index:idx_movement_log_bin_ts,priority:2,sort:desc"`
	Action            enums.MovementAction `gorm:"column:action;not null"`
	ItemCode          string               `gorm:"column:item_code;not null"`
	Manufacturer      string               `gorm:"column:manufacturer"`
	BinCode           string               `gorm:"column:bin_code;not null;index:idx_movement_log_bin_ts,priority:1"`
	Project           string               `gorm:"column:project"`
	QtyChanged        int                  `gorm:"column:qty_changed;not null"`
	ResultingQuantity int                  `gorm:"column:resulting_quantity;not null"`
	Description       string               `gorm:"column:description"`
	UserEmail         string               `gorm:"column:user_email"`
	ReferenceID       string               `gorm:"column:reference_id"`
	CreatedAt         time.Time            `gorm:"column:created_at;autoCreateTime"`
}
