package models

import (
	"time"

	"github.com/google/uuid"
)

// FloorStockRecord aggregates item quantity outside racking, keyed by
// (item_code, project). It moves in lockstep with Add/Remove/StagingPutaway
// and is clamped at zero on decrement.
type FloorStockRecord struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:(gen_random_uuid());primaryKey"`
	ItemCode  string    `gorm:"column:item_code;not null;uniqueIndex:idx_floor_stock_key,priority:1"`
	Project   string    `gorm:"column:project;not null;uniqueIndex:idx_floor_stock_key,priority:2"`
	Quantity  int       `gorm:"column:quantity;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
