package models

import (
	"time"

	"github.com/google/uuid"
)

// StockRecord is one bin-level inventory line. The composite key
// (bin_code, item_code, manufacturer, project) is unique; records are never
// deleted and may sit at zero quantity between fills.
type StockRecord struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;default:(gen_random_uuid());primaryKey"`
	BinCode         string    `gorm:"column:bin_code;not null;uniqueIndex:idx_stock_records_key,priority:1"`
	ItemCode        string    `gorm:"column:item_code;not null;uniqueIndex:idx_stock_records_key,priority:2"`
	Manufacturer    string    `gorm:"column:manufacturer;not null;uniqueIndex:idx_stock_records_key,priority:3"`
	Project         string    `gorm:"column:project;not null;uniqueIndex:idx_stock_records_key,priority:4"`
	BinName         string    `gorm:"column:bin_name"`
	PushNumber      string    `gorm:"column:push_number"`
	SkidID          string    `gorm:"column:skid_id"`
	InitialQuantity int       `gorm:"column:initial_quantity;not null;default:0"`
	CurrentQuantity int       `gorm:"column:current_quantity;not null;default:0"`
	StockPercentage float64   `gorm:"column:stock_percentage;type:numeric(8,2);not null;default:0"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
