package models

import (
	"time"

	"github.com/google/uuid"
)

// StagingRecord holds received goods on a skid in the inbound staging area,
// keyed by (skid_id, item_code, manufacturer, project). Putaway drains it
// into racking bins.
type StagingRecord struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:(gen_random_uuid());primaryKey"`
	SkidID       string    `gorm:"column:skid_id;not null;uniqueIndex:idx_staging_records_key,priority:1"`
	ItemCode     string    `gorm:"column:item_code;not null;uniqueIndex:idx_staging_records_key,priority:2"`
	Manufacturer string    `gorm:"column:manufacturer;not null;uniqueIndex:idx_staging_records_key,priority:3"`
	Project      string    `gorm:"column:project;not null;uniqueIndex:idx_staging_records_key,priority:4"`
	StagingBin   string    `gorm:"column:staging_bin"`
	Quantity     int       `gorm:"column:quantity;not null;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
