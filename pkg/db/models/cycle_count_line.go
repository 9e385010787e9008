package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/warelogic/ims-backend/pkg/enums"
)

// CycleCountBatch is the header row for one CC-NNNN batch; its status is
// derived from the line statuses and persisted on every submit.
type CycleCountBatch struct {
	ID        uuid.UUID                   `gorm:"column:id;type:uuid;default:(gen_random_uuid());primaryKey"`
	BatchID   string                      `gorm:"column:batch_id;not null;uniqueIndex"`
	Status    enums.CycleCountBatchStatus `gorm:"column:status;not null;default:Open"`
	CreatedBy string                      `gorm:"column:created_by"`
	CreatedAt time.Time                   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time                   `gorm:"column:updated_at;autoUpdateTime"`
}

// CycleCountLine is one audit line inside a CC-NNNN batch. The quantity
// snapshot is frozen at batch creation; variance is measured against it no
// matter what the live record does in the meantime.
type CycleCountLine struct {
	ID                 uuid.UUID                  `gorm:"column:id;type:uuid;default:(gen_random_uuid());primaryKey"`
	BatchID            string                     `gorm:"column:batch_id;not null;index"`
	Status             enums.CycleCountLineStatus `gorm:"column:status;not null;default:Open"`
	BinCode            string                     `gorm:"column:bin_code;not null"`
	ItemCode           string                     `gorm:"column:item_code;not null"`
	Manufacturer       string                     `gorm:"column:manufacturer;not null"`
	Project            string                     `gorm:"column:project;not null"`
	CurrentQtySnapshot int                        `gorm:"column:current_qty_snapshot;not null"`
	CountedQty         *int                       `gorm:"column:counted_qty"`
	Variance           *int                       `gorm:"column:variance"`
	Notes              string                     `gorm:"column:notes"`
	CountedAt          *time.Time                 `gorm:"column:counted_at"`
	CountedBy          string                     `gorm:"column:counted_by"`
	CreatedBy          string                     `gorm:"column:created_by"`
	CreatedAt          time.Time                  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time                  `gorm:"column:updated_at;autoUpdateTime"`
}
