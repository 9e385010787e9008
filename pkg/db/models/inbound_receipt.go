package models

import (
	"time"

	"github.com/google/uuid"
)

// InboundReceipt is the header row for one inbound submission.
type InboundReceipt struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:(gen_random_uuid());primaryKey"`
	TransactionID string    `gorm:"column:transaction_id;not null;uniqueIndex"`
	ReceivedBy    string    `gorm:"column:received_by"`
	SkidCount     int       `gorm:"column:skid_count;not null;default:0"`
	ReceivedAt    time.Time `gorm:"column:received_at;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}

// InboundReceiptLine is one item line on one skid of a receipt.
type InboundReceiptLine struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:(gen_random_uuid());primaryKey"`
	TransactionID string    `gorm:"column:transaction_id;not null;index"`
	SkidID        string    `gorm:"column:skid_id;not null"`
	StagingBin    string    `gorm:"column:staging_bin"`
	ItemCode      string    `gorm:"column:item_code;not null"`
	Manufacturer  string    `gorm:"column:manufacturer"`
	Project       string    `gorm:"column:project"`
	Quantity      int       `gorm:"column:quantity;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}
