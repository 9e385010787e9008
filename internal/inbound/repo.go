package inbound

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/warelogic/ims-backend/pkg/db/models"
)

// Repository persists inbound receipt headers and lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateReceipt(ctx context.Context, receipt *models.InboundReceipt) error
	CreateLine(ctx context.Context, line *models.InboundReceiptLine) error
	GetReceipt(ctx context.Context, transactionID string) (*models.InboundReceipt, error)
	ListLines(ctx context.Context, transactionID string) ([]models.InboundReceiptLine, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an inbound repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateReceipt(ctx context.Context, receipt *models.InboundReceipt) error {
	return r.db.WithContext(ctx).Create(receipt).Error
}

func (r *repository) CreateLine(ctx context.Context, line *models.InboundReceiptLine) error {
	return r.db.WithContext(ctx).Create(line).Error
}

func (r *repository) GetReceipt(ctx context.Context, transactionID string) (*models.InboundReceipt, error) {
	var receipt models.InboundReceipt
	err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		First(&receipt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (r *repository) ListLines(ctx context.Context, transactionID string) ([]models.InboundReceiptLine, error) {
	var lines []models.InboundReceiptLine
	if err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Order("created_at ASC").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}
