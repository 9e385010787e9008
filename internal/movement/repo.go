package movement

import (
	"context"

	"gorm.io/gorm"

	"github.com/warelogic/ims-backend/pkg/db/models"
)

// Repository manages persistence for movement log entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.MovementLogEntry) error
	ListByBin(ctx context.Context, binCode string) ([]models.MovementLogEntry, error)
	ListByItem(ctx context.Context, itemCode string) ([]models.MovementLogEntry, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a movement log repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.MovementLogEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListByBin(ctx context.Context, binCode string) ([]models.MovementLogEntry, error) {
	var entries []models.MovementLogEntry
	if err := r.db.WithContext(ctx).
		Where("bin_code = ?", binCode).
		Order("timestamp DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) ListByItem(ctx context.Context, itemCode string) ([]models.MovementLogEntry, error) {
	var entries []models.MovementLogEntry
	if err := r.db.WithContext(ctx).
		Where("item_code = ?", itemCode).
		Order("timestamp DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
