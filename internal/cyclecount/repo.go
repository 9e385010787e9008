package cyclecount

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/warelogic/ims-backend/pkg/db/models"
)

// Repository manages persistence for cycle count batches and lines, plus the
// case-insensitive stock lookups the engine needs. Legacy cycle count data
// was keyed uppercase, so every key comparison here folds case.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateBatch(ctx context.Context, batch *models.CycleCountBatch) error
	SaveBatch(ctx context.Context, batch *models.CycleCountBatch) error
	GetBatch(ctx context.Context, batchID string) (*models.CycleCountBatch, error)
	ListBatchIDs(ctx context.Context) ([]string, error)
	CreateLine(ctx context.Context, line *models.CycleCountLine) error
	SaveLine(ctx context.Context, line *models.CycleCountLine) error
	ListLinesByBatch(ctx context.Context, batchID string) ([]models.CycleCountLine, error)
	FindLineFold(ctx context.Context, batchID, binCode, itemCode, manufacturer, project string) (*models.CycleCountLine, error)
	ListCompletedBetween(ctx context.Context, start, end time.Time) ([]models.CycleCountLine, error)
	FindStockFold(ctx context.Context, binCode, itemCode, manufacturer, project string) (*models.StockRecord, error)
	SaveStock(ctx context.Context, record *models.StockRecord) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a cycle count repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateBatch(ctx context.Context, batch *models.CycleCountBatch) error {
	return r.db.WithContext(ctx).Create(batch).Error
}

func (r *repository) SaveBatch(ctx context.Context, batch *models.CycleCountBatch) error {
	return r.db.WithContext(ctx).Save(batch).Error
}

func (r *repository) GetBatch(ctx context.Context, batchID string) (*models.CycleCountBatch, error) {
	var batch models.CycleCountBatch
	err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		First(&batch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

func (r *repository) ListBatchIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).
		Model(&models.CycleCountBatch{}).
		Pluck("batch_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repository) CreateLine(ctx context.Context, line *models.CycleCountLine) error {
	return r.db.WithContext(ctx).Create(line).Error
}

func (r *repository) SaveLine(ctx context.Context, line *models.CycleCountLine) error {
	return r.db.WithContext(ctx).Save(line).Error
}

func (r *repository) ListLinesByBatch(ctx context.Context, batchID string) ([]models.CycleCountLine, error) {
	var lines []models.CycleCountLine
	if err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("created_at ASC").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repository) FindLineFold(ctx context.Context, batchID, binCode, itemCode, manufacturer, project string) (*models.CycleCountLine, error) {
	var line models.CycleCountLine
	err := r.db.WithContext(ctx).
		Where("batch_id = ? AND UPPER(bin_code) = UPPER(?) AND UPPER(item_code) = UPPER(?) AND UPPER(manufacturer) = UPPER(?) AND UPPER(project) = UPPER(?)",
			batchID, binCode, itemCode, manufacturer, project).
		First(&line).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *repository) ListCompletedBetween(ctx context.Context, start, end time.Time) ([]models.CycleCountLine, error) {
	var lines []models.CycleCountLine
	if err := r.db.WithContext(ctx).
		Where("status = ? AND counted_at >= ? AND counted_at <= ?", "Completed", start, end).
		Order("counted_at DESC").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repository) FindStockFold(ctx context.Context, binCode, itemCode, manufacturer, project string) (*models.StockRecord, error) {
	var record models.StockRecord
	err := r.db.WithContext(ctx).
		Where("UPPER(bin_code) = UPPER(?) AND UPPER(item_code) = UPPER(?) AND UPPER(manufacturer) = UPPER(?) AND UPPER(project) = UPPER(?)",
			binCode, itemCode, manufacturer, project).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) SaveStock(ctx context.Context, record *models.StockRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}
