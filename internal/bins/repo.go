package bins

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/warelogic/ims-backend/pkg/db/models"
)

// SearchFilter narrows a bin search. BinCode and ItemCode match as
// case-insensitive substrings; Manufacturer and Project match exactly.
type SearchFilter struct {
	BinCode      string
	ItemCode     string
	Manufacturer string
	Project      string
}

// Repository serves the read-only query surface over stock records.
type Repository interface {
	Search(ctx context.Context, filter SearchFilter) ([]models.StockRecord, error)
	ListByBinFold(ctx context.Context, binCode string) ([]models.StockRecord, error)
	ListByItemFold(ctx context.Context, itemCode string) ([]models.StockRecord, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a bin query repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Search(ctx context.Context, filter SearchFilter) ([]models.StockRecord, error) {
	query := r.db.WithContext(ctx).Model(&models.StockRecord{})
	if filter.BinCode != "" {
		query = query.Where("LOWER(bin_code) LIKE ?", "%"+strings.ToLower(filter.BinCode)+"%")
	}
	if filter.ItemCode != "" {
		query = query.Where("LOWER(item_code) LIKE ?", "%"+strings.ToLower(filter.ItemCode)+"%")
	}
	if filter.Manufacturer != "" {
		query = query.Where("manufacturer = ?", filter.Manufacturer)
	}
	if filter.Project != "" {
		query = query.Where("project = ?", filter.Project)
	}

	var records []models.StockRecord
	if err := query.Order("bin_code ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) ListByBinFold(ctx context.Context, binCode string) ([]models.StockRecord, error) {
	var records []models.StockRecord
	if err := r.db.WithContext(ctx).
		Where("UPPER(bin_code) = UPPER(?)", binCode).
		Order("item_code ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) ListByItemFold(ctx context.Context, itemCode string) ([]models.StockRecord, error) {
	var records []models.StockRecord
	if err := r.db.WithContext(ctx).
		Where("UPPER(item_code) = UPPER(?)", itemCode).
		Order("bin_code ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
