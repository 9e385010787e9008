package backorders

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/warelogic/ims-backend/pkg/db/models"
)

// Repository manages persistence for backorders and their fulfillment log.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, backorder *models.Backorder) error
	Save(ctx context.Context, backorder *models.Backorder) error
	// ListByItemFold returns every backorder whose item matches
	// case-insensitively, in storage order. Callers filter closed rows;
	// legacy data carries mixed-case statuses.
	ListByItemFold(ctx context.Context, itemCode string) ([]models.Backorder, error)
	GetByBackorderID(ctx context.Context, backorderID string) (*models.Backorder, error)
	CreateFulfillmentLog(ctx context.Context, entry *models.BackorderFulfillmentLog) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a backorder repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, backorder *models.Backorder) error {
	return r.db.WithContext(ctx).Create(backorder).Error
}

func (r *repository) Save(ctx context.Context, backorder *models.Backorder) error {
	return r.db.WithContext(ctx).Save(backorder).Error
}

func (r *repository) ListByItemFold(ctx context.Context, itemCode string) ([]models.Backorder, error) {
	var rows []models.Backorder
	if err := r.db.WithContext(ctx).
		Where("UPPER(item_code) = UPPER(?)", itemCode).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) GetByBackorderID(ctx context.Context, backorderID string) (*models.Backorder, error) {
	var row models.Backorder
	err := r.db.WithContext(ctx).
		Where("backorder_id = ?", backorderID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) CreateFulfillmentLog(ctx context.Context, entry *models.BackorderFulfillmentLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// AllocationRepository manages order allocation lines and the customer order
// aggregate the fulfillment engine keeps in sync.
type AllocationRepository interface {
	WithTx(tx *gorm.DB) AllocationRepository
	ListByOrderAndItemFold(ctx context.Context, orderID, itemCode string) ([]models.AllocationLine, error)
	ListByOrder(ctx context.Context, orderID string) ([]models.AllocationLine, error)
	Save(ctx context.Context, line *models.AllocationLine) error
	GetOrder(ctx context.Context, orderID string) (*models.CustomerOrder, error)
	SaveOrder(ctx context.Context, order *models.CustomerOrder) error
}

type allocationRepository struct {
	db *gorm.DB
}

// NewAllocationRepository returns an allocation repository bound to the provided database.
func NewAllocationRepository(db *gorm.DB) AllocationRepository {
	return &allocationRepository{db: db}
}

func (r *allocationRepository) WithTx(tx *gorm.DB) AllocationRepository {
	if tx == nil {
		return r
	}
	return &allocationRepository{db: tx}
}

func (r *allocationRepository) ListByOrderAndItemFold(ctx context.Context, orderID, itemCode string) ([]models.AllocationLine, error) {
	var lines []models.AllocationLine
	if err := r.db.WithContext(ctx).
		Where("order_id = ? AND UPPER(item_code) = UPPER(?)", orderID, itemCode).
		Order("created_at ASC").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *allocationRepository) ListByOrder(ctx context.Context, orderID string) ([]models.AllocationLine, error) {
	var lines []models.AllocationLine
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *allocationRepository) Save(ctx context.Context, line *models.AllocationLine) error {
	return r.db.WithContext(ctx).Save(line).Error
}

func (r *allocationRepository) GetOrder(ctx context.Context, orderID string) (*models.CustomerOrder, error) {
	var order models.CustomerOrder
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *allocationRepository) SaveOrder(ctx context.Context, order *models.CustomerOrder) error {
	return r.db.WithContext(ctx).Save(order).Error
}
