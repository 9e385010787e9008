package stockops

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/warelogic/ims-backend/pkg/db/models"
)

// StockKey is the composite identity of a stock record.
type StockKey struct {
	BinCode      string
	ItemCode     string
	Manufacturer string
	Project      string
}

// String renders the legacy pipe-delimited key form used in logs.
func (k StockKey) String() string {
	return k.BinCode + "|" + k.ItemCode + "|" + k.Manufacturer + "|" + k.Project
}

// StagingKey identifies the staging pool row a putaway drains. It shares the
// lock namespace with StockKey so putaways over the same skid serialize.
func StagingKey(skidID, itemCode, manufacturer, project string) string {
	return "SKID|" + skidID + "|" + itemCode + "|" + manufacturer + "|" + project
}

// StockRepository is the ledger store: keyed lookup and upsert of stock
// records plus the bin scans the query layer and inbound allocator need.
type StockRepository interface {
	WithTx(tx *gorm.DB) StockRepository
	Get(ctx context.Context, key StockKey) (*models.StockRecord, error)
	Upsert(ctx context.Context, record *models.StockRecord) error
	ListByBin(ctx context.Context, binCode string) ([]models.StockRecord, error)
	ListByItem(ctx context.Context, itemCode string) ([]models.StockRecord, error)
	FindEmptyBinInArea(ctx context.Context, areaPrefix string) (*models.StockRecord, error)
}

type stockRepository struct {
	db *gorm.DB
}

// NewStockRepository returns a ledger store bound to the provided database.
func NewStockRepository(db *gorm.DB) StockRepository {
	return &stockRepository{db: db}
}

func (r *stockRepository) WithTx(tx *gorm.DB) StockRepository {
	if tx == nil {
		return r
	}
	return &stockRepository{db: tx}
}

func (r *stockRepository) Get(ctx context.Context, key StockKey) (*models.StockRecord, error) {
	var record models.StockRecord
	err := r.db.WithContext(ctx).
		Where("bin_code = ? AND item_code = ? AND manufacturer = ? AND project = ?",
			key.BinCode, key.ItemCode, key.Manufacturer, key.Project).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *stockRepository) Upsert(ctx context.Context, record *models.StockRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

func (r *stockRepository) ListByBin(ctx context.Context, binCode string) ([]models.StockRecord, error) {
	var records []models.StockRecord
	if err := r.db.WithContext(ctx).
		Where("bin_code = ?", binCode).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *stockRepository) ListByItem(ctx context.Context, itemCode string) ([]models.StockRecord, error) {
	var records []models.StockRecord
	if err := r.db.WithContext(ctx).
		Where("item_code = ?", itemCode).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindEmptyBinInArea returns the first stored record in the area whose item
// slot is unset. Stored order makes repeated calls deterministic between
// writes.
func (r *stockRepository) FindEmptyBinInArea(ctx context.Context, areaPrefix string) (*models.StockRecord, error) {
	var record models.StockRecord
	err := r.db.WithContext(ctx).
		Where("bin_code LIKE ? AND item_code = ''", areaPrefix+"%").
		Order("created_at ASC").
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FloorStockRepository tracks the per-item floor pool kept in lockstep with
// certain stock operations.
type FloorStockRepository interface {
	WithTx(tx *gorm.DB) FloorStockRepository
	Get(ctx context.Context, itemCode, project string) (*models.FloorStockRecord, error)
	Save(ctx context.Context, record *models.FloorStockRecord) error
}

type floorStockRepository struct {
	db *gorm.DB
}

// NewFloorStockRepository returns a floor stock repository bound to the provided database.
func NewFloorStockRepository(db *gorm.DB) FloorStockRepository {
	return &floorStockRepository{db: db}
}

func (r *floorStockRepository) WithTx(tx *gorm.DB) FloorStockRepository {
	if tx == nil {
		return r
	}
	return &floorStockRepository{db: tx}
}

func (r *floorStockRepository) Get(ctx context.Context, itemCode, project string) (*models.FloorStockRecord, error) {
	var record models.FloorStockRecord
	err := r.db.WithContext(ctx).
		Where("item_code = ? AND project = ?", itemCode, project).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *floorStockRepository) Save(ctx context.Context, record *models.FloorStockRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// StagingRepository holds received skid lines awaiting putaway.
type StagingRepository interface {
	WithTx(tx *gorm.DB) StagingRepository
	Get(ctx context.Context, skidID, itemCode, manufacturer, project string) (*models.StagingRecord, error)
	Save(ctx context.Context, record *models.StagingRecord) error
	MaxStagingSlot(ctx context.Context, prefix string) (int, error)
}

type stagingRepository struct {
	db *gorm.DB
}

// NewStagingRepository returns a staging repository bound to the provided database.
func NewStagingRepository(db *gorm.DB) StagingRepository {
	return &stagingRepository{db: db}
}

func (r *stagingRepository) WithTx(tx *gorm.DB) StagingRepository {
	if tx == nil {
		return r
	}
	return &stagingRepository{db: tx}
}

func (r *stagingRepository) Get(ctx context.Context, skidID, itemCode, manufacturer, project string) (*models.StagingRecord, error) {
	var record models.StagingRecord
	err := r.db.WithContext(ctx).
		Where("skid_id = ? AND item_code = ? AND manufacturer = ? AND project = ?",
			skidID, itemCode, manufacturer, project).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *stagingRepository) Save(ctx context.Context, record *models.StagingRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// MaxStagingSlot returns the highest numeric suffix among staging bins with
// the given prefix (IS.1, IS.2, ...), or 0 when none exist.
func (r *stagingRepository) MaxStagingSlot(ctx context.Context, prefix string) (int, error) {
	var bins []string
	if err := r.db.WithContext(ctx).
		Model(&models.StagingRecord{}).
		Where("staging_bin LIKE ?", prefix+"%").
		Pluck("staging_bin", &bins).Error; err != nil {
		return 0, err
	}
	max := 0
	for _, bin := range bins {
		if n, ok := stagingSlotNumber(bin, prefix); ok && n > max {
			max = n
		}
	}
	return max, nil
}

func stagingSlotNumber(bin, prefix string) (int, bool) {
	if len(bin) <= len(prefix) || bin[:len(prefix)] != prefix {
		return 0, false
	}
	n := 0
	for _, ch := range bin[len(prefix):] {
		if ch < '0' || ch > '9' {
			return 0, false
		}
		n = n*10 + int(ch-'0')
	}
	return n, true
}
