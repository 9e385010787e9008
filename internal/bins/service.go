package bins

import (
	"context"
	"fmt"
	"strings"

	"github.com/warelogic/ims-backend/internal/movement"
	"github.com/warelogic/ims-backend/pkg/db/models"
	"github.com/warelogic/ims-backend/pkg/enums"
	pkgerrors "github.com/warelogic/ims-backend/pkg/errors"
)

// Service is the read-only query surface over the ledger: bin search with
// fill-state filters, bin detail and history, and barcode resolution.
type Service interface {
	SearchBins(ctx context.Context, input SearchInput) ([]models.StockRecord, error)
	GetBinDetails(ctx context.Context, binCode string) (*BinDetails, error)
	GetBinHistory(ctx context.Context, binCode string) ([]models.MovementLogEntry, error)
	QuickBarcodeScan(ctx context.Context, code string) (*ScanResult, error)
}

// SearchInput mirrors the search form: substring matches on bin and item,
// exact matches on manufacturer and project, optional fill-state filter.
type SearchInput struct {
	BinCode      string               `json:"bin_code"`
	ItemCode     string               `json:"fbpn"`
	Manufacturer string               `json:"manufacturer"`
	Project      string               `json:"project"`
	StockFilter  enums.BinStockFilter `json:"stock_filter"`
}

// BinDetails is every stock record currently keyed to one bin.
type BinDetails struct {
	BinCode string               `json:"bin_code"`
	Records []models.StockRecord `json:"records"`
}

// ScanResult resolves one scanned barcode. A scan first tries the code as a
// bin, then falls back to treating it as an item number.
type ScanResult struct {
	Success  bool                 `json:"success"`
	Message  string               `json:"message,omitempty"`
	ScanType enums.ScanType       `json:"scan_type,omitempty"`
	Records  []models.StockRecord `json:"records"`
}

type service struct {
	repo          Repository
	movements     movement.Repository
	lowStockRatio float64
}

// NewService wires the bin query service. lowStockRatio is the
// current/initial threshold for the "low" filter; zero means 0.25.
func NewService(repo Repository, movements movement.Repository, lowStockRatio float64) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("bin repository required")
	}
	if movements == nil {
		return nil, fmt.Errorf("movement repository required")
	}
	if lowStockRatio <= 0 {
		lowStockRatio = 0.25
	}
	return &service{repo: repo, movements: movements, lowStockRatio: lowStockRatio}, nil
}

func (s *service) SearchBins(ctx context.Context, input SearchInput) ([]models.StockRecord, error) {
	if input.StockFilter != "" && !input.StockFilter.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("invalid stock filter %q", input.StockFilter))
	}

	records, err := s.repo.Search(ctx, SearchFilter{
		BinCode:      strings.TrimSpace(input.BinCode),
		ItemCode:     strings.TrimSpace(input.ItemCode),
		Manufacturer: strings.TrimSpace(input.Manufacturer),
		Project:      strings.TrimSpace(input.Project),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "searching stock records")
	}
	if input.StockFilter == "" {
		return records, nil
	}

	filtered := make([]models.StockRecord, 0, len(records))
	for _, record := range records {
		if s.matchesFilter(record, input.StockFilter) {
			filtered = append(filtered, record)
		}
	}
	return filtered, nil
}

func (s *service) matchesFilter(record models.StockRecord, filter enums.BinStockFilter) bool {
	switch filter {
	case enums.BinStockEmpty:
		return record.CurrentQuantity == 0
	case enums.BinStockOccupied:
		return record.CurrentQuantity > 0
	case enums.BinStockLow:
		if record.CurrentQuantity <= 0 || record.InitialQuantity <= 0 {
			return false
		}
		return float64(record.CurrentQuantity) <= float64(record.InitialQuantity)*s.lowStockRatio
	}
	return false
}

func (s *service) GetBinDetails(ctx context.Context, binCode string) (*BinDetails, error) {
	binCode = strings.TrimSpace(binCode)
	if binCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bin code is required")
	}
	records, err := s.repo.ListByBinFold(ctx, binCode)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading bin records")
	}
	if len(records) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("bin %s not found", binCode))
	}
	return &BinDetails{BinCode: records[0].BinCode, Records: records}, nil
}

func (s *service) GetBinHistory(ctx context.Context, binCode string) ([]models.MovementLogEntry, error) {
	binCode = strings.TrimSpace(binCode)
	if binCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bin code is required")
	}
	entries, err := s.movements.ListByBin(ctx, binCode)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading bin history")
	}
	return entries, nil
}

// QuickBarcodeScan resolves a scanned code as a bin first, then as an item
// number. A miss on both is not an error; scanners show the message inline.
func (s *service) QuickBarcodeScan(ctx context.Context, code string) (*ScanResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "scan code is required")
	}

	records, err := s.repo.ListByBinFold(ctx, code)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolving scan as bin")
	}
	if len(records) > 0 {
		return &ScanResult{Success: true, ScanType: enums.ScanTypeBinCode, Records: records}, nil
	}

	records, err = s.repo.ListByItemFold(ctx, code)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolving scan as item")
	}
	if len(records) > 0 {
		return &ScanResult{Success: true, ScanType: enums.ScanTypeFBPN, Records: records}, nil
	}

	return &ScanResult{
		Success: false,
		Message: fmt.Sprintf("No results found for: %s", code),
		Records: []models.StockRecord{},
	}, nil
}
