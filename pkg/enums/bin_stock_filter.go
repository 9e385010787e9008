package enums

import "fmt"

// BinStockFilter narrows bin searches by fill state.
type BinStockFilter string

const (
	BinStockEmpty    BinStockFilter = "empty"
	BinStockOccupied BinStockFilter = "occupied"
	BinStockLow      BinStockFilter = "low"
)

var validBinStockFilters = []BinStockFilter{
	BinStockEmpty,
	BinStockOccupied,
	BinStockLow,
}

// IsValid reports whether the value matches a known filter.
func (f BinStockFilter) IsValid() bool {
	for _, candidate := range validBinStockFilters {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseBinStockFilter converts raw input into a BinStockFilter.
func ParseBinStockFilter(value string) (BinStockFilter, error) {
	for _, candidate := range validBinStockFilters {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid bin stock filter %q", value)
}

// ScanType reports which identifier a barcode scan resolved against.
type ScanType string

const (
	ScanTypeBinCode ScanType = "BIN_CODE"
	ScanTypeFBPN    ScanType = "FBPN"
)
