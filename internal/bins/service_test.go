package bins

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/warelogic/ims-backend/internal/movement"
	"github.com/warelogic/ims-backend/pkg/db/models"
	"github.com/warelogic/ims-backend/pkg/enums"
	pkgerrors "github.com/warelogic/ims-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:bins_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.StockRecord{}, &models.MovementLogEntry{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func newTestService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(conn), movement.NewRepository(conn), 0.25)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func seedStock(t *testing.T, conn *gorm.DB, binCode, itemCode string, current, initial int) {
	t.Helper()
	if err := conn.Create(&models.StockRecord{
		ID:              uuid.New(),
		BinCode:         binCode,
		ItemCode:        itemCode,
		Manufacturer:    "ACME",
		Project:         "P1",
		InitialQuantity: initial,
		CurrentQuantity: current,
	}).Error; err != nil {
		t.Fatalf("seed stock: %v", err)
	}
}

func TestSearchBinsSubstringMatch(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	seedStock(t, conn, "A1.2", "FB-100", 10, 10)
	seedStock(t, conn, "A1.3", "FB-200", 5, 5)
	seedStock(t, conn, "B2.1", "FB-100", 3, 3)

	records, err := svc.SearchBins(context.Background(), SearchInput{BinCode: "a1"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records got %d", len(records))
	}

	records, err = svc.SearchBins(context.Background(), SearchInput{ItemCode: "fb-100"})
	if err != nil {
		t.Fatalf("search by item: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records for item got %d", len(records))
	}
}

func TestSearchBinsStockFilters(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	seedStock(t, conn, "A1.1", "FB-100", 0, 40)
	seedStock(t, conn, "A1.2", "FB-200", 10, 40)
	seedStock(t, conn, "A1.3", "FB-300", 30, 40)

	cases := []struct {
		filter enums.BinStockFilter
		want   int
	}{
		{enums.BinStockEmpty, 1},
		{enums.BinStockOccupied, 2},
		// 10/40 is exactly the 0.25 threshold; 30/40 is not low, 0 is empty.
		{enums.BinStockLow, 1},
	}
	for _, tc := range cases {
		records, err := svc.SearchBins(context.Background(), SearchInput{StockFilter: tc.filter})
		if err != nil {
			t.Fatalf("search %s: %v", tc.filter, err)
		}
		if len(records) != tc.want {
			t.Fatalf("filter %s: expected %d records got %d", tc.filter, tc.want, len(records))
		}
	}
}

func TestSearchBinsRejectsUnknownFilter(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)

	_, err := svc.SearchBins(context.Background(), SearchInput{StockFilter: "overflowing"})
	if err == nil {
		t.Fatal("expected error for unknown filter")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetBinHistoryNewestFirst(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)

	base := time.Now().Add(-time.Hour)
	for i, action := range []enums.MovementAction{enums.MovementActionAdd, enums.MovementActionRemove} {
		if err := conn.Create(&models.MovementLogEntry{
			ID:        uuid.New(),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Action:    action,
			BinCode:   "A1.2",
			ItemCode:  "FB-100",
		}).Error; err != nil {
			t.Fatalf("seed entry: %v", err)
		}
	}

	entries, err := svc.GetBinHistory(context.Background(), "A1.2")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries got %d", len(entries))
	}
	if entries[0].Action != enums.MovementActionRemove {
		t.Fatalf("expected newest entry first, got %s", entries[0].Action)
	}
}

func TestQuickBarcodeScanBinBeforeItem(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	seedStock(t, conn, "A1.2", "FB-100", 10, 10)
	seedStock(t, conn, "B2.1", "A1.2", 4, 4)

	// The code matches both a bin and an item number; the bin wins.
	result, err := svc.QuickBarcodeScan(context.Background(), "a1.2")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if !result.Success || result.ScanType != enums.ScanTypeBinCode {
		t.Fatalf("expected BIN_CODE scan, got %+v", result)
	}

	result, err = svc.QuickBarcodeScan(context.Background(), "FB-100")
	if err != nil {
		t.Fatalf("item scan: %v", err)
	}
	if !result.Success || result.ScanType != enums.ScanTypeFBPN {
		t.Fatalf("expected FBPN scan, got %+v", result)
	}
}

func TestQuickBarcodeScanMiss(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)

	result, err := svc.QuickBarcodeScan(context.Background(), "NOPE-404")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if result.Success {
		t.Fatal("expected unsuccessful scan")
	}
	if result.Message != "No results found for: NOPE-404" {
		t.Fatalf("unexpected message %q", result.Message)
	}
}
