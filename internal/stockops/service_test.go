package stockops

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/warelogic/ims-backend/internal/movement"
	"github.com/warelogic/ims-backend/pkg/db"
	"github.com/warelogic/ims-backend/pkg/db/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:stockops_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(
		&models.StockRecord{},
		&models.FloorStockRecord{},
		&models.StagingRecord{},
		&models.MovementLogEntry{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func newTestService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Client:    db.NewWithConn(conn),
		Stock:     NewStockRepository(conn),
		Floor:     NewFloorStockRepository(conn),
		Staging:   NewStagingRepository(conn),
		Movements: movement.NewRepository(conn),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func addLine(bin, item string, qty int) AddLine {
	return AddLine{
		BinCode:      bin,
		ItemCode:     item,
		Manufacturer: "ACME",
		Project:      "P1",
		Qty:          qty,
	}
}

func loadStock(t *testing.T, conn *gorm.DB, bin, item string) models.StockRecord {
	t.Helper()
	var record models.StockRecord
	if err := conn.Where("bin_code = ? AND item_code = ?", bin, item).First(&record).Error; err != nil {
		t.Fatalf("load stock %s/%s: %v", bin, item, err)
	}
	return record
}

func TestAddCreatesThenIncrementsPreservingBaseline(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	result, err := svc.Add(ctx, "ops@warelogic.io", []AddLine{addLine("A1.2", "FB-100", 10)})
	if err != nil {
		t.Fatalf("first add: %v", err)
	}
	if !result.Success || result.SuccessCount != 1 {
		t.Fatalf("unexpected result %+v", result)
	}

	record := loadStock(t, conn, "A1.2", "FB-100")
	if record.CurrentQuantity != 10 || record.InitialQuantity != 10 || record.StockPercentage != 100 {
		t.Fatalf("unexpected record after create: %+v", record)
	}

	// A second fill raises current above the baseline; the baseline stays
	// put and the percentage runs past 100.
	if _, err := svc.Add(ctx, "ops@warelogic.io", []AddLine{addLine("A1.2", "FB-100", 5)}); err != nil {
		t.Fatalf("second add: %v", err)
	}
	record = loadStock(t, conn, "A1.2", "FB-100")
	if record.CurrentQuantity != 15 || record.InitialQuantity != 10 {
		t.Fatalf("expected 15/10, got %d/%d", record.CurrentQuantity, record.InitialQuantity)
	}
	if record.StockPercentage != 150 {
		t.Fatalf("expected 150%%, got %v", record.StockPercentage)
	}
}

func TestRemoveRejectsInsufficientQuantity(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	if _, err := svc.Add(ctx, "ops@warelogic.io", []AddLine{addLine("A1.2", "FB-100", 5)}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	result, err := svc.Remove(ctx, "ops@warelogic.io", []RemoveLine{{
		BinCode: "A1.2", ItemCode: "FB-100", Manufacturer: "ACME", Project: "P1", Qty: 8,
	}})
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if result.Success {
		t.Fatal("expected failed batch")
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "insufficient quantity") {
		t.Fatalf("unexpected errors %v", result.Errors)
	}

	// Quantity never goes negative; the failed line changed nothing.
	record := loadStock(t, conn, "A1.2", "FB-100")
	if record.CurrentQuantity != 5 {
		t.Fatalf("expected untouched quantity 5, got %d", record.CurrentQuantity)
	}
}

func TestPartialBatchReportsOneBasedLineErrors(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	result, err := svc.Add(ctx, "ops@warelogic.io", []AddLine{
		addLine("A1.2", "FB-100", 10),
		addLine("", "FB-200", 10),
		addLine("A1.3", "FB-300", -1),
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if result.Success {
		t.Fatal("expected failed batch")
	}
	if result.SuccessCount != 1 {
		t.Fatalf("expected 1 success got %d", result.SuccessCount)
	}
	if result.Message != "Processed 3 items. Successfully processed 1 items." {
		t.Fatalf("unexpected message %q", result.Message)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("expected 2 errors got %d", len(result.Errors))
	}
	if !strings.HasPrefix(result.Errors[0], "Error processing item #2:") {
		t.Fatalf("unexpected first error %q", result.Errors[0])
	}
	if !strings.HasPrefix(result.Errors[1], "Error processing item #3:") {
		t.Fatalf("unexpected second error %q", result.Errors[1])
	}

	// The valid line still landed.
	record := loadStock(t, conn, "A1.2", "FB-100")
	if record.CurrentQuantity != 10 {
		t.Fatalf("expected valid line applied, got %d", record.CurrentQuantity)
	}
}

func TestMoveConservesTotalQuantity(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	if _, err := svc.Add(ctx, "ops@warelogic.io", []AddLine{addLine("A1.2", "FB-100", 20)}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	result, err := svc.Move(ctx, "ops@warelogic.io", []MoveLine{{
		SourceBin: "A1.2", TargetBin: "B2.1",
		ItemCode: "FB-100", Manufacturer: "ACME", Project: "P1", Qty: 8,
	}})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if !result.Success {
		t.Fatalf("unexpected result %+v", result)
	}

	source := loadStock(t, conn, "A1.2", "FB-100")
	target := loadStock(t, conn, "B2.1", "FB-100")
	if source.CurrentQuantity != 12 || target.CurrentQuantity != 8 {
		t.Fatalf("expected 12 and 8, got %d and %d", source.CurrentQuantity, target.CurrentQuantity)
	}
	if source.CurrentQuantity+target.CurrentQuantity != 20 {
		t.Fatal("move must conserve total quantity")
	}

	var entries []models.MovementLogEntry
	if err := conn.Where("item_code = ?", "FB-100").
		Where("action IN ?", []string{"MOVE_OUT", "MOVE_IN"}).
		Find(&entries).Error; err != nil {
		t.Fatalf("load entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected MOVE_OUT and MOVE_IN pair, got %d entries", len(entries))
	}
}

func TestMoveRejectsSameSourceAndTarget(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	if _, err := svc.Add(ctx, "ops@warelogic.io", []AddLine{addLine("A1.2", "FB-100", 20)}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	result, err := svc.Move(ctx, "ops@warelogic.io", []MoveLine{{
		SourceBin: "A1.2", TargetBin: "A1.2",
		ItemCode: "FB-100", Manufacturer: "ACME", Project: "P1", Qty: 5,
	}})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if result.Success {
		t.Fatal("expected failed batch")
	}
}

func TestTransferWritesDefaultDescription(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	if _, err := svc.Add(ctx, "ops@warelogic.io", []AddLine{addLine("A1.2", "FB-100", 20)}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := svc.Transfer(ctx, "ops@warelogic.io", []MoveLine{{
		SourceBin: "A1.2", TargetBin: "B2.1",
		ItemCode: "FB-100", Manufacturer: "ACME", Project: "P1", Qty: 5,
	}}); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	var entry models.MovementLogEntry
	if err := conn.Where("action = ?", "MOVE_OUT").First(&entry).Error; err != nil {
		t.Fatalf("load entry: %v", err)
	}
	if entry.Description != "Transfer from A1.2 to B2.1" {
		t.Fatalf("unexpected description %q", entry.Description)
	}
}

func TestStagingPutawayDrainsSkidIntoBin(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	if err := conn.Create(&models.StagingRecord{
		ID:           uuid.New(),
		SkidID:       "SKD-TEST0001",
		ItemCode:     "FB-100",
		Manufacturer: "ACME",
		Project:      "P1",
		StagingBin:   "IS.1",
		Quantity:     12,
	}).Error; err != nil {
		t.Fatalf("seed staging: %v", err)
	}

	result, err := svc.StagingPutaway(ctx, "ops@warelogic.io", []StagingLine{{
		SkidID: "SKD-TEST0001", TargetBin: "A1.2",
		ItemCode: "FB-100", Manufacturer: "ACME", Project: "P1", Qty: 12,
	}})
	if err != nil {
		t.Fatalf("putaway: %v", err)
	}
	if !result.Success {
		t.Fatalf("unexpected result %+v", result)
	}

	var skid models.StagingRecord
	if err := conn.Where("skid_id = ?", "SKD-TEST0001").First(&skid).Error; err != nil {
		t.Fatalf("reload skid: %v", err)
	}
	if skid.Quantity != 0 {
		t.Fatalf("expected drained skid, got %d", skid.Quantity)
	}

	record := loadStock(t, conn, "A1.2", "FB-100")
	if record.CurrentQuantity != 12 {
		t.Fatalf("expected 12 in target bin, got %d", record.CurrentQuantity)
	}

	var floor models.FloorStockRecord
	if err := conn.Where("item_code = ?", "FB-100").First(&floor).Error; err != nil {
		t.Fatalf("load floor stock: %v", err)
	}
	if floor.Quantity != 12 {
		t.Fatalf("expected floor stock 12, got %d", floor.Quantity)
	}

	var entry models.MovementLogEntry
	if err := conn.Where("action = ?", "STAGING_TO_BIN").First(&entry).Error; err != nil {
		t.Fatalf("load entry: %v", err)
	}
	if entry.ReferenceID != "SKD-TEST0001" {
		t.Fatalf("expected skid reference, got %q", entry.ReferenceID)
	}
}

func TestStagingPutawayLocksSkidPool(t *testing.T) {
	conn := newTestDB(t)
	locks := NewKeyLock()
	svc, err := NewService(ServiceParams{
		Client:    db.NewWithConn(conn),
		Stock:     NewStockRepository(conn),
		Floor:     NewFloorStockRepository(conn),
		Staging:   NewStagingRepository(conn),
		Movements: movement.NewRepository(conn),
		Locks:     locks,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if err := conn.Create(&models.StagingRecord{
		ID:           uuid.New(),
		SkidID:       "SKD-TEST0002",
		ItemCode:     "FB-100",
		Manufacturer: "ACME",
		Project:      "P1",
		StagingBin:   "IS.1",
		Quantity:     10,
	}).Error; err != nil {
		t.Fatalf("seed staging: %v", err)
	}

	// A concurrent batch draining the same skid into a different bin must
	// wait on the skid pool key, not just its own target key.
	unlock := locks.LockAll([]string{StagingKey("SKD-TEST0002", "FB-100", "ACME", "P1")})

	done := make(chan BatchResult, 1)
	go func() {
		result, err := svc.StagingPutaway(context.Background(), "ops@warelogic.io", []StagingLine{{
			SkidID: "SKD-TEST0002", TargetBin: "B2.1",
			ItemCode: "FB-100", Manufacturer: "ACME", Project: "P1", Qty: 8,
		}})
		if err != nil {
			t.Errorf("putaway: %v", err)
		}
		done <- result
	}()

	select {
	case <-done:
		t.Fatal("putaway ran while the skid pool was locked")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()

	select {
	case result := <-done:
		if !result.Success {
			t.Fatalf("unexpected result %+v", result)
		}
	case <-time.After(time.Second):
		t.Fatal("putaway never acquired the skid pool lock")
	}

	var skid models.StagingRecord
	if err := conn.Where("skid_id = ?", "SKD-TEST0002").First(&skid).Error; err != nil {
		t.Fatalf("reload skid: %v", err)
	}
	if skid.Quantity != 2 {
		t.Fatalf("expected 2 left on skid, got %d", skid.Quantity)
	}
}

func TestRemoveForShipmentClampsAtZero(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	if _, err := svc.Add(ctx, "ops@warelogic.io", []AddLine{addLine("A1.2", "FB-100", 5)}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	result, err := svc.RemoveForShipment(ctx, "ops@warelogic.io", []ShipmentLine{{
		BinCode: "A1.2", ItemCode: "FB-100", Manufacturer: "ACME", Project: "P1",
		Qty: 9, ShipmentID: "SHP-1",
	}})
	if err != nil {
		t.Fatalf("shipment: %v", err)
	}
	if !result.Success {
		t.Fatalf("unexpected result %+v", result)
	}

	record := loadStock(t, conn, "A1.2", "FB-100")
	if record.CurrentQuantity != 0 {
		t.Fatalf("expected clamp at zero, got %d", record.CurrentQuantity)
	}

	var entry models.MovementLogEntry
	if err := conn.Where("action = ?", "OUTBOUND").First(&entry).Error; err != nil {
		t.Fatalf("load entry: %v", err)
	}
	if entry.QtyChanged != -5 || entry.ResultingQuantity != 0 {
		t.Fatalf("expected change -5 resulting 0, got %d and %d",
			entry.QtyChanged, entry.ResultingQuantity)
	}
}

func TestEveryMutationAppendsMovementLog(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	if _, err := svc.Add(ctx, "ops@warelogic.io", []AddLine{addLine("A1.2", "FB-100", 10)}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.Remove(ctx, "ops@warelogic.io", []RemoveLine{{
		BinCode: "A1.2", ItemCode: "FB-100", Manufacturer: "ACME", Project: "P1", Qty: 3,
	}}); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := svc.Move(ctx, "ops@warelogic.io", []MoveLine{{
		SourceBin: "A1.2", TargetBin: "B2.1",
		ItemCode: "FB-100", Manufacturer: "ACME", Project: "P1", Qty: 2,
	}}); err != nil {
		t.Fatalf("move: %v", err)
	}

	var count int64
	if err := conn.Model(&models.MovementLogEntry{}).Count(&count).Error; err != nil {
		t.Fatalf("count entries: %v", err)
	}
	// ADD + REMOVE + MOVE_OUT + MOVE_IN
	if count != 4 {
		t.Fatalf("expected 4 movement entries got %d", count)
	}
}

func TestStockPercentageRounding(t *testing.T) {
	cases := []struct {
		current, initial int
		want             float64
	}{
		{10, 10, 100},
		{15, 10, 150},
		{1, 3, 33.33},
		{2, 3, 66.67},
		{0, 10, 0},
		{5, 0, 0},
	}
	for _, tc := range cases {
		if got := StockPercentage(tc.current, tc.initial); got != tc.want {
			t.Fatalf("StockPercentage(%d, %d) = %v, want %v", tc.current, tc.initial, got, tc.want)
		}
	}
}

func TestMovementActionsRecordedAreValid(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	if _, err := svc.Add(ctx, "ops@warelogic.io", []AddLine{addLine("A1.2", "FB-100", 10)}); err != nil {
		t.Fatalf("add: %v", err)
	}

	var entries []models.MovementLogEntry
	if err := conn.Find(&entries).Error; err != nil {
		t.Fatalf("load entries: %v", err)
	}
	for _, entry := range entries {
		if !entry.Action.IsValid() {
			t.Fatalf("invalid action %q in log", entry.Action)
		}
	}
}
