package cyclecount

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/warelogic/ims-backend/internal/movement"
	"github.com/warelogic/ims-backend/pkg/db"
	"github.com/warelogic/ims-backend/pkg/db/models"
	"github.com/warelogic/ims-backend/pkg/enums"
	pkgerrors "github.com/warelogic/ims-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:cyclecount_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(
		&models.StockRecord{},
		&models.CycleCountBatch{},
		&models.CycleCountLine{},
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
		Repo:      NewRepository(conn),
		Movements: movement.NewRepository(conn),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func seedStock(t *testing.T, conn *gorm.DB, binCode, itemCode string, qty int) *models.StockRecord {
	t.Helper()
	record := &models.StockRecord{
		ID:              uuid.New(),
		BinCode:         binCode,
		ItemCode:        itemCode,
		Manufacturer:    "ACME",
		Project:         "P1",
		InitialQuantity: qty,
		CurrentQuantity: qty,
		StockPercentage: 100,
	}
	if err := conn.Create(record).Error; err != nil {
		t.Fatalf("seed stock: %v", err)
	}
	return record
}

func batchLine(binCode, itemCode string) BatchLineInput {
	return BatchLineInput{
		BinCode:      binCode,
		ItemCode:     itemCode,
		Manufacturer: "acme",
		Project:      "p1",
	}
}

func submitInput(batchID, binCode, itemCode string, counted int) SubmitCountInput {
	return SubmitCountInput{
		BatchID:      batchID,
		BinCode:      binCode,
		ItemCode:     itemCode,
		Manufacturer: "acme",
		Project:      "p1",
		CountedQty:   counted,
	}
}

func TestCreateBatchSnapshotsAndSkipsMissingKeys(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	seedStock(t, conn, "A1.2", "FB-100", 50)

	result, err := svc.CreateBatch(context.Background(), "auditor@warelogic.io", CreateBatchInput{
		Lines: []BatchLineInput{
			batchLine("a1.2", "fb-100"),
			batchLine("Z9.9", "FB-404"),
		},
	})
	if err != nil {
		t.Fatalf("create batch: %v", err)
	}
	if result.BatchID != "CC-0001" {
		t.Fatalf("expected batch id CC-0001 got %s", result.BatchID)
	}
	if result.LinesCreated != 1 {
		t.Fatalf("expected 1 line created got %d", result.LinesCreated)
	}
	if len(result.SkippedKeys) != 1 {
		t.Fatalf("expected 1 skipped key got %d", len(result.SkippedKeys))
	}
	if result.Lines[0].CurrentQtySnapshot != 50 {
		t.Fatalf("expected snapshot 50 got %d", result.Lines[0].CurrentQtySnapshot)
	}

	detail, err := svc.GetBatch(context.Background(), "CC-0001")
	if err != nil {
		t.Fatalf("get batch: %v", err)
	}
	if detail.Batch.Status != enums.CycleCountBatchOpen {
		t.Fatalf("expected open batch got %s", detail.Batch.Status)
	}
}

func TestCreateBatchAllocatesSequentialIDs(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	seedStock(t, conn, "A1.2", "FB-100", 10)

	for i, want := range []string{"CC-0001", "CC-0002", "CC-0003"} {
		result, err := svc.CreateBatch(context.Background(), "auditor@warelogic.io", CreateBatchInput{
			Lines: []BatchLineInput{batchLine("A1.2", "FB-100")},
		})
		if err != nil {
			t.Fatalf("create batch %d: %v", i, err)
		}
		if result.BatchID != want {
			t.Fatalf("expected %s got %s", want, result.BatchID)
		}
	}
}

func TestCreateBatchHonorsCallerSuppliedID(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	seedStock(t, conn, "A1.2", "FB-100", 10)

	result, err := svc.CreateBatch(context.Background(), "auditor@warelogic.io", CreateBatchInput{
		BatchID: "audit-wk35",
		Lines:   []BatchLineInput{batchLine("A1.2", "FB-100")},
	})
	if err != nil {
		t.Fatalf("create batch: %v", err)
	}
	if result.BatchID != "AUDIT-WK35" {
		t.Fatalf("expected AUDIT-WK35 got %s", result.BatchID)
	}

	_, err = svc.CreateBatch(context.Background(), "auditor@warelogic.io", CreateBatchInput{
		BatchID: "AUDIT-WK35",
		Lines:   []BatchLineInput{batchLine("A1.2", "FB-100")},
	})
	if err == nil {
		t.Fatal("expected error on duplicate batch id")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}

	// The sequence is unaffected by named batches.
	generated, err := svc.CreateBatch(context.Background(), "auditor@warelogic.io", CreateBatchInput{
		Lines: []BatchLineInput{batchLine("A1.2", "FB-100")},
	})
	if err != nil {
		t.Fatalf("create generated batch: %v", err)
	}
	if generated.BatchID != "CC-0001" {
		t.Fatalf("expected CC-0001 got %s", generated.BatchID)
	}
}

func TestSubmitCountVarianceAgainstFrozenSnapshot(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	record := seedStock(t, conn, "A1.2", "FB-100", 50)

	created, err := svc.CreateBatch(context.Background(), "auditor@warelogic.io", CreateBatchInput{
		Lines: []BatchLineInput{batchLine("A1.2", "FB-100")},
	})
	if err != nil {
		t.Fatalf("create batch: %v", err)
	}

	// A shipment drains stock after the snapshot was taken. The count still
	// measures against the snapshot, not the live quantity.
	record.CurrentQuantity = 47
	if err := conn.Save(record).Error; err != nil {
		t.Fatalf("drain stock: %v", err)
	}

	result, err := svc.SubmitCount(context.Background(), "auditor@warelogic.io",
		submitInput(created.BatchID, "A1.2", "FB-100", 47))
	if err != nil {
		t.Fatalf("submit count: %v", err)
	}
	if result.Variance != -3 {
		t.Fatalf("expected variance -3 got %d", result.Variance)
	}
	if result.SnapshotQty != 50 {
		t.Fatalf("expected snapshot 50 got %d", result.SnapshotQty)
	}
	if result.BatchStatus != enums.CycleCountBatchCompleted {
		t.Fatalf("expected completed batch got %s", result.BatchStatus)
	}

	var saved models.StockRecord
	if err := conn.Where("id = ?", record.ID).First(&saved).Error; err != nil {
		t.Fatalf("reload stock: %v", err)
	}
	if saved.CurrentQuantity != 47 {
		t.Fatalf("expected live quantity 47 got %d", saved.CurrentQuantity)
	}

	var entry models.MovementLogEntry
	if err := conn.Where("reference_id = ?", created.BatchID).First(&entry).Error; err != nil {
		t.Fatalf("load movement entry: %v", err)
	}
	if entry.Action != enums.MovementActionCycleAdjust {
		t.Fatalf("expected CYCLE_ADJUST got %s", entry.Action)
	}
	if entry.QtyChanged != -3 || entry.ResultingQuantity != 47 {
		t.Fatalf("expected change -3 resulting 47, got %d and %d", entry.QtyChanged, entry.ResultingQuantity)
	}
}

func TestSubmitCountRejectsCompletedLine(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	seedStock(t, conn, "A1.2", "FB-100", 20)

	created, err := svc.CreateBatch(context.Background(), "auditor@warelogic.io", CreateBatchInput{
		Lines: []BatchLineInput{batchLine("A1.2", "FB-100")},
	})
	if err != nil {
		t.Fatalf("create batch: %v", err)
	}
	if _, err := svc.SubmitCount(context.Background(), "auditor@warelogic.io",
		submitInput(created.BatchID, "A1.2", "FB-100", 20)); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	_, err = svc.SubmitCount(context.Background(), "auditor@warelogic.io",
		submitInput(created.BatchID, "A1.2", "FB-100", 19))
	if err == nil {
		t.Fatal("expected error on second submit")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestSubmitCountUnknownLine(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	seedStock(t, conn, "A1.2", "FB-100", 20)

	created, err := svc.CreateBatch(context.Background(), "auditor@warelogic.io", CreateBatchInput{
		Lines: []BatchLineInput{batchLine("A1.2", "FB-100")},
	})
	if err != nil {
		t.Fatalf("create batch: %v", err)
	}

	_, err = svc.SubmitCount(context.Background(), "auditor@warelogic.io",
		submitInput(created.BatchID, "B2.1", "FB-100", 5))
	if err == nil {
		t.Fatal("expected error for key outside the batch")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestBatchStatusProgression(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	seedStock(t, conn, "A1.2", "FB-100", 10)
	seedStock(t, conn, "B2.1", "FB-200", 5)

	created, err := svc.CreateBatch(context.Background(), "auditor@warelogic.io", CreateBatchInput{
		Lines: []BatchLineInput{
			batchLine("A1.2", "FB-100"),
			batchLine("B2.1", "FB-200"),
		},
	})
	if err != nil {
		t.Fatalf("create batch: %v", err)
	}

	first, err := svc.SubmitCount(context.Background(), "auditor@warelogic.io",
		submitInput(created.BatchID, "A1.2", "FB-100", 10))
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if first.BatchStatus != enums.CycleCountBatchInProgress {
		t.Fatalf("expected in progress got %s", first.BatchStatus)
	}

	second, err := svc.SubmitCount(context.Background(), "auditor@warelogic.io",
		submitInput(created.BatchID, "B2.1", "FB-200", 5))
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if second.BatchStatus != enums.CycleCountBatchCompleted {
		t.Fatalf("expected completed got %s", second.BatchStatus)
	}
}

func TestCancelLineSettlesBatch(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	seedStock(t, conn, "A1.2", "FB-100", 10)
	seedStock(t, conn, "B2.1", "FB-200", 5)

	created, err := svc.CreateBatch(context.Background(), "auditor@warelogic.io", CreateBatchInput{
		Lines: []BatchLineInput{
			batchLine("A1.2", "FB-100"),
			batchLine("B2.1", "FB-200"),
		},
	})
	if err != nil {
		t.Fatalf("create batch: %v", err)
	}
	if _, err := svc.SubmitCount(context.Background(), "auditor@warelogic.io",
		submitInput(created.BatchID, "A1.2", "FB-100", 10)); err != nil {
		t.Fatalf("submit: %v", err)
	}

	status, err := svc.CancelLine(context.Background(), "auditor@warelogic.io", CancelLineInput{
		BatchID:      created.BatchID,
		BinCode:      "B2.1",
		ItemCode:     "FB-200",
		Manufacturer: "acme",
		Project:      "p1",
	})
	if err != nil {
		t.Fatalf("cancel line: %v", err)
	}
	if status != enums.CycleCountBatchCompleted {
		t.Fatalf("expected completed got %s", status)
	}

	var stock models.StockRecord
	if err := conn.Where("bin_code = ?", "B2.1").First(&stock).Error; err != nil {
		t.Fatalf("reload stock: %v", err)
	}
	if stock.CurrentQuantity != 5 {
		t.Fatalf("canceled line must not touch stock, got %d", stock.CurrentQuantity)
	}
}

func TestReportSummary(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	seedStock(t, conn, "A1.2", "FB-100", 50)
	seedStock(t, conn, "B2.1", "FB-200", 30)

	created, err := svc.CreateBatch(context.Background(), "auditor@warelogic.io", CreateBatchInput{
		Lines: []BatchLineInput{
			batchLine("A1.2", "FB-100"),
			batchLine("B2.1", "FB-200"),
		},
	})
	if err != nil {
		t.Fatalf("create batch: %v", err)
	}
	if _, err := svc.SubmitCount(context.Background(), "auditor@warelogic.io",
		submitInput(created.BatchID, "A1.2", "FB-100", 47)); err != nil {
		t.Fatalf("submit discrepancy: %v", err)
	}
	if _, err := svc.SubmitCount(context.Background(), "auditor@warelogic.io",
		submitInput(created.BatchID, "B2.1", "FB-200", 30)); err != nil {
		t.Fatalf("submit accurate: %v", err)
	}

	report, err := svc.Report(context.Background(), ReportInput{})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	summary := report.Summary
	if summary.TotalLinesCompleted != 2 {
		t.Fatalf("expected 2 completed lines got %d", summary.TotalLinesCompleted)
	}
	if summary.TotalBinsAudited != 2 {
		t.Fatalf("expected 2 bins audited got %d", summary.TotalBinsAudited)
	}
	if summary.TotalDiscrepancies != 1 || summary.AccurateCount != 1 {
		t.Fatalf("expected 1 discrepancy and 1 accurate, got %d and %d",
			summary.TotalDiscrepancies, summary.AccurateCount)
	}
	if summary.DiscrepancyRate != 50.0 {
		t.Fatalf("expected discrepancy rate 50.0 got %v", summary.DiscrepancyRate)
	}
	if summary.TotalVariance != -3 || summary.NegativeVariance != 3 || summary.PositiveVariance != 0 {
		t.Fatalf("unexpected variance rollup: total %d neg %d pos %d",
			summary.TotalVariance, summary.NegativeVariance, summary.PositiveVariance)
	}
	if len(report.Batches) != 1 || report.Batches[0].BatchID != created.BatchID {
		t.Fatalf("expected one batch rollup for %s", created.BatchID)
	}
}

func TestReportWindowExcludesOldCounts(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)

	old := time.Now().AddDate(0, 0, -30)
	counted := 10
	variance := 0
	if err := conn.Create(&models.CycleCountLine{
		ID:                 uuid.New(),
		BatchID:            "CC-0001",
		Status:             enums.CycleCountLineCompleted,
		BinCode:            "A1.2",
		ItemCode:           "FB-100",
		Manufacturer:       "ACME",
		Project:            "P1",
		CurrentQtySnapshot: 10,
		CountedQty:         &counted,
		Variance:           &variance,
		CountedAt:          &old,
	}).Error; err != nil {
		t.Fatalf("seed old line: %v", err)
	}

	report, err := svc.Report(context.Background(), ReportInput{})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.Summary.TotalLinesCompleted != 0 {
		t.Fatalf("expected old count excluded, got %d lines", report.Summary.TotalLinesCompleted)
	}
}
