package movement

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/warelogic/ims-backend/pkg/db/models"
	"github.com/warelogic/ims-backend/pkg/enums"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:movement_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.MovementLogEntry{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func TestRecordValidatesInput(t *testing.T) {
	conn := newTestDB(t)
	svc, err := NewService(NewRepository(conn))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if _, err := svc.Record(context.Background(), RecordMovementInput{
		Action: "TELEPORT", BinCode: "A1.2", ItemCode: "FB-100",
	}); err == nil {
		t.Fatal("expected error for unknown action")
	}
	if _, err := svc.Record(context.Background(), RecordMovementInput{
		Action: enums.MovementActionAdd, ItemCode: "FB-100",
	}); err == nil {
		t.Fatal("expected error for missing bin code")
	}
}

func TestRecordAndHistoryNewestFirst(t *testing.T) {
	conn := newTestDB(t)
	svc, err := NewService(NewRepository(conn))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	inner := svc.(*service)
	for i, action := range []enums.MovementAction{
		enums.MovementActionAdd,
		enums.MovementActionRemove,
		enums.MovementActionMoveOut,
	} {
		tick := base.Add(time.Duration(i) * time.Minute)
		inner.now = func() time.Time { return tick }
		if _, err := svc.Record(context.Background(), RecordMovementInput{
			Action:   action,
			BinCode:  "A1.2",
			ItemCode: "FB-100",
		}); err != nil {
			t.Fatalf("record %s: %v", action, err)
		}
	}

	entries, err := svc.HistoryForBin(context.Background(), "A1.2")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries got %d", len(entries))
	}
	if entries[0].Action != enums.MovementActionMoveOut {
		t.Fatalf("expected newest first, got %s", entries[0].Action)
	}
	if entries[2].Action != enums.MovementActionAdd {
		t.Fatalf("expected oldest last, got %s", entries[2].Action)
	}
}
