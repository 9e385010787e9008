package movement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/warelogic/ims-backend/pkg/db/models"
	"github.com/warelogic/ims-backend/pkg/enums"
)

// Service records and reads movement log entries. Appends never validate
// against live stock state; the log is a write-behind audit trail.
type Service interface {
	Record(ctx context.Context, input RecordMovementInput) (*models.MovementLogEntry, error)
	HistoryForBin(ctx context.Context, binCode string) ([]models.MovementLogEntry, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// RecordMovementInput captures the immutable data a movement entry requires.
type RecordMovementInput struct {
	Action            enums.MovementAction
	ItemCode          string
	Manufacturer      string
	BinCode           string
	Project           string
	QtyChanged        int
	ResultingQuantity int
	Description       string
	UserEmail         string
	ReferenceID       string
}

// NewService wires a movement log service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("movement repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Record(ctx context.Context, input RecordMovementInput) (*models.MovementLogEntry, error) {
	if !input.Action.IsValid() {
		return nil, fmt.Errorf("invalid movement action %q", input.Action)
	}
	if input.BinCode == "" {
		return nil, fmt.Errorf("bin code is required")
	}
	if input.ItemCode == "" {
		return nil, fmt.Errorf("item code is required")
	}

	entry := &models.MovementLogEntry{
		ID:                uuid.New(),
		Timestamp:         s.now().UTC(),
		Action:            input.Action,
		ItemCode:          input.ItemCode,
		Manufacturer:      input.Manufacturer,
		BinCode:           input.BinCode,
		Project:           input.Project,
		QtyChanged:        input.QtyChanged,
		ResultingQuantity: input.ResultingQuantity,
		Description:       input.Description,
		UserEmail:         input.UserEmail,
		ReferenceID:       input.ReferenceID,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *service) HistoryForBin(ctx context.Context, binCode string) ([]models.MovementLogEntry, error) {
	if binCode == "" {
		return nil, fmt.Errorf("bin code is required")
	}
	return s.repo.ListByBin(ctx, binCode)
}
