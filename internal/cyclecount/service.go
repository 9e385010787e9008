package cyclecount

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/warelogic/ims-backend/internal/movement"
	"github.com/warelogic/ims-backend/internal/stockops"
	"github.com/warelogic/ims-backend/pkg/db"
	"github.com/warelogic/ims-backend/pkg/db/models"
	"github.com/warelogic/ims-backend/pkg/enums"
	pkgerrors "github.com/warelogic/ims-backend/pkg/errors"
	"github.com/warelogic/ims-backend/pkg/logger"
)

// Service runs the cycle count workflow: open a batch of audit lines with
// frozen quantity snapshots, record physical counts against them, and report
// on completed counts over a date window.
type Service interface {
	CreateBatch(ctx context.Context, actor string, input CreateBatchInput) (*CreateBatchResult, error)
	SubmitCount(ctx context.Context, actor string, input SubmitCountInput) (*SubmitCountResult, error)
	CancelLine(ctx context.Context, actor string, input CancelLineInput) (enums.CycleCountBatchStatus, error)
	GetBatch(ctx context.Context, batchID string) (*BatchDetail, error)
	Report(ctx context.Context, input ReportInput) (*Report, error)
}

// BatchLineInput names one stock record key to audit.
type BatchLineInput struct {
	BinCode      string `json:"bin_code" validate:"required"`
	ItemCode     string `json:"fbpn" validate:"required"`
	Manufacturer string `json:"manufacturer" validate:"required"`
	Project      string `json:"project" validate:"required"`
	Notes        string `json:"notes"`
}

type CreateBatchInput struct {
	Lines []BatchLineInput `json:"lines" validate:"required,min=1,dive"`
	// BatchID lets the caller name the batch. Empty means allocate the next
	// sequential CC-NNNN id.
	BatchID string `json:"batch_id"`
}

// CreateBatchResult reports the new batch and which requested keys had no
// live stock record and were skipped.
type CreateBatchResult struct {
	BatchID      string                  `json:"batch_id"`
	Lines        []models.CycleCountLine `json:"lines"`
	SkippedKeys  []string                `json:"skipped_keys,omitempty"`
	LinesCreated int                     `json:"lines_created"`
}

type SubmitCountInput struct {
	BatchID      string `json:"batch_id" validate:"required"`
	BinCode      string `json:"bin_code" validate:"required"`
	ItemCode     string `json:"fbpn" validate:"required"`
	Manufacturer string `json:"manufacturer" validate:"required"`
	Project      string `json:"project" validate:"required"`
	CountedQty   int    `json:"counted_qty" validate:"gte=0"`
	Notes        string `json:"notes"`
}

// SubmitCountResult reports the variance against the frozen snapshot and the
// batch status after this line completed.
type SubmitCountResult struct {
	BatchID     string                      `json:"batch_id"`
	Variance    int                         `json:"variance"`
	SnapshotQty int                         `json:"snapshot_qty"`
	CountedQty  int                         `json:"counted_qty"`
	BatchStatus enums.CycleCountBatchStatus `json:"batch_status"`
}

type CancelLineInput struct {
	BatchID      string `json:"batch_id" validate:"required"`
	BinCode      string `json:"bin_code" validate:"required"`
	ItemCode     string `json:"fbpn" validate:"required"`
	Manufacturer string `json:"manufacturer" validate:"required"`
	Project      string `json:"project" validate:"required"`
}

// BatchDetail is a batch header with its lines in creation order.
type BatchDetail struct {
	Batch models.CycleCountBatch  `json:"batch"`
	Lines []models.CycleCountLine `json:"lines"`
}

// ReportInput bounds the report window. Zero values fall back to the
// configured trailing window ending today.
type ReportInput struct {
	Start time.Time
	End   time.Time
}

// BatchRollup summarizes completed lines of one batch inside the window.
type BatchRollup struct {
	BatchID        string `json:"batch_id"`
	LinesCompleted int    `json:"lines_completed"`
	Discrepancies  int    `json:"discrepancies"`
	TotalVariance  int    `json:"total_variance"`
}

// ReportSummary aggregates completed count lines inside the window.
type ReportSummary struct {
	TotalBinsAudited    int     `json:"total_bins_audited"`
	TotalLinesCompleted int     `json:"total_lines_completed"`
	TotalDiscrepancies  int     `json:"total_discrepancies"`
	DiscrepancyRate     float64 `json:"discrepancy_rate"`
	AccurateCount       int     `json:"accurate_count"`
	TotalVariance       int     `json:"total_variance"`
	PositiveVariance    int     `json:"positive_variance"`
	NegativeVariance    int     `json:"negative_variance"`
	BatchCount          int     `json:"batch_count"`
}

// Report is the cycle count accuracy report for a date window. Details are
// newest first.
type Report struct {
	Start   time.Time               `json:"start"`
	End     time.Time               `json:"end"`
	Summary ReportSummary           `json:"summary"`
	Batches []BatchRollup           `json:"batches"`
	Details []models.CycleCountLine `json:"details"`
}

type ServiceParams struct {
	Client    *db.Client
	Repo      Repository
	Movements movement.Repository
	Locks     *stockops.KeyLock
	Logger    *logger.Logger
	// WindowDays is the default report window length. Zero means 7.
	WindowDays int
}

type service struct {
	client     *db.Client
	repo       Repository
	movements  movement.Repository
	locks      *stockops.KeyLock
	logg       *logger.Logger
	windowDays int
	now        func() time.Time
}

// NewService wires the cycle count engine.
func NewService(params ServiceParams) (Service, error) {
	if params.Client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("cycle count repository required")
	}
	if params.Movements == nil {
		return nil, fmt.Errorf("movement repository required")
	}
	locks := params.Locks
	if locks == nil {
		locks = stockops.NewKeyLock()
	}
	windowDays := params.WindowDays
	if windowDays <= 0 {
		windowDays = 7
	}
	return &service{
		client:     params.Client,
		repo:       params.Repo,
		movements:  params.Movements,
		locks:      locks,
		logg:       params.Logger,
		windowDays: windowDays,
		now:        time.Now,
	}, nil
}

// CreateBatch opens a batch under the caller-supplied id, or the next
// sequential CC-NNNN id when none is given, snapshotting the live quantity of
// each requested key. Keys are folded to uppercase before matching; keys with
// no stock record are skipped rather than failing the batch.
func (s *service) CreateBatch(ctx context.Context, actor string, input CreateBatchInput) (*CreateBatchResult, error) {
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one line is required")
	}

	result := &CreateBatchResult{}
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		batchID := strings.ToUpper(strings.TrimSpace(input.BatchID))
		if batchID == "" {
			allocated, err := s.nextBatchID(ctx, repo)
			if err != nil {
				return err
			}
			batchID = allocated
		} else {
			existing, err := repo.GetBatch(ctx, batchID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking batch id")
			}
			if existing != nil {
				return pkgerrors.New(pkgerrors.CodeStateConflict,
					fmt.Sprintf("cycle count batch %s already exists", batchID))
			}
		}
		result.BatchID = batchID

		if err := repo.CreateBatch(ctx, &models.CycleCountBatch{
			ID:        uuid.New(),
			BatchID:   batchID,
			Status:    enums.CycleCountBatchOpen,
			CreatedBy: actor,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating cycle count batch")
		}

		for _, line := range input.Lines {
			binCode := strings.ToUpper(strings.TrimSpace(line.BinCode))
			itemCode := strings.ToUpper(strings.TrimSpace(line.ItemCode))
			manufacturer := strings.ToUpper(strings.TrimSpace(line.Manufacturer))
			project := strings.ToUpper(strings.TrimSpace(line.Project))
			if binCode == "" || itemCode == "" || manufacturer == "" || project == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "binCode, fbpn, manufacturer and project are required on every line")
			}

			stock, err := repo.FindStockFold(ctx, binCode, itemCode, manufacturer, project)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading stock record")
			}
			if stock == nil {
				result.SkippedKeys = append(result.SkippedKeys,
					strings.Join([]string{binCode, itemCode, manufacturer, project}, "|"))
				continue
			}

			created := models.CycleCountLine{
				ID:                 uuid.New(),
				BatchID:            batchID,
				Status:             enums.CycleCountLineOpen,
				BinCode:            binCode,
				ItemCode:           itemCode,
				Manufacturer:       manufacturer,
				Project:            project,
				CurrentQtySnapshot: stock.CurrentQuantity,
				Notes:              line.Notes,
				CreatedBy:          actor,
			}
			if err := repo.CreateLine(ctx, &created); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating cycle count line")
			}
			result.Lines = append(result.Lines, created)
		}

		if len(result.Lines) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "no matching stock records found for any requested line")
		}
		result.LinesCreated = len(result.Lines)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		ctx = s.logg.WithField(ctx, "batch_id", result.BatchID)
		s.logg.Info(ctx, fmt.Sprintf("cycle count batch opened with %d lines", result.LinesCreated))
	}
	return result, nil
}

// SubmitCount records a physical count for one line. Variance is measured
// against the snapshot taken at batch creation, and the counted quantity
// becomes the live quantity for the stock record. The adjustment serializes
// with stock batches touching the same key.
func (s *service) SubmitCount(ctx context.Context, actor string, input SubmitCountInput) (*SubmitCountResult, error) {
	if input.CountedQty < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "counted quantity cannot be negative")
	}

	stock, err := s.repo.FindStockFold(ctx, input.BinCode, input.ItemCode, input.Manufacturer, input.Project)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading stock record")
	}
	lockKey := strings.Join([]string{
		strings.ToUpper(input.BinCode),
		strings.ToUpper(input.ItemCode),
		strings.ToUpper(input.Manufacturer),
		strings.ToUpper(input.Project),
	}, "|")
	if stock != nil {
		lockKey = stockops.StockKey{
			BinCode:      stock.BinCode,
			ItemCode:     stock.ItemCode,
			Manufacturer: stock.Manufacturer,
			Project:      stock.Project,
		}.String()
	}
	unlock := s.locks.LockAll([]string{lockKey})
	defer unlock()

	result := &SubmitCountResult{BatchID: input.BatchID, CountedQty: input.CountedQty}
	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		line, err := repo.FindLineFold(ctx, input.BatchID, input.BinCode, input.ItemCode, input.Manufacturer, input.Project)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cycle count line")
		}
		if line == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound,
				fmt.Sprintf("no cycle count line in batch %s for the given key", input.BatchID))
		}
		if line.Status.Terminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cycle count line already %s", strings.ToLower(string(line.Status))))
		}

		variance := input.CountedQty - line.CurrentQtySnapshot
		countedAt := s.now().UTC()
		counted := input.CountedQty
		line.Status = enums.CycleCountLineCompleted
		line.CountedQty = &counted
		line.Variance = &variance
		line.CountedAt = &countedAt
		line.CountedBy = actor
		if strings.TrimSpace(input.Notes) != "" {
			line.Notes = input.Notes
		}
		if err := repo.SaveLine(ctx, line); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving cycle count line")
		}
		result.Variance = variance
		result.SnapshotQty = line.CurrentQtySnapshot

		// Re-read inside the transaction; the pre-lock read was only for
		// lock key construction.
		stock, err := repo.FindStockFold(ctx, input.BinCode, input.ItemCode, input.Manufacturer, input.Project)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading stock record")
		}
		if stock != nil {
			stock.CurrentQuantity = input.CountedQty
			if stock.InitialQuantity <= 0 {
				stock.InitialQuantity = input.CountedQty
			}
			stock.StockPercentage = stockops.StockPercentage(stock.CurrentQuantity, stock.InitialQuantity)
			if err := repo.SaveStock(ctx, stock); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving stock record")
			}

			base := strings.TrimSpace(input.Notes)
			if base == "" {
				base = "Cycle count adjustment"
			}
			entry := &models.MovementLogEntry{
				ID:                uuid.New(),
				Timestamp:         countedAt,
				Action:            enums.MovementActionCycleAdjust,
				ItemCode:          stock.ItemCode,
				Manufacturer:      stock.Manufacturer,
				BinCode:           stock.BinCode,
				Project:           stock.Project,
				QtyChanged:        variance,
				ResultingQuantity: input.CountedQty,
				Description: fmt.Sprintf("%s [Cycle Count %s, from %d to %d]",
					base, input.BatchID, line.CurrentQtySnapshot, input.CountedQty),
				UserEmail:   actor,
				ReferenceID: input.BatchID,
			}
			if err := s.movements.WithTx(tx).Create(ctx, entry); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "appending movement log")
			}
		}

		status, err := s.refreshBatchStatus(ctx, repo, input.BatchID)
		if err != nil {
			return err
		}
		result.BatchStatus = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CancelLine marks an open line canceled without touching stock, then
// refreshes the batch status.
func (s *service) CancelLine(ctx context.Context, actor string, input CancelLineInput) (enums.CycleCountBatchStatus, error) {
	var status enums.CycleCountBatchStatus
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		line, err := repo.FindLineFold(ctx, input.BatchID, input.BinCode, input.ItemCode, input.Manufacturer, input.Project)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cycle count line")
		}
		if line == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound,
				fmt.Sprintf("no cycle count line in batch %s for the given key", input.BatchID))
		}
		if line.Status.Terminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cycle count line already %s", strings.ToLower(string(line.Status))))
		}

		line.Status = enums.CycleCountLineCanceled
		line.CountedBy = actor
		if err := repo.SaveLine(ctx, line); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving cycle count line")
		}

		status, err = s.refreshBatchStatus(ctx, repo, input.BatchID)
		return err
	})
	if err != nil {
		return "", err
	}
	return status, nil
}

func (s *service) GetBatch(ctx context.Context, batchID string) (*BatchDetail, error) {
	batch, err := s.repo.GetBatch(ctx, batchID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cycle count batch")
	}
	if batch == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("cycle count batch %s not found", batchID))
	}
	lines, err := s.repo.ListLinesByBatch(ctx, batchID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cycle count lines")
	}
	return &BatchDetail{Batch: *batch, Lines: lines}, nil
}

// Report aggregates completed count lines inside the window. The default
// window is the configured number of trailing days ending today; bounds are
// widened to whole days.
func (s *service) Report(ctx context.Context, input ReportInput) (*Report, error) {
	start, end := input.Start, input.End
	if end.IsZero() {
		end = s.now()
	}
	if start.IsZero() {
		start = end.AddDate(0, 0, -(s.windowDays - 1))
	}
	if start.After(end) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "start date is after end date")
	}
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	end = time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 999_000_000, end.Location())

	lines, err := s.repo.ListCompletedBetween(ctx, start, end)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing completed count lines")
	}

	report := &Report{Start: start, End: end, Details: lines}
	keys := map[string]struct{}{}
	rollups := map[string]*BatchRollup{}
	var batchOrder []string

	for _, line := range lines {
		keys[strings.Join([]string{line.BinCode, line.ItemCode, line.Manufacturer, line.Project}, "|")] = struct{}{}

		roll, ok := rollups[line.BatchID]
		if !ok {
			roll = &BatchRollup{BatchID: line.BatchID}
			rollups[line.BatchID] = roll
			batchOrder = append(batchOrder, line.BatchID)
		}
		roll.LinesCompleted++
		report.Summary.TotalLinesCompleted++

		variance := 0
		if line.Variance != nil {
			variance = *line.Variance
		}
		roll.TotalVariance += variance
		report.Summary.TotalVariance += variance
		if variance != 0 {
			roll.Discrepancies++
			report.Summary.TotalDiscrepancies++
			if variance > 0 {
				report.Summary.PositiveVariance += variance
			} else {
				report.Summary.NegativeVariance += -variance
			}
		} else {
			report.Summary.AccurateCount++
		}
	}

	report.Summary.TotalBinsAudited = len(keys)
	report.Summary.BatchCount = len(rollups)
	if report.Summary.TotalLinesCompleted > 0 {
		rate := decimal.NewFromInt(int64(report.Summary.TotalDiscrepancies)).
			Div(decimal.NewFromInt(int64(report.Summary.TotalLinesCompleted))).
			Mul(decimal.NewFromInt(100)).
			Round(1)
		report.Summary.DiscrepancyRate, _ = rate.Float64()
	}
	for _, batchID := range batchOrder {
		report.Batches = append(report.Batches, *rollups[batchID])
	}
	return report, nil
}

// refreshBatchStatus derives the batch status from its line statuses and
// persists it. Canceled lines count as settled, not open.
func (s *service) refreshBatchStatus(ctx context.Context, repo Repository, batchID string) (enums.CycleCountBatchStatus, error) {
	lines, err := repo.ListLinesByBatch(ctx, batchID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing batch lines")
	}

	anyOpen := false
	anySettled := false
	for _, line := range lines {
		if line.Status.Terminal() {
			anySettled = true
		} else {
			anyOpen = true
		}
	}

	status := enums.CycleCountBatchCompleted
	switch {
	case anyOpen && anySettled:
		status = enums.CycleCountBatchInProgress
	case anyOpen:
		status = enums.CycleCountBatchOpen
	}

	batch, err := repo.GetBatch(ctx, batchID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading batch header")
	}
	if batch != nil && batch.Status != status {
		batch.Status = status
		if err := repo.SaveBatch(ctx, batch); err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving batch header")
		}
	}
	return status, nil
}

// nextBatchID allocates the next sequential CC-NNNN identifier.
func (s *service) nextBatchID(ctx context.Context, repo Repository) (string, error) {
	ids, err := repo.ListBatchIDs(ctx)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing batch ids")
	}
	max := 0
	for _, id := range ids {
		var n int
		if _, err := fmt.Sscanf(id, "CC-%d", &n); err == nil && n > max {
			max = n
		}
	}
	return fmt.Sprintf("CC-%04d", max+1), nil
}
