package stockops

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/warelogic/ims-backend/internal/movement"
	"github.com/warelogic/ims-backend/pkg/db"
	"github.com/warelogic/ims-backend/pkg/db/models"
	"github.com/warelogic/ims-backend/pkg/enums"
	pkgerrors "github.com/warelogic/ims-backend/pkg/errors"
	"github.com/warelogic/ims-backend/pkg/logger"
	"github.com/warelogic/ims-backend/pkg/metrics"
)

// Service implements the primitive ledger mutations. Every batch processes
// its lines independently: a failing line lands in the result's error list
// and never aborts the rest.
type Service interface {
	Add(ctx context.Context, actor string, lines []AddLine) (BatchResult, error)
	Remove(ctx context.Context, actor string, lines []RemoveLine) (BatchResult, error)
	Move(ctx context.Context, actor string, lines []MoveLine) (BatchResult, error)
	Transfer(ctx context.Context, actor string, lines []MoveLine) (BatchResult, error)
	StagingPutaway(ctx context.Context, actor string, lines []StagingLine) (BatchResult, error)
	RemoveForShipment(ctx context.Context, actor string, lines []ShipmentLine) (BatchResult, error)
}

type ServiceParams struct {
	Client    *db.Client
	Stock     StockRepository
	Floor     FloorStockRepository
	Staging   StagingRepository
	Movements movement.Repository
	Logger    *logger.Logger
	Metrics   *metrics.StockOpsMetrics
	Timeout   time.Duration
	// Locks may be shared with other engines (cycle count) so every
	// read-modify-write over the same stock keys serializes.
	Locks *KeyLock
}

type service struct {
	client    *db.Client
	stock     StockRepository
	floor     FloorStockRepository
	staging   StagingRepository
	movements movement.Repository
	logg      *logger.Logger
	metrics   *metrics.StockOpsMetrics
	locks     *KeyLock
	timeout   time.Duration
	now       func() time.Time
}

const defaultBatchTimeout = 30 * time.Second

// NewService wires the stock operations engine.
func NewService(params ServiceParams) (Service, error) {
	if params.Client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Stock == nil {
		return nil, fmt.Errorf("stock repository required")
	}
	if params.Floor == nil {
		return nil, fmt.Errorf("floor stock repository required")
	}
	if params.Staging == nil {
		return nil, fmt.Errorf("staging repository required")
	}
	if params.Movements == nil {
		return nil, fmt.Errorf("movement repository required")
	}
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = defaultBatchTimeout
	}
	locks := params.Locks
	if locks == nil {
		locks = NewKeyLock()
	}
	return &service{
		client:    params.Client,
		stock:     params.Stock,
		floor:     params.Floor,
		staging:   params.Staging,
		movements: params.Movements,
		logg:      params.Logger,
		metrics:   params.Metrics,
		locks:     locks,
		timeout:   timeout,
		now:       time.Now,
	}, nil
}

// StockPercentage computes current/initial as a percentage rounded to two
// decimals, matching the legacy toFixed(2) formatting.
func StockPercentage(current, initial int) float64 {
	if initial <= 0 {
		return 0
	}
	pct := decimal.NewFromInt(int64(current)).
		Div(decimal.NewFromInt(int64(initial))).
		Mul(decimal.NewFromInt(100))
	value, _ := pct.Round(2).Float64()
	return value
}

func (s *service) Add(ctx context.Context, actor string, lines []AddLine) (BatchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	started := s.now()

	keys := make([]string, 0, len(lines))
	for _, line := range lines {
		keys = append(keys, StockKey{line.BinCode, line.ItemCode, line.Manufacturer, line.Project}.String())
	}
	unlock := s.locks.LockAll(keys)
	defer unlock()

	var errs []string
	succeeded := 0
	for i, line := range lines {
		if err := ctx.Err(); err != nil {
			return BatchResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add batch timed out")
		}
		if err := s.addLine(ctx, actor, line); err != nil {
			if fatal := pkgerrors.As(err); fatal != nil && fatal.Code() == pkgerrors.CodeDependency {
				return BatchResult{}, err
			}
			errs = append(errs, lineError(i, err))
			s.metrics.IncLine("add", "error")
			continue
		}
		succeeded++
		s.metrics.IncLine("add", "success")
	}

	s.metrics.ObserveBatch("add", s.now().Sub(started))
	return batchResult(len(lines), succeeded, errs), nil
}

func (s *service) addLine(ctx context.Context, actor string, line AddLine) error {
	if err := validateKeyFields(line.BinCode, line.ItemCode, line.Manufacturer, line.Project); err != nil {
		return err
	}
	if line.Qty <= 0 {
		return errInvalidQuantity(line.Qty)
	}

	key := StockKey{line.BinCode, line.ItemCode, line.Manufacturer, line.Project}
	return s.client.WithTx(ctx, func(tx *gorm.DB) error {
		stock := s.stock.WithTx(tx)
		record, err := stock.Get(ctx, key)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading stock record")
		}

		var newQty int
		if record == nil {
			newQty = line.Qty
			record = &models.StockRecord{
				ID:              uuid.New(),
				BinCode:         line.BinCode,
				ItemCode:        line.ItemCode,
				Manufacturer:    line.Manufacturer,
				Project:         line.Project,
				BinName:         line.BinName,
				PushNumber:      line.PushNumber,
				SkidID:          line.SkidID,
				InitialQuantity: line.Qty,
				CurrentQuantity: line.Qty,
				StockPercentage: 100,
			}
		} else {
			newQty = record.CurrentQuantity + line.Qty
			record.CurrentQuantity = newQty
			// First-fill baseline is preserved across additions; it only
			// resets when the record never had one.
			if record.InitialQuantity <= 0 {
				record.InitialQuantity = newQty
			}
			record.StockPercentage = StockPercentage(newQty, record.InitialQuantity)
			if line.PushNumber != "" {
				record.PushNumber = line.PushNumber
			}
			if line.SkidID != "" {
				record.SkidID = line.SkidID
			}
			if line.BinName != "" {
				record.BinName = line.BinName
			}
		}

		if err := stock.Upsert(ctx, record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving stock record")
		}

		if err := s.adjustFloorStock(ctx, tx, line.ItemCode, line.Project, line.Qty); err != nil {
			return err
		}

		return s.appendMovement(ctx, tx, movement.RecordMovementInput{
			Action:            enums.MovementActionAdd,
			ItemCode:          line.ItemCode,
			Manufacturer:      line.Manufacturer,
			BinCode:           line.BinCode,
			Project:           line.Project,
			QtyChanged:        line.Qty,
			ResultingQuantity: newQty,
			Description:       line.Notes,
			UserEmail:         actor,
		})
	})
}

func (s *service) Remove(ctx context.Context, actor string, lines []RemoveLine) (BatchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	started := s.now()

	keys := make([]string, 0, len(lines))
	for _, line := range lines {
		keys = append(keys, StockKey{line.BinCode, line.ItemCode, line.Manufacturer, line.Project}.String())
	}
	unlock := s.locks.LockAll(keys)
	defer unlock()

	var errs []string
	succeeded := 0
	for i, line := range lines {
		if err := ctx.Err(); err != nil {
			return BatchResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove batch timed out")
		}
		if err := s.removeLine(ctx, actor, line); err != nil {
			if fatal := pkgerrors.As(err); fatal != nil && fatal.Code() == pkgerrors.CodeDependency {
				return BatchResult{}, err
			}
			errs = append(errs, lineError(i, err))
			s.metrics.IncLine("remove", "error")
			continue
		}
		succeeded++
		s.metrics.IncLine("remove", "success")
	}

	s.metrics.ObserveBatch("remove", s.now().Sub(started))
	return batchResult(len(lines), succeeded, errs), nil
}

func (s *service) removeLine(ctx context.Context, actor string, line RemoveLine) error {
	if err := validateKeyFields(line.BinCode, line.ItemCode, line.Manufacturer, line.Project); err != nil {
		return err
	}
	if line.Qty <= 0 {
		return errInvalidQuantity(line.Qty)
	}

	key := StockKey{line.BinCode, line.ItemCode, line.Manufacturer, line.Project}
	return s.client.WithTx(ctx, func(tx *gorm.DB) error {
		stock := s.stock.WithTx(tx)
		record, err := stock.Get(ctx, key)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading stock record")
		}
		if record == nil {
			return errRecordNotFound(line.BinCode, line.ItemCode)
		}
		if line.Qty > record.CurrentQuantity {
			return errInsufficientQuantity(line.BinCode, line.ItemCode, record.CurrentQuantity, line.Qty, "remove")
		}

		newQty := record.CurrentQuantity - line.Qty
		record.CurrentQuantity = newQty
		record.StockPercentage = StockPercentage(newQty, record.InitialQuantity)
		if err := stock.Upsert(ctx, record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving stock record")
		}

		if err := s.adjustFloorStock(ctx, tx, line.ItemCode, line.Project, -line.Qty); err != nil {
			return err
		}

		return s.appendMovement(ctx, tx, movement.RecordMovementInput{
			Action:            enums.MovementActionRemove,
			ItemCode:          line.ItemCode,
			Manufacturer:      line.Manufacturer,
			BinCode:           line.BinCode,
			Project:           line.Project,
			QtyChanged:        -line.Qty,
			ResultingQuantity: newQty,
			Description:       line.Notes,
			UserEmail:         actor,
		})
	})
}

func (s *service) Move(ctx context.Context, actor string, lines []MoveLine) (BatchResult, error) {
	return s.moveBatch(ctx, actor, lines, "move")
}

// Transfer is ledger-identical to Move; only the movement descriptions and
// the calling context differ.
func (s *service) Transfer(ctx context.Context, actor string, lines []MoveLine) (BatchResult, error) {
	return s.moveBatch(ctx, actor, lines, "transfer")
}

func (s *service) moveBatch(ctx context.Context, actor string, lines []MoveLine, operation string) (BatchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	started := s.now()

	keys := make([]string, 0, 2*len(lines))
	for _, line := range lines {
		keys = append(keys,
			StockKey{line.SourceBin, line.ItemCode, line.Manufacturer, line.Project}.String(),
			StockKey{line.TargetBin, line.ItemCode, line.Manufacturer, line.Project}.String(),
		)
	}
	unlock := s.locks.LockAll(keys)
	defer unlock()

	var errs []string
	succeeded := 0
	for i, line := range lines {
		if err := ctx.Err(); err != nil {
			return BatchResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, operation+" batch timed out")
		}
		if err := s.moveLine(ctx, actor, line, operation); err != nil {
			if fatal := pkgerrors.As(err); fatal != nil && fatal.Code() == pkgerrors.CodeDependency {
				return BatchResult{}, err
			}
			errs = append(errs, lineError(i, err))
			s.metrics.IncLine(operation, "error")
			continue
		}
		succeeded++
		s.metrics.IncLine(operation, "success")
	}

	s.metrics.ObserveBatch(operation, s.now().Sub(started))
	return batchResult(len(lines), succeeded, errs), nil
}

func (s *service) moveLine(ctx context.Context, actor string, line MoveLine, operation string) error {
	if line.SourceBin == "" {
		return errMissingField("sourceBin")
	}
	if line.TargetBin == "" {
		return errMissingField("targetBin")
	}
	if err := validateKeyFields(line.SourceBin, line.ItemCode, line.Manufacturer, line.Project); err != nil {
		return err
	}
	if line.Qty <= 0 {
		return errInvalidQuantity(line.Qty)
	}
	if line.SourceBin == line.TargetBin {
		return fmt.Errorf("source and target bins are the same: %s", line.SourceBin)
	}

	sourceKey := StockKey{line.SourceBin, line.ItemCode, line.Manufacturer, line.Project}
	targetKey := StockKey{line.TargetBin, line.ItemCode, line.Manufacturer, line.Project}

	description := line.Notes
	if operation == "transfer" && description == "" {
		description = fmt.Sprintf("Transfer from %s to %s", line.SourceBin, line.TargetBin)
	}

	return s.client.WithTx(ctx, func(tx *gorm.DB) error {
		stock := s.stock.WithTx(tx)

		source, err := stock.Get(ctx, sourceKey)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading source record")
		}
		if source == nil {
			return errRecordNotFound(line.SourceBin, line.ItemCode)
		}
		if line.Qty > source.CurrentQuantity {
			return errInsufficientQuantity(line.SourceBin, line.ItemCode, source.CurrentQuantity, line.Qty, "move")
		}

		newSourceQty := source.CurrentQuantity - line.Qty
		source.CurrentQuantity = newSourceQty
		source.StockPercentage = StockPercentage(newSourceQty, source.InitialQuantity)
		if err := stock.Upsert(ctx, source); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving source record")
		}

		target, err := stock.Get(ctx, targetKey)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading target record")
		}
		var newTargetQty int
		if target == nil {
			newTargetQty = line.Qty
			target = &models.StockRecord{
				ID:              uuid.New(),
				BinCode:         line.TargetBin,
				ItemCode:        line.ItemCode,
				Manufacturer:    line.Manufacturer,
				Project:         line.Project,
				BinName:         line.TargetName,
				PushNumber:      source.PushNumber,
				SkidID:          source.SkidID,
				InitialQuantity: line.Qty,
				CurrentQuantity: line.Qty,
				StockPercentage: 100,
			}
		} else {
			newTargetQty = target.CurrentQuantity + line.Qty
			target.CurrentQuantity = newTargetQty
			if target.InitialQuantity <= 0 {
				target.InitialQuantity = newTargetQty
			}
			target.StockPercentage = StockPercentage(newTargetQty, target.InitialQuantity)
		}
		if err := stock.Upsert(ctx, target); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving target record")
		}

		if err := s.appendMovement(ctx, tx, movement.RecordMovementInput{
			Action:            enums.MovementActionMoveOut,
			ItemCode:          line.ItemCode,
			Manufacturer:      line.Manufacturer,
			BinCode:           line.SourceBin,
			Project:           line.Project,
			QtyChanged:        -line.Qty,
			ResultingQuantity: newSourceQty,
			Description:       description,
			UserEmail:         actor,
		}); err != nil {
			return err
		}

		return s.appendMovement(ctx, tx, movement.RecordMovementInput{
			Action:            enums.MovementActionMoveIn,
			ItemCode:          line.ItemCode,
			Manufacturer:      line.Manufacturer,
			BinCode:           line.TargetBin,
			Project:           line.Project,
			QtyChanged:        line.Qty,
			ResultingQuantity: newTargetQty,
			Description:       description,
			UserEmail:         actor,
		})
	})
}

func (s *service) StagingPutaway(ctx context.Context, actor string, lines []StagingLine) (BatchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	started := s.now()

	// The read-modify-write spans both the target record and the staging
	// pool row, so the lock set covers both keys.
	keys := make([]string, 0, 2*len(lines))
	for _, line := range lines {
		keys = append(keys,
			StockKey{line.TargetBin, line.ItemCode, line.Manufacturer, line.Project}.String(),
			StagingKey(line.SkidID, line.ItemCode, line.Manufacturer, line.Project),
		)
	}
	unlock := s.locks.LockAll(keys)
	defer unlock()

	var errs []string
	succeeded := 0
	for i, line := range lines {
		if err := ctx.Err(); err != nil {
			return BatchResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "staging putaway batch timed out")
		}
		if err := s.stagingLine(ctx, actor, line); err != nil {
			if fatal := pkgerrors.As(err); fatal != nil && fatal.Code() == pkgerrors.CodeDependency {
				return BatchResult{}, err
			}
			errs = append(errs, lineError(i, err))
			s.metrics.IncLine("staging_putaway", "error")
			continue
		}
		succeeded++
		s.metrics.IncLine("staging_putaway", "success")
	}

	s.metrics.ObserveBatch("staging_putaway", s.now().Sub(started))
	return batchResult(len(lines), succeeded, errs), nil
}

func (s *service) stagingLine(ctx context.Context, actor string, line StagingLine) error {
	if line.SkidID == "" {
		return errMissingField("skidId")
	}
	if err := validateKeyFields(line.TargetBin, line.ItemCode, line.Manufacturer, line.Project); err != nil {
		return err
	}
	if line.Qty <= 0 {
		return errInvalidQuantity(line.Qty)
	}

	targetKey := StockKey{line.TargetBin, line.ItemCode, line.Manufacturer, line.Project}
	return s.client.WithTx(ctx, func(tx *gorm.DB) error {
		staging := s.staging.WithTx(tx)
		skid, err := staging.Get(ctx, line.SkidID, line.ItemCode, line.Manufacturer, line.Project)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading staging record")
		}
		if skid == nil {
			return fmt.Errorf("no staging record found for skid %s, item %s", line.SkidID, line.ItemCode)
		}
		if line.Qty > skid.Quantity {
			return errInsufficientQuantity(skid.StagingBin, line.ItemCode, skid.Quantity, line.Qty, "move")
		}

		skid.Quantity -= line.Qty
		if err := staging.Save(ctx, skid); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving staging record")
		}

		stock := s.stock.WithTx(tx)
		target, err := stock.Get(ctx, targetKey)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading target record")
		}
		var newTargetQty int
		if target == nil {
			newTargetQty = line.Qty
			target = &models.StockRecord{
				ID:              uuid.New(),
				BinCode:         line.TargetBin,
				ItemCode:        line.ItemCode,
				Manufacturer:    line.Manufacturer,
				Project:         line.Project,
				BinName:         line.TargetName,
				SkidID:          line.SkidID,
				InitialQuantity: line.Qty,
				CurrentQuantity: line.Qty,
				StockPercentage: 100,
			}
		} else {
			newTargetQty = target.CurrentQuantity + line.Qty
			target.CurrentQuantity = newTargetQty
			if target.InitialQuantity <= 0 {
				target.InitialQuantity = newTargetQty
			}
			target.StockPercentage = StockPercentage(newTargetQty, target.InitialQuantity)
			target.SkidID = line.SkidID
		}
		if err := stock.Upsert(ctx, target); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving target record")
		}

		if err := s.adjustFloorStock(ctx, tx, line.ItemCode, line.Project, line.Qty); err != nil {
			return err
		}

		description := line.Notes
		if description == "" {
			description = fmt.Sprintf("Putaway from skid %s", line.SkidID)
		}

		return s.appendMovement(ctx, tx, movement.RecordMovementInput{
			Action:            enums.MovementActionStagingToBin,
			ItemCode:          line.ItemCode,
			Manufacturer:      line.Manufacturer,
			BinCode:           line.TargetBin,
			Project:           line.Project,
			QtyChanged:        line.Qty,
			ResultingQuantity: newTargetQty,
			Description:       description,
			UserEmail:         actor,
			ReferenceID:       line.SkidID,
		})
	})
}

// RemoveForShipment decrements shipped quantity from a bin. Unlike Remove it
// clamps at zero instead of rejecting, matching the outbound document flow
// where the physical pick already happened.
func (s *service) RemoveForShipment(ctx context.Context, actor string, lines []ShipmentLine) (BatchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	started := s.now()

	keys := make([]string, 0, len(lines))
	for _, line := range lines {
		keys = append(keys, StockKey{line.BinCode, line.ItemCode, line.Manufacturer, line.Project}.String())
	}
	unlock := s.locks.LockAll(keys)
	defer unlock()

	var errs []string
	succeeded := 0
	for i, line := range lines {
		if err := ctx.Err(); err != nil {
			return BatchResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "shipment batch timed out")
		}
		if err := s.shipmentLine(ctx, actor, line); err != nil {
			if fatal := pkgerrors.As(err); fatal != nil && fatal.Code() == pkgerrors.CodeDependency {
				return BatchResult{}, err
			}
			errs = append(errs, lineError(i, err))
			s.metrics.IncLine("shipment", "error")
			continue
		}
		succeeded++
		s.metrics.IncLine("shipment", "success")
	}

	s.metrics.ObserveBatch("shipment", s.now().Sub(started))
	return batchResult(len(lines), succeeded, errs), nil
}

func (s *service) shipmentLine(ctx context.Context, actor string, line ShipmentLine) error {
	if err := validateKeyFields(line.BinCode, line.ItemCode, line.Manufacturer, line.Project); err != nil {
		return err
	}
	if line.Qty <= 0 {
		return errInvalidQuantity(line.Qty)
	}

	key := StockKey{line.BinCode, line.ItemCode, line.Manufacturer, line.Project}
	return s.client.WithTx(ctx, func(tx *gorm.DB) error {
		stock := s.stock.WithTx(tx)
		record, err := stock.Get(ctx, key)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading stock record")
		}
		if record == nil {
			return errRecordNotFound(line.BinCode, line.ItemCode)
		}

		newQty := record.CurrentQuantity - line.Qty
		if newQty < 0 {
			newQty = 0
		}
		shipped := record.CurrentQuantity - newQty
		record.CurrentQuantity = newQty
		record.StockPercentage = StockPercentage(newQty, record.InitialQuantity)
		if err := stock.Upsert(ctx, record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving stock record")
		}

		return s.appendMovement(ctx, tx, movement.RecordMovementInput{
			Action:            enums.MovementActionOutbound,
			ItemCode:          line.ItemCode,
			Manufacturer:      line.Manufacturer,
			BinCode:           line.BinCode,
			Project:           line.Project,
			QtyChanged:        -shipped,
			ResultingQuantity: newQty,
			Description:       fmt.Sprintf("Outbound shipment %s", line.ShipmentID),
			UserEmail:         actor,
			ReferenceID:       line.ShipmentID,
		})
	})
}

func (s *service) adjustFloorStock(ctx context.Context, tx *gorm.DB, itemCode, project string, delta int) error {
	floor := s.floor.WithTx(tx)
	record, err := floor.Get(ctx, itemCode, project)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading floor stock")
	}
	if record == nil {
		if delta <= 0 {
			return nil
		}
		record = &models.FloorStockRecord{
			ID:       uuid.New(),
			ItemCode: itemCode,
			Project:  project,
		}
	}
	record.Quantity += delta
	if record.Quantity < 0 {
		record.Quantity = 0
	}
	if err := floor.Save(ctx, record); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving floor stock")
	}
	return nil
}

func (s *service) appendMovement(ctx context.Context, tx *gorm.DB, input movement.RecordMovementInput) error {
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
	if err := s.movements.WithTx(tx).Create(ctx, entry); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "appending movement log")
	}
	return nil
}

func validateKeyFields(binCode, itemCode, manufacturer, project string) error {
	switch {
	case binCode == "":
		return errMissingField("binCode")
	case itemCode == "":
		return errMissingField("fbpn")
	case manufacturer == "":
		return errMissingField("manufacturer")
	case project == "":
		return errMissingField("project")
	}
	return nil
}
