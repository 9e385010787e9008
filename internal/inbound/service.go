package inbound

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/warelogic/ims-backend/internal/backorders"
	"github.com/warelogic/ims-backend/internal/movement"
	"github.com/warelogic/ims-backend/internal/stockops"
	"github.com/warelogic/ims-backend/pkg/db"
	"github.com/warelogic/ims-backend/pkg/db/models"
	"github.com/warelogic/ims-backend/pkg/enums"
	pkgerrors "github.com/warelogic/ims-backend/pkg/errors"
	"github.com/warelogic/ims-backend/pkg/logger"
)

// Service receives inbound shipments into the staging area. Each skid gets a
// staging slot and a staging record per item line; received quantities then
// feed the backorder fulfillment pass per distinct item.
type Service interface {
	ReceiveShipment(ctx context.Context, actor string, input ReceiveInput) (*ReceiveResult, error)
	GetReceipt(ctx context.Context, transactionID string) (*ReceiptDetail, error)
}

// LineInput is one item line on a skid.
type LineInput struct {
	ItemCode     string `json:"fbpn" validate:"required"`
	Manufacturer string `json:"manufacturer" validate:"required"`
	Project      string `json:"project" validate:"required"`
	Quantity     int    `json:"quantity" validate:"gt=0"`
}

// SkidInput is one physical skid of an inbound shipment.
type SkidInput struct {
	Lines []LineInput `json:"lines" validate:"required,min=1,dive"`
}

type ReceiveInput struct {
	Skids []SkidInput `json:"skids" validate:"required,min=1,dive"`
}

// ReceivedSkid reports where one skid landed.
type ReceivedSkid struct {
	SkidID     string `json:"skid_id"`
	StagingBin string `json:"staging_bin"`
	BinName    string `json:"bin_name"`
	LineCount  int    `json:"line_count"`
}

// ItemFulfillment reports the backorder pass for one distinct received item.
type ItemFulfillment struct {
	ItemCode     string   `json:"fbpn"`
	QtyReceived  int      `json:"qty_received"`
	QtyApplied   int      `json:"qty_applied"`
	QtyRemaining int      `json:"qty_remaining"`
	FulfilledIDs []string `json:"fulfilled_ids,omitempty"`
}

type ReceiveResult struct {
	TransactionID string            `json:"transaction_id"`
	Skids         []ReceivedSkid    `json:"skids"`
	Fulfillments  []ItemFulfillment `json:"fulfillments,omitempty"`
}

// ReceiptDetail is a stored receipt with its lines.
type ReceiptDetail struct {
	Receipt models.InboundReceipt       `json:"receipt"`
	Lines   []models.InboundReceiptLine `json:"lines"`
}

type ServiceParams struct {
	Client     *db.Client
	Receipts   Repository
	Stock      stockops.StockRepository
	Staging    stockops.StagingRepository
	Movements  movement.Repository
	Backorders backorders.Service
	Logger     *logger.Logger
	// StagingAreaPrefix names the staging bin area (IS.1, IS.2, ...).
	// Empty means "IS.".
	StagingAreaPrefix string
}

type service struct {
	client     *db.Client
	receipts   Repository
	stock      stockops.StockRepository
	staging    stockops.StagingRepository
	movements  movement.Repository
	backorders backorders.Service
	logg       *logger.Logger
	prefix     string
	now        func() time.Time
}

// NewService wires the inbound receiving engine.
func NewService(params ServiceParams) (Service, error) {
	if params.Client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Receipts == nil {
		return nil, fmt.Errorf("receipt repository required")
	}
	if params.Stock == nil {
		return nil, fmt.Errorf("stock repository required")
	}
	if params.Staging == nil {
		return nil, fmt.Errorf("staging repository required")
	}
	if params.Movements == nil {
		return nil, fmt.Errorf("movement repository required")
	}
	if params.Backorders == nil {
		return nil, fmt.Errorf("backorder service required")
	}
	prefix := params.StagingAreaPrefix
	if prefix == "" {
		prefix = "IS."
	}
	return &service{
		client:     params.Client,
		receipts:   params.Receipts,
		stock:      params.Stock,
		staging:    params.Staging,
		movements:  params.Movements,
		backorders: params.Backorders,
		logg:       params.Logger,
		prefix:     prefix,
		now:        time.Now,
	}, nil
}

func (s *service) ReceiveShipment(ctx context.Context, actor string, input ReceiveInput) (*ReceiveResult, error) {
	if len(input.Skids) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one skid is required")
	}
	for _, skid := range input.Skids {
		if len(skid.Lines) == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "every skid needs at least one line")
		}
		for _, line := range skid.Lines {
			if strings.TrimSpace(line.ItemCode) == "" {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "fbpn is required on every line")
			}
			if line.Quantity <= 0 {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
			}
		}
	}

	result := &ReceiveResult{TransactionID: newTransactionID()}
	receivedAt := s.now().UTC()

	// itemOrder keeps the fulfillment pass deterministic: first appearance
	// in the shipment wins.
	itemTotals := map[string]int{}
	var itemOrder []string

	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		receipts := s.receipts.WithTx(tx)
		staging := s.staging.WithTx(tx)
		stock := s.stock.WithTx(tx)

		if err := receipts.CreateReceipt(ctx, &models.InboundReceipt{
			ID:            uuid.New(),
			TransactionID: result.TransactionID,
			ReceivedBy:    actor,
			SkidCount:     len(input.Skids),
			ReceivedAt:    receivedAt,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating receipt")
		}

		maxSlot, err := staging.MaxStagingSlot(ctx, s.prefix)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "scanning staging slots")
		}
		nextSlot := maxSlot + 1
		usedBins := map[string]struct{}{}

		for _, skid := range input.Skids {
			skidID := newSkidID()

			stagingBin, slot, err := s.allocateStagingBin(ctx, stock, usedBins, &nextSlot)
			if err != nil {
				return err
			}
			usedBins[stagingBin] = struct{}{}
			binName := fmt.Sprintf("Inbound Staging - Skid %d", slot)

			for _, line := range skid.Lines {
				itemCode := strings.ToUpper(strings.TrimSpace(line.ItemCode))
				manufacturer := strings.TrimSpace(line.Manufacturer)
				project := strings.TrimSpace(line.Project)

				record, err := staging.Get(ctx, skidID, itemCode, manufacturer, project)
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading staging record")
				}
				if record == nil {
					record = &models.StagingRecord{
						ID:           uuid.New(),
						SkidID:       skidID,
						ItemCode:     itemCode,
						Manufacturer: manufacturer,
						Project:      project,
						StagingBin:   stagingBin,
					}
				}
				record.Quantity += line.Quantity
				if err := staging.Save(ctx, record); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving staging record")
				}

				if err := receipts.CreateLine(ctx, &models.InboundReceiptLine{
					ID:            uuid.New(),
					TransactionID: result.TransactionID,
					SkidID:        skidID,
					StagingBin:    stagingBin,
					ItemCode:      itemCode,
					Manufacturer:  manufacturer,
					Project:       project,
					Quantity:      line.Quantity,
				}); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating receipt line")
				}

				if err := s.movements.WithTx(tx).Create(ctx, &models.MovementLogEntry{
					ID:                uuid.New(),
					Timestamp:         receivedAt,
					Action:            enums.MovementActionAdd,
					ItemCode:          itemCode,
					Manufacturer:      manufacturer,
					BinCode:           stagingBin,
					Project:           project,
					QtyChanged:        line.Quantity,
					ResultingQuantity: record.Quantity,
					Description:       fmt.Sprintf("Received on skid %s", skidID),
					UserEmail:         actor,
					ReferenceID:       result.TransactionID,
				}); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "appending movement log")
				}

				if _, seen := itemTotals[itemCode]; !seen {
					itemOrder = append(itemOrder, itemCode)
				}
				itemTotals[itemCode] += line.Quantity
			}

			result.Skids = append(result.Skids, ReceivedSkid{
				SkidID:     skidID,
				StagingBin: stagingBin,
				BinName:    binName,
				LineCount:  len(skid.Lines),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Fulfillment runs after the receipt commits; a fulfillment failure must
	// not roll back received goods.
	for _, itemCode := range itemOrder {
		qty := itemTotals[itemCode]
		pass, err := s.backorders.FulfillForReceipt(ctx, backorders.FulfillInput{
			ItemCode:     itemCode,
			QtyReceived:  qty,
			InboundTxnID: result.TransactionID,
		})
		if err != nil {
			if s.logg != nil {
				s.logg.Error(ctx, fmt.Sprintf("backorder fulfillment failed for %s", itemCode), err)
			}
			continue
		}
		result.Fulfillments = append(result.Fulfillments, ItemFulfillment{
			ItemCode:     itemCode,
			QtyReceived:  qty,
			QtyApplied:   qty - pass.QtyRemaining,
			QtyRemaining: pass.QtyRemaining,
			FulfilledIDs: pass.FulfilledIDs,
		})
	}

	if s.logg != nil {
		ctx = s.logg.WithField(ctx, "transaction_id", result.TransactionID)
		s.logg.Info(ctx, fmt.Sprintf("received %d skids into staging", len(result.Skids)))
	}
	return result, nil
}

// allocateStagingBin reuses a vacant placeholder bin in the staging area when
// one exists, otherwise mints the next sequential slot.
func (s *service) allocateStagingBin(ctx context.Context, stock stockops.StockRepository, used map[string]struct{}, nextSlot *int) (string, int, error) {
	if placeholder, err := stock.FindEmptyBinInArea(ctx, s.prefix); err != nil {
		return "", 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "scanning staging area")
	} else if placeholder != nil {
		if _, taken := used[placeholder.BinCode]; !taken {
			if slot, ok := stagingSlot(placeholder.BinCode, s.prefix); ok {
				return placeholder.BinCode, slot, nil
			}
		}
	}

	slot := *nextSlot
	*nextSlot = slot + 1
	return fmt.Sprintf("%s%d", s.prefix, slot), slot, nil
}

func (s *service) GetReceipt(ctx context.Context, transactionID string) (*ReceiptDetail, error) {
	receipt, err := s.receipts.GetReceipt(ctx, transactionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading receipt")
	}
	if receipt == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("receipt %s not found", transactionID))
	}
	lines, err := s.receipts.ListLines(ctx, transactionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading receipt lines")
	}
	return &ReceiptDetail{Receipt: *receipt, Lines: lines}, nil
}

func stagingSlot(bin, prefix string) (int, bool) {
	if len(bin) <= len(prefix) || !strings.HasPrefix(bin, prefix) {
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

func newTransactionID() string {
	return "INB-" + strings.ToUpper(uuid.NewString()[:8])
}

func newSkidID() string {
	return "SKD-" + strings.ToUpper(uuid.NewString()[:8])
}
