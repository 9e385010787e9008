package backorders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/warelogic/ims-backend/pkg/db"
	"github.com/warelogic/ims-backend/pkg/db/models"
	"github.com/warelogic/ims-backend/pkg/enums"
	pkgerrors "github.com/warelogic/ims-backend/pkg/errors"
	"github.com/warelogic/ims-backend/pkg/logger"
	"github.com/warelogic/ims-backend/pkg/metrics"
)

// Service fulfills open backorders from inbound receipts and creates new
// backorders when orders outrun stock.
type Service interface {
	// FulfillForReceipt walks open backorders for the received item in
	// storage order and partitions qtyReceived across them. It returns the
	// quantity left over after every open backorder is satisfied.
	FulfillForReceipt(ctx context.Context, input FulfillInput) (FulfillResult, error)
	CreateBackorder(ctx context.Context, input CreateBackorderInput) (*models.Backorder, error)
}

// FulfillInput is one aggregated (item, qty) pair from an inbound
// transaction. Aggregation across skids happens upstream so a single
// transaction never double-feeds the same backorder pool.
type FulfillInput struct {
	ItemCode     string
	QtyReceived  int
	InboundTxnID string
}

// FulfillResult reports what one fulfillment pass did.
type FulfillResult struct {
	QtyRemaining  int      `json:"qty_remaining"`
	FulfilledIDs  []string `json:"fulfilled_ids"`
	OrdersTouched []string `json:"orders_touched"`
}

// CreateBackorderInput records a shortage for an order line.
type CreateBackorderInput struct {
	OrderID      string
	ItemCode     string
	QtyRequested int
	Notes        string
}

type ServiceParams struct {
	Client      *db.Client
	Backorders  Repository
	Allocations AllocationRepository
	Logger      *logger.Logger
	Metrics     *metrics.StockOpsMetrics
}

type service struct {
	client      *db.Client
	backorders  Repository
	allocations AllocationRepository
	logg        *logger.Logger
	metrics     *metrics.StockOpsMetrics
	now         func() time.Time
}

// NewService wires the backorder fulfillment engine.
func NewService(params ServiceParams) (Service, error) {
	if params.Client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Backorders == nil {
		return nil, fmt.Errorf("backorder repository required")
	}
	if params.Allocations == nil {
		return nil, fmt.Errorf("allocation repository required")
	}
	return &service{
		client:      params.Client,
		backorders:  params.Backorders,
		allocations: params.Allocations,
		logg:        params.Logger,
		metrics:     params.Metrics,
		now:         time.Now,
	}, nil
}

func (s *service) FulfillForReceipt(ctx context.Context, input FulfillInput) (FulfillResult, error) {
	if strings.TrimSpace(input.ItemCode) == "" {
		return FulfillResult{}, pkgerrors.New(pkgerrors.CodeValidation, "item code is required")
	}
	if input.QtyReceived <= 0 {
		return FulfillResult{}, pkgerrors.New(pkgerrors.CodeValidation, "received quantity must be positive")
	}

	result := FulfillResult{QtyRemaining: input.QtyReceived}

	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		backorders := s.backorders.WithTx(tx)

		rows, err := backorders.ListByItemFold(ctx, input.ItemCode)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing backorders")
		}

		touched := map[string]struct{}{}
		for i := range rows {
			if result.QtyRemaining <= 0 {
				break
			}
			row := &rows[i]
			// First matching row in storage order wins. The legacy system
			// never sorted by date or priority; keep that behavior.
			if row.Status.IsClosed() {
				continue
			}
			remainingNeed := row.QtyRequested - row.QtyFulfilled
			if remainingNeed <= 0 {
				continue
			}

			fulfillQty := remainingNeed
			if result.QtyRemaining < fulfillQty {
				fulfillQty = result.QtyRemaining
			}

			row.QtyFulfilled += fulfillQty
			if row.QtyFulfilled >= row.QtyRequested {
				row.Status = enums.BackorderClosed
			} else {
				row.Status = enums.BackorderPartial
			}
			if err := backorders.Save(ctx, row); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving backorder")
			}

			if err := backorders.CreateFulfillmentLog(ctx, &models.BackorderFulfillmentLog{
				ID:           uuid.New(),
				BackorderID:  row.BackorderID,
				OrderID:      row.OrderID,
				ItemCode:     row.ItemCode,
				QtyFulfilled: fulfillQty,
				InboundTxnID: input.InboundTxnID,
				Timestamp:    s.now().UTC(),
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "writing fulfillment log")
			}

			if err := s.applyToAllocation(ctx, tx, row.OrderID, input.ItemCode, fulfillQty); err != nil {
				return err
			}

			result.QtyRemaining -= fulfillQty
			result.FulfilledIDs = append(result.FulfilledIDs, row.BackorderID)
			touched[row.OrderID] = struct{}{}
			s.metrics.IncFulfillment(string(row.Status))
		}

		for orderID := range touched {
			if err := s.recomputeOrderStatus(ctx, tx, orderID); err != nil {
				return err
			}
			result.OrdersTouched = append(result.OrdersTouched, orderID)
		}
		return nil
	})
	if err != nil {
		return FulfillResult{}, err
	}
	return result, nil
}

func (s *service) applyToAllocation(ctx context.Context, tx *gorm.DB, orderID, itemCode string, qty int) error {
	allocations := s.allocations.WithTx(tx)
	lines, err := allocations.ListByOrderAndItemFold(ctx, orderID, itemCode)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing allocation lines")
	}
	for i := range lines {
		line := &lines[i]
		line.QtyBackordered -= qty
		if line.QtyBackordered < 0 {
			line.QtyBackordered = 0
		}
		line.QtyAllocated += qty
		if line.QtyBackordered == 0 {
			line.StockStatus = enums.LineStockInStock
		} else {
			line.StockStatus = enums.LineStockPartial
		}
		line.AllocationStatus = enums.AllocationFulfilled
		if err := allocations.Save(ctx, line); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving allocation line")
		}
	}
	return nil
}

func (s *service) recomputeOrderStatus(ctx context.Context, tx *gorm.DB, orderID string) error {
	allocations := s.allocations.WithTx(tx)
	lines, err := allocations.ListByOrder(ctx, orderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing order lines")
	}
	if len(lines) == 0 {
		return nil
	}

	hasBackorder := false
	hasInStock := false
	for _, line := range lines {
		switch line.StockStatus {
		case enums.LineStockBackorder, enums.LineStockPartial:
			hasBackorder = true
		case enums.LineStockInStock:
			hasInStock = true
		}
	}

	status := enums.OrderStockAllocated
	switch {
	case hasBackorder && hasInStock:
		status = enums.OrderStockPartialAllocation
	case hasBackorder:
		status = enums.OrderStockAwaitingStock
	}

	order, err := allocations.GetOrder(ctx, orderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading customer order")
	}
	if order == nil {
		return nil
	}
	order.StockStatus = status
	if err := allocations.SaveOrder(ctx, order); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving customer order")
	}
	return nil
}

func (s *service) CreateBackorder(ctx context.Context, input CreateBackorderInput) (*models.Backorder, error) {
	if strings.TrimSpace(input.OrderID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if strings.TrimSpace(input.ItemCode) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item code is required")
	}
	if input.QtyRequested <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "requested quantity must be positive")
	}

	notes := input.Notes
	if notes == "" {
		notes = "Auto-generated from shipment"
	}

	backorder := &models.Backorder{
		ID:           uuid.New(),
		BackorderID:  newBackorderID(),
		OrderID:      input.OrderID,
		ItemCode:     input.ItemCode,
		QtyRequested: input.QtyRequested,
		Status:       enums.BackorderOpen,
		Notes:        notes,
	}
	if err := s.backorders.Create(ctx, backorder); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating backorder")
	}
	return backorder, nil
}

func newBackorderID() string {
	return "BO-" + strings.ToUpper(uuid.NewString()[:8])
}
