package controllers

import (
	"net/http"

	"github.com/warelogic/ims-backend/api/responses"
	"github.com/warelogic/ims-backend/api/validators"
	"github.com/warelogic/ims-backend/internal/stockops"
	pkgerrors "github.com/warelogic/ims-backend/pkg/errors"
	"github.com/warelogic/ims-backend/pkg/logger"
)

// Quantity and key checks happen line by line inside the engine so one bad
// line reports an error without sinking its batch; the request layer only
// insists on a non-empty batch.

type addLineRequest struct {
	BinCode      string `json:"bin_code"`
	BinName      string `json:"bin_name"`
	PushNumber   string `json:"push_number"`
	SkidID       string `json:"skid_id"`
	Fbpn         string `json:"fbpn"`
	Manufacturer string `json:"manufacturer"`
	Project      string `json:"project"`
	Quantity     int    `json:"quantity"`
	Notes        string `json:"notes"`
}

type addRequest struct {
	Lines []addLineRequest `json:"lines" validate:"required,min=1"`
}

func (req addRequest) toLines() []stockops.AddLine {
	lines := make([]stockops.AddLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, stockops.AddLine{
			BinCode:      l.BinCode,
			BinName:      l.BinName,
			PushNumber:   l.PushNumber,
			SkidID:       l.SkidID,
			ItemCode:     l.Fbpn,
			Manufacturer: l.Manufacturer,
			Project:      l.Project,
			Qty:          l.Quantity,
			Notes:        l.Notes,
		})
	}
	return lines
}

// StockAdd receives inventory into bins, one line per bin/item key.
func StockAdd(svc stockops.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stock service unavailable"))
			return
		}

		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Add(r.Context(), actor, payload.toLines())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type removeLineRequest struct {
	BinCode      string `json:"bin_code"`
	Fbpn         string `json:"fbpn"`
	Manufacturer string `json:"manufacturer"`
	Project      string `json:"project"`
	Quantity     int    `json:"quantity"`
	Notes        string `json:"notes"`
}

type removeRequest struct {
	Lines []removeLineRequest `json:"lines" validate:"required,min=1"`
}

func (req removeRequest) toLines() []stockops.RemoveLine {
	lines := make([]stockops.RemoveLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, stockops.RemoveLine{
			BinCode:      l.BinCode,
			ItemCode:     l.Fbpn,
			Manufacturer: l.Manufacturer,
			Project:      l.Project,
			Qty:          l.Quantity,
			Notes:        l.Notes,
		})
	}
	return lines
}

// StockRemove takes inventory out of bins. Lines that would drive a record
// negative fail individually.
func StockRemove(svc stockops.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stock service unavailable"))
			return
		}

		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload removeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Remove(r.Context(), actor, payload.toLines())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type moveLineRequest struct {
	SourceBin    string `json:"source_bin"`
	TargetBin    string `json:"target_bin"`
	TargetName   string `json:"target_name"`
	Fbpn         string `json:"fbpn"`
	Manufacturer string `json:"manufacturer"`
	Project      string `json:"project"`
	Quantity     int    `json:"quantity"`
	Notes        string `json:"notes"`
}

type moveRequest struct {
	Lines []moveLineRequest `json:"lines" validate:"required,min=1"`
}

func (req moveRequest) toLines() []stockops.MoveLine {
	lines := make([]stockops.MoveLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, stockops.MoveLine{
			SourceBin:    l.SourceBin,
			TargetBin:    l.TargetBin,
			TargetName:   l.TargetName,
			ItemCode:     l.Fbpn,
			Manufacturer: l.Manufacturer,
			Project:      l.Project,
			Qty:          l.Quantity,
			Notes:        l.Notes,
		})
	}
	return lines
}

// StockMove relocates quantity between bins within the warehouse.
func StockMove(svc stockops.Service, logg *logger.Logger) http.HandlerFunc {
	return moveHandler(svc, logg, func(r *http.Request, actor string, lines []stockops.MoveLine) (stockops.BatchResult, error) {
		return svc.Move(r.Context(), actor, lines)
	})
}

// StockTransfer moves quantity between projects or owners; same mechanics as
// a move but logged as a transfer.
func StockTransfer(svc stockops.Service, logg *logger.Logger) http.HandlerFunc {
	return moveHandler(svc, logg, func(r *http.Request, actor string, lines []stockops.MoveLine) (stockops.BatchResult, error) {
		return svc.Transfer(r.Context(), actor, lines)
	})
}

func moveHandler(svc stockops.Service, logg *logger.Logger, run func(*http.Request, string, []stockops.MoveLine) (stockops.BatchResult, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stock service unavailable"))
			return
		}

		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload moveRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := run(r, actor, payload.toLines())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type stagingPutawayLineRequest struct {
	SkidID       string `json:"skid_id"`
	TargetBin    string `json:"target_bin"`
	TargetName   string `json:"target_name"`
	Fbpn         string `json:"fbpn"`
	Manufacturer string `json:"manufacturer"`
	Project      string `json:"project"`
	Quantity     int    `json:"quantity"`
	Notes        string `json:"notes"`
}

type stagingPutawayRequest struct {
	Lines []stagingPutawayLineRequest `json:"lines" validate:"required,min=1"`
}

func (req stagingPutawayRequest) toLines() []stockops.StagingLine {
	lines := make([]stockops.StagingLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, stockops.StagingLine{
			SkidID:       l.SkidID,
			TargetBin:    l.TargetBin,
			TargetName:   l.TargetName,
			ItemCode:     l.Fbpn,
			Manufacturer: l.Manufacturer,
			Project:      l.Project,
			Qty:          l.Quantity,
			Notes:        l.Notes,
		})
	}
	return lines
}

// StockStagingPutaway drains received skids from the staging area into
// racking bins.
func StockStagingPutaway(svc stockops.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stock service unavailable"))
			return
		}

		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload stagingPutawayRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.StagingPutaway(r.Context(), actor, payload.toLines())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type shipmentLineRequest struct {
	BinCode      string `json:"bin_code"`
	Fbpn         string `json:"fbpn"`
	Manufacturer string `json:"manufacturer"`
	Project      string `json:"project"`
	Quantity     int    `json:"quantity"`
	ShipmentID   string `json:"shipment_id"`
}

type shipmentRequest struct {
	Lines []shipmentLineRequest `json:"lines" validate:"required,min=1"`
}

func (req shipmentRequest) toLines() []stockops.ShipmentLine {
	lines := make([]stockops.ShipmentLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, stockops.ShipmentLine{
			BinCode:      l.BinCode,
			ItemCode:     l.Fbpn,
			Manufacturer: l.Manufacturer,
			Project:      l.Project,
			Qty:          l.Quantity,
			ShipmentID:   l.ShipmentID,
		})
	}
	return lines
}

// StockShipment decrements bins for an outbound shipment, clamping at zero
// rather than failing on an over-pick.
func StockShipment(svc stockops.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stock service unavailable"))
			return
		}

		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload shipmentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.RemoveForShipment(r.Context(), actor, payload.toLines())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
