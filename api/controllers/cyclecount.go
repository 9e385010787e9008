package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warelogic/ims-backend/api/responses"
	"github.com/warelogic/ims-backend/api/validators"
	"github.com/warelogic/ims-backend/internal/cyclecount"
	pkgerrors "github.com/warelogic/ims-backend/pkg/errors"
	"github.com/warelogic/ims-backend/pkg/logger"
)

const reportDateLayout = "2006-01-02"

// CycleCountCreate opens a new count batch, snapshotting the current
// quantity of every named stock record.
func CycleCountCreate(svc cyclecount.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cycle count service unavailable"))
			return
		}

		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cyclecount.CreateBatchInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CreateBatch(r.Context(), actor, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

type submitCountRequest struct {
	BinCode      string `json:"bin_code" validate:"required"`
	Fbpn         string `json:"fbpn" validate:"required"`
	Manufacturer string `json:"manufacturer" validate:"required"`
	Project      string `json:"project" validate:"required"`
	CountedQty   int    `json:"counted_qty" validate:"gte=0"`
	Notes        string `json:"notes"`
}

// CycleCountSubmit records a physical count against one open line and
// adjusts stock to the counted quantity.
func CycleCountSubmit(svc cyclecount.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cycle count service unavailable"))
			return
		}

		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		batchID := strings.TrimSpace(chi.URLParam(r, "batchId"))
		if batchID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "batch id required"))
			return
		}

		var payload submitCountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.SubmitCount(r.Context(), actor, cyclecount.SubmitCountInput{
			BatchID:      batchID,
			BinCode:      payload.BinCode,
			ItemCode:     payload.Fbpn,
			Manufacturer: payload.Manufacturer,
			Project:      payload.Project,
			CountedQty:   payload.CountedQty,
			Notes:        payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type cancelLineRequest struct {
	BinCode      string `json:"bin_code" validate:"required"`
	Fbpn         string `json:"fbpn" validate:"required"`
	Manufacturer string `json:"manufacturer" validate:"required"`
	Project      string `json:"project" validate:"required"`
}

// CycleCountCancelLine drops an open line from a batch without touching
// stock.
func CycleCountCancelLine(svc cyclecount.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cycle count service unavailable"))
			return
		}

		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		batchID := strings.TrimSpace(chi.URLParam(r, "batchId"))
		if batchID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "batch id required"))
			return
		}

		var payload cancelLineRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := svc.CancelLine(r.Context(), actor, cyclecount.CancelLineInput{
			BatchID:      batchID,
			BinCode:      payload.BinCode,
			ItemCode:     payload.Fbpn,
			Manufacturer: payload.Manufacturer,
			Project:      payload.Project,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"batch_id":     batchID,
			"batch_status": status,
		})
	}
}

// CycleCountDetail returns a batch header with its lines in creation order.
func CycleCountDetail(svc cyclecount.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cycle count service unavailable"))
			return
		}

		batchID := strings.TrimSpace(chi.URLParam(r, "batchId"))
		if batchID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "batch id required"))
			return
		}

		detail, err := svc.GetBatch(r.Context(), batchID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// CycleCountReport rolls up completed counts inside a date window. Both
// bounds are optional; the service applies its default lookback when the
// window is open-ended.
func CycleCountReport(svc cyclecount.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cycle count service unavailable"))
			return
		}

		var input cyclecount.ReportInput
		query := r.URL.Query()
		if raw := strings.TrimSpace(query.Get("start")); raw != "" {
			start, err := time.Parse(reportDateLayout, raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid start date"))
				return
			}
			input.Start = start
		}
		if raw := strings.TrimSpace(query.Get("end")); raw != "" {
			end, err := time.Parse(reportDateLayout, raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid end date"))
				return
			}
			input.End = end
		}

		report, err := svc.Report(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
