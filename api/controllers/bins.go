package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/warelogic/ims-backend/api/responses"
	"github.com/warelogic/ims-backend/internal/bins"
	"github.com/warelogic/ims-backend/pkg/enums"
	pkgerrors "github.com/warelogic/ims-backend/pkg/errors"
	"github.com/warelogic/ims-backend/pkg/logger"
)

// BinSearch filters stock records by bin, item, manufacturer, project and
// fill state. All parameters are optional; an empty search returns the
// whole floor in bin order.
func BinSearch(svc bins.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bin service unavailable"))
			return
		}

		query := r.URL.Query()
		input := bins.SearchInput{
			BinCode:      strings.TrimSpace(query.Get("bin_code")),
			ItemCode:     strings.TrimSpace(query.Get("fbpn")),
			Manufacturer: strings.TrimSpace(query.Get("manufacturer")),
			Project:      strings.TrimSpace(query.Get("project")),
		}

		if raw := strings.TrimSpace(query.Get("stock_filter")); raw != "" {
			filter, err := enums.ParseBinStockFilter(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid stock filter"))
				return
			}
			input.StockFilter = filter
		}

		records, err := svc.SearchBins(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, records)
	}
}

// BinDetails returns every stock record currently in the named bin.
func BinDetails(svc bins.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bin service unavailable"))
			return
		}

		binCode := strings.TrimSpace(chi.URLParam(r, "binCode"))
		if binCode == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "bin code required"))
			return
		}

		details, err := svc.GetBinDetails(r.Context(), binCode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, details)
	}
}

// BinHistory returns the movement log for a bin, newest first.
func BinHistory(svc bins.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bin service unavailable"))
			return
		}

		binCode := strings.TrimSpace(chi.URLParam(r, "binCode"))
		if binCode == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "bin code required"))
			return
		}

		entries, err := svc.GetBinHistory(r.Context(), binCode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entries)
	}
}

// BinScan resolves one scanned barcode, trying the code as a bin first and
// as an item number second.
func BinScan(svc bins.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bin service unavailable"))
			return
		}

		code := strings.TrimSpace(chi.URLParam(r, "code"))
		if code == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "scan code required"))
			return
		}

		result, err := svc.QuickBarcodeScan(r.Context(), code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
