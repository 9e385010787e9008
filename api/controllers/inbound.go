package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/warelogic/ims-backend/api/responses"
	"github.com/warelogic/ims-backend/api/validators"
	"github.com/warelogic/ims-backend/internal/inbound"
	pkgerrors "github.com/warelogic/ims-backend/pkg/errors"
	"github.com/warelogic/ims-backend/pkg/logger"
)

// InboundReceive stages an inbound shipment, one staging slot per skid,
// then feeds the received quantities to open backorders.
func InboundReceive(svc inbound.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inbound service unavailable"))
			return
		}

		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload inbound.ReceiveInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ReceiveShipment(r.Context(), actor, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// InboundReceiptDetail returns a stored receipt with its lines.
func InboundReceiptDetail(svc inbound.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inbound service unavailable"))
			return
		}

		transactionID := strings.TrimSpace(chi.URLParam(r, "transactionId"))
		if transactionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "transaction id required"))
			return
		}

		detail, err := svc.GetReceipt(r.Context(), transactionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}
