package controllers

import (
	"net/http"

	"github.com/warelogic/ims-backend/api/responses"
	"github.com/warelogic/ims-backend/api/validators"
	"github.com/warelogic/ims-backend/internal/backorders"
	pkgerrors "github.com/warelogic/ims-backend/pkg/errors"
	"github.com/warelogic/ims-backend/pkg/logger"
)

type backorderCreateRequest struct {
	OrderID      string `json:"order_id" validate:"required"`
	Fbpn         string `json:"fbpn" validate:"required"`
	QtyRequested int    `json:"qty_requested" validate:"gt=0"`
	Notes        string `json:"notes"`
}

// BackorderCreate records a shortage for an order line so the next inbound
// receipt can fill it.
func BackorderCreate(svc backorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "backorder service unavailable"))
			return
		}

		if _, err := actorFrom(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload backorderCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.CreateBackorder(r.Context(), backorders.CreateBackorderInput{
			OrderID:      payload.OrderID,
			ItemCode:     payload.Fbpn,
			QtyRequested: payload.QtyRequested,
			Notes:        payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}
