package controllers

import (
	"net/http"

	"github.com/warelogic/ims-backend/api/middleware"
	pkgerrors "github.com/warelogic/ims-backend/pkg/errors"
)

// actorFrom extracts the operator identity attached by the actor middleware.
// Mutations require it so movement log entries always name who acted.
func actorFrom(r *http.Request) (string, error) {
	actor := middleware.ActorEmailFromContext(r.Context())
	if actor == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}
	return actor, nil
}
