package controllers

import (
	"net/http"

	"github.com/warelogic/ims-backend/api/middleware"
	"github.com/warelogic/ims-backend/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

func PrivatePing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{"scope": "private", "status": "ok"}
		if actor := middleware.ActorEmailFromContext(r.Context()); actor != "" {
			payload["actor"] = actor
		}
		responses.WriteSuccess(w, payload)
	}
}
