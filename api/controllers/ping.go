package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/pharmaquote/pharmaquote-backend/api/middleware"
	"github.com/pharmaquote/pharmaquote-backend/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

func PrivatePing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{"scope": "private", "status": "ok"}
		if owner := middleware.OwnerIDFromContext(r.Context()); owner != uuid.Nil {
			payload["owner_id"] = owner.String()
		}
		responses.WriteSuccess(w, payload)
	}
}
