package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pharmaquote/pharmaquote-backend/api/middleware"
	"github.com/pharmaquote/pharmaquote-backend/api/validators"
	pkgerrors "github.com/pharmaquote/pharmaquote-backend/pkg/errors"
)

func requireOwner(r *http.Request) (uuid.UUID, error) {
	owner := middleware.OwnerIDFromContext(r.Context())
	if owner == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "tenant context missing")
	}
	return owner, nil
}

func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	return validators.ParsePathUUID(chi.URLParam(r, param), param)
}
