package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/pharmaquote/pharmaquote-backend/api/responses"
	pkgAuth "github.com/pharmaquote/pharmaquote-backend/pkg/auth"
	"github.com/pharmaquote/pharmaquote-backend/pkg/config"
	pkgerrors "github.com/pharmaquote/pharmaquote-backend/pkg/errors"
	"github.com/pharmaquote/pharmaquote-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the
// tenant the token is scoped to.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			if claims.OwnerID == uuid.Nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing tenant claim"))
				return
			}

			ctx := context.WithValue(r.Context(), ctxOwnerID, claims.OwnerID)
			if claims.Company != "" {
				ctx = context.WithValue(ctx, ctxCompany, claims.Company)
			}

			if logg != nil {
				ctx = logg.WithOwnerID(ctx, claims.OwnerID.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
