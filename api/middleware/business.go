package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/calebmorton/tradedocs-backend/api/responses"
	pkgerrors "github.com/calebmorton/tradedocs-backend/pkg/errors"
	"github.com/calebmorton/tradedocs-backend/pkg/logger"
)

const businessIDHeader = "X-Business-Id"

// BusinessContext requires a well-formed X-Business-Id header and attaches
// it to the request context and log fields. All document routes are scoped
// by it.
func BusinessContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(businessIDHeader))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "X-Business-Id header required"))
				return
			}
			if _, err := uuid.Parse(raw); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "X-Business-Id must be a UUID"))
				return
			}

			ctx := WithBusinessID(r.Context(), raw)
			if logg != nil {
				ctx = logg.WithBusinessID(ctx, raw)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
