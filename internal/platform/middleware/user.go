package middleware

import (
	"log/slog"
	"net/http"

	id "taskboard/pkg/domain"
	dErrors "taskboard/pkg/domain-errors"
	"taskboard/pkg/platform/httputil"
	"taskboard/pkg/requestcontext"
)

// UserIDHeader carries the caller's id, set by the gateway in front of the
// service after it has authenticated the user.
const UserIDHeader = "X-User-ID"

// RequireUser rejects requests without a valid X-User-ID and stores the
// parsed id in the request context.
func RequireUser(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			raw := r.Header.Get(UserIDHeader)
			if raw == "" {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "X-User-ID header is required"))
				return
			}
			userID, err := id.ParseUserID(raw)
			if err != nil || userID.IsNil() {
				logger.WarnContext(ctx, "rejected request with invalid user id",
					"request_id", requestcontext.RequestID(ctx),
					"error", err,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "X-User-ID header is invalid"))
				return
			}
			next.ServeHTTP(w, r.WithContext(requestcontext.WithUserID(ctx, userID)))
		})
	}
}
