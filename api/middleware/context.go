package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/warelogic/ims-backend/pkg/logger"
)

type contextKey string

const ctxActorEmail contextKey = "actor_email"

// actorHeader carries the operator identity set by the warehouse frontend.
// There is no auth layer in front of this service; identity is attribution
// for the movement log, not authorization.
const actorHeader = "X-User-Email"

func ActorEmailFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxActorEmail).(string); ok {
		return v
	}
	return ""
}

// WithActorEmail injects the operator identity into the context.
func WithActorEmail(ctx context.Context, email string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxActorEmail, email)
}

// ActorContext extracts the operator email header and attaches it to the
// request context and the request-scoped logger.
func ActorContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email := strings.TrimSpace(r.Header.Get(actorHeader))
			if email == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := WithActorEmail(r.Context(), email)
			if logg != nil {
				ctx = logg.WithActorEmail(ctx, email)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
