package ratelimit

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"migratio/pkg/platform/httputil"
	"migratio/pkg/requestcontext"
)

// Limiter enforces limit requests per window for each authenticated user.
type Limiter struct {
	store  Store
	limit  int
	window time.Duration
	logger *slog.Logger
}

func New(store Store, limit int, window time.Duration, logger *slog.Logger) *Limiter {
	return &Limiter{store: store, limit: limit, window: window, logger: logger}
}

// PerUser must run after authentication. Requests without a user, and all
// requests when the limit is not positive, pass through. Store failures
// fail open.
func (l *Limiter) PerUser(next http.Handler) http.Handler {
	if l == nil || l.limit <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := requestcontext.UserID(ctx)
		if userID.IsNil() {
			next.ServeHTTP(w, r)
			return
		}

		result, err := l.store.Allow(ctx, "user:"+userID.String(), l.limit, l.window)
		if err != nil {
			l.logger.ErrorContext(ctx, "failed to check user rate limit",
				"user_id", userID.String(),
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
			httputil.WriteJSON(w, http.StatusTooManyRequests, map[string]any{
				"error":             "user_rate_limit_exceeded",
				"error_description": "too many requests, try again later",
				"retry_after":       result.RetryAfter,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
