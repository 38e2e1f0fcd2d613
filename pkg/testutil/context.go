package testutil

import (
	"net/http"
	"time"

	id "motorcover/pkg/domain"
	"motorcover/pkg/requestcontext"
)

// WithIdentity injects an acting identity into the request context. This
// simulates what the auth middleware does for authenticated requests.
func WithIdentity(req *http.Request, userID id.UserID, role id.Role) *http.Request {
	ctx := requestcontext.WithUserID(req.Context(), userID)
	ctx = requestcontext.WithRole(ctx, string(role))
	return req.WithContext(ctx)
}

// WithClock pins the request clock so timestamps written during the
// operation are deterministic.
func WithClock(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}

// WithRequestID sets a correlation ID on the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
