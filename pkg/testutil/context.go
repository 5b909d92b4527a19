package testutil

import (
	"net/http"

	id "migratio/pkg/domain"
	"migratio/pkg/requestcontext"
)

// WithUserID attaches userID to the request the way RequireAuth does. A nil
// id leaves the request anonymous.
func WithUserID(req *http.Request, userID id.UserID) *http.Request {
	if userID.IsNil() {
		return req
	}
	return req.WithContext(requestcontext.WithUserID(req.Context(), userID))
}

// WithBearer sets the Authorization header for router-level tests that run
// the real auth middleware.
func WithBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}
