package testutil

import "net/http"

// WithUserHeader sets the X-User-ID header the gateway would forward.
func WithUserHeader(req *http.Request, userID string) *http.Request {
	req.Header.Set("X-User-ID", userID)
	return req
}
