package testutil

import (
	"net/http"
	"time"

	"contractguide/pkg/requestcontext"
)

// WithRequestID sets the request ID the requestid middleware would assign.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}

// WithRequestTime pins the request time so responses carry a known timestamp.
func WithRequestTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
