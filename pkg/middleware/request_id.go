package middleware

import (
	"net/http"

	"github.com/ibagroup-eu/vf-job-storage/pkg/requestid"
)

// RequestID takes the request ID from the X-Request-Id header, or generates one,
// stores it in the request context and echoes it back in the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestid.Header)
		if requestID == "" {
			requestID = requestid.New()
		}

		w.Header().Set(requestid.Header, requestID)
		next.ServeHTTP(w, r.WithContext(requestid.WithID(r.Context(), requestID)))
	})
}
