package middleware

import (
	"net/http"
)

const maintenanceMessage = "championship pages are coming soon"

// Maintenance answers 503 for every request while enabled.
func Maintenance(enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "3600")
			writeError(w, http.StatusServiceUnavailable, maintenanceMessage)
		})
	}
}
