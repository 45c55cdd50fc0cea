package server

import (
	"encoding/json"
	"net/http"
	"time"
)

// jsTimestamp matches the ISO-8601 form browsers produce, with milliseconds.
const jsTimestamp = "2006-01-02T15:04:05.000Z07:00"

// PreflightHandler only runs when CorsMiddleware is not in front of it.
func (s *Server) PreflightHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}
}

// APITestHandler is a liveness check that echoes the query string.
func (s *Server) APITestHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"message":   s.config.GetAppName() + " API is working!",
			"timestamp": s.now().UTC().Format(jsTimestamp),
			"query":     queryMap(r),
		})
	}
}

// queryMap flattens single-valued parameters to strings.
func queryMap(r *http.Request) map[string]any {
	out := make(map[string]any)
	for key, values := range r.URL.Query() {
		if len(values) == 1 {
			out[key] = values[0]
			continue
		}
		out[key] = values
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, errorCode, description string, statusCode int) {
	writeJSON(w, statusCode, map[string]string{
		"error":             errorCode,
		"error_description": description,
	})
}

func (s *Server) upstreamTimeout() time.Duration {
	return s.config.GetHTTPTimeout()
}
