package server

import (
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/go-mfe-bridge/hostdata"
)

const maxHostDataBody = 1 << 20

// HostDataGetHandler returns the consumer's current state.
func (s *Server) HostDataGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.bridge.GetState())
	}
}

// HostDataPostHandler merges the request body into the host's shared data, as
// the host application's setHostData would.
func (s *Server) HostDataPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch map[string]any
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxHostDataBody)).Decode(&patch); err != nil || patch == nil {
			writeJSONError(w, "invalid_request", "Body must be a JSON object", http.StatusBadRequest)
			return
		}

		s.publisher.SetHostData(hostdata.RawRecord(patch))
		s.logger.Info().Int("keys", len(patch)).Msg("Host data updated")
		writeJSON(w, http.StatusOK, s.publisher.Snapshot())
	}
}

// HostDataRefreshHandler re-reads every host source into the consumer.
func (s *Server) HostDataRefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.bridge.RefreshState()
		writeJSON(w, http.StatusOK, s.bridge.GetState())
	}
}
