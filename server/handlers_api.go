package server

import (
	"net/http"

	"github.com/jrsteele09/go-mfe-bridge/apiclient"
	"github.com/jrsteele09/go-mfe-bridge/credentials"
	"github.com/jrsteele09/go-mfe-bridge/internal/errors"
)

func (s *Server) CredentialsStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.api.CredentialsStatus(r.Context()))
	}
}

func (s *Server) CredentialsTestHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.api.TestConnection(r.Context()))
	}
}

// CertEligibilityHandler checks certificate eligibility for a policy with the
// credentials the host shared.
func (s *Server) CertEligibilityHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		policyNo := r.PathValue("policyNo")
		out, err := s.api.VerifyCertEligibility(r.Context(), policyNo)
		if err != nil {
			s.logger.Warn().Err(err).Str("policy", policyNo).Msg("Certificate eligibility check failed")
			writeJSONError(w, "downstream_error", credentials.UserMessage(err), statusForError(err))
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func statusForError(err error) int {
	var statusErr *apiclient.StatusError
	switch {
	case errors.As(err, &statusErr):
		return statusErr.StatusCode
	case errors.Is(err, errors.ErrCredentialsMissing), errors.Is(err, errors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, errors.ErrNetwork):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
