package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const (
	defaultLocale     = "en"
	upstreamUserAgent = "Mozilla/5.0 (compatible; mfe-bridge/1.0)"
	maxEchoedBody     = 1000
)

// truncateText returns at most limit runes of body.
func truncateText(body []byte, limit int) string {
	text := []rune(string(body))
	if len(text) > limit {
		text = text[:limit]
	}
	return string(text)
}

// termsURL builds the upstream URL for locale.
func (s *Server) termsURL(locale string) (string, error) {
	u, err := url.Parse(s.config.GetTermsAPIURL())
	if err != nil {
		return "", fmt.Errorf("parse terms api url: %w", err)
	}
	q := u.Query()
	q.Set("locale", locale)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func localeParam(r *http.Request) string {
	if locale := r.URL.Query().Get("locale"); locale != "" {
		return locale
	}
	return defaultLocale
}

// fetchTerms calls the upstream terms service and returns the status code and
// raw body.
func (s *Server) fetchTerms(ctx context.Context, apiURL string) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.upstreamTimeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", upstreamUserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

// TermsConditionsHandler proxies the terms-and-conditions content for a locale.
// The browser always gets a 200; upstream failures are described in the body
// so the page can fall back to its built-in text.
func (s *Server) TermsConditionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		apiURL, err := s.termsURL(localeParam(r))
		if err != nil {
			s.logger.Error().Err(err).Msg("Terms API URL is invalid")
			writeJSON(w, http.StatusOK, map[string]any{"error": "API call failed", "message": err.Error(), "data": nil})
			return
		}

		s.logger.Debug().Str("url", apiURL).Msg("Fetching terms and conditions")
		status, body, err := s.fetchTerms(r.Context(), apiURL)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Terms API call failed")
			writeJSON(w, http.StatusOK, map[string]any{"error": "API call failed", "message": err.Error(), "data": nil})
			return
		}
		if status < 200 || status >= 300 {
			s.logger.Warn().Int("status", status).Msg("Terms API returned an error")
			writeJSON(w, http.StatusOK, map[string]any{"error": "External API failed", "status": status, "data": nil})
			return
		}

		var data any
		if err := json.Unmarshal(body, &data); err != nil {
			s.logger.Warn().Err(err).Msg("Terms API returned invalid JSON")
			writeJSON(w, http.StatusOK, map[string]any{"error": "API call failed", "message": err.Error(), "data": nil})
			return
		}
		writeJSON(w, http.StatusOK, data)
	}
}

// TestExternalAPIHandler reports exactly what the upstream terms service
// returns, for diagnosing the proxy from a deployed environment.
func (s *Server) TestExternalAPIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		apiURL, err := s.termsURL(localeParam(r))
		if err != nil {
			writeJSON(w, http.StatusOK, map[string]any{"error": "Network or fetch error", "message": err.Error(), "apiUrl": s.config.GetTermsAPIURL()})
			return
		}

		status, body, err := s.fetchTerms(r.Context(), apiURL)
		if err != nil {
			writeJSON(w, http.StatusOK, map[string]any{"error": "Network or fetch error", "message": err.Error(), "apiUrl": apiURL})
			return
		}

		var data any
		if err := json.Unmarshal(body, &data); err != nil {
			writeJSON(w, http.StatusOK, map[string]any{"error": "Invalid JSON response", "status": status, "responseText": truncateText(body, maxEchoedBody)})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "status": status, "data": data, "apiUrl": apiURL})
	}
}
