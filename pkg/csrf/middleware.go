package csrf

import (
	"encoding/json"
	"net/http"
)

// Protect validates every unsafe request and rejects failures with 403. The
// response body stays generic; the reason and attack vector go to the log
// only.
func (s *Service) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.ShouldProtect(r) {
			next.ServeHTTP(w, r)
			return
		}

		res := s.Validate(r)
		if !res.Valid {
			s.log.WarnContext(r.Context(), "csrf validation failed",
				"reason", res.Reason,
				"attack_vector", res.AttackVector,
				"method", r.Method,
				"path", r.URL.Path,
			)
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// TokenHandler returns a handler that issues a fresh token. Frontends call
// it before the first unsafe request and after any consumed token.
func (s *Service) TokenHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, err := s.Issue(w, r)
		if err != nil {
			s.log.ErrorContext(r.Context(), "csrf token issue failed", "error", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"token":      tok,
			"headerName": s.cfg.HeaderName,
		})
	})
}
