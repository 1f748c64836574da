package csrf

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Symple44/TopSteel-sub029/pkg/cookie"
	"github.com/Symple44/TopSteel-sub029/pkg/environment"
	"github.com/Symple44/TopSteel-sub029/pkg/fingerprint"
	"github.com/Symple44/TopSteel-sub029/pkg/secrets"
	"github.com/Symple44/TopSteel-sub029/pkg/token"
)

// tokenPayload is the signed content of a CSRF token. It carries a digest of
// the session identifier, never the identifier itself, so the readable token
// cookie cannot leak the HttpOnly session binding.
type tokenPayload struct {
	SessionDigest string `json:"sd"`
	IssuedAt      int64  `json:"iat"`
	Nonce         string `json:"n"`
}

// Service issues and validates CSRF tokens using the double-submit cookie
// pattern: an HttpOnly session binding cookie, a readable token cookie, and
// a matching request header. Tokens are single use.
type Service struct {
	cfg     Config
	env     environment.Environment
	store   Store
	cookies *cookie.Manager
	log     *slog.Logger

	signKey []byte
	fpKey   []byte

	allowed map[string]struct{}

	done      chan struct{}
	closeOnce sync.Once

	now func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithStore replaces the default in-memory token store.
func WithStore(store Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets the logger for validation failures and sweeper activity.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithEnvironment sets the deployment environment. Production tightens
// origin checks and marks cookies Secure.
func WithEnvironment(env environment.Environment) Option {
	return func(s *Service) {
		s.env = env
	}
}

// WithClock replaces the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates the CSRF service. Signing and fingerprint keys are derived
// from cfg.Secret, so rotating the one master secret rotates everything.
// When cfg.SweepInterval is positive a background sweeper prunes expired
// sessions until Close is called.
func New(cfg Config, opts ...Option) (*Service, error) {
	if cfg.Secret == "" {
		return nil, ErrSecretRequired
	}

	signKey, err := secrets.DeriveKey([]byte(cfg.Secret), "csrf-token")
	if err != nil {
		return nil, fmt.Errorf("derive signing key: %w", err)
	}
	fpKey, err := secrets.DeriveKey([]byte(cfg.Secret), "csrf-fingerprint")
	if err != nil {
		return nil, fmt.Errorf("derive fingerprint key: %w", err)
	}

	s := &Service{
		cfg:     cfg,
		env:     environment.Development,
		log:     slog.New(slog.DiscardHandler),
		signKey: signKey,
		fpKey:   fpKey,
		done:    make(chan struct{}),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		s.store = NewMemoryStore(cfg.SessionTTL, cfg.MaxTokensPerSession)
	}

	s.cookies, err = cookie.New([]string{cfg.Secret},
		cookie.WithSecure(s.env.IsProduction()),
		cookie.WithSameSite(http.SameSiteLaxMode),
	)
	if err != nil {
		return nil, fmt.Errorf("cookie manager: %w", err)
	}

	s.allowed = make(map[string]struct{})
	for _, o := range append([]string{cfg.FrontendURL}, cfg.AllowedOrigins...) {
		if origin := normalizeOrigin(o); origin != "" {
			s.allowed[origin] = struct{}{}
		}
	}

	if cfg.SweepInterval > 0 {
		go s.sweeper()
	}
	return s, nil
}

// Issue generates a fresh token bound to the caller's session and sets both
// cookies: the HttpOnly session binding cookie and the readable token cookie
// the frontend mirrors into the request header.
func (s *Service) Issue(w http.ResponseWriter, r *http.Request) (string, error) {
	sid := s.ensureSession(w, r)

	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("csrf: generate nonce: %w", err)
	}

	tok, err := token.Generate(tokenPayload{
		SessionDigest: sessionDigest(sid),
		IssuedAt:      s.now().Unix(),
		Nonce:         base64.RawURLEncoding.EncodeToString(nonce),
	}, s.signKey)
	if err != nil {
		return "", fmt.Errorf("csrf: sign token: %w", err)
	}

	if err := s.store.AddToken(r.Context(), sid, hashToken(tok)); err != nil {
		return "", err
	}

	s.cookies.Set(w, s.cfg.TokenCookieName, tok,
		cookie.WithHTTPOnly(false),
		cookie.WithMaxAge(int(s.cfg.SessionTTL.Seconds())),
	)

	w.Header().Set(s.cfg.HeaderName, tok)
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	return tok, nil
}

// Validate runs the staged validation pipeline on an unsafe request. It
// never panics; unexpected failures become a VALIDATION_ERROR result.
func (s *Service) Validate(r *http.Request) (result Result) {
	defer func() {
		if rec := recover(); rec != nil {
			s.log.ErrorContext(r.Context(), "csrf validation panicked", "panic", rec)
			result = invalid(ReasonValidationError, "internal_error")
		}
	}()

	tok := s.extractToken(r)
	if tok == "" {
		return invalid(ReasonMissingToken, "token_absent")
	}

	if !token.WellFormed(tok) {
		return invalid(ReasonInvalidFormat, "malformed_token")
	}

	if res := s.checkOrigin(r); !res.Valid {
		return res
	}

	payload, err := token.Parse[tokenPayload](tok, s.signKey)
	if err != nil {
		return invalid(ReasonInvalidToken, "forged_token")
	}

	if s.cfg.SessionTTL > 0 && s.now().Sub(time.Unix(payload.IssuedAt, 0)) > s.cfg.SessionTTL {
		return invalid(ReasonInvalidToken, "expired_token")
	}

	sid := s.sessionID(r)
	if subtle.ConstantTimeCompare([]byte(payload.SessionDigest), []byte(sessionDigest(sid))) != 1 {
		return invalid(ReasonInvalidToken, "session_mismatch")
	}

	hash := hashToken(tok)
	live, err := s.store.HasToken(r.Context(), sid, hash)
	if err != nil {
		s.log.ErrorContext(r.Context(), "csrf store lookup failed", "error", err)
		return invalid(ReasonValidationError, "store_failure")
	}
	if !live {
		return invalid(ReasonInvalidToken, "unknown_or_reused_token")
	}

	// Double submit: the header must echo the readable cookie. Checked
	// before consumption so a mismatch does not burn a live token.
	cookieTok, err := s.cookies.Get(r, s.cfg.TokenCookieName)
	if err != nil || subtle.ConstantTimeCompare([]byte(cookieTok), []byte(tok)) != 1 {
		return invalid(ReasonDoubleSubmitFailure, "cookie_header_mismatch")
	}

	consumed, err := s.store.ConsumeToken(r.Context(), sid, hash)
	if err != nil {
		s.log.ErrorContext(r.Context(), "csrf store consume failed", "error", err)
		return invalid(ReasonValidationError, "store_failure")
	}
	if !consumed {
		return invalid(ReasonInvalidToken, "unknown_or_reused_token")
	}
	return valid()
}

// formField is the fallback token location for non-JavaScript form posts.
const formField = "csrf_token"

// extractToken finds the submitted token: primary header, legacy header,
// urlencoded form field, then query parameter.
func (s *Service) extractToken(r *http.Request) string {
	if tok := r.Header.Get(s.cfg.HeaderName); tok != "" {
		return tok
	}
	if s.cfg.AltHeaderName != "" {
		if tok := r.Header.Get(s.cfg.AltHeaderName); tok != "" {
			return tok
		}
	}
	if ct := r.Header.Get("Content-Type"); strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		if tok := r.PostFormValue(formField); tok != "" {
			return tok
		}
	}
	return r.URL.Query().Get(formField)
}

// ShouldProtect reports whether the request needs CSRF validation. Safe
// methods and configured public path prefixes are exempt.
func (s *Service) ShouldProtect(r *http.Request) bool {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return false
	}
	for _, prefix := range s.cfg.PublicPaths {
		if prefix != "" && strings.HasPrefix(r.URL.Path, prefix) {
			return false
		}
	}
	return true
}

// Sweep prunes expired sessions immediately, independent of the background
// sweeper.
func (s *Service) Sweep(ctx context.Context) error {
	return s.store.Sweep(ctx)
}

// Close stops the background sweeper and releases the store.
func (s *Service) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return s.store.Close()
}

// checkOrigin validates Origin first, then Referer. A request carrying
// neither passes outside production; in production browser requests always
// carry at least one of them, so absence is treated as cross-site.
func (s *Service) checkOrigin(r *http.Request) Result {
	origin := r.Header.Get("Origin")
	referer := r.Header.Get("Referer")

	if origin == "" && referer == "" {
		if s.env.IsProduction() {
			return invalid(ReasonInvalidOrigin, "missing_origin")
		}
		return valid()
	}

	if origin != "" && origin != "null" {
		if !s.originAllowed(r, origin) {
			return invalid(ReasonInvalidOrigin, "cross_origin_request")
		}
		return valid()
	}

	if referer != "" {
		u, err := url.Parse(referer)
		if err != nil || !s.originAllowed(r, u.Scheme+"://"+u.Host) {
			return invalid(ReasonInvalidReferer, "cross_site_referer")
		}
		return valid()
	}

	// Origin: null with no referer reveals a sandboxed or privacy context.
	return invalid(ReasonInvalidOrigin, "null_origin")
}

// originAllowed accepts the configured allow-list plus the request's own
// host, so a deployment serving frontend and API from one origin needs no
// configuration.
func (s *Service) originAllowed(r *http.Request, origin string) bool {
	norm := normalizeOrigin(origin)
	if norm == normalizeOrigin("https://"+r.Host) || norm == normalizeOrigin("http://"+r.Host) {
		return true
	}
	_, ok := s.allowed[norm]
	return ok
}

// ensureSession returns the caller's session identifier, minting and setting
// the HttpOnly binding cookie when the request carries none.
func (s *Service) ensureSession(w http.ResponseWriter, r *http.Request) string {
	if sid, err := s.cookies.GetSigned(r, s.cfg.CookieName); err == nil && sid != "" {
		return sid
	}

	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		// Degrade to the request fingerprint rather than failing issuance.
		return s.fallbackSession(r)
	}
	sid := base64.RawURLEncoding.EncodeToString(buf)

	s.cookies.SetSigned(w, s.cfg.CookieName, sid,
		cookie.WithMaxAge(int(s.cfg.SessionTTL.Seconds())),
	)
	return sid
}

// sessionID resolves the session for a validating request: the binding
// cookie when present, otherwise a keyed fingerprint of the client.
func (s *Service) sessionID(r *http.Request) string {
	if sid, err := s.cookies.GetSigned(r, s.cfg.CookieName); err == nil && sid != "" {
		return sid
	}
	return s.fallbackSession(r)
}

// fallbackSession groups cookie-less clients by network fingerprint. Best
// effort: clients behind one NAT with one browser share a session, which
// bounds their combined token budget but never lets them pass validation
// with each other's cookies.
func (s *Service) fallbackSession(r *http.Request) string {
	return "fp:" + fingerprint.Generate(r, s.fpKey)
}

func (s *Service) sweeper() {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if err := s.store.Sweep(context.Background()); err != nil {
				s.log.Error("csrf sweep failed", "error", err)
			}
		}
	}
}

func hashToken(tok string) string {
	sum := sha256.Sum256([]byte(tok))
	return hex.EncodeToString(sum[:])
}

// sessionDigest hides the session identifier inside token payloads.
func sessionDigest(sid string) string {
	sum := sha256.Sum256([]byte("csrf-session|" + sid))
	return hex.EncodeToString(sum[:16])
}

func normalizeOrigin(o string) string {
	return strings.TrimRight(strings.ToLower(strings.TrimSpace(o)), "/")
}
