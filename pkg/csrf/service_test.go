package csrf_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Symple44/TopSteel-sub029/pkg/csrf"
	"github.com/Symple44/TopSteel-sub029/pkg/environment"
)

const testFrontend = "https://app.topsteel.example"

func testConfig() csrf.Config {
	return csrf.Config{
		Secret:              "0123456789abcdef0123456789abcdef",
		CookieName:          "csrf",
		TokenCookieName:     "csrf-token",
		HeaderName:          "X-CSRF-Token",
		AltHeaderName:       "X-XSRF-Token",
		SessionTTL:          time.Hour,
		MaxTokensPerSession: 4,
		FrontendURL:         testFrontend,
		PublicPaths:         []string{"/health"},
	}
}

func newService(t *testing.T, opts ...csrf.Option) *csrf.Service {
	t.Helper()

	s, err := csrf.New(testConfig(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// issueToken obtains a token and the cookies that came with it.
func issueToken(t *testing.T, s *csrf.Service) (string, []*http.Cookie) {
	t.Helper()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/csrf/token", nil)

	tok, err := s.Issue(w, r)
	require.NoError(t, err)
	require.NotEmpty(t, tok)
	return tok, w.Result().Cookies()
}

// unsafeRequest builds a POST carrying the issued cookies, the token header,
// and an allowed Origin.
func unsafeRequest(tok string, cookies []*http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader("{}"))
	r.Header.Set("Origin", testFrontend)
	r.Header.Set("X-CSRF-Token", tok)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	return r
}

func TestServiceNew(t *testing.T) {
	t.Parallel()

	t.Run("requires a secret", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig()
		cfg.Secret = ""
		_, err := csrf.New(cfg)
		assert.ErrorIs(t, err, csrf.ErrSecretRequired)
	})

	t.Run("rejects short secrets", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig()
		cfg.Secret = "too-short"
		_, err := csrf.New(cfg)
		assert.Error(t, err)
	})
}

func TestServiceIssueAndValidate(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		s := newService(t)
		tok, cookies := issueToken(t, s)

		res := s.Validate(unsafeRequest(tok, cookies))
		assert.True(t, res.Valid, "reason=%s vector=%s", res.Reason, res.AttackVector)
		assert.Empty(t, res.Reason)
	})

	t.Run("tokens are single use", func(t *testing.T) {
		t.Parallel()

		s := newService(t)
		tok, cookies := issueToken(t, s)

		res := s.Validate(unsafeRequest(tok, cookies))
		require.True(t, res.Valid)

		res = s.Validate(unsafeRequest(tok, cookies))
		assert.False(t, res.Valid)
		assert.Equal(t, csrf.ReasonInvalidToken, res.Reason)
	})

	t.Run("alternate header accepted", func(t *testing.T) {
		t.Parallel()

		s := newService(t)
		tok, cookies := issueToken(t, s)

		r := unsafeRequest(tok, cookies)
		r.Header.Del("X-CSRF-Token")
		r.Header.Set("X-XSRF-Token", tok)

		res := s.Validate(r)
		assert.True(t, res.Valid)
	})

	t.Run("form field accepted", func(t *testing.T) {
		t.Parallel()

		s := newService(t)
		tok, cookies := issueToken(t, s)

		r := httptest.NewRequest(http.MethodPost, "/orders",
			strings.NewReader("csrf_token="+tok))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		r.Header.Set("Origin", testFrontend)
		for _, c := range cookies {
			r.AddCookie(c)
		}

		res := s.Validate(r)
		assert.True(t, res.Valid, "reason=%s", res.Reason)
	})

	t.Run("issue mirrors token in response header", func(t *testing.T) {
		t.Parallel()

		s := newService(t)
		w := httptest.NewRecorder()
		tok, err := s.Issue(w, httptest.NewRequest(http.MethodGet, "/csrf/token", nil))
		require.NoError(t, err)

		assert.Equal(t, tok, w.Header().Get("X-CSRF-Token"))
		assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	})

	t.Run("issue sets both cookies", func(t *testing.T) {
		t.Parallel()

		s := newService(t)
		tok, cookies := issueToken(t, s)

		var binding, readable *http.Cookie
		for _, c := range cookies {
			switch c.Name {
			case "csrf":
				binding = c
			case "csrf-token":
				readable = c
			}
		}
		require.NotNil(t, binding)
		require.NotNil(t, readable)

		assert.True(t, binding.HttpOnly)
		assert.False(t, readable.HttpOnly)
		assert.Equal(t, tok, readable.Value)
		// The binding cookie must never contain the token.
		assert.NotEqual(t, tok, binding.Value)
	})
}

func TestServiceValidateFailures(t *testing.T) {
	t.Parallel()

	t.Run("missing token", func(t *testing.T) {
		t.Parallel()

		s := newService(t)
		_, cookies := issueToken(t, s)

		r := unsafeRequest("", cookies)
		r.Header.Del("X-CSRF-Token")

		res := s.Validate(r)
		assert.Equal(t, csrf.ReasonMissingToken, res.Reason)
	})

	t.Run("malformed token", func(t *testing.T) {
		t.Parallel()

		s := newService(t)
		_, cookies := issueToken(t, s)

		res := s.Validate(unsafeRequest("not-a-token", cookies))
		assert.Equal(t, csrf.ReasonInvalidFormat, res.Reason)
	})

	t.Run("foreign origin", func(t *testing.T) {
		t.Parallel()

		s := newService(t)
		tok, cookies := issueToken(t, s)

		r := unsafeRequest(tok, cookies)
		r.Header.Set("Origin", "https://evil.example")

		res := s.Validate(r)
		assert.Equal(t, csrf.ReasonInvalidOrigin, res.Reason)
		assert.Equal(t, "cross_origin_request", res.AttackVector)
	})

	t.Run("foreign referer", func(t *testing.T) {
		t.Parallel()

		s := newService(t)
		tok, cookies := issueToken(t, s)

		r := unsafeRequest(tok, cookies)
		r.Header.Del("Origin")
		r.Header.Set("Referer", "https://evil.example/form")

		res := s.Validate(r)
		assert.Equal(t, csrf.ReasonInvalidReferer, res.Reason)
	})

	t.Run("allowed referer passes without origin", func(t *testing.T) {
		t.Parallel()

		s := newService(t)
		tok, cookies := issueToken(t, s)

		r := unsafeRequest(tok, cookies)
		r.Header.Del("Origin")
		r.Header.Set("Referer", testFrontend+"/orders/new")

		res := s.Validate(r)
		assert.True(t, res.Valid)
	})

	t.Run("missing origin and referer pass outside production", func(t *testing.T) {
		t.Parallel()

		s := newService(t)
		tok, cookies := issueToken(t, s)

		r := unsafeRequest(tok, cookies)
		r.Header.Del("Origin")

		res := s.Validate(r)
		assert.True(t, res.Valid)
	})

	t.Run("missing origin and referer rejected in production", func(t *testing.T) {
		t.Parallel()

		s := newService(t, csrf.WithEnvironment(environment.Production))
		tok, cookies := issueToken(t, s)

		r := unsafeRequest(tok, cookies)
		r.Header.Del("Origin")

		res := s.Validate(r)
		assert.Equal(t, csrf.ReasonInvalidOrigin, res.Reason)
		assert.Equal(t, "missing_origin", res.AttackVector)
	})

	t.Run("forged token", func(t *testing.T) {
		t.Parallel()

		s := newService(t)
		_, cookies := issueToken(t, s)

		// Well-formed but signed with a different key.
		cfg := testConfig()
		cfg.Secret = "ffffffffffffffffffffffffffffffff"
		forger, err := csrf.New(cfg)
		require.NoError(t, err)
		t.Cleanup(func() { _ = forger.Close() })
		forged, _ := issueToken(t, forger)

		res := s.Validate(unsafeRequest(forged, cookies))
		assert.Equal(t, csrf.ReasonInvalidToken, res.Reason)
		assert.Equal(t, "forged_token", res.AttackVector)
	})

	t.Run("token without its session cookie", func(t *testing.T) {
		t.Parallel()

		s := newService(t)
		tok, cookies := issueToken(t, s)

		var tokenOnly []*http.Cookie
		for _, c := range cookies {
			if c.Name == "csrf-token" {
				tokenOnly = append(tokenOnly, c)
			}
		}

		res := s.Validate(unsafeRequest(tok, tokenOnly))
		assert.Equal(t, csrf.ReasonInvalidToken, res.Reason)
		assert.Equal(t, "session_mismatch", res.AttackVector)
	})

	t.Run("double submit failure does not burn the token", func(t *testing.T) {
		t.Parallel()

		s := newService(t)
		tok, cookies := issueToken(t, s)

		var withoutTokenCookie []*http.Cookie
		for _, c := range cookies {
			if c.Name != "csrf-token" {
				withoutTokenCookie = append(withoutTokenCookie, c)
			}
		}

		res := s.Validate(unsafeRequest(tok, withoutTokenCookie))
		assert.Equal(t, csrf.ReasonDoubleSubmitFailure, res.Reason)

		// The token survives the failed double submit and remains usable.
		res = s.Validate(unsafeRequest(tok, cookies))
		assert.True(t, res.Valid)
	})

	t.Run("expired token", func(t *testing.T) {
		t.Parallel()

		now := time.Now()
		current := now
		s := newService(t, csrf.WithClock(func() time.Time { return current }))

		tok, cookies := issueToken(t, s)
		current = now.Add(2 * time.Hour)

		res := s.Validate(unsafeRequest(tok, cookies))
		assert.Equal(t, csrf.ReasonInvalidToken, res.Reason)
		assert.Equal(t, "expired_token", res.AttackVector)
	})
}

func TestShouldProtect(t *testing.T) {
	t.Parallel()

	s := newService(t)

	cases := []struct {
		method string
		path   string
		want   bool
	}{
		{http.MethodGet, "/orders", false},
		{http.MethodHead, "/orders", false},
		{http.MethodOptions, "/orders", false},
		{http.MethodPost, "/orders", true},
		{http.MethodPut, "/orders/1", true},
		{http.MethodPatch, "/orders/1", true},
		{http.MethodDelete, "/orders/1", true},
		{http.MethodPost, "/health/live", false},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(tc.method, tc.path, nil)
			assert.Equal(t, tc.want, s.ShouldProtect(r))
		})
	}
}

func TestProtectMiddleware(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	t.Run("safe request passes through", func(t *testing.T) {
		t.Parallel()

		s := newService(t)
		w := httptest.NewRecorder()
		s.Protect(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders", nil))
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("unsafe request without token rejected", func(t *testing.T) {
		t.Parallel()

		s := newService(t)
		w := httptest.NewRecorder()
		s.Protect(next).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/orders", nil))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("valid request passes", func(t *testing.T) {
		t.Parallel()

		s := newService(t)
		tok, cookies := issueToken(t, s)

		w := httptest.NewRecorder()
		s.Protect(next).ServeHTTP(w, unsafeRequest(tok, cookies))
		assert.Equal(t, http.StatusCreated, w.Code)
	})
}

func TestTokenHandler(t *testing.T) {
	t.Parallel()

	s := newService(t)

	w := httptest.NewRecorder()
	s.TokenHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/csrf/token", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), `"token"`)
	assert.Contains(t, w.Body.String(), `"headerName":"X-CSRF-Token"`)
	assert.NotEmpty(t, w.Result().Cookies())
}
