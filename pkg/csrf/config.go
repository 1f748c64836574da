package csrf

import "time"

// Config holds CSRF protection settings loaded from the environment.
type Config struct {
	Secret string `env:"CSRF_SECRET,required"` // master secret, 32+ chars; signing and fingerprint keys are derived from it

	CookieName      string `env:"CSRF_COOKIE_NAME" envDefault:"__Host-csrf"`             // HttpOnly session binding cookie
	TokenCookieName string `env:"CSRF_TOKEN_COOKIE_NAME" envDefault:"__Host-csrf-token"` // readable token cookie for double submit
	HeaderName      string `env:"CSRF_HEADER_NAME" envDefault:"X-CSRF-Token"`
	AltHeaderName   string `env:"CSRF_ALT_HEADER_NAME" envDefault:"X-XSRF-Token"` // legacy header accepted as fallback

	SessionTTL          time.Duration `env:"CSRF_SESSION_TTL" envDefault:"1h"`    // tokens and session records older than this are rejected
	SweepInterval       time.Duration `env:"CSRF_SWEEP_INTERVAL" envDefault:"5m"` // 0 disables the background sweeper
	MaxTokensPerSession int           `env:"CSRF_MAX_TOKENS_PER_SESSION" envDefault:"8"`

	FrontendURL    string   `env:"FRONTEND_URL"`                                // primary allowed origin
	AllowedOrigins []string `env:"CSRF_ALLOWED_ORIGINS" envSeparator:","`       // additional allowed origins
	PublicPaths    []string `env:"CSRF_PUBLIC_PATHS" envSeparator:"," envDefault:"/auth/login,/auth/register,/auth/password-reset,/webhooks,/health,/metrics"` // path prefixes exempt from protection
}
