// Package csrf implements double-submit cookie CSRF protection with
// single-use tokens.
//
// Three artifacts participate in every protected request:
//
//   - an HttpOnly, signed session binding cookie that scripts cannot read
//   - a readable token cookie holding the current signed token
//   - the X-CSRF-Token request header, which the frontend fills by reading
//     the token cookie
//
// A cross-site attacker can make the browser send both cookies but cannot
// read the token cookie to fill the header, so the header/cookie match
// proves same-origin script execution. Tokens additionally carry a digest of
// the session binding, are tracked server-side as SHA-256 hashes, and are
// consumed on first successful validation, so a leaked token cannot be
// replayed.
//
// Validation is staged and each failure is classified with a reason and a
// probable attack vector for security monitoring. Responses to clients never
// reveal the stage that failed.
//
//	service, err := csrf.New(cfg,
//		csrf.WithEnvironment(env),
//		csrf.WithLogger(log),
//		csrf.WithStore(csrf.NewRedisStore(rdb, cfg.SessionTTL, cfg.MaxTokensPerSession)),
//	)
//
//	mux.Handle("/csrf/token", service.TokenHandler())
//	mux.Use(service.Protect)
//
// Clients without cookies are grouped by a keyed network fingerprint so
// token budgets still apply to them; the grouping is best effort and never
// substitutes for the cookie binding during validation.
package csrf
