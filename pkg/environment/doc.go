// Package environment provides deployment environment detection and context
// propagation.
//
// Security-sensitive components relax or tighten behavior depending on the
// environment (for example, the CSRF service only skips Origin validation
// outside production), so the environment is parsed once at startup from
// APP_ENV and handed down explicitly rather than read ad hoc.
//
// # Usage
//
//	var cfg environment.Config
//	config.MustLoad(&cfg)
//
//	env := cfg.Current()
//	if env.IsProduction() {
//		// enforce strict checks
//	}
package environment
