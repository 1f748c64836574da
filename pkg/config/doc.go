// Package config loads typed configuration structs from environment
// variables.
//
// It is a thin layer over github.com/caarlos0/env with two additions: a .env
// file is loaded once before the first parse (via github.com/joho/godotenv),
// and parsed configurations are cached per type so that independent components
// requesting the same config struct always see the same values.
//
// # Usage
//
//	type CsrfConfig struct {
//		Secret string `env:"CSRF_SECRET,required"`
//	}
//
//	var cfg CsrfConfig
//	config.MustLoad(&cfg)
//
// Required variables that are missing surface as an error joined with
// [ErrParsingConfig].
package config
