package environment

// Config reads the deployment environment from the process environment.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"development"` // AppEnv is the deployment environment name: development, staging or production.
}

// Current returns the parsed environment from the config.
func (c Config) Current() Environment {
	return Parse(c.AppEnv)
}
