package config

import (
	"os"

	"github.com/zestacademy/zestcompilers/internal/errors"
)

// Config is the process-wide, read-only configuration. It is built once by
// New or Load and never mutated afterwards.
type Config interface {
	EnvConfig
	OAuthConfig
	CookieConfig
	CorsConfig
	ExecutionConfig

	// Validate reports every required secret missing in production.
	Validate() error
}

// LookupFunc resolves an environment variable, in the shape of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

type mainConfig struct {
	EnvVars
	OAuth
	Cookies
	Cors
	Execution
}

var _ Config = mainConfig{}

// New loads the configuration from the process environment.
func New() Config {
	return Load(os.LookupEnv)
}

// Load builds the configuration from lookup. Tests pass a map-backed lookup.
func Load(lookup LookupFunc) Config {
	if lookup == nil {
		lookup = func(string) (string, bool) { return "", false }
	}
	envVars := loadEnvVars(lookup)
	production := envVars.IsProduction()
	return mainConfig{
		EnvVars:   envVars,
		OAuth:     loadOAuth(lookup, production),
		Cookies:   loadCookies(production),
		Cors:      loadCors(lookup),
		Execution: loadExecution(lookup),
	}
}

func (c mainConfig) Validate() error {
	if !c.IsProduction() {
		return nil
	}
	var errs []error
	for _, secret := range c.OAuth.requiredSecrets() {
		if _, err := secret.Resolve(true); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// MapLookup adapts a map to a LookupFunc.
func MapLookup(values map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func getEnv(lookup LookupFunc, envVar, defaultValue string) string {
	value, ok := lookup(envVar)
	if !ok || value == "" {
		return defaultValue
	}
	return value
}
