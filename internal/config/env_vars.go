package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	portEnvVar        = "PORT"
	appNameVar        = "APP_NAME"
	envVar            = "ENV"
	nodeEnvVar        = "NODE_ENV"
	logLevelVar       = "LOG_LEVEL"
	httpTimeoutEnvVar = "HTTP_TIMEOUT"

	defaultEnv         = "DEV"
	defaultHTTPTimeout = 10 * time.Second
)

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	IsProduction() bool
	GetLogLevel() string
	GetHTTPTimeout() time.Duration
}

type EnvVars struct {
	port        string
	appName     string
	env         string
	logLevel    string
	httpTimeout time.Duration
}

var _ EnvConfig = EnvVars{}

func loadEnvVars(lookup LookupFunc) EnvVars {
	env := getEnv(lookup, envVar, "")
	if env == "" {
		env = getEnv(lookup, nodeEnvVar, defaultEnv)
	}

	timeout := defaultHTTPTimeout
	if raw := getEnv(lookup, httpTimeoutEnvVar, ""); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			timeout = d
		}
	}

	return EnvVars{
		port:        getEnv(lookup, portEnvVar, "8080"),
		appName:     getEnv(lookup, appNameVar, "Zest Compilers"),
		env:         env,
		logLevel:    strings.ToLower(getEnv(lookup, logLevelVar, "")),
		httpTimeout: timeout,
	}
}

func (e EnvVars) GetPort() string {
	if strings.HasPrefix(e.port, ":") {
		return e.port
	}
	return fmt.Sprintf(":%s", e.port)
}

func (e EnvVars) GetAppName() string {
	return e.appName
}

func (e EnvVars) GetEnv() string {
	return e.env
}

// IsProduction reports whether the deployment mode is production.
// Secrets are only enforced in this mode.
func (e EnvVars) IsProduction() bool {
	return strings.EqualFold(e.env, "production") || strings.EqualFold(e.env, "prod")
}

// GetLogLevel returns the configured level, defaulting to debug outside
// production and info in production.
func (e EnvVars) GetLogLevel() string {
	if e.logLevel != "" {
		return e.logLevel
	}
	if e.IsProduction() {
		return "info"
	}
	return "debug"
}

func (e EnvVars) GetHTTPTimeout() time.Duration {
	return e.httpTimeout
}
