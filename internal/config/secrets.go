package config

import (
	"github.com/zestacademy/zestcompilers/internal/errors"
)

// Secret is either a present value or missing. It is resolved at the point
// of use against the deployment mode.
type Secret struct {
	name    string
	value   string
	present bool
}

func PresentSecret(name, value string) Secret {
	return Secret{name: name, value: value, present: true}
}

func MissingSecret(name string) Secret {
	return Secret{name: name}
}

func secretFromEnv(lookup LookupFunc, name string) Secret {
	value, ok := lookup(name)
	if !ok || value == "" {
		return MissingSecret(name)
	}
	return PresentSecret(name, value)
}

func (s Secret) Name() string {
	return s.name
}

func (s Secret) IsPresent() bool {
	return s.present
}

// Resolve returns the secret value. A missing secret is a
// ConfigurationError in production and an empty string otherwise.
func (s Secret) Resolve(production bool) (string, error) {
	if s.present {
		return s.value, nil
	}
	if production {
		return "", &errors.ConfigurationError{Variable: s.name}
	}
	return "", nil
}

// String keeps secret values out of logs and error messages.
func (s Secret) String() string {
	if !s.present {
		return "[MISSING]"
	}
	return "[REDACTED]"
}
