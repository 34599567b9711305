package errors

import (
	stderrors "errors"
	"fmt"
)

// ConfigError reports a fatal configuration problem found while building a client.
type ConfigError struct {
	// Source is the configuration file involved, if any.
	Source string
	// Environment is the environment section involved, if any.
	Environment string
	// Client is the logical client name involved, if any.
	Client string
	// Reason describes the problem.
	Reason string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("apikit: config: %s: %v", e.Reason, e.Err)
	}
	return "apikit: config: " + e.Reason
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error { return e.Err }

// MissingConfigFile reports a configuration file that does not exist.
func MissingConfigFile(path string) *ConfigError {
	return &ConfigError{
		Source: path,
		Reason: fmt.Sprintf("could not load config file: %s", path),
	}
}

// MissingEnvironment reports a file without a section for the environment.
func MissingEnvironment(env, path string) *ConfigError {
	return &ConfigError{
		Source:      path,
		Environment: env,
		Reason:      fmt.Sprintf("you must supply a http config for the '%s' environment in '%s'", env, path),
	}
}

// MissingClient reports an environment section without the requested client.
func MissingClient(client, env, path string) *ConfigError {
	return &ConfigError{
		Source:      path,
		Environment: env,
		Client:      client,
		Reason:      fmt.Sprintf("no http client config '%s' for the '%s' environment in '%s'", client, env, path),
	}
}

// MissingClientID reports a client constructed without an identifier.
func MissingClientID(source string) *ConfigError {
	return &ConfigError{
		Source: source,
		Reason: fmt.Sprintf("you must supply a http client config id (as defined in %s)", source),
	}
}

// InvalidConfig wraps a decoding or validation failure for a client section.
func InvalidConfig(client, source string, err error) *ConfigError {
	return &ConfigError{
		Source: source,
		Client: client,
		Reason: fmt.Sprintf("invalid config for client '%s'", client),
		Err:    err,
	}
}

// IsConfigError checks if err is (or wraps) a *ConfigError.
func IsConfigError(err error) bool {
	var cfgErr *ConfigError
	return stderrors.As(err, &cfgErr)
}
