package httpclient

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/kbukum/apikit/config"
)

const (
	defaultTimeout = 30 * time.Second
	// minTimeout rejects unit-less YAML integers, which decode as nanoseconds.
	minTimeout = time.Millisecond
)

// UnprocessablePolicy controls how a 422 response is classified.
type UnprocessablePolicy string

const (
	// UnprocessableError raises an UnprocessableEntity APIError (default).
	UnprocessableError UnprocessablePolicy = "error"
	// UnprocessableDecode decodes a 422 body and returns it like a success.
	UnprocessableDecode UnprocessablePolicy = "decode"
)

// BodyEncoding selects how write payloads are serialized.
type BodyEncoding string

const (
	// EncodingJSON sends application/json bodies (default).
	EncodingJSON BodyEncoding = "json"
	// EncodingForm sends application/x-www-form-urlencoded bodies.
	EncodingForm BodyEncoding = "form"
)

// Config describes one logical API client. It is read from the environment
// section of the client document and never mutated after construction.
type Config struct {
	// Name is the logical client name. Set by LoadConfig from the client id.
	Name string `yaml:"-" mapstructure:"-"`

	// Protocol is "http" or "https".
	Protocol string `yaml:"protocol" mapstructure:"protocol" validate:"required,oneof=http https"`

	// Server is the remote host name or IP address.
	Server string `yaml:"server" mapstructure:"server" validate:"required"`

	// Port overrides the protocol's default port when non-zero.
	Port int `yaml:"port" mapstructure:"port" validate:"min=0,max=65535"`

	// BaseURI is the path prefix prepended to every request path.
	BaseURI string `yaml:"base_uri" mapstructure:"base_uri"`

	// CAFile is an explicit CA bundle for https connections.
	CAFile string `yaml:"ca_file" mapstructure:"ca_file" validate:"omitempty,file"`

	// BasicUsername and BasicPassword enable HTTP basic auth on every request.
	BasicUsername string `yaml:"http_basic_username" mapstructure:"http_basic_username" validate:"required_with=BasicPassword"`
	BasicPassword string `yaml:"http_basic_password" mapstructure:"http_basic_password"`

	// IncludeRequestIDHeader sends the context request id as X-Request-Id.
	IncludeRequestIDHeader bool `yaml:"include_request_id_header" mapstructure:"include_request_id_header"`

	// Timeout is the per-request deadline. Defaults to 30s. Values need a
	// unit ("5s"); anything below 1ms is rejected.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// UnprocessableEntity selects the 422 policy: "error" (default) or "decode".
	UnprocessableEntity UnprocessablePolicy `yaml:"unprocessable_entity" mapstructure:"unprocessable_entity" validate:"omitempty,oneof=error decode"`

	// BodyEncoding selects the write body format: "json" (default) or "form".
	BodyEncoding BodyEncoding `yaml:"body_encoding" mapstructure:"body_encoding" validate:"omitempty,oneof=json form"`

	// Headers are default headers applied to all requests.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// TLS holds optional client certificate and verification settings.
	// CA trust comes from CAFile and the platform defaults.
	TLS *TLSConfig `yaml:"tls" mapstructure:"tls"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.UnprocessableEntity == "" {
		c.UnprocessableEntity = UnprocessableError
	}
	if c.BodyEncoding == "" {
		c.BodyEncoding = EncodingJSON
	}
}

// Validate checks invariants that struct tags cannot express.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("httpclient: timeout must be positive")
	}
	if c.Timeout < minTimeout {
		return fmt.Errorf("httpclient: timeout %v is below %v, set a unit such as \"5s\"", c.Timeout, minTimeout)
	}
	if c.Server != "" && !validServer(c.Server) {
		return fmt.Errorf("httpclient: server %q must be a host name or IP address", c.Server)
	}
	if c.TLS != nil {
		if err := c.TLS.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// BaseURL returns "{protocol}://{server}[:port]". IPv6 servers are bracketed.
func (c *Config) BaseURL() string {
	server := strings.TrimSuffix(strings.TrimPrefix(c.Server, "["), "]")
	host := server
	switch {
	case c.Port != 0:
		host = net.JoinHostPort(server, strconv.Itoa(c.Port))
	case strings.Contains(server, ":"):
		host = "[" + server + "]"
	}
	return c.Protocol + "://" + host
}

// validServer accepts IP literals (IPv6 optionally bracketed) and host names.
// Host names may carry underscores, as container service names often do.
func validServer(server string) bool {
	if net.ParseIP(strings.TrimSuffix(strings.TrimPrefix(server, "["), "]")) != nil {
		return true
	}
	return !strings.ContainsAny(server, "/:?#@[] \t")
}

// IsHTTPS reports whether the client talks TLS.
func (c *Config) IsHTTPS() bool {
	return c.Protocol == "https"
}

// LoadConfig reads the configuration for clientID from the client document.
func LoadConfig(clientID string, opts ...config.LoaderOption) (Config, error) {
	var cfg Config
	if _, err := config.Load(clientID, &cfg, opts...); err != nil {
		return Config{}, err
	}
	cfg.Name = clientID
	return cfg, nil
}
