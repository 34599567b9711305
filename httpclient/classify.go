package httpclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	apierrors "github.com/kbukum/apikit/errors"
	"github.com/kbukum/apikit/logger"
)

// Classifier turns a raw Response into a decoded payload or an APIError.
type Classifier struct {
	// Policy selects how 422 responses are treated.
	Policy UnprocessablePolicy
	// Logger receives classification warnings and decode failures.
	Logger *logger.Logger
}

// NewClassifier creates a Classifier. A nil logger discards output.
func NewClassifier(policy UnprocessablePolicy, log *logger.Logger) *Classifier {
	if policy == "" {
		policy = UnprocessableError
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Classifier{Policy: policy, Logger: log}
}

// Classify decodes a successful response or returns the APIError for its
// status. An empty success body yields true. A body that is not valid JSON
// yields the decoder's error unchanged.
func (c *Classifier) Classify(resp *Response, method, path string) (any, error) {
	if err := c.Check(resp, method, path); err != nil {
		return nil, err
	}
	return c.decode(resp.Body)
}

// Check returns the APIError for a non-success status, or nil.
func (c *Classifier) Check(resp *Response, method, path string) error {
	if c.accepts(resp.StatusCode) {
		return nil
	}
	apiErr := apierrors.NewAPIError(resp.StatusCode, method, path, resp.Body)
	c.log().Warn(fmt.Sprintf("Http Client %s: %s", apiErr.Kind.String(), apiErr.Message), map[string]interface{}{
		logger.FieldErrorClass: apiErr.Kind.String(),
		logger.FieldStatus:     resp.StatusCode,
		logger.FieldMethod:     apiErr.Method,
		logger.FieldPath:       path,
	})
	return apiErr
}

func (c *Classifier) accepts(status int) bool {
	if status >= 200 && status <= 299 {
		return true
	}
	return status == http.StatusUnprocessableEntity && c.Policy == UnprocessableDecode
}

func (c *Classifier) decode(body []byte) (any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return true, nil
	}
	v, err := DecodeJSON(body)
	if err != nil {
		c.log().Error("Http Client response decode failed", map[string]interface{}{
			logger.FieldErrorClass: fmt.Sprintf("%T", err),
			logger.FieldError:      err.Error(),
			"json":                 string(body),
		})
		return nil, err
	}
	return v, nil
}

func (c *Classifier) log() *logger.Logger {
	if c.Logger == nil {
		return logger.NewNop()
	}
	return c.Logger
}

// DecodeJSON decodes body into generic values without coercion: strings stay
// strings and numbers are json.Number. Invalid input returns the
// *json.SyntaxError from encoding/json.
func DecodeJSON(body []byte) (any, error) {
	if !json.Valid(body) {
		var discard any
		return nil, json.Unmarshal(body, &discard)
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
