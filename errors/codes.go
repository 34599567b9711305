package errors

import "net/http"

// Kind is the semantic status class of an API error.
type Kind int

const (
	// KindUnknownStatus is the catch-all for status codes without a dedicated kind.
	KindUnknownStatus Kind = iota

	// 4xx
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindMethodNotAllowed
	KindNotAcceptable
	KindRequestTimeout
	KindUnprocessableEntity
	KindTooManyRequests

	// 5xx
	KindInternalServerError
	KindNotImplemented
	KindBadGateway
	KindServiceUnavailable
	KindGatewayTimeout
)

var kindNames = map[Kind]string{
	KindUnknownStatus:       "UnknownStatus",
	KindBadRequest:          "BadRequest",
	KindUnauthorized:        "Unauthorized",
	KindForbidden:           "Forbidden",
	KindNotFound:            "NotFound",
	KindMethodNotAllowed:    "MethodNotAllowed",
	KindNotAcceptable:       "NotAcceptable",
	KindRequestTimeout:      "RequestTimeout",
	KindUnprocessableEntity: "UnprocessableEntity",
	KindTooManyRequests:     "TooManyRequests",
	KindInternalServerError: "InternalServerError",
	KindNotImplemented:      "NotImplemented",
	KindBadGateway:          "BadGateway",
	KindServiceUnavailable:  "ServiceUnavailable",
	KindGatewayTimeout:      "GatewayTimeout",
}

// statusKinds is the status -> kind table. Anything missing is KindUnknownStatus.
var statusKinds = map[int]Kind{
	http.StatusBadRequest:          KindBadRequest,
	http.StatusUnauthorized:        KindUnauthorized,
	http.StatusForbidden:           KindForbidden,
	http.StatusNotFound:            KindNotFound,
	http.StatusMethodNotAllowed:    KindMethodNotAllowed,
	http.StatusNotAcceptable:       KindNotAcceptable,
	http.StatusRequestTimeout:      KindRequestTimeout,
	http.StatusUnprocessableEntity: KindUnprocessableEntity,
	http.StatusTooManyRequests:     KindTooManyRequests,
	http.StatusInternalServerError: KindInternalServerError,
	http.StatusNotImplemented:      KindNotImplemented,
	http.StatusBadGateway:          KindBadGateway,
	http.StatusServiceUnavailable:  KindServiceUnavailable,
	http.StatusGatewayTimeout:      KindGatewayTimeout,
}

var retryableKinds = map[Kind]bool{
	KindRequestTimeout:     true,
	KindTooManyRequests:    true,
	KindBadGateway:         true,
	KindServiceUnavailable: true,
	KindGatewayTimeout:     true,
}

// KindForStatus maps an HTTP status code to its Kind.
func KindForStatus(status int) Kind {
	if k, ok := statusKinds[status]; ok {
		return k
	}
	return KindUnknownStatus
}

// String returns the variant name, e.g. "NotFound".
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnknownStatus]
}

// Error lets a Kind be used as an errors.Is target.
func (k Kind) Error() string {
	return "apikit: " + k.String()
}

// Retryable reports whether a caller may reasonably retry a request that
// failed with this kind.
func (k Kind) Retryable() bool {
	return retryableKinds[k]
}

// IsServerSide reports whether the kind belongs to the 5xx range.
func (k Kind) IsServerSide() bool {
	return k >= KindInternalServerError && k <= KindGatewayTimeout
}
