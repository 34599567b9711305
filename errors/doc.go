// Package errors defines the error taxonomy shared by apikit clients.
//
// Every non-success HTTP response becomes exactly one *APIError whose Kind is a
// pure function of the status code (see KindForStatus). Kind values implement
// error, so callers can branch with the standard library:
//
//	if errors.Is(err, apierrors.KindTooManyRequests) { ... }
//
// Configuration problems detected while building a client are reported as
// *ConfigError and are never retried.
package errors
