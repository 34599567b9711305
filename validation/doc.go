// Package validation validates configuration structs with go-playground/validator.
//
// Field names in error messages use the mapstructure key, so a failure on
// ClientConfig.Server reads "server: is required".
package validation
