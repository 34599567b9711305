// Package logger provides structured logging for apikit clients using zerolog.
//
// Clients default to NewNop so nothing is written unless a logger is injected.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.NewDefault("billing-client").WithComponent("httpclient")
//	log.WithContext(ctx).Info("request sent", logger.Fields("path", "/invoices"))
package logger
