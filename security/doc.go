// Package security provides TLS configuration for apikit connections.
//
// TrustResolver picks the CA material for https clients in priority order:
// an explicit CA file, the platform bundle on macOS, then the system CA
// directory.
//
//	trust, err := security.NewTrustResolver().Resolve(cfg.CAFile)
//	tlsConfig, err := trust.Build()
package security
