// Package config loads per-client settings from an environment-keyed document.
//
// The document is keyed by environment, then by logical client name:
//
//	development:
//	  places:
//	    protocol: https
//	    server: places.example.com
//	    base_uri: /api/v2
//
// Load resolves the file and the environment, decodes the client section into
// a struct with Viper (unknown keys are rejected), applies defaults and
// validates it. Values may be overridden with APP_<CLIENT>_<KEY> environment
// variables, e.g. APP_PLACES_SERVER. A .env file is loaded first when found.
package config
