// Package version identifies the apikit build sent in the User-Agent header.
//
// Version and commit can be pinned at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/apikit/version.Version=1.0.0"
//
// Otherwise they come from the host binary's module build info, so a
// service that depends on apikit v1.4.0 reports "apikit/v1.4.0".
package version
