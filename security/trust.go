package security

import (
	"fmt"
	"os"
	"runtime"

	apierrors "github.com/kbukum/apikit/errors"
)

const (
	// DarwinCABundle is the curl CA bundle installed by Homebrew on macOS.
	DarwinCABundle = "/usr/local/opt/curl-ca-bundle/share/ca-bundle.crt"
	// SystemCAPath is the system-wide CA directory on Linux distributions.
	SystemCAPath = "/etc/ssl/certs"
)

// PathChecker reports whether a path exists.
type PathChecker interface {
	Exists(path string) bool
}

type osPaths struct{}

func (osPaths) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// TrustResolver chooses the CA material for https connections.
type TrustResolver struct {
	Paths PathChecker
	GOOS  string
}

// NewTrustResolver returns a resolver for the running platform.
func NewTrustResolver() *TrustResolver {
	return &TrustResolver{Paths: osPaths{}, GOOS: runtime.GOOS}
}

// Resolve returns the TLS settings for caFile, falling back to the platform
// bundle on darwin and the system CA directory elsewhere. A missing darwin
// bundle is a fatal configuration error.
func (r *TrustResolver) Resolve(caFile string) (*TLSConfig, error) {
	if caFile != "" {
		return &TLSConfig{CAFile: caFile}, nil
	}

	paths := r.Paths
	if paths == nil {
		paths = osPaths{}
	}

	if r.GOOS == "darwin" {
		if !paths.Exists(DarwinCABundle) {
			return nil, &apierrors.ConfigError{
				Source: DarwinCABundle,
				Reason: fmt.Sprintf("unable to load certificate authority file at %s. Try `brew install curl-ca-bundle`", DarwinCABundle),
			}
		}
		return &TLSConfig{CAFile: DarwinCABundle}, nil
	}

	if paths.Exists(SystemCAPath) {
		return &TLSConfig{CAPath: SystemCAPath}, nil
	}
	// No CA directory on disk: defer to the Go runtime's system roots.
	return &TLSConfig{}, nil
}
