package version

import (
	"runtime/debug"
	"sync"
)

// Product is the product token used in the User-Agent header.
const Product = "apikit"

// ModulePath is the import path looked up in the host binary's build info.
const ModulePath = "github.com/kbukum/apikit"

// Set at build time using -ldflags.
var (
	Version   = "dev"
	GitCommit = ""
)

var readBuildInfo = sync.OnceValues(debug.ReadBuildInfo)

// Build identifies the apikit code compiled into the running binary.
type Build struct {
	Version string `json:"version"`
	Commit  string `json:"commit,omitempty"`
	Dirty   bool   `json:"dirty,omitempty"`
}

// Current returns the build identity. Values set by -ldflags win; otherwise
// the module version and vcs stamp are read from the binary's build info.
func Current() Build {
	info, ok := readBuildInfo()
	if !ok {
		info = nil
	}
	return resolve(Version, GitCommit, info)
}

func resolve(version, commit string, info *debug.BuildInfo) Build {
	b := Build{Version: version, Commit: commit}
	if info == nil {
		return b
	}

	if b.Version == "dev" {
		if v := moduleVersion(info); v != "" {
			b.Version = v
		}
	}

	// vcs settings describe the main module only.
	if b.Commit == "" && info.Main.Path == ModulePath {
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				b.Commit = s.Value
			case "vcs.modified":
				b.Dirty = s.Value == "true"
			}
		}
	}
	if len(b.Commit) > 7 {
		b.Commit = b.Commit[:7]
	}
	return b
}

func moduleVersion(info *debug.BuildInfo) string {
	if info.Main.Path == ModulePath && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	for _, dep := range info.Deps {
		if dep.Path != ModulePath {
			continue
		}
		if dep.Replace != nil && dep.Replace.Version != "" {
			return dep.Replace.Version
		}
		return dep.Version
	}
	return ""
}

// String returns "1.4.0", "1.4.0-abc1234" or "1.4.0-abc1234-dirty".
func (b Build) String() string {
	s := b.Version
	if b.Commit != "" {
		s += "-" + b.Commit
		if b.Dirty {
			s += "-dirty"
		}
	}
	return s
}

// UserAgent returns the User-Agent header value, e.g. "apikit/1.4.0".
func UserAgent() string {
	return Product + "/" + Current().String()
}
