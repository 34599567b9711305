package version

import (
	"runtime/debug"
	"testing"
)

func pin(t *testing.T, version, commit string) {
	t.Helper()
	origVersion, origCommit := Version, GitCommit
	Version, GitCommit = version, commit
	t.Cleanup(func() {
		Version, GitCommit = origVersion, origCommit
	})
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		version string
		commit  string
		info    *debug.BuildInfo
		want    Build
	}{
		{
			name:    "no build info",
			version: "dev",
			want:    Build{Version: "dev"},
		},
		{
			name:    "ldflags win",
			version: "1.4.0",
			commit:  "abc1234def5678",
			info: &debug.BuildInfo{
				Main: debug.Module{Path: ModulePath, Version: "v9.9.9"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "fff0000"},
					{Key: "vcs.modified", Value: "true"},
				},
			},
			want: Build{Version: "1.4.0", Commit: "abc1234"},
		},
		{
			name:    "dependency version",
			version: "dev",
			info: &debug.BuildInfo{
				Main: debug.Module{Path: "example.com/geo-service", Version: "(devel)"},
				Deps: []*debug.Module{
					{Path: "github.com/gin-gonic/gin", Version: "v1.11.0"},
					{Path: ModulePath, Version: "v1.4.0"},
				},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "0123456789abcdef"},
				},
			},
			want: Build{Version: "v1.4.0"},
		},
		{
			name:    "replaced dependency",
			version: "dev",
			info: &debug.BuildInfo{
				Main: debug.Module{Path: "example.com/geo-service"},
				Deps: []*debug.Module{
					{Path: ModulePath, Version: "v1.4.0", Replace: &debug.Module{Path: "../apikit", Version: "v1.5.0-rc1"}},
				},
			},
			want: Build{Version: "v1.5.0-rc1"},
		},
		{
			name:    "main module from vcs",
			version: "dev",
			info: &debug.BuildInfo{
				Main: debug.Module{Path: ModulePath, Version: "(devel)"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "0123456789abcdef"},
					{Key: "vcs.modified", Value: "true"},
				},
			},
			want: Build{Version: "dev", Commit: "0123456", Dirty: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolve(tt.version, tt.commit, tt.info); got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestBuild_String(t *testing.T) {
	tests := []struct {
		build Build
		want  string
	}{
		{Build{Version: "dev"}, "dev"},
		{Build{Version: "1.4.0", Commit: "abc1234"}, "1.4.0-abc1234"},
		{Build{Version: "1.4.0", Commit: "abc1234", Dirty: true}, "1.4.0-abc1234-dirty"},
		{Build{Version: "1.4.0", Dirty: true}, "1.4.0"},
	}
	for _, tt := range tests {
		if got := tt.build.String(); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}

func TestUserAgent(t *testing.T) {
	pin(t, "1.4.0", "abc1234def")
	if got := UserAgent(); got != "apikit/1.4.0-abc1234" {
		t.Errorf("expected 'apikit/1.4.0-abc1234', got %q", got)
	}

	pin(t, "2.0.0", "fedcba9")
	if got := UserAgent(); got != "apikit/2.0.0-fedcba9" {
		t.Errorf("expected 'apikit/2.0.0-fedcba9', got %q", got)
	}
}
