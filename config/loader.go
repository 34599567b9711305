package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apierrors "github.com/kbukum/apikit/errors"
	"github.com/kbukum/apikit/validation"
)

const (
	// DefaultConfigFile is the conventional location of the client document.
	DefaultConfigFile = "config/api_clients.yml"
	// EnvironmentVar selects the environment section when none is given explicitly.
	EnvironmentVar = "APP_ENV"
	// DefaultEnvironment is used when neither an option nor APP_ENV is set.
	DefaultEnvironment = "development"
	// EnvPrefix prefixes per-client environment overrides.
	EnvPrefix = "APP"
)

// FileSystem interface for file operations (useful for testing).
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
	Getwd() (string, error)
}

// RealFileSystem implements FileSystem using actual file operations.
type RealFileSystem struct{}

func (rfs *RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (rfs *RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

func (rfs *RealFileSystem) Getwd() (string, error) {
	return os.Getwd()
}

// Resolver handles finding and resolving config and env files.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles returns explicit paths if provided, otherwise searches for them.
func (cr *Resolver) ResolveFiles(opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{
		ConfigFile: opts.ConfigFile,
		EnvFile:    opts.EnvFile,
	}
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = cr.firstExisting(configSearchPaths)
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = cr.firstExisting(envSearchPaths)
	}
	return resolved
}

var configSearchPaths = []string{
	"./" + DefaultConfigFile,
	"../" + DefaultConfigFile,
	"../../" + DefaultConfigFile,
	"./api_clients.yml",
}

var envSearchPaths = []string{
	"./.env",
	"./config/.env",
	"../.env",
}

func (cr *Resolver) firstExisting(paths []string) string {
	for _, path := range paths {
		if cr.FileSystem.Exists(path) {
			return path
		}
	}
	return ""
}

// LoaderConfig holds dependencies and optional overrides.
type LoaderConfig struct {
	FileSystem  FileSystem
	ConfigFile  string // Direct config file path (optional)
	EnvFile     string // Direct env file path (optional)
	Environment string // Environment section (optional)
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithEnvironment selects the environment section explicitly.
func WithEnvironment(env string) LoaderOption {
	return func(lc *LoaderConfig) { lc.Environment = env }
}

// Source describes where a loaded client configuration came from.
type Source struct {
	File        string
	Environment string
	Client      string
}

// defaulter is implemented by configs that fill zero values before validation.
type defaulter interface {
	ApplyDefaults()
}

// validator is implemented by configs with checks beyond struct tags.
type validator interface {
	Validate() error
}

// Load decodes the section for clientID into target, which must be a pointer
// to a struct with mapstructure tags.
func Load(clientID string, target any, opts ...LoaderOption) (Source, error) {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = &RealFileSystem{}
	}

	if clientID == "" {
		return Source{}, apierrors.MissingClientID(displayPath(lc.ConfigFile))
	}

	resolver := &Resolver{FileSystem: lc.FileSystem}
	files := resolver.ResolveFiles(lc)

	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			return Source{}, &apierrors.ConfigError{
				Source: files.EnvFile,
				Reason: fmt.Sprintf("failed to load env file %s", files.EnvFile),
				Err:    err,
			}
		}
	}

	src := Source{
		File:        files.ConfigFile,
		Environment: resolveEnvironment(lc.Environment),
		Client:      clientID,
	}

	if src.File == "" || !lc.FileSystem.Exists(src.File) {
		return src, apierrors.MissingConfigFile(displayPath(src.File))
	}

	return src, loadSection(src, target)
}

// loadSection reads the file and decodes the environment/client section.
func loadSection(src Source, target any) error {
	v := viper.New()
	v.SetConfigFile(src.File)
	if err := v.ReadInConfig(); err != nil {
		return &apierrors.ConfigError{
			Source: src.File,
			Reason: fmt.Sprintf("failed to read config file %s", src.File),
			Err:    err,
		}
	}

	envSection := v.Sub(src.Environment)
	if envSection == nil {
		return apierrors.MissingEnvironment(src.Environment, src.File)
	}

	section := envSection.Sub(src.Client)
	if section == nil {
		return apierrors.MissingClient(src.Client, src.Environment, src.File)
	}

	bindEnv(section, src.Client)

	if err := section.Unmarshal(target, func(dc *mapstructure.DecoderConfig) {
		dc.ErrorUnused = true
	}); err != nil {
		return apierrors.InvalidConfig(src.Client, src.File, err)
	}

	if d, ok := target.(defaulter); ok {
		d.ApplyDefaults()
	}
	if err := validation.Validate(target); err != nil {
		return apierrors.InvalidConfig(src.Client, src.File, err)
	}
	if val, ok := target.(validator); ok {
		if err := val.Validate(); err != nil {
			return apierrors.InvalidConfig(src.Client, src.File, err)
		}
	}
	return nil
}

// bindEnv binds every key of the client section to APP_<CLIENT>_<KEY>.
// A sub-tree returned by viper.Sub does not inherit AutomaticEnv, so each
// key is bound explicitly.
func bindEnv(section *viper.Viper, client string) {
	prefix := envPrefix(client)
	for _, key := range section.AllKeys() {
		name := strings.ToUpper(prefix + "_" + envKeyReplacer.Replace(key))
		_ = section.BindEnv(key, name)
	}
}

func resolveEnvironment(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(EnvironmentVar); env != "" {
		return env
	}
	return DefaultEnvironment
}

var envKeyReplacer = strings.NewReplacer(".", "_", "-", "_")

func envPrefix(clientID string) string {
	return EnvPrefix + "_" + envKeyReplacer.Replace(clientID)
}

func displayPath(path string) string {
	if path == "" {
		return DefaultConfigFile
	}
	return path
}
