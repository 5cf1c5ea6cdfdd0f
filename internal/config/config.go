package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/dshills/listsync/internal/config/loader"
	"github.com/dshills/listsync/internal/diff"
	"github.com/dshills/listsync/internal/store"
	"github.com/dshills/listsync/internal/watch"
)

// Log output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config holds all listsync settings.
type Config struct {
	Store   StoreConfig   `toml:"store" yaml:"store"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
	Watch   WatchConfig   `toml:"watch" yaml:"watch"`
	Source  SourceConfig  `toml:"source" yaml:"source"`
}

// StoreConfig configures the observable store.
type StoreConfig struct {
	Name            string `toml:"name" yaml:"name"`
	ReplaceMode     string `toml:"replaceMode" yaml:"replaceMode"`
	AbsentItems     string `toml:"absentItems" yaml:"absentItems"`
	DetectMoves     bool   `toml:"detectMoves" yaml:"detectMoves"`
	MaxEditDistance int    `toml:"maxEditDistance" yaml:"maxEditDistance"`
}

// LoggingConfig configures the zerolog logger.
type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// WatchConfig configures file watching.
type WatchConfig struct {
	Delay Duration `toml:"delay" yaml:"delay"`
}

// SourceConfig configures how JSON input is turned into items.
type SourceConfig struct {
	IDPath string `toml:"idPath" yaml:"idPath"`
}

// Duration is a time.Duration written as a string such as "250ms".
type Duration time.Duration

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Store: StoreConfig{
			ReplaceMode:     store.ReplaceSmart.String(),
			AbsentItems:     store.AllowAbsent.String(),
			DetectMoves:     true,
			MaxEditDistance: diff.DefaultMaxEditDistance,
		},
		Logging: LoggingConfig{
			Level:  zerolog.InfoLevel.String(),
			Format: FormatConsole,
		},
		Watch: WatchConfig{
			Delay: Duration(watch.DefaultDelay),
		},
		Source: SourceConfig{
			IDPath: "id",
		},
	}
}

// Validate checks every setting and reports all failures joined together.
func (c Config) Validate() error {
	var errs []error
	invalid := func(path string, value any, msg string) {
		errs = append(errs, &ValidationError{Path: path, Value: value, Message: msg})
	}

	if _, err := ParseReplaceMode(c.Store.ReplaceMode); err != nil {
		invalid("store.replaceMode", c.Store.ReplaceMode, "must be smart or naive")
	}
	if _, err := ParseAbsentPolicy(c.Store.AbsentItems); err != nil {
		invalid("store.absentItems", c.Store.AbsentItems, "must be allow or reject")
	}
	if c.Store.MaxEditDistance < 0 {
		invalid("store.maxEditDistance", c.Store.MaxEditDistance, "must not be negative")
	}
	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		invalid("logging.level", c.Logging.Level, "unknown level")
	}
	if c.Logging.Format != FormatConsole && c.Logging.Format != FormatJSON {
		invalid("logging.format", c.Logging.Format, "must be console or json")
	}
	if c.Watch.Delay < 0 {
		invalid("watch.delay", time.Duration(c.Watch.Delay), "must not be negative")
	}
	if c.Source.IDPath == "" {
		invalid("source.idPath", c.Source.IDPath, "must not be empty")
	}

	return errors.Join(errs...)
}

// ParseReplaceMode converts a configuration name to a store.ReplaceMode.
func ParseReplaceMode(s string) (store.ReplaceMode, error) {
	switch s {
	case store.ReplaceSmart.String():
		return store.ReplaceSmart, nil
	case store.ReplaceNaive.String():
		return store.ReplaceNaive, nil
	}
	return 0, fmt.Errorf("%w: replace mode %q", ErrInvalidValue, s)
}

// ParseAbsentPolicy converts a configuration name to a store.AbsentPolicy.
func ParseAbsentPolicy(s string) (store.AbsentPolicy, error) {
	switch s {
	case store.AllowAbsent.String():
		return store.AllowAbsent, nil
	case store.RejectAbsent.String():
		return store.RejectAbsent, nil
	}
	return 0, fmt.Errorf("%w: absent policy %q", ErrInvalidValue, s)
}

// StoreOptions translates the store settings into store options, followed
// by extra. Invalid names fall back to the store defaults; call Validate
// first to reject them.
func (c Config) StoreOptions(extra ...store.Option) []store.Option {
	opts := []store.Option{
		store.WithDetectMoves(c.Store.DetectMoves),
		store.WithMaxEditDistance(c.Store.MaxEditDistance),
	}
	if c.Store.Name != "" {
		opts = append(opts, store.WithName(c.Store.Name))
	}
	if mode, err := ParseReplaceMode(c.Store.ReplaceMode); err == nil {
		opts = append(opts, store.WithReplaceMode(mode))
	}
	if policy, err := ParseAbsentPolicy(c.Store.AbsentItems); err == nil {
		opts = append(opts, store.WithAbsentPolicy(policy))
	}
	return append(opts, extra...)
}

// Logger builds a zerolog logger writing to w at the configured level.
// Console output is colored only when w is a terminal.
func (c Config) Logger(w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(c.Logging.Level)
	if err != nil {
		return zerolog.Nop(), &ValidationError{Path: "logging.level", Value: c.Logging.Level, Message: err.Error()}
	}

	out := w
	switch c.Logging.Format {
	case FormatConsole:
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: !isTerminal(w)}
	case FormatJSON:
	default:
		return zerolog.Nop(), &ValidationError{Path: "logging.format", Value: c.Logging.Format, Message: "must be console or json"}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Map returns the configuration as a nested map keyed like the files.
func (c Config) Map() (map[string]any, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, err
	}
	return loader.ParseTOML("<config>", data)
}

// TOML renders the configuration as a TOML document.
func (c Config) TOML() ([]byte, error) {
	return toml.Marshal(c)
}

// Loader assembles a Config from defaults, files and the environment.
type Loader struct {
	fs        loader.FileSystem
	envPrefix string
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFS sets the file system config files are read from.
func WithFS(fsys loader.FileSystem) LoaderOption {
	return func(l *Loader) {
		l.fs = fsys
	}
}

// WithEnvPrefix sets the environment variable prefix.
// An empty prefix disables environment variables.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// NewLoader creates a Loader reading from the OS with the default prefix.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		fs:        loader.DefaultFS(),
		envPrefix: loader.DefaultEnvPrefix,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads paths in order, then the environment, and returns the
// validated result. Missing files are skipped.
func (l *Loader) Load(paths ...string) (Config, error) {
	merged := make(map[string]any)

	for _, path := range paths {
		src, err := loader.ForFile(l.fs, path)
		if err != nil {
			return Config{}, err
		}
		data, err := src.Load()
		if err != nil {
			return Config{}, err
		}
		merged = loader.DeepMerge(merged, data)
	}

	if l.envPrefix != "" {
		data, err := loader.NewEnvLoader(l.envPrefix).Load()
		if err != nil {
			return Config{}, err
		}
		merged = loader.DeepMerge(merged, data)
	}

	cfg, err := decode(merged)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load is shorthand for NewLoader().Load(paths...).
func Load(paths ...string) (Config, error) {
	return NewLoader().Load(paths...)
}

// decode overlays settings on Default. The map is round-tripped through
// TOML so file and environment values share one typed decoder.
func decode(settings map[string]any) (Config, error) {
	cfg := Default()
	if len(settings) == 0 {
		return cfg, nil
	}

	data, err := toml.Marshal(settings)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return cfg, nil
}
