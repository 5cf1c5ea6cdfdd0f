package config

import (
	"bytes"
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/listsync/internal/config/loader"
	"github.com/dshills/listsync/internal/diff"
)

type mapFS map[string]string

func (m mapFS) ReadFile(path string) ([]byte, error) {
	data, ok := m[path]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return []byte(data), nil
}

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "smart", cfg.Store.ReplaceMode)
	assert.Equal(t, "allow", cfg.Store.AbsentItems)
	assert.True(t, cfg.Store.DetectMoves)
	assert.Equal(t, diff.DefaultMaxEditDistance, cfg.Store.MaxEditDistance)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, FormatConsole, cfg.Logging.Format)
	assert.Equal(t, Duration(100*time.Millisecond), cfg.Watch.Delay)
	assert.Equal(t, "id", cfg.Source.IDPath)
}

func TestLoader_Layers(t *testing.T) {
	fsys := mapFS{
		"base.toml": `
[store]
name = "people"
replaceMode = "naive"
maxEditDistance = 10

[watch]
delay = "2s"
`,
		"override.yaml": `
store:
  maxEditDistance: 50
  detectMoves: false
logging:
  format: json
`,
	}

	t.Setenv("LISTSYNC_TEST_LOG_LEVEL", "debug")
	t.Setenv("LISTSYNC_TEST_STORE_ABSENT_ITEMS", "reject")

	cfg, err := NewLoader(WithFS(fsys), WithEnvPrefix("LISTSYNC_TEST_")).
		Load("base.toml", "missing.toml", "override.yaml")
	require.NoError(t, err)

	assert.Equal(t, "people", cfg.Store.Name)
	assert.Equal(t, "naive", cfg.Store.ReplaceMode)
	assert.Equal(t, "reject", cfg.Store.AbsentItems)
	assert.Equal(t, 50, cfg.Store.MaxEditDistance)
	assert.False(t, cfg.Store.DetectMoves)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, FormatJSON, cfg.Logging.Format)
	assert.Equal(t, Duration(2*time.Second), cfg.Watch.Delay)
	assert.Equal(t, "id", cfg.Source.IDPath, "untouched settings keep defaults")
}

func TestLoader_NoSources(t *testing.T) {
	cfg, err := NewLoader(WithFS(mapFS{}), WithEnvPrefix("")).Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoader_ParseError(t *testing.T) {
	fsys := mapFS{"bad.toml": "[store\n"}

	_, err := NewLoader(WithFS(fsys), WithEnvPrefix("")).Load("bad.toml")
	var pe *loader.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "bad.toml", pe.Path)
}

func TestLoader_UnsupportedFormat(t *testing.T) {
	_, err := NewLoader(WithFS(mapFS{}), WithEnvPrefix("")).Load("config.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config format")
}

func TestLoader_DecodeError(t *testing.T) {
	fsys := mapFS{"c.toml": "[watch]\ndelay = \"soon\"\n"}

	_, err := NewLoader(WithFS(fsys), WithEnvPrefix("")).Load("c.toml")
	assert.ErrorIs(t, err, ErrDecode)
}

func TestLoader_ValidationError(t *testing.T) {
	fsys := mapFS{"c.toml": `
[store]
replaceMode = "clever"
maxEditDistance = -1
`}

	_, err := NewLoader(WithFS(fsys), WithEnvPrefix("")).Load("c.toml")
	require.ErrorIs(t, err, ErrInvalidValue)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "store.replaceMode", ve.Path)
	assert.Contains(t, err.Error(), "store.maxEditDistance")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		path   string
	}{
		{"absent", func(c *Config) { c.Store.AbsentItems = "maybe" }, "store.absentItems"},
		{"level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"delay", func(c *Config) { c.Watch.Delay = -1 }, "watch.delay"},
		{"idPath", func(c *Config) { c.Source.IDPath = "" }, "source.idPath"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)

			err := cfg.Validate()
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.path, ve.Path)
		})
	}
}

func TestParseNames(t *testing.T) {
	for _, name := range []string{"smart", "naive"} {
		mode, err := ParseReplaceMode(name)
		require.NoError(t, err)
		assert.Equal(t, name, mode.String())
	}
	for _, name := range []string{"allow", "reject"} {
		policy, err := ParseAbsentPolicy(name)
		require.NoError(t, err)
		assert.Equal(t, name, policy.String())
	}

	_, err := ParseReplaceMode("Smart")
	assert.ErrorIs(t, err, ErrInvalidValue)
	_, err = ParseAbsentPolicy("")
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestStoreOptions(t *testing.T) {
	cfg := Default()
	assert.Len(t, cfg.StoreOptions(), 4, "unnamed store")

	cfg.Store.Name = "people"
	assert.Len(t, cfg.StoreOptions(), 5)

	cfg.Store.ReplaceMode = "bogus"
	assert.Len(t, cfg.StoreOptions(), 4, "invalid names are skipped")
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := Default()
	cfg.Logging.Format = FormatJSON
	cfg.Logging.Level = "warn"

	logger, err := cfg.Logger(&buf)
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())

	logger.Info().Msg("hidden")
	logger.Warn().Str("store", "people").Msg("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"store":"people"`)
	assert.Contains(t, out, `"message":"visible"`)
}

func TestLogger_Console(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Default().Logger(&buf)
	require.NoError(t, err)

	logger.Info().Msg("ready")
	assert.Contains(t, buf.String(), "ready")
	assert.False(t, strings.HasPrefix(buf.String(), "{"))
}

func TestLogger_Invalid(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "xml"

	_, err := cfg.Logger(&bytes.Buffer{})
	assert.True(t, errors.Is(err, ErrInvalidValue))
}

func TestMapAndTOML(t *testing.T) {
	cfg := Default()
	cfg.Watch.Delay = Duration(250 * time.Millisecond)

	m, err := cfg.Map()
	require.NoError(t, err)

	v, ok := loader.GetByPath(m, "watch.delay")
	require.True(t, ok)
	assert.Equal(t, "250ms", v)

	v, ok = loader.GetByPath(m, "store.replaceMode")
	require.True(t, ok)
	assert.Equal(t, "smart", v)

	data, err := cfg.TOML()
	require.NoError(t, err)

	back, err := decode(mustParse(t, data))
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

func TestDuration_UnmarshalText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("1m30s")))
	assert.Equal(t, Duration(90*time.Second), d)
	assert.Error(t, d.UnmarshalText([]byte("later")))
}

func mustParse(t *testing.T, data []byte) map[string]any {
	t.Helper()
	m, err := loader.ParseTOML("test", data)
	require.NoError(t, err)
	return m
}
