package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tuningConfig struct {
	WanderRadius float64       `mapstructure:"wander_radius" validate:"gt=0"`
	Interval     time.Duration `mapstructure:"interval"`
	Archetype    string        `mapstructure:"archetype" validate:"required,oneof=fsm tree"`
}

type testConfig struct {
	Name   string            `mapstructure:"name"`
	Tuning tuningConfig      `mapstructure:"tuning"`
	Labels map[string]string `mapstructure:"labels"`
	Tags   []string          `mapstructure:"tags"`
	Extra  *tuningConfig     `mapstructure:"extra"`
}

func createTestConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const sampleYAML = `
name: arena
tuning:
  wander_radius: 12.5
  interval: 2s
  archetype: fsm
labels:
  region: eu
`

func TestManager_LoadFile(t *testing.T) {
	path := createTestConfigFile(t, sampleYAML)

	mgr := NewManager()
	require.NoError(t, mgr.LoadFile(path))

	assert.Equal(t, "arena", mgr.GetString("name"))
	assert.True(t, mgr.IsSet("tuning.wander_radius"))
	assert.False(t, mgr.IsSet("tuning.missing"))

	var cfg testConfig
	require.NoError(t, mgr.Unmarshal(&cfg))
	assert.Equal(t, 12.5, cfg.Tuning.WanderRadius)
	assert.Equal(t, 2*time.Second, cfg.Tuning.Interval)
	assert.Equal(t, "eu", cfg.Labels["region"])

	var tuning tuningConfig
	require.NoError(t, mgr.UnmarshalKey("tuning", &tuning))
	assert.Equal(t, "fsm", tuning.Archetype)
}

func TestManager_LoadFileMissing(t *testing.T) {
	err := NewManager().LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestManager_LoadBytesAndDefaults(t *testing.T) {
	mgr := NewManager(WithDefaults(map[string]any{
		"tuning.interval": "5s",
		"name":            "default",
	}))
	require.NoError(t, mgr.LoadBytes([]byte("name: embedded\n"), "yaml"))

	assert.Equal(t, "embedded", mgr.GetString("name"))
	var cfg testConfig
	require.NoError(t, mgr.Unmarshal(&cfg))
	assert.Equal(t, 5*time.Second, cfg.Tuning.Interval)
}

func TestStructDefaults(t *testing.T) {
	defaults, err := StructDefaults("tuning", &tuningConfig{WanderRadius: 5, Interval: 3 * time.Second, Archetype: "fsm"})
	require.NoError(t, err)
	require.Contains(t, defaults, "tuning")

	mgr := NewManager(WithDefaults(defaults))
	require.NoError(t, mgr.LoadBytes([]byte("tuning:\n  interval: 0s\n  wander_radius: 0\n"), "yaml"))

	var cfg testConfig
	require.NoError(t, mgr.Unmarshal(&cfg))
	assert.Zero(t, cfg.Tuning.Interval, "explicit zero in the file is kept")
	assert.Zero(t, cfg.Tuning.WanderRadius)
	assert.Equal(t, "fsm", cfg.Tuning.Archetype, "missing key falls back to the default")

	flat, err := StructDefaults("", &tuningConfig{Archetype: "tree"})
	require.NoError(t, err)
	assert.Equal(t, "tree", flat["archetype"])
}

func TestManager_EnvOverride(t *testing.T) {
	path := createTestConfigFile(t, sampleYAML)
	t.Setenv("DRONETEST_TUNING_WANDER_RADIUS", "40")

	mgr := NewManager(WithEnvPrefix("DRONETEST"))
	require.NoError(t, mgr.LoadFile(path))

	var cfg testConfig
	require.NoError(t, mgr.Unmarshal(&cfg))
	assert.Equal(t, 40.0, cfg.Tuning.WanderRadius)
}

func TestMergeConfig(t *testing.T) {
	t.Run("nil handling", func(t *testing.T) {
		_, err := MergeConfig[testConfig](nil, nil)
		assert.ErrorIs(t, err, ErrNilConfig)

		src := &testConfig{Name: "src"}
		got, err := MergeConfig(nil, src)
		require.NoError(t, err)
		assert.Same(t, src, got)

		dst := &testConfig{Name: "dst"}
		got, err = MergeConfig(dst, nil)
		require.NoError(t, err)
		assert.Same(t, dst, got)
	})

	t.Run("non zero fields override", func(t *testing.T) {
		dst := &testConfig{
			Name:   "dst",
			Tuning: tuningConfig{WanderRadius: 10, Interval: time.Second, Archetype: "fsm"},
			Labels: map[string]string{"a": "1", "b": "2"},
			Tags:   []string{"x", "y"},
		}
		src := &testConfig{
			Tuning: tuningConfig{WanderRadius: 20},
			Labels: map[string]string{"b": "3", "c": "4"},
			Tags:   []string{"z"},
			Extra:  &tuningConfig{Archetype: "tree"},
		}

		got, err := MergeConfig(dst, src)
		require.NoError(t, err)
		assert.Equal(t, "dst", got.Name)
		assert.Equal(t, 20.0, got.Tuning.WanderRadius)
		assert.Equal(t, time.Second, got.Tuning.Interval)
		assert.Equal(t, map[string]string{"a": "1", "b": "3", "c": "4"}, got.Labels)
		assert.Equal(t, []string{"z"}, got.Tags)
		require.NotNil(t, got.Extra)
		assert.Equal(t, "tree", got.Extra.Archetype)
	})
}

func TestValidator(t *testing.T) {
	v := NewValidator()

	assert.ErrorIs(t, v.Validate(nil), ErrNilConfig)
	assert.NoError(t, v.Validate(&tuningConfig{WanderRadius: 1, Archetype: "tree"}))

	err := v.Validate(&tuningConfig{WanderRadius: 0, Archetype: "bogus"})
	require.ErrorIs(t, err, ErrValidationFailed)
	assert.Contains(t, err.Error(), "wander_radius")
	assert.Contains(t, err.Error(), "must be one of [fsm tree]")

	assert.NoError(t, v.ValidateField(3, "min=1"))
	assert.ErrorIs(t, v.ValidateField(0, "min=1"), ErrValidationFailed)
}

func TestWatcher_Reload(t *testing.T) {
	path := createTestConfigFile(t, sampleYAML)

	w, err := NewWatcher[testConfig](path, &WatcherConfig{Debounce: 10 * time.Millisecond})
	require.NoError(t, err)
	defer w.Close()

	assert.Equal(t, 12.5, w.Current().Tuning.WanderRadius)

	changed := make(chan *testConfig, 4)
	w.OnChange(func(cfg *testConfig) { changed <- cfg })

	updated := `
name: arena
tuning:
  wander_radius: 30
  archetype: tree
`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	select {
	case cfg := <-changed:
		assert.Equal(t, 30.0, cfg.Tuning.WanderRadius)
		assert.Equal(t, "tree", w.Current().Tuning.Archetype)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not report change")
	}
}

func TestWatcher_InvalidReloadKeepsPrevious(t *testing.T) {
	path := createTestConfigFile(t, sampleYAML)

	w, err := NewWatcher[testConfig](path, &WatcherConfig{Debounce: 10 * time.Millisecond})
	require.NoError(t, err)
	defer w.Close()

	errs := make(chan error, 4)
	w.OnError(func(err error) { errs <- err })

	require.NoError(t, os.WriteFile(path, []byte("tuning:\n  wander_radius: -1\n  archetype: fsm\n"), 0o644))

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, ErrValidationFailed)
		assert.Equal(t, 12.5, w.Current().Tuning.WanderRadius)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not report error")
	}
}

func TestWatcher_DefaultsApplyOnReload(t *testing.T) {
	path := createTestConfigFile(t, sampleYAML)
	defaults, err := StructDefaults("tuning", &tuningConfig{WanderRadius: 5, Archetype: "tree"})
	require.NoError(t, err)

	w, err := NewWatcher[testConfig](path, &WatcherConfig{Debounce: 10 * time.Millisecond}, WithDefaults(defaults))
	require.NoError(t, err)
	defer w.Close()
	assert.Equal(t, 12.5, w.Current().Tuning.WanderRadius)

	changed := make(chan *testConfig, 4)
	w.OnChange(func(cfg *testConfig) { changed <- cfg })

	require.NoError(t, os.WriteFile(path, []byte("name: arena\ntuning:\n  interval: 0s\n"), 0o644))

	select {
	case cfg := <-changed:
		assert.Equal(t, 5.0, cfg.Tuning.WanderRadius, "removed key returns to the default")
		assert.Equal(t, "tree", cfg.Tuning.Archetype)
		assert.Zero(t, cfg.Tuning.Interval)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not report change")
	}
}

func TestWatcher_InitialValidation(t *testing.T) {
	path := createTestConfigFile(t, "tuning:\n  archetype: nope\n")

	_, err := NewWatcher[testConfig](path, nil)
	assert.ErrorIs(t, err, ErrValidationFailed)

	w, err := NewWatcher[testConfig](path, &WatcherConfig{SkipValidation: true})
	require.NoError(t, err)
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}

// callsign 实现 encoding.TextUnmarshaler，解析时统一转为大写
type callsign string

func (c *callsign) UnmarshalText(text []byte) error {
	*c = callsign(strings.ToUpper(string(text)))
	return nil
}

type decodeConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Tags     []string      `mapstructure:"tags"`
	Leader   callsign      `mapstructure:"leader"`
	Level    int           `mapstructure:"level"`
}

func TestManager_DecodeHooks(t *testing.T) {
	doubled := func(from, to reflect.Type, data any) (any, error) {
		if to.Kind() == reflect.Int && from.Kind() == reflect.Int {
			return data.(int) * 2, nil
		}
		return data, nil
	}
	mgr := NewManager(WithDecodeHooks(mapstructure.DecodeHookFuncType(doubled)))
	require.NoError(t, mgr.LoadBytes([]byte("interval: 250ms\ntags: red,blue\nleader: viper\nlevel: 3\n"), "yaml"))

	var cfg decodeConfig
	require.NoError(t, mgr.Unmarshal(&cfg))
	assert.Equal(t, 250*time.Millisecond, cfg.Interval)
	assert.Equal(t, []string{"red", "blue"}, cfg.Tags)
	assert.Equal(t, callsign("VIPER"), cfg.Leader)
	assert.Equal(t, 6, cfg.Level)

	var leader callsign
	require.NoError(t, mgr.UnmarshalKey("leader", &leader))
	assert.Equal(t, callsign("VIPER"), leader)
}
