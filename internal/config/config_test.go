// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestConfig points CLUBPULSE_CFG at a testdata file and reloads.
func setupTestConfig(t *testing.T, testdataFile string, namespace ...string) Type {
	t.Helper()

	absPath, err := filepath.Abs(filepath.Join("testdata", testdataFile))
	require.NoError(t, err, "failed to get absolute path for test config")
	t.Setenv("CLUBPULSE_CFG", absPath)

	t.Cleanup(func() { Config = Type{} })

	cfg, err := Load(namespace...)
	require.NoError(t, err)
	return cfg
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		testFile  string
		checkFunc func(*testing.T, Type)
	}{
		{
			name:     "nested structure",
			testFile: "simple.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				api, ok := cfg.Data["api"].(map[string]interface{})
				assert.True(t, ok, "api should be a map")
				assert.Equal(t, "https://clubs.example.org", api["url"])
			},
		},
		{
			name:     "mixed types",
			testFile: "mixed-types.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				assert.Equal(t, "test-club", cfg.Data["name"])
				assert.Equal(t, 1, cfg.Data["version"])
				assert.Equal(t, true, cfg.Data["enabled"])
				assert.Equal(t, 30.5, cfg.Data["timeout"])
				tags, ok := cfg.Data["tags"].([]interface{})
				assert.True(t, ok)
				assert.Len(t, tags, 2)
			},
		},
		{
			name:     "empty file",
			testFile: "empty.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				assert.NotEmpty(t, cfg.Source, "should have a source path")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := setupTestConfig(t, tt.testFile)
			tt.checkFunc(t, cfg)
		})
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	t.Setenv("CLUBPULSE_CFG", "/nonexistent/path/clubpulse.yaml")
	t.Cleanup(func() { Config = Type{} })

	_, err := Load()
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestGetString_Namespace(t *testing.T) {
	setupTestConfig(t, "simple.yaml", "members")

	v, err := GetString("output")
	assert.NoError(t, err)
	assert.Equal(t, "json", v)

	v, err = GetString("api.url")
	assert.NoError(t, err)
	assert.Equal(t, "https://clubs.example.org", v)

	v, err = GetString("missing", "fallback")
	assert.NoError(t, err)
	assert.Equal(t, "fallback", v)

	_, err = GetString("missing")
	assert.ErrorIs(t, err, ErrNoValue)
}

func TestGetInt(t *testing.T) {
	setupTestConfig(t, "mixed-types.yaml")

	tests := []struct {
		key     string
		want    int
		wantErr bool
	}{
		{key: "version", want: 1},
		{key: "timeout", want: 30},
		{key: "cache.clean", want: 24},
		{key: "name", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := GetInt(tt.key)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrWrongType)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetDuration(t *testing.T) {
	setupTestConfig(t, "mixed-types.yaml")

	d, err := GetDuration("api.timeout")
	assert.NoError(t, err)
	assert.Equal(t, 5*time.Second, d)

	d, err = GetDuration("cache.stale")
	assert.NoError(t, err)
	assert.Equal(t, 10*time.Second, d)

	d, err = GetDuration("poll.interval")
	assert.NoError(t, err)
	assert.Equal(t, time.Minute, d)

	d, err = GetDuration("nope", 3*time.Second)
	assert.NoError(t, err)
	assert.Equal(t, 3*time.Second, d)
}

func TestGetStringSlice(t *testing.T) {
	setupTestConfig(t, "simple.yaml")

	v, err := GetStringSlice("members.defaults")
	assert.NoError(t, err)
	assert.Equal(t, []string{"--sort name"}, v)

	v, err = GetStringSlice("api.url")
	assert.NoError(t, err)
	assert.Equal(t, []string{"https://clubs.example.org"}, v)
}

func TestLoadSettings(t *testing.T) {
	t.Run("file values and defaults", func(t *testing.T) {
		setupTestConfig(t, "mixed-types.yaml")

		s, err := LoadSettings()
		require.NoError(t, err)
		assert.Equal(t, DefaultAPIURL, s.APIURL)
		assert.Equal(t, 5*time.Second, s.APITimeout)
		assert.Equal(t, 10*time.Second, s.CacheStale)
		assert.Equal(t, 24, s.CacheClean)
		assert.Equal(t, time.Minute, s.PollInterval)
		assert.Equal(t, DefaultSessionBackend, s.SessionBackend)
	})

	t.Run("environment wins", func(t *testing.T) {
		setupTestConfig(t, "simple.yaml")
		t.Setenv("CLUBPULSE_API_URL", "http://localhost:8000/api")
		t.Setenv("CLUBPULSE_API_TIMEOUT", "2s")
		t.Setenv("CLUBPULSE_SESSION_BACKEND", "memory")

		s, err := LoadSettings()
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8000/api", s.APIURL)
		assert.Equal(t, "s3cret", s.APIToken)
		assert.Equal(t, 2*time.Second, s.APITimeout)
		assert.Equal(t, "memory", s.SessionBackend)
	})

	t.Run("bad duration", func(t *testing.T) {
		setupTestConfig(t, "bad-duration.yaml")

		_, err := LoadSettings()
		assert.Error(t, err)
	})
}

func TestLoad_SearchPaths(t *testing.T) {
	home := t.TempDir()
	xdg := t.TempDir()
	t.Setenv("CLUBPULSE_CFG", "")
	t.Setenv("APPDATA", "")
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Cleanup(func() { Config = Type{} })

	assert.Equal(t, []string{
		filepath.Join(xdg, "clubpulse", FileName),
		filepath.Join(xdg, FileName),
		filepath.Join(home, ".config", "clubpulse", FileName),
		filepath.Join(home, FileName),
	}, searchPaths())

	_, err := Load()
	assert.ErrorIs(t, err, ErrNoFilePath)

	write := func(path, body string) {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}

	write(filepath.Join(home, FileName), "output: yaml\n")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, FileName), cfg.Source)

	write(filepath.Join(xdg, "clubpulse", FileName), "output: json\n")
	cfg, err = Load("members")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(xdg, "clubpulse", FileName), cfg.Source)

	v, err := GetString("output")
	require.NoError(t, err)
	assert.Equal(t, "json", v)
}

func TestGet_WrongTypeIgnoresDefault(t *testing.T) {
	setupTestConfig(t, "mixed-types.yaml")

	_, err := GetInt("name", 7)
	assert.ErrorIs(t, err, ErrWrongType)

	_, err = GetStringSlice("enabled")
	assert.ErrorIs(t, err, ErrWrongType)

	_, err = GetDuration("name")
	assert.Error(t, err)
}
