// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"gopkg.in/yaml.v3"
)

// FileName is the name of the config file searched for in the standard
// locations.
const FileName = "clubpulse.yaml"

var (
	ErrNotFound   = errors.New("config file not found")
	ErrNoValue    = errors.New("no value for key")
	ErrWrongType  = errors.New("value has the wrong type")
	ErrNoFilePath = errors.New("no config file found in standard locations")
)

// Type is a loaded config file. Keys are dotted paths into Data; when
// Namespace is set, <Namespace>.<key> is tried before <key>.
type Type struct {
	Source    string
	Namespace string
	Data      map[string]any
}

// Config is the process-wide config consulted by the Get* helpers.
var Config Type

func init() {
	_, _ = Load()
}

// Load reads the config file and makes it the process-wide Config. The
// optional namespace is typically the subcommand name. On error Config is
// left empty but namespaced, so lookups fall through to their defaults.
func Load(namespace ...string) (Type, error) {
	var ns string
	if len(namespace) > 0 {
		ns = namespace[0]
	}
	Config = Type{Namespace: ns}

	path, err := configPath()
	if err != nil {
		return Config, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var data map[string]any
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return Config, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	Config = Type{Source: path, Namespace: ns, Data: data}
	return Config, nil
}

// get returns the value at kspec, preferring the namespaced key.
func (cfg *Type) get(kspec string) (any, error) {
	keys := []string{kspec}
	if cfg.Namespace != "" {
		keys = []string{cfg.Namespace + "." + kspec, kspec}
	}

	for _, key := range keys {
		if v, ok := walk(cfg.Data, strings.Split(key, ".")); ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w among: %v", ErrNoValue, keys)
}

func walk(node any, path []string) (any, bool) {
	for _, seg := range path {
		m, ok := node.(map[string]any)
		if !ok {
			return nil, false
		}
		if node, ok = m[seg]; !ok {
			return nil, false
		}
	}
	return node, true
}

// lookup fetches key and converts it. A missing key yields the single
// default when one is given; a value of the wrong type is always an error.
func lookup[T any](key string, convert func(any) (T, error), defaultValue []T) (T, error) {
	var zero T

	val, err := Config.get(key)
	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return zero, err
	}

	out, err := convert(val)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", key, err)
	}
	return out, nil
}

// GetString returns a scalar as text.
func GetString(key string, defaultValue ...string) (string, error) {
	return lookup(key, func(v any) (string, error) {
		switch v := v.(type) {
		case string:
			return v, nil
		case int, float64, bool:
			return fmt.Sprint(v), nil
		}
		return "", ErrWrongType
	}, defaultValue)
}

// GetInt accepts YAML ints, floats (truncated) and numeric strings.
func GetInt(key string, defaultValue ...int) (int, error) {
	return lookup(key, func(v any) (int, error) {
		switch v := v.(type) {
		case int:
			return v, nil
		case int64:
			return int(v), nil
		case float64:
			return int(v), nil
		case string:
			if i, err := strconv.Atoi(v); err == nil {
				return i, nil
			}
		}
		return 0, ErrWrongType
	}, defaultValue)
}

// GetDuration accepts either a Go duration string ("30s") or a bare number,
// which is taken as seconds.
func GetDuration(key string, defaultValue ...time.Duration) (time.Duration, error) {
	return lookup(key, func(v any) (time.Duration, error) {
		switch v := v.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v) * time.Second, nil
		case float64:
			return time.Duration(v * float64(time.Second)), nil
		}
		return 0, ErrWrongType
	}, defaultValue)
}

// GetStringSlice returns a list value. A scalar string is returned as a one
// element slice.
func GetStringSlice(key string) ([]string, error) {
	return lookup(key, func(v any) ([]string, error) {
		switch v := v.(type) {
		case string:
			return []string{v}, nil
		case []any:
			out := make([]string, 0, len(v))
			for _, item := range v {
				out = append(out, fmt.Sprint(item))
			}
			return out, nil
		}
		return nil, ErrWrongType
	}, nil)
}

// searchPaths lists where the config file is looked for, in order.
func searchPaths() []string {
	var paths []string
	if d := os.Getenv("XDG_CONFIG_HOME"); d != "" {
		paths = append(paths, filepath.Join(d, "clubpulse", FileName), filepath.Join(d, FileName))
	}
	if d := os.Getenv("APPDATA"); d != "" {
		paths = append(paths, filepath.Join(d, FileName))
	}
	if d := os.Getenv("HOME"); d != "" {
		paths = append(paths, filepath.Join(d, ".config", "clubpulse", FileName), filepath.Join(d, FileName))
	}
	return paths
}

// configPath returns CLUBPULSE_CFG when set, which must name a file, or the
// first existing file among searchPaths.
func configPath() (string, error) {
	if p := os.Getenv("CLUBPULSE_CFG"); p != "" {
		if fi, err := os.Stat(p); err != nil || fi.IsDir() {
			return "", fmt.Errorf("%w: %s", ErrNotFound, p)
		}
		return p, nil
	}

	for _, p := range searchPaths() {
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			log.Debugf("using config file: %s", p)
			return p, nil
		}
	}
	return "", ErrNoFilePath
}
