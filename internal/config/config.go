// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"gopkg.in/yaml.v3"
)

// ErrNoConfigFile is returned when no configuration file can be located.
var ErrNoConfigFile = errors.New("no config file found in standard locations")

// Type is the in-memory representation of the loaded configuration.
//
// Fields:
//   - Source: absolute path of the YAML file loaded.
//   - Namespace: optional dot-prefixed keyspace used to prefer namespaced
//     lookups (e.g. "diff.mode" before "mode").
//   - Data: raw key/value tree unmarshaled from YAML.
type Type struct {
	Source    string
	Namespace string
	Data      map[string]interface{}
}

// Config holds the global, lazily-initialized configuration instance.
var Config Type

// init attempts to load configuration at process start. Errors are ignored so
// tracediff still runs without a config file.
func init() {
	_, _ = Load()
}

// GetBool returns the boolean value for the given dotted key path, or the
// single defaultValue when the key is missing.
func GetBool(key string, defaultValue ...bool) (bool, error) {
	val, err := lookup(key)
	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return false, err
	}

	b, ok := val.(bool)
	if !ok {
		return false, errors.New("value is not a bool")
	}
	return b, nil
}

// GetInt returns the integer value for the given dotted key path. A single
// defaultValue may be provided and is returned when the key is missing.
// YAML numbers may decode as int, int64, or float64; common cases are handled.
func GetInt(key string, defaultValue ...int) (int, error) {
	val, err := lookup(key)
	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return 0, err
	}

	switch v := val.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, errors.New("value is not an int")
	}
}

// GetString returns the string value for the given dotted key path. If the key
// is not found and a single defaultValue is provided, the default is returned.
// Returns an error if the value exists but is not a string.
func GetString(key string, defaultValue ...string) (string, error) {
	val, err := lookup(key)
	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return "", err
	}

	s, ok := val.(string)
	if !ok {
		return "", errors.New("value is not a string")
	}

	return s, nil
}

// GetStringSlice returns the string slice value for the given dotted key path.
// If the key is not found and a single default slice is provided, that default
// is returned. Returns an error if the value exists but is not a string slice.
func GetStringSlice(key string, defaultValue ...[]string) ([]string, error) {
	val, err := lookup(key)
	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return nil, err
	}

	switch v := val.(type) {
	case []string:
		return v, nil
	case []interface{}:
		result := make([]string, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, errors.New("slice element is not a string")
			}
			result[i] = s
		}
		return result, nil
	default:
		return nil, errors.New("value is not a slice")
	}
}

// Load reads the YAML configuration file and populates the global Config. An
// explicit path may be passed; otherwise getConfigFile decides. The current
// Namespace survives a reload.
func Load(cfgFilePath ...string) (Type, error) {
	path := ""
	if len(cfgFilePath) > 0 && cfgFilePath[0] != "" {
		path = cfgFilePath[0]
	} else {
		var err error
		if path, err = getConfigFile(); err != nil {
			return Type{}, err
		}
	}

	bytes, err := os.ReadFile(path)
	if err != nil {
		return Type{}, err
	}

	var data map[string]interface{}
	if err := yaml.Unmarshal(bytes, &data); err != nil {
		return Type{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	Config = Type{
		Source:    path,
		Namespace: Config.Namespace,
		Data:      data,
	}

	return Config, nil
}

// Path returns the config file that would be loaded, or "" when none exists.
// It feeds the cli-altsrc YAML sources of the flags.
func Path() string {
	if Config.Source != "" {
		return Config.Source
	}
	p, err := getConfigFile()
	if err != nil {
		return ""
	}
	return p
}

// lookup lazily loads the config and resolves a key, preferring the
// namespaced variant.
func lookup(key string) (any, error) {
	if len(Config.Data) == 0 {
		_, _ = Load()
	}
	return Config.get(key)
}

// get traverses the configuration tree using a dotted key path (e.g.
// "cache.redis_url"). If Namespace is set, a namespaced candidate key is
// attempted first (Namespace + "." + kspec), then the unnamespaced key.
func (cfg *Type) get(kspec string) (any, error) {
	candidateKeys := []string{kspec}
	if cfg.Namespace != "" {
		candidateKeys = []string{cfg.Namespace + "." + kspec, kspec}
	}

	for _, key := range candidateKeys {
		var current interface{} = cfg.Data

		success := true
		for _, part := range strings.Split(key, ".") {
			m, ok := current.(map[string]interface{})
			if !ok {
				success = false
				break
			}
			current, ok = m[part]
			if !ok {
				success = false
				break
			}
		}

		if success {
			return current, nil
		}
	}

	return nil, fmt.Errorf("no valid path found among: %v", candidateKeys)
}

// getConfigFile returns the absolute path to the YAML config file. If the
// TRACEDIFF_CFG_FILE environment variable is set, it is treated as the full
// path to the config file. Otherwise, os.UserConfigDir is used with the
// filename "tracediff.yaml". The file must exist and not be a directory.
func getConfigFile() (string, error) {
	if cfgPath := os.Getenv("TRACEDIFF_CFG_FILE"); cfgPath != "" {
		if fileInfo, err := os.Stat(cfgPath); err == nil {
			if !fileInfo.IsDir() {
				log.Debugf("using config file from TRACEDIFF_CFG_FILE: %s", cfgPath)
				return cfgPath, nil
			}
			return "", fmt.Errorf("TRACEDIFF_CFG_FILE points to a directory: %s", cfgPath)
		}
		return "", fmt.Errorf("config file not found at TRACEDIFF_CFG_FILE path: %s", cfgPath)
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	file := filepath.Join(dir, "tracediff.yaml")
	if fileInfo, err := os.Stat(file); err == nil && !fileInfo.IsDir() {
		log.Debugf("using config file: %s", file)
		return file, nil
	}

	return "", ErrNoConfigFile
}
