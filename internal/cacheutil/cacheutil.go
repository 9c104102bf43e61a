// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cacheutil

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/tfctl/tracediff/internal/log"
)

// Cached responses are laid out by server, then by resource:
//
//	<base>/<server>/runs/<run id>/<hash>.json   spans of a finished run
//	<base>/<server>/diffs/<left>~<right>/<hash>.json
//	<base>/<server>/other/<hash>.json
//
// The hash is over the full request URL, so the directories only group
// entries for humans and for purging; they never decide a hit.

// Entry is a cached response on disk.
type Entry struct {
	Key     string
	Path    string
	Data    []byte
	ModTime time.Time
}

// Dir resolves the base cache directory: TRACEDIFF_CACHE_DIR when set and not
// empty, else os.UserCacheDir()/tracediff. ("", false) means caching is
// unavailable.
func Dir() (string, bool) {
	if c, ok := os.LookupEnv("TRACEDIFF_CACHE_DIR"); ok && c != "" {
		return c, true
	}
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "tracediff"), true
	}
	return "", false
}

// Enabled is true unless TRACEDIFF_CACHE is "0" or "false".
func Enabled() bool {
	enabled, _ := os.LookupEnv("TRACEDIFF_CACHE")
	return enabled == "" || (enabled != "0" && enabled != "false")
}

// EnsureBaseDir creates the base directory when caching is enabled.
func EnsureBaseDir() (string, bool, error) {
	if !Enabled() {
		return "", false, nil
	}

	base, ok := Dir()
	if !ok {
		return "", false, nil
	}

	if err := os.MkdirAll(base, 0o755); err != nil { //nolint:mnd
		return base, false, fmt.Errorf("failed to create cache base directory: %w", err)
	}
	return base, true, nil
}

// ServerDir names the directory for a backend server, e.g.
// http://localhost:8000 becomes localhost_8000.
func ServerDir(server string) string {
	host := server
	if u, err := url.Parse(server); err == nil && u.Host != "" {
		host = u.Host
	}
	return safeName(host)
}

// Resource groups a request URL by what it fetched: the spans of one run, a
// diff of two runs, or anything else.
func Resource(key string) []string {
	u, err := url.Parse(key)
	if err != nil {
		return []string{"other"}
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	switch {
	case len(parts) == 3 && parts[0] == "api" && parts[1] == "runs" && parts[2] == "diff":
		q := u.Query()
		return []string{"diffs", safeName(q.Get("left")) + "~" + safeName(q.Get("right"))}
	case len(parts) == 4 && parts[0] == "api" && parts[1] == "runs" && parts[3] == "spans":
		return []string{"runs", safeName(parts[2])}
	}
	return []string{"other"}
}

// EntryPath returns where the entry for key lives beneath the server subdirs
// and whether it currently exists.
func EntryPath(subdirs []string, key string) (string, bool) {
	base, ok := Dir()
	if !ok {
		return "", false
	}
	elems := append([]string{base}, subdirs...)
	elems = append(elems, Resource(key)...)
	p := filepath.Join(append(elems, encodeKey(key))...)
	if _, err := os.Stat(p); err == nil {
		return p, true
	}
	return p, false
}

// Purge removes entries older than hours, then any run or diff directory
// left empty. hours <= 0 disables it.
func Purge(hours int) error {
	if hours <= 0 {
		log.Debug("cache cleaning disabled")
		return nil
	}

	base, ok := Dir()
	if !ok {
		return nil
	}

	maxAge := time.Duration(hours) * time.Hour
	var dirs []string
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, walkErr error) error {
		// Entries can vanish mid-walk when two processes purge together.
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrNotExist) {
				return nil
			}
			return walkErr
		}
		if d.IsDir() {
			if path != base {
				dirs = append(dirs, path)
			}
			return nil
		}

		info, err := d.Info()
		if err != nil || time.Since(info.ModTime()) <= maxAge {
			return nil
		}
		if err := os.Remove(path); err != nil {
			log.WithError(err).Warnf("failed to remove cache file %s", path)
			return nil
		}
		log.Debugf("removed cache file %s", path)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to purge cache: %w", err)
	}

	// Deepest first, so a run directory goes before its parent. os.Remove
	// refuses directories that still hold entries.
	sort.Slice(dirs, func(i, j int) bool { return len(dirs[i]) > len(dirs[j]) })
	for _, d := range dirs {
		if os.Remove(d) == nil {
			log.Debugf("removed empty cache dir %s", d)
		}
	}
	return nil
}

// Read returns the entry for key, if caching is enabled and it exists.
func Read(subdirs []string, key string) (*Entry, bool) {
	if !Enabled() {
		return nil, false
	}
	p, ok := EntryPath(subdirs, key)
	if !ok {
		return nil, false
	}
	info, err := os.Stat(p)
	if err != nil {
		return nil, false
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, false
	}
	log.Debugf("cache hit: key=%s", key)
	return &Entry{
		Key:     key,
		Path:    p,
		Data:    bytes.TrimSpace(b),
		ModTime: info.ModTime(),
	}, true
}

// Write stores data for key beneath the server subdirs.
func Write(subdirs []string, key string, data []byte) error {
	if !Enabled() {
		return nil
	}
	p, _ := EntryPath(subdirs, key)
	if p == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := os.WriteFile(p, data, os.FileMode(0o600)); err != nil { //nolint:mnd
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	log.Debugf("cache write: key=%s path=%s", key, p)
	return nil
}

func encodeKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:]) + ".json"
}

// safeName makes s usable as a single path element.
func safeName(s string) string {
	if s == "" {
		return "_"
	}
	return strings.NewReplacer(":", "_", "/", "_", "\\", "_", "..", "_").Replace(s)
}
