// Package fscache implements an on-disk key-value store used to
// cache API responses across runs.
package fscache

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/civic311/dc311/internal/model"
	"github.com/rogpeppe/go-internal/lockedfile"
)

// ErrNoSuchKey indicates that there's no entry for the given key.
var ErrNoSuchKey = errors.New("fscache: no such key")

// Cache is an on-disk model.KeyValueStore.
type Cache struct {
	// TrimLimit is the age after which Trim removes an entry. The age
	// is measured from the last Set, so reading does not keep an
	// entry alive.
	TrimLimit time.Duration

	// dirpath is the cache directory path
	dirpath string

	// timeNow allows mocking time.Now for testing
	timeNow func() time.Time
}

var _ model.KeyValueStore = &Cache{}

// DefaultTrimLimit is the default value of Cache.TrimLimit.
const DefaultTrimLimit = 24 * time.Hour

// New creates a new Cache rooted at dirpath.
func New(dirpath string) *Cache {
	return &Cache{
		TrimLimit: DefaultTrimLimit,
		dirpath:   dirpath,
		timeNow:   time.Now,
	}
}

// Get implements model.KeyValueStore.Get. A missing entry
// yields an error wrapping ErrNoSuchKey.
func (sc *Cache) Get(key string) ([]byte, error) {
	_, fpath := sc.fsmap(key)
	data, err := lockedfile.Read(fpath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchKey, key)
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Set implements model.KeyValueStore.Set.
func (sc *Cache) Set(key string, value []byte) error {
	dpath, fpath := sc.fsmap(key)
	const dperms = 0700
	if err := os.MkdirAll(dpath, dperms); err != nil {
		return err
	}
	const fperms = 0600
	return lockedfile.Write(fpath, bytes.NewReader(value), fperms)
}

// fsmap maps a given key to a directory and a file paths.
func (sc *Cache) fsmap(key string) (dpath, fpath string) {
	hs := sha256.Sum256([]byte(key))
	dpath = filepath.Join(sc.dirpath, fmt.Sprintf("%02x", hs[0]))
	fpath = filepath.Join(dpath, fmt.Sprintf("%02x-d", hs))
	return
}

// We scan for entries to delete at most once per cacheTrimInterval.
//
// SPDX-License-Identifier: BSD-3-Clause
//
// Source: https://github.com/rogpeppe/go-internal/commit/797a764460877f0a4bd570a61d60d10815e728e6
const cacheTrimInterval = 45 * time.Minute

// Trim removes the entries written longer than TrimLimit ago and
// returns how many entries it removed. The time of the last trim is
// saved in trim.txt, and Trim does nothing when called again within
// cacheTrimInterval.
func (sc *Cache) Trim() int {
	now := sc.timeNow()
	trimfilepath := filepath.Join(sc.dirpath, "trim.txt")
	data, _ := os.ReadFile(trimfilepath)
	lt, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err == nil && now.Sub(time.Unix(lt, 0)) < cacheTrimInterval {
		return 0
	}
	cutoff := now.Add(-sc.TrimLimit)
	var count int
	for i := 0; i < 256; i++ {
		count += sc.trimSubdir(filepath.Join(sc.dirpath, fmt.Sprintf("%02x", i)), cutoff)
	}
	if err := os.MkdirAll(sc.dirpath, 0700); err == nil {
		_ = os.WriteFile(trimfilepath, []byte(fmt.Sprintf("%d", now.Unix())), 0600)
	}
	return count
}

// trimSubdir trims a single cache subdirectory.
func (sc *Cache) trimSubdir(subdir string, cutoff time.Time) int {
	names, err := readdirnames(subdir)
	if err != nil {
		return 0
	}
	var count int
	for _, name := range names {
		if !strings.HasSuffix(name, "-d") {
			continue
		}
		entry := filepath.Join(subdir, name)
		info, err := os.Stat(entry)
		if err == nil && info.ModTime().Before(cutoff) && os.Remove(entry) == nil {
			count++
		}
	}
	return count
}

// readdirnames reads all the names before we start removing files.
func readdirnames(dirpath string) ([]string, error) {
	df, err := os.Open(dirpath)
	if err != nil {
		return nil, err
	}
	defer df.Close()
	names, _ := df.Readdirnames(-1)
	return names, nil
}
