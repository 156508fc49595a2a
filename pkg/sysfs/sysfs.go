// Copyright 2019-2022 Intel Corporation. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package sysfs provides the low-level plumbing for reading the
// kernel's sysfs pseudo-filesystem: root resolution, whole-entry
// reads with type conversion, and enumeration of numerically
// suffixed directory entries.
package sysfs

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	// DefaultRoot is the usual mount point of sysfs.
	DefaultRoot = "/sys"
	// RootEnvVar overrides the sysfs root, mainly for tests running
	// against a fake sysfs tree.
	RootEnvVar = "LIBTOPOLOGY_SYSFS_ROOT"
)

// Root returns the sysfs root to use, honoring RootEnvVar.
func Root() string {
	if root := os.Getenv(RootEnvVar); root != "" {
		return root
	}
	return DefaultRoot
}

// sysfsError returns a formatted error for a sysfs path.
func sysfsError(path string, format string, args ...interface{}) error {
	return fmt.Errorf("sysfs: %s: %s", path, fmt.Sprintf(format, args...))
}

// IsNotExist tests if an error from this package indicates a missing
// sysfs entry. Missing entries are routinely non-fatal; the caller
// decides the policy.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// ReadEntry reads a sysfs entry under base, strips the trailing
// newline, and converts the contents according to the type of the
// given pointer. A nil pointer returns the raw (trimmed) contents.
func ReadEntry(base, entry string, ptr interface{}) (string, error) {
	path := filepath.Join(base, entry)

	blob, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "sysfs: failed to read entry %s", path)
	}
	buf := strings.TrimRight(string(blob), "\n")

	if ptr == nil {
		return buf, nil
	}

	switch p := ptr.(type) {
	case *string:
		*p = buf
	case *int:
		v, err := strconv.ParseInt(strings.TrimSpace(buf), 0, strconv.IntSize)
		if err != nil {
			return "", sysfsError(path, "invalid entry '%s': %v", buf, err)
		}
		*p = int(v)
	case *int64:
		v, err := strconv.ParseInt(strings.TrimSpace(buf), 0, 64)
		if err != nil {
			return "", sysfsError(path, "invalid entry '%s': %v", buf, err)
		}
		*p = v
	case *uint64:
		v, err := strconv.ParseUint(strings.TrimSpace(buf), 0, 64)
		if err != nil {
			return "", sysfsError(path, "invalid entry '%s': %v", buf, err)
		}
		*p = v
	default:
		return "", sysfsError(path, "unsupported sysfs entry type %T", ptr)
	}

	return buf, nil
}

// enumeratedID extracts the numeric suffix of a name with the given
// prefix, or -1 if the name does not consist of the prefix followed
// by a non-negative decimal integer.
func enumeratedID(name, prefix string) int {
	if !strings.HasPrefix(name, prefix) {
		return -1
	}

	suffix := name[len(prefix):]
	if suffix == "" {
		return -1
	}
	for i := 0; i < len(suffix); i++ {
		if suffix[i] < '0' || suffix[i] > '9' {
			return -1
		}
	}

	id, err := strconv.Atoi(suffix)
	if err != nil {
		return -1
	}
	return id
}

// EnumerateIDs lists the numeric suffixes of all entries in dir whose
// names are prefix followed by a non-negative decimal integer,
// regardless of entry type. The result is sorted.
func EnumerateIDs(dir, prefix string) ([]int, error) {
	return enumerate(dir, prefix, false)
}

// EnumerateDirIDs is EnumerateIDs restricted to entries that are
// directories.
func EnumerateDirIDs(dir, prefix string) ([]int, error) {
	return enumerate(dir, prefix, true)
}

func enumerate(dir, prefix string, dirsOnly bool) ([]int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "sysfs: failed to enumerate %s", dir)
	}

	var ids []int
	for _, e := range entries {
		if dirsOnly && !e.IsDir() {
			continue
		}
		if id := enumeratedID(e.Name(), prefix); id >= 0 {
			ids = append(ids, id)
		}
	}

	sort.Ints(ids)
	return ids, nil
}
