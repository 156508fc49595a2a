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

// Package version tags built binaries with version metadata and hooks
// a -version flag into the standard flag set. The variables are meant
// to be overridden at link time:
//
//	go build -ldflags "\
//	  -X=github.com/eurolinux-enterprise-linux-sources/libtopology/pkg/version.Version=$(git describe) \
//	  -X=github.com/eurolinux-enterprise-linux-sources/libtopology/pkg/version.Build=$(git rev-parse HEAD)"
package version

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Default values, overridden by the linker.
var (
	// Version is the version as given by 'git describe'.
	Version = "unknown"
	// Build is the SHA1 of the tree the binary was built from.
	Build = "unknown"
)

// PrintVersionInfo prints version information about this binary.
func PrintVersionInfo() {
	fmt.Printf("%s version information:\n", filepath.Base(os.Args[0]))
	fmt.Printf("  - version: %s\n", Version)
	fmt.Printf("  - build:   %s\n", Build)
}

// versionFlag hooks into flag.Value to print version info and exit
// when -version is given on the command line.
type versionFlag struct{}

// IsBoolFlag tells flag that -version takes no argument.
func (versionFlag) IsBoolFlag() bool {
	return true
}

func (versionFlag) Set(value string) error {
	print, err := strconv.ParseBool(value)
	if err != nil {
		return err
	}
	if print {
		PrintVersionInfo()
		os.Exit(0)
	}
	return nil
}

func (versionFlag) String() string {
	return ""
}

func init() {
	flag.Var(versionFlag{}, "version", "print version information and exit")
}
