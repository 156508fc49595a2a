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

package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Backend formats and emits log messages.
type Backend interface {
	// Name returns the name of this backend.
	Name() string
	// Log emits a log message with the given severity, source, optional
	// per-line prefix, and Printf-like arguments.
	Log(level Level, source, prefix, format string, args ...interface{})
}

// FmtBackendName is the name of the default fmt-based logging backend.
const FmtBackendName = "fmt"

// severity tags the fmt backend prefixes emitted messages with.
var fmtTags = map[Level]string{
	LevelDebug: "D:",
	LevelInfo:  "I:",
	LevelWarn:  "W:",
	LevelError: "E:",
	LevelFatal: "FATAL ERROR:",
}

// fmtBackend is the default fmt.Fprintf-based Backend.
type fmtBackend struct {
	sync.Mutex
	w io.Writer
}

func createFmtBackend() Backend {
	return &fmtBackend{w: os.Stderr}
}

// NewFmtBackend creates a Backend writing formatted messages to w.
func NewFmtBackend(w io.Writer) Backend {
	return &fmtBackend{w: w}
}

func (*fmtBackend) Name() string {
	return FmtBackendName
}

func (f *fmtBackend) Log(level Level, source, prefix, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	tag := fmtTags[level]

	f.Lock()
	defer f.Unlock()

	for _, line := range strings.Split(msg, "\n") {
		if prefix != "" {
			fmt.Fprintf(f.w, "%s [%s] %s%s\n", tag, source, prefix, line)
		} else {
			fmt.Fprintf(f.w, "%s [%s] %s\n", tag, source, line)
		}
	}
}
