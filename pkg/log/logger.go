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
	"os"
)

// Logger is the interface for producing log messages for/from a particular source.
type Logger interface {
	// Debug formats and emits a debug message.
	Debug(format string, args ...interface{})
	// Info formats and emits an informational message.
	Info(format string, args ...interface{})
	// Warn formats and emits a warning message.
	Warn(format string, args ...interface{})
	// Error formats and emits an error message.
	Error(format string, args ...interface{})
	// Fatal formats and emits an error message and os.Exit()'s with status 1.
	Fatal(format string, args ...interface{})

	// DebugBlock formats and emits a multiline debug message.
	DebugBlock(prefix string, format string, args ...interface{})
	// InfoBlock formats and emits a multiline informational message.
	InfoBlock(prefix string, format string, args ...interface{})

	// EnableDebug enables debug messages for this Logger.
	EnableDebug(bool) bool
	// DebugEnabled checks if debug messages are enabled for this Logger.
	DebugEnabled() bool

	// Source returns the source name of this Logger.
	Source() string
}

// logger implements Logger for a single source.
type logger string

// NewLogger creates a Logger for the given source.
func NewLogger(source string) Logger {
	return logger(source)
}

func (l logger) Debug(format string, args ...interface{}) {
	if !log.debugging(string(l)) {
		return
	}
	log.emit(LevelDebug, string(l), "", format, args...)
}

func (l logger) Info(format string, args ...interface{}) {
	log.emit(LevelInfo, string(l), "", format, args...)
}

func (l logger) Warn(format string, args ...interface{}) {
	log.emit(LevelWarn, string(l), "", format, args...)
}

func (l logger) Error(format string, args ...interface{}) {
	log.emit(LevelError, string(l), "", format, args...)
}

func (l logger) Fatal(format string, args ...interface{}) {
	log.emit(LevelFatal, string(l), "", format, args...)
	os.Exit(1)
}

func (l logger) DebugBlock(prefix string, format string, args ...interface{}) {
	if !log.debugging(string(l)) {
		return
	}
	log.emit(LevelDebug, string(l), prefix, format, args...)
}

func (l logger) InfoBlock(prefix string, format string, args ...interface{}) {
	log.emit(LevelInfo, string(l), prefix, format, args...)
}

func (l logger) EnableDebug(enable bool) bool {
	return EnableDebug(string(l), enable)
}

func (l logger) DebugEnabled() bool {
	return log.debugging(string(l))
}

func (l logger) Source() string {
	return string(l)
}

// Default returns the default Logger.
func Default() Logger {
	return deflog
}

// Debug formats and emits a debug message using the default Logger.
func Debug(format string, args ...interface{}) { deflog.Debug(format, args...) }

// Info formats and emits an informational message using the default Logger.
func Info(format string, args ...interface{}) { deflog.Info(format, args...) }

// Warn formats and emits a warning message using the default Logger.
func Warn(format string, args ...interface{}) { deflog.Warn(format, args...) }

// Error formats and emits an error message using the default Logger.
func Error(format string, args ...interface{}) { deflog.Error(format, args...) }

// Fatal formats and emits an error message using the default Logger, then exits.
func Fatal(format string, args ...interface{}) { deflog.Fatal(format, args...) }

var deflog = func() Logger {
	name := "libtopology"
	if len(os.Args) > 0 && os.Args[0] != "" {
		name = baseName(os.Args[0])
	}
	return NewLogger(name)
}()

// baseName returns the last path component of a binary path.
func baseName(path string) string {
	idx := len(path) - 1
	for idx >= 0 && path[idx] != '/' {
		idx--
	}
	return path[idx+1:]
}
