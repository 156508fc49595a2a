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

// Package topology discovers the CPU and cache topology of the running
// system from sysfs and exposes it as an immutable in-memory model.
//
// Discovery builds a tree of processor entities at five levels, system,
// NUMA node, physical package, core, and hardware thread, coalescing
// units the kernel reports once per CPU but that are physically shared.
// Cache instances visible from several CPUs are deduplicated into a
// flat device list. After DiscoverSystem returns, the model never
// changes and all query operations are safe for concurrent use.
package topology

import (
	"github.com/pkg/errors"
)

// Level identifies one layer of the processor entity hierarchy.
// Levels are totally ordered; the parent of an entity at level L is
// always at level L+1.
type Level int

const (
	// LevelThread is a hardware thread, the smallest schedulable unit.
	LevelThread Level = iota + 1
	// LevelCore is a processor core, holding one or more threads.
	LevelCore
	// LevelPackage is a physical package (socket).
	LevelPackage
	// LevelNode is a NUMA node.
	LevelNode
	// LevelSystem is the whole machine.
	LevelSystem
)

// Valid tests if l names an actual level of the hierarchy.
func (l Level) Valid() bool {
	return l >= LevelThread && l <= LevelSystem
}

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelThread:
		return "thread"
	case LevelCore:
		return "core"
	case LevelPackage:
		return "package"
	case LevelNode:
		return "node"
	case LevelSystem:
		return "system"
	}
	return "invalid"
}

var (
	// ErrProbe indicates that the CPU bitmask width could not be
	// determined, or that sysfs reports more CPUs than the affinity
	// syscall can address.
	ErrProbe = errors.New("topology: cpumask size probe failed")
	// ErrBuild indicates that a mandatory sysfs read failed while
	// constructing the topology model.
	ErrBuild = errors.New("topology: discovery failed")
)
