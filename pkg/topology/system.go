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

package topology

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/eurolinux-enterprise-linux-sources/libtopology/pkg/cpumask"
	logger "github.com/eurolinux-enterprise-linux-sources/libtopology/pkg/log"
	"github.com/eurolinux-enterprise-linux-sources/libtopology/pkg/sysfs"
)

const (
	// sysfs devices/cpu subdirectory path
	sysfsCPUPath = "devices/system/cpu"
	// sysfs devices/node subdirectory path
	sysfsNumaNodePath = "devices/system/node"
)

// System is a topology context: a snapshot of the machine's CPU and
// cache topology taken at discovery time. Between DiscoverSystem and
// Release the context and everything reachable from it is immutable,
// so query operations need no external synchronization.
type System struct {
	logger.Logger          // our logger instance
	path          string   // sysfs mount point
	setsize       int      // CPU mask width in bytes
	system        *ProcEnt // system-level entity
	list          *ProcEnt // global chain of all entities
	devices       *Device  // global chain of all devices

	// per-build lookup tables, released when construction completes
	pkgs  map[string]*ProcEnt
	cores map[string]*ProcEnt
	seen  map[string]*Device
}

// DiscoverSystem builds a topology context for the sysfs root named
// by LIBTOPOLOGY_SYSFS_ROOT, defaulting to /sys.
func DiscoverSystem() (*System, error) {
	return DiscoverSystemAt(sysfs.Root())
}

// DiscoverSystemAt builds a topology context from the sysfs tree
// mounted at the given root. Construction is transactional: on any
// error no partially built context is returned.
func DiscoverSystemAt(root string) (*System, error) {
	sys := &System{
		Logger: logger.NewLogger("topology"),
		path:   root,
		pkgs:   make(map[string]*ProcEnt),
		cores:  make(map[string]*ProcEnt),
		seen:   make(map[string]*Device),
	}

	setsize, err := probeCPUMaskSize(root)
	if err != nil {
		return nil, err
	}
	sys.setsize = setsize

	err = sys.build()

	// the coalescing tables are construction-only state
	sys.pkgs, sys.cores, sys.seen = nil, nil, nil

	if err != nil {
		return nil, err
	}

	if sys.DebugEnabled() {
		sys.dump()
	}

	return sys, nil
}

// Path returns the sysfs root this context was built from.
func (sys *System) Path() string {
	return sys.path
}

// SizeofCPUMask returns the byte width of every CPU mask in this
// context. Callers pre-size destination buffers for CopyCPUMask with
// it.
func (sys *System) SizeofCPUMask() int {
	return sys.setsize
}

// Root returns the system-level entity, from which every node,
// package, core and thread can be reached with Traverse.
func (sys *System) Root() *ProcEnt {
	return sys.system
}

// Release severs the context's object graph. The context and any
// entity or device obtained from it must not be used afterwards.
// Releasing an already released context is a no-op.
func (sys *System) Release() {
	sys.system = nil
	sys.list = nil
	sys.devices = nil
}

// build constructs the entity tree and device list.
func (sys *System) build() error {
	sys.system = sys.newProcEnt(nil, 0)

	nodes, err := sysfs.EnumerateDirIDs(filepath.Join(sys.path, sysfsNumaNodePath), "node")
	if err != nil {
		// non-NUMA system, treat as a single node
		return sys.buildNode(0)
	}

	for _, nid := range nodes {
		if err := sys.buildNode(nid); err != nil {
			return err
		}
	}

	return nil
}

// buildNode creates one NUMA node entity and discovers its CPUs.
func (sys *System) buildNode(nid int) error {
	node := sys.newProcEnt(sys.system, nid)

	dir := filepath.Join(sys.path, sysfsNumaNodePath, "node"+strconv.Itoa(nid))
	cpus, err := sysfs.EnumerateIDs(dir, "cpu")
	if err != nil {
		// when faking node 0, fall back to the cpu hierarchy
		if nid != 0 {
			return errors.Wrapf(ErrBuild, "failed to enumerate CPUs of node %d: %v", nid, err)
		}
		dir = filepath.Join(sys.path, sysfsCPUPath)
		if cpus, err = sysfs.EnumerateIDs(dir, "cpu"); err != nil {
			return errors.Wrapf(ErrBuild, "failed to enumerate CPUs: %v", err)
		}
	}

	for _, id := range cpus {
		if !sys.cpuIsOnline(id) {
			sys.Debug("cpu%d is offline, skipping", id)
			continue
		}
		if err := sys.buildCPU(node, id); err != nil {
			return err
		}
	}

	return nil
}

// cpuIsOnline checks devices/system/cpu/cpu{id}/online. An absent
// entry means the CPU cannot be offlined (boot CPU, or no hotplug
// support) and counts as online; so does unparsable content.
func (sys *System) cpuIsOnline(id int) bool {
	buf, err := sysfs.ReadEntry(sys.cpuDir(id), "online", nil)
	if err != nil {
		return true
	}
	return strings.TrimSpace(buf) != "0"
}

func (sys *System) cpuDir(id int) string {
	return filepath.Join(sys.path, sysfsCPUPath, "cpu"+strconv.Itoa(id))
}

// threadSiblings returns the raw thread_siblings mask string for the
// given CPU, or the CPU id itself when the kernel does not expose one
// (a single-thread core).
func (sys *System) threadSiblings(id int) string {
	if buf, err := sysfs.ReadEntry(sys.cpuDir(id), "topology/thread_siblings", nil); err == nil {
		return buf
	}
	return strconv.Itoa(id)
}

// coreSiblings returns the raw core_siblings mask string for the
// given CPU. Without one, thread_siblings must be a subset of
// core_siblings, so assume one core per package.
func (sys *System) coreSiblings(id int) string {
	if buf, err := sysfs.ReadEntry(sys.cpuDir(id), "topology/core_siblings", nil); err == nil {
		return buf
	}
	return sys.threadSiblings(id)
}

// buildCPU creates the thread entity for one online CPU, attaching it
// to its package and core. Packages are coalesced across the whole
// context by their core_siblings signature, cores within a package by their
// thread_siblings signature; the first CPU observed in a unit donates
// its id as the unit's representative id.
func (sys *System) buildCPU(node *ProcEnt, id int) error {
	pkgSig := sys.coreSiblings(id)
	pkg, ok := sys.pkgs[pkgSig]
	if !ok {
		pkg = sys.newProcEnt(node, id)
		pkg.sigKey = pkgSig
		sys.pkgs[pkgSig] = pkg
	}

	// scope the core signature to the package so that equal local
	// signatures in different packages never coalesce
	coreSig := pkgSig + "|" + sys.threadSiblings(id)
	core, ok := sys.cores[coreSig]
	if !ok {
		core = sys.newProcEnt(pkg, id)
		core.sigKey = coreSig
		sys.cores[coreSig] = core
	}

	thread := sys.newProcEnt(core, id)
	thread.setCPU(id)

	// cache discovery is best-effort
	if err := sys.discoverCaches(thread); err != nil {
		sys.Debug("cache discovery for cpu%d: %v", id, err)
	}

	return nil
}

// discoverCaches enumerates cache/index{k} for a thread and registers
// every cache instance not already seen through a sibling CPU.
// Failures are collected and reported to the caller for logging; they
// never fail the build, the worst outcome is fewer cache devices than
// physically present.
func (sys *System) discoverCaches(thread *ProcEnt) error {
	dir := filepath.Join(sys.cpuDir(thread.id), "cache")
	indexes, err := sysfs.EnumerateDirIDs(dir, "index")
	if err != nil {
		return nil
	}

	var merr *multierror.Error

	for _, index := range indexes {
		dev, err := sys.readCache(thread.id, index)
		if err != nil {
			merr = multierror.Append(merr, err)
			continue
		}

		if _, ok := sys.seen[dev.key]; ok {
			continue
		}
		sys.seen[dev.key] = dev

		dev.next = sys.devices
		sys.devices = dev
	}

	return merr.ErrorOrNil()
}

// cacheAttrNames are the attributes a cache instance must expose to
// be admitted, in the order they are read and stored.
var cacheAttrNames = [...]string{"size", "type", "level", "shared_cpu_map"}

// readCache reads one cache/index{k} directory into a device. The
// instance is rejected if any required attribute is missing, if the
// shared_cpu_map does not parse, or if it does not contain the
// observing CPU's own bit.
func (sys *System) readCache(cpu, index int) (*Device, error) {
	dir := filepath.Join(sys.cpuDir(cpu), "cache", "index"+strconv.Itoa(index))

	dev := &Device{
		sys:  sys,
		typ:  CacheDeviceType,
		cpus: cpumask.New(sys.setsize),
	}

	for _, name := range cacheAttrNames {
		value, err := sysfs.ReadEntry(dir, name, nil)
		if err != nil {
			return nil, err
		}
		dev.attrs = append(dev.attrs, Attr{Name: name, Value: value})
	}

	shared, _ := dev.Attribute("shared_cpu_map")
	if err := dev.cpus.Parse(shared); err != nil {
		return nil, errors.Wrapf(err, "%s", dir)
	}
	if !dev.cpus.IsSet(cpu) {
		return nil, errors.Errorf("%s: cpu%d not in shared_cpu_map %q", dir, cpu, shared)
	}

	level, _ := dev.Attribute("level")
	kind, _ := dev.Attribute("type")
	dev.key = "cache-L" + level + "-" + kind + "-" + shared

	return dev, nil
}

// dump logs the discovered topology.
func (sys *System) dump() {
	counts := map[Level]int{}
	for ent := sys.list; ent != nil; ent = ent.next {
		counts[ent.level]++
	}
	sys.Debug("discovered topology under %s:", sys.path)
	for level := LevelNode; level >= LevelThread; level-- {
		sys.Debug("  %ss: %d", level, counts[level])
	}

	sys.ForEachDeviceOfType(CacheDeviceType, func(dev *Device) bool {
		level, _ := dev.Attribute("level")
		kind, _ := dev.Attribute("type")
		size, _ := dev.Attribute("size")
		sys.Debug("  cache: L%s %s, size %s, cpus %s", level, kind, size, dev.cpus)
		return true
	})
}
