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
	"github.com/eurolinux-enterprise-linux-sources/libtopology/pkg/cpumask"
)

// CacheDeviceType is the type tag of cache devices, the only device
// kind currently discovered.
const CacheDeviceType = "cache"

// Device is a hardware resource distinct from a processor entity,
// described by a type tag, the set of CPUs sharing the instance, and
// an ordered list of named string attributes read from sysfs.
type Device struct {
	sys   *System
	typ   string
	key   string // dedup signature, used only during construction
	cpus  cpumask.CPUMask
	attrs []Attr
	next  *Device // next in the context's global device chain
}

// Attr is a named string attribute of a device, e.g. level "2" or
// size "16K" for a cache.
type Attr struct {
	Name  string
	Value string
}

// Type returns the device's type tag.
func (d *Device) Type() string {
	return d.typ
}

// Attribute returns the value of the named attribute. The second
// return value reports whether the attribute exists; values remain
// valid for the lifetime of the context.
func (d *Device) Attribute(name string) (string, bool) {
	for _, attr := range d.attrs {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

// Attributes returns the device's attributes in the order they were
// read from sysfs. The returned slice is shared; callers must not
// modify it.
func (d *Device) Attributes() []Attr {
	return d.attrs
}

// CPUMask returns a copy of the device's CPU affinity mask.
func (d *Device) CPUMask() cpumask.CPUMask {
	return d.cpus.Clone()
}

// CopyCPUMask copies the device's CPU mask into dst, which must be at
// least SizeofCPUMask() bytes long.
func (d *Device) CopyCPUMask(dst []byte) {
	d.cpus.CopyInto(dst)
}

// FindDeviceByType scans the device list beginning after prev, or at
// the head when prev is nil, and returns the first device whose type
// tag equals typ, or nil at the end of the list. The enumeration
// order is unspecified.
func (sys *System) FindDeviceByType(prev *Device, typ string) *Device {
	dev := sys.devices
	if prev != nil {
		dev = prev.next
	}

	for ; dev != nil; dev = dev.next {
		if dev.typ == typ {
			return dev
		}
	}

	return nil
}

// ForEachDeviceOfType invokes fn for every device of the given type,
// stopping early if fn returns false.
func (sys *System) ForEachDeviceOfType(typ string, fn func(*Device) bool) {
	for dev := sys.FindDeviceByType(nil, typ); dev != nil; dev = sys.FindDeviceByType(dev, typ) {
		if !fn(dev) {
			return
		}
	}
}
