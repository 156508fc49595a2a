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
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// entRepr is a comparable snapshot of an entity subtree.
type entRepr struct {
	Level    Level
	ID       int
	Mask     string
	Children []entRepr
}

// devRepr is a comparable snapshot of a device.
type devRepr struct {
	Type  string
	Attrs []Attr
	Mask  string
}

func reprOfEnt(e *ProcEnt) entRepr {
	repr := entRepr{
		Level: e.Level(),
		ID:    e.ID(),
		Mask:  e.CPUMask().String(),
	}
	child := e.Level() - 1
	for ent := e.Traverse(nil, child); ent != nil; ent = e.Traverse(ent, child) {
		repr.Children = append(repr.Children, reprOfEnt(ent))
	}
	return repr
}

func reprOfDevices(sys *System) []devRepr {
	var devs []devRepr
	sys.ForEachDeviceOfType(CacheDeviceType, func(dev *Device) bool {
		devs = append(devs, devRepr{
			Type:  dev.Type(),
			Attrs: dev.Attributes(),
			Mask:  dev.CPUMask().String(),
		})
		return true
	})
	return devs
}

// A second discovery over an unchanged sysfs must yield a structurally
// identical graph and device list.
func TestRebuildEquivalence(t *testing.T) {
	fs := newFakeSysfs(t)
	for id := 0; id < 8; id++ {
		threadSiblings := fmt.Sprintf("%x", 3<<uint(id/2*2))
		coreSiblings := "f"
		if id >= 4 {
			coreSiblings = "f0"
		}
		fs.addCPU(id, threadSiblings, coreSiblings)
		fs.addCache(id, 0, "1", "Data", "32K", fmt.Sprintf("%x", 1<<uint(id)))
		fs.addCache(id, 1, "2", "Unified", "2048K", coreSiblings)
	}
	fs.addNode(0, 0, 1, 2, 3)
	fs.addNode(1, 4, 5, 6, 7)

	first := fs.mustDiscover()
	second := fs.mustDiscover()

	require := func(diff string) {
		if diff != "" {
			t.Fatalf("rebuilt topology differs (-first +second):\n%s", diff)
		}
	}

	require(cmp.Diff(reprOfEnt(first.Root()), reprOfEnt(second.Root())))
	require(cmp.Diff(reprOfDevices(first), reprOfDevices(second)))

	if first.SizeofCPUMask() != second.SizeofCPUMask() {
		t.Fatalf("mask sizes differ: %d vs %d", first.SizeofCPUMask(), second.SizeofCPUMask())
	}
}
