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

// ProcEnt is a processor entity: the system, a NUMA node, a physical
// package, a core, or a hardware thread. Entities form a tree with
// upward parent links and a sibling chain under each parent, plus a
// flat chain over all entities of the context used for descendant
// enumeration.
type ProcEnt struct {
	sys      *System
	level    Level
	id       int // representative logical CPU id (node id for nodes)
	parent   *ProcEnt
	children *ProcEnt // first child
	sibling  *ProcEnt // next sibling under parent
	next     *ProcEnt // next in the context's global entity chain
	cpus     cpumask.CPUMask
	memory   uint64 // reserved for nodes; no sysfs source yet
	sigKey   string // sibling signature, used only during construction
}

// newProcEnt allocates an entity, links it under parent and prepends
// it to the global entity chain. A nil parent produces the system
// entity; otherwise the level is one below the parent's.
func (sys *System) newProcEnt(parent *ProcEnt, id int) *ProcEnt {
	level := LevelSystem
	if parent != nil {
		level = parent.level - 1
	}

	ent := &ProcEnt{
		sys:    sys,
		level:  level,
		id:     id,
		parent: parent,
		cpus:   cpumask.New(sys.setsize),
	}

	ent.next = sys.list
	sys.list = ent

	if parent != nil {
		ent.sibling = parent.children
		parent.children = ent
	}

	return ent
}

// setCPU sets the given CPU bit in this entity's mask and in the mask
// of every ancestor up to the system entity.
func (e *ProcEnt) setCPU(cpu int) {
	for ent := e; ent != nil; ent = ent.parent {
		ent.cpus.Set(cpu)
	}
}

// Level returns the entity's level in the hierarchy.
func (e *ProcEnt) Level() Level {
	return e.level
}

// ID returns the entity's id: the logical CPU id for threads, a
// representative CPU id for cores and packages, and the node id for
// NUMA nodes.
func (e *ProcEnt) ID() int {
	return e.id
}

// Parent returns the entity one level up, or nil for the system entity.
func (e *ProcEnt) Parent() *ProcEnt {
	return e.parent
}

// Memory returns the memory size associated with a NUMA node entity.
// Currently always zero; the field is reserved until a sysfs source
// for it is wired up.
func (e *ProcEnt) Memory() uint64 {
	return e.memory
}

// CPUMask returns a copy of the entity's CPU mask.
func (e *ProcEnt) CPUMask() cpumask.CPUMask {
	return e.cpus.Clone()
}

// CopyCPUMask copies the entity's CPU mask into dst, which must be at
// least SizeofCPUMask() bytes long.
func (e *ProcEnt) CopyCPUMask(dst []byte) {
	e.cpus.CopyInto(dst)
}

// isDescendantOf tests if e lies in the subtree rooted at from.
func (e *ProcEnt) isDescendantOf(from *ProcEnt) bool {
	for ent := e.parent; ent != nil; ent = ent.parent {
		if ent == from {
			return true
		}
	}
	return false
}

// nextAtLevel continues a flat enumeration over e's descendants at
// the given level, walking the context's global entity chain.
func (e *ProcEnt) nextAtLevel(iter *ProcEnt, to Level) *ProcEnt {
	ent := iter
	if ent == nil {
		ent = e.sys.list
	} else {
		ent = ent.next
	}

	for ; ent != nil; ent = ent.next {
		if ent.level == to && ent.isDescendantOf(e) {
			return ent
		}
	}

	return nil
}

// Traverse returns the next entity at level to, reachable from e and
// continuing after iter. Pass a nil iter to start a fresh enumeration.
// Traversing to the entity's own level is undefined and returns nil.
// Moving upward ignores iter: the single ancestor at the requested
// level is returned. Moving one level down walks the direct children
// in sibling order; moving further down enumerates all descendants at
// the target level in the context's global chain order.
func (e *ProcEnt) Traverse(iter *ProcEnt, to Level) *ProcEnt {
	if !to.Valid() {
		return nil
	}
	if e == nil {
		return nil
	}

	switch {
	case to == e.level:
		return nil

	case to == e.level+1:
		return e.parent

	case to == e.level-1:
		if iter != nil {
			return iter.sibling
		}
		return e.children

	case to > e.level:
		return e.parent.Traverse(nil, to)
	}

	return e.nextAtLevel(iter, to)
}
