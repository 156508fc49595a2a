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

// cpumasks prints the CPU mask of every entity at a chosen topology
// level, one mask per line, in a format compatible with taskset:
//
//	for m in $(cpumasks -c); do taskset $m $my_hpc_job; done
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/eurolinux-enterprise-linux-sources/libtopology/pkg/topology"
	_ "github.com/eurolinux-enterprise-linux-sources/libtopology/pkg/version"
)

func main() {
	var (
		nodes    = flag.Bool("n", false, "print the CPU mask of each NUMA node")
		packages = flag.Bool("p", false, "print the CPU mask of each package")
		cores    = flag.Bool("c", false, "print the CPU mask of each core")
		threads  = flag.Bool("t", false, "print the CPU mask of each thread")
	)
	flag.Parse()

	var level topology.Level
	count := 0
	for _, opt := range []struct {
		set   bool
		level topology.Level
	}{
		{*nodes, topology.LevelNode},
		{*packages, topology.LevelPackage},
		{*cores, topology.LevelCore},
		{*threads, topology.LevelThread},
	} {
		if opt.set {
			level = opt.level
			count++
		}
	}
	if count != 1 {
		fmt.Fprintf(os.Stderr, "exactly one of -n, -p, -c, -t must be given\n")
		flag.Usage()
		os.Exit(1)
	}

	sys, err := topology.DiscoverSystem()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cpumasks: %v\n", err)
		os.Exit(1)
	}
	defer sys.Release()

	root := sys.Root()
	for ent := root.Traverse(nil, level); ent != nil; ent = root.Traverse(ent, level) {
		fmt.Println(ent.CPUMask())
	}
}
