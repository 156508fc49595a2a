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

// cachelist prints every CPU cache discovered on the system, with its
// level, type, size and the mask of CPUs sharing it.
package main

import (
	"flag"
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/eurolinux-enterprise-linux-sources/libtopology/pkg/topology"
	_ "github.com/eurolinux-enterprise-linux-sources/libtopology/pkg/version"
)

type cacheInfo struct {
	Level string `json:"level"`
	Type  string `json:"type"`
	Size  string `json:"size"`
	CPUs  string `json:"cpus"`
}

func main() {
	asYAML := flag.Bool("yaml", false, "emit the cache list as YAML")
	flag.Parse()

	sys, err := topology.DiscoverSystem()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cachelist: %v\n", err)
		os.Exit(1)
	}
	defer sys.Release()

	var caches []cacheInfo
	sys.ForEachDeviceOfType(topology.CacheDeviceType, func(dev *topology.Device) bool {
		level, _ := dev.Attribute("level")
		kind, _ := dev.Attribute("type")
		size, _ := dev.Attribute("size")
		caches = append(caches, cacheInfo{
			Level: level,
			Type:  kind,
			Size:  size,
			CPUs:  dev.CPUMask().String(),
		})
		return true
	})

	if *asYAML {
		out, err := yaml.Marshal(caches)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cachelist: %v\n", err)
			os.Exit(1)
		}
		os.Stdout.Write(out)
		return
	}

	for _, c := range caches {
		fmt.Printf("cache : level = %s, type = %s, size = %s\n", c.Level, c.Type, c.Size)
		fmt.Printf("        cpus = 0x%s\n", c.CPUs)
	}
}
