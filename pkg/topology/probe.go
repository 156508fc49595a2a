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
	"os"
	"path/filepath"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/eurolinux-enterprise-linux-sources/libtopology/pkg/sysfs"
)

const (
	// CPUMaskOverrideEnvVar, if set, permits a sysfs-derived mask width
	// larger than the minimum width accepted by the affinity syscall.
	// Intended for test environments with a fake sysfs root; oversize
	// masks must not be passed back to sched_setaffinity.
	CPUMaskOverrideEnvVar = "LIBTOPOLOGY_CPUMASK_OVERRIDE"

	// minCPUMaskSize is the smallest width probed, one machine word.
	minCPUMaskSize = 8
	// maxCPUMaskSize bounds the probe; a kernel mask beyond a million
	// CPUs means the syscall is failing for some other reason.
	maxCPUMaskSize = 1 << 17
)

// schedProbeCPUMaskSize determines the minimum mask width in bytes
// accepted by sched_getaffinity, starting from the smallest width and
// doubling for as long as the kernel rejects the size.
func schedProbeCPUMaskSize() (int, error) {
	for size := minCPUMaskSize; size <= maxCPUMaskSize; size *= 2 {
		buf := make([]byte, size)

		_, _, errno := unix.Syscall(unix.SYS_SCHED_GETAFFINITY,
			uintptr(os.Getpid()), uintptr(size), uintptr(unsafe.Pointer(&buf[0])))
		if errno == 0 {
			return size, nil
		}
		if errno != unix.EINVAL {
			return 0, errors.Wrapf(ErrProbe, "sched_getaffinity: %v", errno)
		}
	}

	return 0, errors.Wrapf(ErrProbe, "no mask size up to %d bytes accepted", maxCPUMaskSize)
}

// sysfsProbeCPUMaskSize derives a mask width from the highest CPU id
// enumerated under devices/system/cpu, rounded up to whole machine
// words. Returns zero if the directory cannot be enumerated; the
// caller treats that as "no constraint" and discovery fails later if
// the directory is genuinely required.
func sysfsProbeCPUMaskSize(root string) int {
	ids, err := sysfs.EnumerateDirIDs(filepath.Join(root, sysfsCPUPath), "cpu")
	if err != nil || len(ids) == 0 {
		return 0
	}

	maxID := ids[len(ids)-1]
	return ((maxID + 1 + 63) / 64) * 8
}

// probeCPUMaskSize computes the mask width for a new context: the
// minimum width accepted by the affinity syscall, unless sysfs shows
// CPUs beyond it, in which case the wider sysfs-derived width is used
// when CPUMaskOverrideEnvVar is set and the probe fails otherwise.
func probeCPUMaskSize(root string) (int, error) {
	schedSize, err := schedProbeCPUMaskSize()
	if err != nil {
		return 0, err
	}

	sysfsSize := sysfsProbeCPUMaskSize(root)
	if sysfsSize > schedSize {
		if os.Getenv(CPUMaskOverrideEnvVar) == "" {
			return 0, errors.Wrapf(ErrProbe,
				"sysfs shows CPUs beyond the affinity mask (%d > %d bytes)",
				sysfsSize, schedSize)
		}
		return sysfsSize, nil
	}

	return schedSize, nil
}
