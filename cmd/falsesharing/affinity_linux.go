//go:build linux

package main

import "golang.org/x/sys/unix"

// pinToCPU pins the calling OS thread to cpu. The caller must have already
// called runtime.LockOSThread. Errors are non-fatal: the demonstration is
// still meaningful, just noisier, without a successful pin.
func pinToCPU(cpu int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	return unix.SchedSetaffinity(0, &set)
}
