//go:build linux

package naru

import "golang.org/x/sys/unix"

func fdSet(set *unix.FdSet, fd int) {
	set.Bits[fd/64] |= 1 << (uint(fd) % 64)
}
