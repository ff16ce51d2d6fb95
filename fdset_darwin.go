//go:build darwin

package naru

import "golang.org/x/sys/unix"

func fdSet(set *unix.FdSet, fd int) {
	set.Bits[fd/32] |= 1 << (uint(fd) % 32)
}
