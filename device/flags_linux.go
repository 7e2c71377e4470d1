//go:build linux

package device

import "golang.org/x/sys/unix"

const largeFileFlag = unix.O_LARGEFILE
