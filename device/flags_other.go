//go:build !linux

package device

// O_LARGEFILE is a no-op outside Linux; off_t is already 64-bit.
const largeFileFlag = 0
