// Package mount sequences a corofs mount: option parsing, alternate
// bootstrap-source resolution, superblock validation, device-table
// population, root-object materialization and managed-cache setup, as one
// linear fallible pipeline. Any failure unwinds completely; callers never
// see a partially initialized session. Unmount is the mirror-image
// teardown and is idempotent.
package mount
