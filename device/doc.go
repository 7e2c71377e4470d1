// Package device maintains the runtime table of backing stores behind a
// mounted corofs image and maps global block numbers onto them.
//
// The primary device implicitly owns blocks [0, primaryBlocks); every
// extra device or blob file declared after it is unified into the same
// address space at its mapped starting block. Population happens once, at
// mount time, under the table's writer lock; Resolve on the read path
// only ever takes the reader side and never upgrades.
//
// Entries live in an arena addressed by stable small-integer identifiers
// with a free-list for reuse, so a handle stays valid for the life of the
// mount regardless of how other entries come and go.
package device
