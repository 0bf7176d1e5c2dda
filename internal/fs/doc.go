// Package fs abstracts the filesystem operations of the staging path.
//
// Production code uses Default (LocalFS). Tests wrap it in FaultyFS to make
// writes, syncs, closes or opens fail for matching file names:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule(".part1.", fs.Fault{FailAfterBytes: 0})
//
// Calls take no context.Context: local file operations are not interruptible
// at the syscall level. Remote I/O goes through blobstore.Store.
package fs
