// Package tempfile owns the single active staging file of an engine and the
// checks on the staging directory.
//
// A File is not safe for concurrent use; the engine serializes all access
// behind its own mutex.
package tempfile
