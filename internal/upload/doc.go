// Package upload moves closed staging files to the remote store.
//
// A Dispatcher owns a bounded queue and a fixed pool of workers. Each job is a
// staging file path; the remote key is derived from the configured prefix and
// the file's base name. Zero-byte files are removed without contacting the
// store. A file is never uploaded by two workers at once.
package upload
