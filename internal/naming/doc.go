// Package naming generates staging file names.
//
// A staging file name encodes the producing host, the minute it was opened,
// optional tags and the rotation sequence number:
//
//	ls.logpool.<host>.<YYYY-MM-DD>T<HH>.<MM>[.tag_<a.b.c>].part<N>.txt
//
// Names are unique per engine instance because the sequence number grows with
// every rotation. Across restarts the engine refuses to reuse a name that is
// still on disk (see internal/tempfile.Create).
package naming
