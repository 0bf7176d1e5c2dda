// Package rotation decides when the active staging file must be replaced.
package rotation

import "time"

// Policy rotates by size, by age or both. A zero threshold disables that
// trigger.
type Policy struct {
	// Size is the byte threshold (size_file).
	Size int64

	// Interval is the age threshold (time_file).
	Interval time.Duration
}

// ShouldRotate reports whether a file of the given size and age is due.
// It is a pure function and cheap enough to call on every write.
func (p Policy) ShouldRotate(size int64, age time.Duration) bool {
	if p.SizeEnabled() && size >= p.Size {
		return true
	}
	if p.TimeEnabled() && age >= p.Interval {
		return true
	}
	return false
}

// SizeEnabled reports whether size-based rotation is active.
func (p Policy) SizeEnabled() bool { return p.Size > 0 }

// TimeEnabled reports whether periodic rotation is active.
func (p Policy) TimeEnabled() bool { return p.Interval > 0 }

// MultipleFiles reports whether writes are spread over several files by size.
func (p Policy) MultipleFiles() bool { return p.Size != 0 }

// NextCheck returns how long to wait before a file of the given age becomes
// due. It never returns less than min so a timer cannot spin.
func (p Policy) NextCheck(age, min time.Duration) time.Duration {
	if !p.TimeEnabled() {
		return 0
	}
	d := p.Interval - age
	if d < min {
		d = min
	}
	return d
}
