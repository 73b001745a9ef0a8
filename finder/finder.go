// Package finder determines the most frequent value in a six-slot window
// of an int32 sequence.
//
// The window is anchored at base = flag*10: an element e falls into
// bucket i when e-base == i for i in 1..6.  FindMode returns base+i for
// the single bucket holding the most elements, or Tie when two or more
// buckets share the maximum (which includes the case where nothing fell
// into the window at all).
//
// All arithmetic is int32 with two's-complement wraparound, so the
// results are bit-exact for any flag, including ones whose base
// overflows.
//
// Every function in this package is pure: the input sequence is read,
// never modified or retained, and no allocation takes place.
package finder

import (
	"modefind/internal/errors"
)

const (
	// Tie is returned when no single bucket holds the maximum count.
	Tie int32 = 10

	// Buckets is the number of counted slots above base.
	Buckets = 6

	// Scale multiplies the flag to produce the base.
	Scale int32 = 10
)

// Counts holds per-bucket tallies.  Index 0 is never incremented;
// indices 1..Buckets count elements equal to base+index.
type Counts [Buckets + 1]int32

// Max returns the largest count over buckets 1..Buckets.
func (c Counts) Max() int32 {
	var m int32
	for i := 1; i <= Buckets; i++ {
		if c[i] > m {
			m = c[i]
		}
	}
	return m
}

// Winners returns how many buckets reach Max.  Anything other than 1
// means the query ends in a tie.
func (c Counts) Winners() int {
	m := c.Max()
	n := 0
	for i := 1; i <= Buckets; i++ {
		if c[i] == m {
			n++
		}
	}
	return n
}

// Total returns the number of elements that fell inside the window.
func (c Counts) Total() int32 {
	var t int32
	for i := 1; i <= Buckets; i++ {
		t += c[i]
	}
	return t
}

// Base returns flag*10 with int32 wraparound.
func Base(flag int32) int32 { return flag * Scale }

// Tally counts every element of seq into its bucket relative to
// Base(flag).  Elements outside [base+1, base+6] are ignored.
func Tally(flag int32, seq []int32) Counts {
	var c Counts
	base := Base(flag)
	for _, v := range seq {
		if idx := v - base; idx >= 1 && idx <= Buckets {
			c[idx]++
		}
	}
	return c
}

// FindMode returns base+i for the unique most frequent bucket i among
// the first size elements of seq, or Tie.
//
// The caller guarantees len(seq) >= size; a shorter seq panics with an
// index out of range.  A negative size counts nothing.  Use
// FindModeChecked to get an error instead.
func FindMode(flag int32, seq []int32, size int32) int32 {
	return defaultFinder.Find(flag, seq, size)
}

// FindModeChecked is FindMode with the size precondition verified.  It
// fails with an error wrapping errors.ErrInvalidArgument when size is
// negative or exceeds len(seq).
func FindModeChecked(flag int32, seq []int32, size int32) (int32, error) {
	if err := checkSize("find", seq == nil, len(seq), size); err != nil {
		return 0, err
	}
	return FindMode(flag, seq, size), nil
}

func checkSize(op string, isNil bool, n int, size int32) error {
	switch {
	case size < 0:
		return errors.Invalid(op, "size", size)
	case isNil && size > 0:
		return errors.Invalid(op, "seq", nil)
	case int64(size) > int64(n):
		return errors.Invalid(op, "size", size)
	}
	return nil
}

// prefix returns the first size elements of seq.  Slicing the
// full-length slice bounds size by len(seq), not cap(seq), so a short
// seq panics instead of exposing stale backing-array elements.
func prefix(seq []int32, size int32) []int32 {
	if size <= 0 {
		return nil
	}
	return seq[:len(seq):len(seq)][:size]
}
