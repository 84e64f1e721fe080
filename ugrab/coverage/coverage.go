// Copyright © 2026 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package coverage marks the aligned positions of a query sequence with
// its high-scoring pairs (HSPs) and extracts the unaligned runs in between.
//
// Coordinates are 1-based and both bounds of an interval are inclusive,
// as in BLAST tabular output.
package coverage

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidLength means the query length is not positive.
	ErrInvalidLength = errors.New("coverage: query length should be positive")
	// ErrInvalidMinLen means the minimum run length is not positive.
	ErrInvalidMinLen = errors.New("coverage: minimum run length should be positive")
	// ErrInvalidInterval means the start of an interval is greater than its end.
	ErrInvalidInterval = errors.New("coverage: interval start should not be greater than end")
	// ErrOutOfRange means an interval is not inside [1, length].
	ErrOutOfRange = errors.New("coverage: interval out of query range")
)

// Interval is an aligned region of a query, 1-based, both ends included.
type Interval struct {
	Start int
	End   int
}

// Len returns the number of positions in the interval.
func (i Interval) Len() int { return i.End - i.Start + 1 }

func (i Interval) String() string { return fmt.Sprintf("%d-%d", i.Start, i.End) }

// Run is a maximal stretch of unaligned positions, 1-based, both ends included.
type Run struct {
	Start int
	End   int
}

// Len returns the number of positions in the run.
func (r Run) Len() int { return r.End - r.Start + 1 }

func (r Run) String() string { return fmt.Sprintf("%d-%d", r.Start, r.End) }

// Validate checks a query length and its intervals.
func Validate(length int, intervals []Interval) error {
	if length < 1 {
		return errors.Wrapf(ErrInvalidLength, "length: %d", length)
	}
	for _, iv := range intervals {
		if iv.Start > iv.End {
			return errors.Wrapf(ErrInvalidInterval, "interval: %d-%d", iv.Start, iv.End)
		}
		if iv.Start < 1 || iv.End > length {
			return errors.Wrapf(ErrOutOfRange, "interval: %d-%d, query length: %d", iv.Start, iv.End, length)
		}
	}
	return nil
}

// Clamp trims intervals to [1, length]. Intervals lying entirely outside
// the range are dropped, and so are those with start > end.
// The number of dropped intervals is also returned.
// The input slice is not modified.
func Clamp(length int, intervals []Interval) ([]Interval, int) {
	ivs := make([]Interval, 0, len(intervals))
	var dropped int
	for _, iv := range intervals {
		if iv.Start > iv.End || iv.End < 1 || iv.Start > length {
			dropped++
			continue
		}
		if iv.Start < 1 {
			iv.Start = 1
		}
		if iv.End > length {
			iv.End = length
		}
		ivs = append(ivs, iv)
	}
	return ivs, dropped
}

// Map records whether each position of a query is aligned.
// It is read-only after NewMap returns.
type Map struct {
	aligned  []bool // index 0 is not used
	nAligned int
}

// NewMap marks all positions covered by the intervals.
// Overlapping or duplicated intervals are fine.
func NewMap(length int, intervals []Interval) (*Map, error) {
	if err := Validate(length, intervals); err != nil {
		return nil, err
	}

	m := &Map{aligned: make([]bool, length+1)}
	var i int
	for _, iv := range intervals {
		for i = iv.Start; i <= iv.End; i++ {
			if !m.aligned[i] {
				m.aligned[i] = true
				m.nAligned++
			}
		}
	}
	return m, nil
}

// Length returns the query length.
func (m *Map) Length() int { return len(m.aligned) - 1 }

// AlignedBases returns the number of aligned positions.
func (m *Map) AlignedBases() int { return m.nAligned }

// Aligned tells whether the 1-based position is aligned.
// Positions outside the query are reported as unaligned.
func (m *Map) Aligned(pos int) bool {
	if pos < 1 || pos >= len(m.aligned) {
		return false
	}
	return m.aligned[pos]
}

// Runs scans the map from left to right and returns the unaligned runs
// not shorter than minLen, in ascending order of start positions.
// minLen < 1 is treated as 1, which returns all unaligned runs.
func (m *Map) Runs(minLen int) []Run {
	if minLen < 1 {
		minLen = 1
	}
	runs := make([]Run, 0, 8)

	n := len(m.aligned) - 1
	var start, end int
	pos := 1
	for pos <= n {
		if m.aligned[pos] {
			pos++
			continue
		}

		start = pos
		for pos <= n && !m.aligned[pos] {
			pos++
		}
		end = pos - 1 // the last unaligned one

		if end-start+1 >= minLen {
			runs = append(runs, Run{Start: start, End: end})
		}
	}
	return runs
}

// FindUnalignedRuns returns the unaligned runs of a query not shorter than
// minLen, in ascending order of start positions.
//
// All intervals must be inside [1, length], see Clamp for trimming
// intervals from sloppy sources.
func FindUnalignedRuns(length int, intervals []Interval, minLen int) ([]Run, error) {
	if minLen < 1 {
		return nil, errors.Wrapf(ErrInvalidMinLen, "minimum length: %d", minLen)
	}
	m, err := NewMap(length, intervals)
	if err != nil {
		return nil, err
	}
	return m.Runs(minLen), nil
}
