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

package coverage

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/rdleal/intervalst/interval"
)

// Hit is a distinct HSP span and the number of HSPs sharing it.
type Hit struct {
	Interval
	Copies int
}

// Index supports searching HSPs overlapping a region of a query.
type Index struct {
	tree *interval.SearchTree[*Hit, int]
	n    int
}

func cmpInt(x, y int) int { return x - y }

// NewIndex builds an interval search tree from the HSPs of a query.
// Identical spans are stored once, with the number of copies counted.
func NewIndex(intervals []Interval) (*Index, error) {
	hits := make(map[Interval]*Hit, len(intervals))
	idx := &Index{tree: interval.NewSearchTree[*Hit, int](cmpInt)}

	var h *Hit
	var ok bool
	for _, iv := range intervals {
		if iv.Start > iv.End {
			return nil, errors.Wrapf(ErrInvalidInterval, "interval: %d-%d", iv.Start, iv.End)
		}
		if h, ok = hits[iv]; ok {
			h.Copies++
			continue
		}
		h = &Hit{Interval: iv, Copies: 1}
		hits[iv] = h
		// the tree needs start < end, so spans are stored as [Start, End+1)
		if err := idx.tree.Insert(iv.Start, iv.End+1, h); err != nil {
			return nil, errors.Wrapf(err, "interval: %d-%d", iv.Start, iv.End)
		}
		idx.n++
	}
	return idx, nil
}

// Len returns the number of distinct spans.
func (idx *Index) Len() int { return idx.n }

// Overlaps returns the spans sharing at least one position with [start, end],
// sorted by start and then end.
func (idx *Index) Overlaps(start, end int) []Hit {
	if start > end || idx.n == 0 {
		return nil
	}

	// spans touching [start, end+1) at an end might be returned, filter them.
	found, ok := idx.tree.AllIntersections(start, end+1)
	if !ok {
		return nil
	}
	hits := make([]Hit, 0, len(found))
	for _, h := range found {
		if h.Start <= end && h.End >= start {
			hits = append(hits, *h)
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Start == hits[j].Start {
			return hits[i].End < hits[j].End
		}
		return hits[i].Start < hits[j].Start
	})
	return hits
}
