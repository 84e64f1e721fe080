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

// Package hsp collects high-scoring pairs (HSPs) of pairwise alignments,
// i.e., aligned regions of query sequences, from tabular files.
package hsp

import (
	"github.com/shenwei356/ugrab/ugrab/coverage"
)

// Record is one alignment record.
type Record struct {
	Query  string
	QLen   int
	QStart int
	QEnd   int
}

// Aggregator gathers query lengths and aligned intervals by query.
// Queries are kept in the order they first appear.
//
// An Aggregator is filled by one goroutine, after which it is read-only
// and can be shared by goroutines.
type Aggregator struct {
	queries   []string
	lengths   map[string]int
	intervals map[string][]coverage.Interval

	records   int
	conflicts int
}

// NewAggregator returns an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		queries:   make([]string, 0, 1024),
		lengths:   make(map[string]int, 1024),
		intervals: make(map[string][]coverage.Interval, 1024),
	}
}

// Add adds a record. The first length seen for a query is kept, and a
// later different length is ignored, in which case true is returned.
func (a *Aggregator) Add(r *Record) (conflict bool) {
	a.records++

	qlen, ok := a.lengths[r.Query]
	if !ok {
		a.lengths[r.Query] = r.QLen
		a.queries = append(a.queries, r.Query)
	} else if qlen != r.QLen {
		a.conflicts++
		conflict = true
	}

	a.intervals[r.Query] = append(a.intervals[r.Query], coverage.Interval{Start: r.QStart, End: r.QEnd})
	return conflict
}

// Queries returns query IDs in the order of first appearance.
// The returned slice should not be modified.
func (a *Aggregator) Queries() []string { return a.queries }

// Len returns the number of queries.
func (a *Aggregator) Len() int { return len(a.queries) }

// Records returns the number of records added.
func (a *Aggregator) Records() int { return a.records }

// Conflicts returns the number of records with a query length different
// from the first one of the same query.
func (a *Aggregator) Conflicts() int { return a.conflicts }

// Length returns the length of a query.
func (a *Aggregator) Length(query string) (int, bool) {
	qlen, ok := a.lengths[query]
	return qlen, ok
}

// Intervals returns the aligned intervals of a query in the order of
// records. The returned slice should not be modified.
func (a *Aggregator) Intervals(query string) []coverage.Interval {
	return a.intervals[query]
}
