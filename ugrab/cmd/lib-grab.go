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

package cmd

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/shenwei356/ugrab/ugrab/coverage"
	"github.com/shenwei356/ugrab/ugrab/hsp"
)

// GrabOptions contains the options of finding unaligned runs.
type GrabOptions struct {
	MinLen  int
	Threads int

	// Clamp trims HSPs to the query range instead of failing.
	Clamp bool
}

// QueryRuns holds the unaligned runs of a query.
type QueryRuns struct {
	id  uint64 // the order of the query
	err error

	Query        string
	Length       int
	HSPs         int
	Dropped      int // HSPs dropped in clamping
	AlignedBases int
	Runs         []coverage.Run
}

// UnalignedBases returns the number of bases in the runs.
func (r *QueryRuns) UnalignedBases() int {
	var n int
	for _, run := range r.Runs {
		n += run.Len()
	}
	return n
}

func detectQuery(agg *hsp.Aggregator, query string, opt *GrabOptions) (*QueryRuns, error) {
	qlen, ok := agg.Length(query)
	if !ok {
		return nil, fmt.Errorf("query not found: %s", query)
	}
	ivs := agg.Intervals(query)

	r := &QueryRuns{Query: query, Length: qlen, HSPs: len(ivs)}
	if opt.Clamp && qlen > 0 {
		ivs, r.Dropped = coverage.Clamp(qlen, ivs)
	}

	m, err := coverage.NewMap(qlen, ivs)
	if err != nil {
		return nil, errors.Wrapf(err, "query: %s", query)
	}
	r.AlignedBases = m.AlignedBases()
	r.Runs = m.Runs(opt.MinLen)
	return r, nil
}

// validateQueries checks lengths and HSPs of all queries, so that
// invalid data are reported before writing any output.
// With clamp, HSPs are clamped later, only query lengths are checked.
func validateQueries(agg *hsp.Aggregator, clamp bool) error {
	var qlen int
	for _, query := range agg.Queries() {
		qlen, _ = agg.Length(query)
		if clamp {
			if qlen < 1 {
				return errors.Wrapf(coverage.ErrInvalidLength, "query: %s, length: %d", query, qlen)
			}
			continue
		}
		if err := coverage.Validate(qlen, agg.Intervals(query)); err != nil {
			return errors.Wrapf(err, "query: %s", query)
		}
	}
	return nil
}

// detectAll finds unaligned runs of all queries with opt.Threads goroutines,
// and calls emit for each query in the order of the aggregator.
// It stops at the first error returned by a query or emit.
func detectAll(agg *hsp.Aggregator, opt *GrabOptions, emit func(*QueryRuns) error) error {
	if opt.MinLen < 1 {
		return errors.Wrapf(coverage.ErrInvalidMinLen, "minimum length: %d", opt.MinLen)
	}
	threads := opt.Threads
	if threads < 1 {
		threads = 1
	}

	var failed atomic.Bool
	var errEmit error

	// outputter, keeping the order of queries
	ch := make(chan *QueryRuns, threads)
	done := make(chan int)
	go func() {
		buf := make(map[uint64]*QueryRuns, threads)
		var id uint64
		var r *QueryRuns
		var ok bool

		for r = range ch {
			if errEmit != nil {
				continue
			}

			buf[r.id] = r
			for {
				if r, ok = buf[id]; !ok {
					break
				}
				delete(buf, id)
				id++

				if r.err != nil {
					errEmit = r.err
				} else {
					errEmit = emit(r)
				}
				if errEmit != nil {
					failed.Store(true)
					break
				}
			}
		}
		done <- 1
	}()

	var wg sync.WaitGroup
	tokens := make(chan int, threads) // control the max concurrency number
	for i, query := range agg.Queries() {
		if failed.Load() {
			break
		}

		tokens <- 1
		wg.Add(1)

		go func(id uint64, query string) {
			defer func() {
				wg.Done()
				<-tokens
			}()

			r, err := detectQuery(agg, query, opt)
			if err != nil {
				r = &QueryRuns{err: err}
			}
			r.id = id
			ch <- r
		}(uint64(i), query)
	}
	wg.Wait()
	close(ch)
	<-done

	return errEmit
}

// RunWriter writes unaligned runs as a table or in BED format.
type RunWriter struct {
	w   io.Writer
	sep string
	bed bool
}

// NewRunWriter creates a RunWriter. For BED format, sep is ignored.
func NewRunWriter(w io.Writer, sep string, bed bool) *RunWriter {
	if bed {
		sep = "\t"
	}
	return &RunWriter{w: w, sep: sep, bed: bed}
}

// WriteHeader writes the header row. BED output has no header.
func (rw *RunWriter) WriteHeader() error {
	if rw.bed {
		return nil
	}
	_, err := fmt.Fprintf(rw.w, "Query%sstart%send\n", rw.sep, rw.sep)
	return err
}

// Write writes runs of a query, one per row.
// BED start positions are 0-based.
func (rw *RunWriter) Write(r *QueryRuns) error {
	var err error
	for _, run := range r.Runs {
		if rw.bed {
			_, err = fmt.Fprintf(rw.w, "%s\t%d\t%d\n", r.Query, run.Start-1, run.End)
		} else {
			_, err = fmt.Fprintf(rw.w, "%s%s%d%s%d\n", r.Query, rw.sep, run.Start, rw.sep, run.End)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
