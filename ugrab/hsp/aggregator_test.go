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

package hsp

import (
	"reflect"
	"testing"

	"github.com/pkg/errors"
	"github.com/shenwei356/ugrab/ugrab/coverage"
)

func TestAggregator(t *testing.T) {
	records := []*Record{
		{"Q2", 100, 10, 20},
		{"Q1", 50, 1, 5},
		{"Q2", 100, 30, 40},
		{"Q1", 60, 7, 9}, // conflicting length
		{"Q2", 100, 15, 25},
	}

	a := NewAggregator()
	var conflicts int
	for _, r := range records {
		if a.Add(r) {
			conflicts++
		}
	}

	if !reflect.DeepEqual(a.Queries(), []string{"Q2", "Q1"}) {
		t.Errorf("unexpected query order: %v", a.Queries())
	}
	if a.Len() != 2 || a.Records() != 5 {
		t.Errorf("expected 2 queries and 5 records, results: %d, %d", a.Len(), a.Records())
	}

	// the first length wins
	if qlen, ok := a.Length("Q1"); !ok || qlen != 50 {
		t.Errorf("expected length of Q1: 50, results: %d", qlen)
	}
	if conflicts != 1 || a.Conflicts() != 1 {
		t.Errorf("expected 1 conflict, results: %d, %d", conflicts, a.Conflicts())
	}
	if _, ok := a.Length("Q3"); ok {
		t.Errorf("unexpected query: Q3")
	}

	expected := []coverage.Interval{{Start: 10, End: 20}, {Start: 30, End: 40}, {Start: 15, End: 25}}
	if !reflect.DeepEqual(a.Intervals("Q2"), expected) {
		t.Errorf("expected: %v, results: %v", expected, a.Intervals("Q2"))
	}
}

func TestParseFields(t *testing.T) {
	fields, err := ParseFields("1, 13,7,8")
	if err != nil {
		t.Error(err)
		return
	}
	if fields != [4]int{1, 13, 7, 8} {
		t.Errorf("unexpected fields: %v", fields)
	}

	for _, s := range []string{"", "1,2,3", "1,2,3,4,5", "1,2,3,a", "0,1,2,3", "1,2,2,3"} {
		if _, err = ParseFields(s); errors.Cause(err) != ErrInvalidFormat {
			t.Errorf("expected error: %s, results: %v, for: '%s'", ErrInvalidFormat, err, s)
		}
	}
}

func TestParseLine(t *testing.T) {
	f, err := NewFormat(',', DefaultFields)
	if err != nil {
		t.Error(err)
		return
	}

	type testCase struct {
		line string
		r    *Record
		ok   bool
		err  bool
	}
	cases := []testCase{
		{"Query,Query_Length,Query_start,Query_end\n", nil, false, false},
		{"# BLASTN 2.15.0+\n", nil, false, false},
		{"\r\n", nil, false, false},
		{"seq1,1000,1,200\r\n", &Record{"seq1", 1000, 1, 200}, true, false},
		{"seq1,1000,300,450,extra,columns\n", &Record{"seq1", 1000, 300, 450}, true, false},
		{"seq1,1000,300\n", nil, false, true},
		{"seq1,1k,300,450\n", nil, false, true},
		{"seq1,1000,300,4.5\n", nil, false, true},
	}
	var r *Record
	var ok bool
	for _, c := range cases {
		r, ok, err = f.ParseLine(c.line)
		if (err != nil) != c.err {
			t.Errorf("line: %q, error expected: %v, results: %v", c.line, c.err, err)
			continue
		}
		if ok != c.ok || !reflect.DeepEqual(r, c.r) {
			t.Errorf("line: %q, expected: %v %v, results: %v %v", c.line, c.r, c.ok, r, ok)
		}
	}

	// blast -outfmt "6 std qlen"
	f, err = NewFormat('\t', [4]int{1, 13, 7, 8})
	if err != nil {
		t.Error(err)
		return
	}
	line := "q1\ts1\t98.5\t200\t3\t0\t11\t210\t1001\t1200\t1e-90\t350\t500\n"
	r, ok, err = f.ParseLine(line)
	if err != nil || !ok {
		t.Errorf("failed to parse: %q: %v", line, err)
		return
	}
	if *r != (Record{"q1", 500, 11, 210}) {
		t.Errorf("unexpected record: %v", *r)
	}
}

func TestNewFormat(t *testing.T) {
	if _, err := NewFormat(',', [4]int{1, 2, 2, 4}); errors.Cause(err) != ErrInvalidFormat {
		t.Errorf("expected error: %s for duplicated columns, results: %v", ErrInvalidFormat, err)
	}
	if _, err := NewFormat(',', [4]int{0, 2, 3, 4}); errors.Cause(err) != ErrInvalidFormat {
		t.Errorf("expected error: %s for column 0, results: %v", ErrInvalidFormat, err)
	}
}
