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
	"bytes"
	"strings"
	"testing"

	"github.com/shenwei356/ugrab/ugrab/hsp"
)

func TestLocateAll(t *testing.T) {
	agg := newTestAggregator([]*hsp.Record{
		{Query: "Q1", QLen: 100, QStart: 1, QEnd: 30},
		{Query: "Q1", QLen: 100, QStart: 25, QEnd: 50},
		{Query: "Q1", QLen: 100, QStart: 25, QEnd: 50},
		{Query: "Q1", QLen: 100, QStart: 7, QEnd: 7},
		{Query: "Q2", QLen: 80, QStart: 60, QEnd: 80},
		{Query: "Q2", QLen: 80, QStart: 40, QEnd: 40},
	})

	regions := "Query,start,end\n" +
		"Q1,31,40\n" +
		"Q2,1,39\n" + // ends right before a single-base HSP
		"Q2,40,40\n" +
		"Q2,41,60\n" + // ends at the start of an HSP
		"Q3,1,10\n" +
		"# comment\n" +
		"Q1,50,60\n" + // starts at the end of an HSP
		"Q1,7,7\n"

	locator := newHSPLocator(agg)
	located, err := locator.LocateAll(strings.NewReader(regions), ',')
	if err != nil {
		t.Error(err)
		return
	}
	if len(located) != 7 {
		t.Errorf("expected 7 regions, results: %d", len(located))
	}

	var buf bytes.Buffer
	nHits := writeLocated(&buf, located, true)
	if nHits != 6 {
		t.Errorf("expected 6 hits, results: %d", nHits)
	}
	expected := "Q1\t31\t40\t25\t50\t2\n" +
		"Q2\t1\t39\t0\t0\t0\n" +
		"Q2\t40\t40\t40\t40\t1\n" +
		"Q2\t41\t60\t60\t80\t1\n" +
		"Q3\t1\t10\t0\t0\t0\n" +
		"Q1\t50\t60\t25\t50\t2\n" +
		"Q1\t7\t7\t1\t30\t1\n" +
		"Q1\t7\t7\t7\t7\t1\n"
	if buf.String() != expected {
		t.Errorf("expected: %q, results: %q", expected, buf.String())
	}

	buf.Reset()
	writeLocated(&buf, located, false)
	if strings.Contains(buf.String(), "\t0\t0\t0\n") {
		t.Errorf("unexpected empty regions: %q", buf.String())
	}

	located, err = locator.LocateAll(strings.NewReader("Q1,1,10\nQ1,40,31\n"), ',')
	if err == nil {
		t.Errorf("error expected for region 40-31")
	}
	if located != nil {
		t.Errorf("no regions expected after an invalid region, results: %d", len(located))
	}
}
