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
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/shenwei356/ugrab/ugrab/coverage"
)

func TestRunTable(t *testing.T) {
	dir := t.TempDir()

	csv := filepath.Join(dir, "runs.csv")
	err := os.WriteFile(csv, []byte("Query,start,end\nseq1,1,14\nseq2,5,30\nseq1,40,60\n"), 0644)
	if err != nil {
		t.Error(err)
		return
	}
	bed := filepath.Join(dir, "runs.bed")
	err = os.WriteFile(bed, []byte("seq3\t0\t20\n"), 0644)
	if err != nil {
		t.Error(err)
		return
	}

	table := newRunTable()
	if err = table.ReadFile(csv, false); err != nil {
		t.Error(err)
		return
	}
	if err = table.ReadFile(bed, true); err != nil {
		t.Error(err)
		return
	}

	if !reflect.DeepEqual(table.queries, []string{"seq1", "seq2", "seq3"}) {
		t.Errorf("unexpected queries: %v", table.queries)
	}
	if table.Regions() != 4 {
		t.Errorf("expected %d regions, results: %d", 4, table.Regions())
	}
	expected := []coverage.Run{{Start: 1, End: 14}, {Start: 40, End: 60}}
	if !reflect.DeepEqual(table.runs["seq1"], expected) {
		t.Errorf("expected: %v, results: %v", expected, table.runs["seq1"])
	}
	if !reflect.DeepEqual(table.runs["seq3"], []coverage.Run{{Start: 1, End: 20}}) {
		t.Errorf("unexpected regions of BED records: %v", table.runs["seq3"])
	}

	invalid := filepath.Join(dir, "invalid.csv")
	err = os.WriteFile(invalid, []byte("Query,start,end\nseq1,20,14\n"), 0644)
	if err != nil {
		t.Error(err)
		return
	}
	if err = newRunTable().ReadFile(invalid, false); err == nil {
		t.Errorf("error expected for region 20-14")
	}
}

func TestWriteRunSeqs(t *testing.T) {
	s := []byte("ACGTACGTACGTAAAAATTTTT")
	runs := []coverage.Run{{Start: 1, End: 4}, {Start: 13, End: 22}}

	var b bytes.Buffer
	outfh := bufio.NewWriter(&b)
	_, err := writeRunSeqs(outfh, []byte("seq1"), s, runs, 4, nil)
	if err != nil {
		t.Error(err)
		return
	}
	outfh.Flush()

	expected := ">seq1_1-4\nACGT\n>seq1_13-22\nAAAA\nATTT\nTT\n"
	if b.String() != expected {
		t.Errorf("expected: %q, results: %q", expected, b.String())
	}

	_, err = writeRunSeqs(outfh, []byte("seq1"), s, []coverage.Run{{Start: 20, End: 23}}, 0, nil)
	if err == nil {
		t.Errorf("error expected for region out of sequence")
	}
}
