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
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/shenwei356/ugrab/ugrab/coverage"
)

func TestReadFile(t *testing.T) {
	data := `Query,Query_Length,Query_start,Query_end
Q1,20,1,5
Q2,10,3,3
Q1,20,10,20
Q2,10,7,7
Q3,5,1,5
`
	file := filepath.Join(t.TempDir(), "hsps.csv")
	if err := os.WriteFile(file, []byte(data), 0644); err != nil {
		t.Error(err)
		return
	}

	f, _ := NewFormat(',', DefaultFields)
	for _, threads := range []int{1, 4} {
		a := NewAggregator()
		conflicts, err := ReadFile(file, f, threads, 2, a)
		if err != nil {
			t.Error(err)
			return
		}
		if conflicts != 0 {
			t.Errorf("unexpected conflicts: %d", conflicts)
		}
		if !reflect.DeepEqual(a.Queries(), []string{"Q1", "Q2", "Q3"}) {
			t.Errorf("unexpected query order: %v", a.Queries())
		}
		expected := []coverage.Interval{{Start: 1, End: 5}, {Start: 10, End: 20}}
		if !reflect.DeepEqual(a.Intervals("Q1"), expected) {
			t.Errorf("expected: %v, results: %v", expected, a.Intervals("Q1"))
		}
	}
}

func TestReadFileInvalidRecord(t *testing.T) {
	data := "Q1,20,1,5\nQ1,twenty,10,20\nQ2,10,3,3\n"
	file := filepath.Join(t.TempDir(), "hsps.csv")
	if err := os.WriteFile(file, []byte(data), 0644); err != nil {
		t.Error(err)
		return
	}

	f, _ := NewFormat(',', DefaultFields)
	_, err := ReadFile(file, f, 2, 1, NewAggregator())
	if err == nil {
		t.Errorf("error expected")
		return
	}
	if !strings.Contains(err.Error(), "twenty") {
		t.Errorf("the error should point to the invalid line: %s", err)
	}
}
