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
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestStringSplitNByByte(t *testing.T) {
	items := make([]string, 4)

	stringSplitNByByte("a,b,c,d,e", ',', 4, &items)
	if !reflect.DeepEqual(items, []string{"a", "b", "c", "d,e"}) {
		t.Errorf("unexpected items: %v", items)
	}

	stringSplitNByByte("a,b", ',', 4, &items)
	if !reflect.DeepEqual(items, []string{"a", "b"}) {
		t.Errorf("unexpected items: %v", items)
	}

	stringSplitNByByte("a,b,c,d", ',', 4, &items)
	if !reflect.DeepEqual(items, []string{"a", "b", "c", "d"}) {
		t.Errorf("unexpected items: %v", items)
	}

	items = make([]string, 2)
	stringSplitNByByte("a,b,c", ',', 3, &items)
	if !reflect.DeepEqual(items, []string{"a", "b", "c"}) {
		t.Errorf("unexpected items: %v", items)
	}
}

func TestWrapByteSlice(t *testing.T) {
	s, buf := wrapByteSlice([]byte("ACGTACGTAC"), 4, nil)
	if string(s) != "ACGT\nACGT\nAC" {
		t.Errorf("unexpected result: %q", s)
	}

	s, _ = wrapByteSlice([]byte("ACGTACGT"), 4, buf)
	if string(s) != "ACGT\nACGT" {
		t.Errorf("unexpected result: %q", s)
	}

	s, _ = wrapByteSlice([]byte("ACGTACGT"), 0, buf)
	if string(s) != "ACGTACGT" {
		t.Errorf("unexpected result: %q", s)
	}
}

func TestGetListFromFile(t *testing.T) {
	dir := t.TempDir()
	file1 := filepath.Join(dir, "a.tsv")
	file2 := filepath.Join(dir, "b.tsv.gz")
	for _, file := range []string{file1, file2} {
		if err := os.WriteFile(file, []byte("Query\tqlen\tqstart\tqend\n"), 0644); err != nil {
			t.Error(err)
			return
		}
	}

	list := filepath.Join(dir, "list.txt")
	if err := os.WriteFile(list, []byte(file1+"\n\n  "+file2+"\n"), 0644); err != nil {
		t.Error(err)
		return
	}
	files, err := getListFromFile(list, true)
	if err != nil {
		t.Error(err)
		return
	}
	if !reflect.DeepEqual(files, []string{file1, file2}) {
		t.Errorf("expected: %v, results: %v", []string{file1, file2}, files)
	}

	missing := filepath.Join(dir, "missing.tsv")
	if err = os.WriteFile(list, []byte(file1+"\n"+missing+"\n"), 0644); err != nil {
		t.Error(err)
		return
	}
	if _, err = getListFromFile(list, true); err == nil {
		t.Errorf("error expected for missing file: %s", missing)
	}
	if files, err = getListFromFile(list, false); err != nil || len(files) != 2 {
		t.Errorf("expected 2 files without checking, results: %v, %v", files, err)
	}
}
