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
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shenwei356/breader"
)

// ErrInvalidRecord means a line could not be parsed into a Record.
var ErrInvalidRecord = errors.New("hsp: invalid record")

// ErrInvalidFormat means the column numbers of a Format are not valid.
var ErrInvalidFormat = errors.New("hsp: invalid format")

// DefaultFields is the column layout of the default input:
// query ID, query length, start and end on the query.
var DefaultFields = [4]int{1, 2, 3, 4}

// header rows are recognized by the value of the query column
var headerQueries = map[string]struct{}{
	"Query":  {},
	"query":  {},
	"qseqid": {},
}

// IsHeader tells whether the value of the query column belongs to a header row.
func IsHeader(query string) bool {
	_, ok := headerQueries[query]
	return ok
}

// Format describes the layout of a tabular input file.
type Format struct {
	Delimiter byte
	// 1-based column numbers of query ID, query length, start and end.
	Fields [4]int

	maxField int
}

// NewFormat checks the column numbers and returns a Format.
func NewFormat(delimiter byte, fields [4]int) (*Format, error) {
	f := &Format{Delimiter: delimiter, Fields: fields}
	seen := make(map[int]struct{}, 4)
	for _, c := range fields {
		if c < 1 {
			return nil, errors.Wrapf(ErrInvalidFormat, "column number should be positive: %d", c)
		}
		if _, ok := seen[c]; ok {
			return nil, errors.Wrapf(ErrInvalidFormat, "duplicated column number: %d", c)
		}
		seen[c] = struct{}{}
		if c > f.maxField {
			f.maxField = c
		}
	}
	return f, nil
}

// ParseFields parses comma-separated column numbers of query ID,
// query length, start and end, e.g., "1,2,3,4".
func ParseFields(s string) ([4]int, error) {
	var fields [4]int
	items := strings.Split(s, ",")
	if len(items) != 4 {
		return fields, errors.Wrapf(ErrInvalidFormat, "four column numbers needed: %s", s)
	}
	var err error
	seen := make(map[int]struct{}, 4)
	for i, item := range items {
		fields[i], err = strconv.Atoi(strings.TrimSpace(item))
		if err != nil || fields[i] < 1 {
			return fields, errors.Wrapf(ErrInvalidFormat, "invalid column number: %s", item)
		}
		if _, ok := seen[fields[i]]; ok {
			return fields, errors.Wrapf(ErrInvalidFormat, "duplicated column number: %d", fields[i])
		}
		seen[fields[i]] = struct{}{}
	}
	return fields, nil
}

// ParseLine parses a line. ok is false for blank lines, comment lines
// starting with "#" and header rows.
func (f *Format) ParseLine(line string) (r *Record, ok bool, err error) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" || line[0] == '#' {
		return nil, false, nil
	}

	items := strings.SplitN(line, string(f.Delimiter), f.maxField+1)
	if len(items) < f.maxField {
		return nil, false, errors.Wrapf(ErrInvalidRecord, "%d columns (<%d) in line: %s", len(items), f.maxField, line)
	}

	query := items[f.Fields[0]-1]
	if IsHeader(query) {
		return nil, false, nil
	}

	var vals [3]int
	for i, name := range [3]string{"query length", "start", "end"} {
		vals[i], err = strconv.Atoi(strings.TrimSpace(items[f.Fields[i+1]-1]))
		if err != nil {
			return nil, false, errors.Wrapf(ErrInvalidRecord, "non-integer %s '%s' in line: %s", name, items[f.Fields[i+1]-1], line)
		}
	}

	return &Record{Query: query, QLen: vals[0], QStart: vals[1], QEnd: vals[2]}, true, nil
}

// ReadFile parses a plain or compressed tabular file ("-" for stdin) and
// adds all records to the aggregator, in the order of lines.
// Lines are parsed by threads goroutines in chunks of chunkSize lines.
//
// It returns the number of records whose query length conflicts with
// the first one of the same query.
func ReadFile(file string, f *Format, threads int, chunkSize int, a *Aggregator) (int, error) {
	fn := func(line string) (interface{}, bool, error) {
		return f.ParseLine(line)
	}

	reader, err := breader.NewBufferedReader(file, threads, chunkSize, fn)
	if err != nil {
		return 0, errors.Wrapf(err, "read file: %s", file)
	}

	var conflicts int
	for chunk := range reader.Ch {
		if chunk.Err != nil {
			for range reader.Ch { // drain the channel so the reader could exit
			}
			return conflicts, errors.Wrapf(chunk.Err, "file: %s", file)
		}

		for _, data := range chunk.Data {
			if a.Add(data.(*Record)) {
				conflicts++
			}
		}
	}

	return conflicts, nil
}
