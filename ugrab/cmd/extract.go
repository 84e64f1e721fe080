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
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/shenwei356/ugrab/ugrab/coverage"
	"github.com/shenwei356/ugrab/ugrab/hsp"
	"github.com/shenwei356/xopen"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract sequences of unaligned regions",
	Long: `Extract sequences of unaligned regions

Input:
  1. Output of 'ugrab grab', in CSV or tab-delimited format, or in BED3 format
     with the flag -b/--bed. Files are given via positional arguments or
     the flag -i/--in-file.
  2. Query sequences in FASTA/Q format (-s/--seq-file).

Output:
  FASTA sequences with identifiers of "<query>_<start>-<end>",
  where positions are 1-based and both ends are included.
  Sequences are written while reading the sequence file, so a region
  out of the range of its sequence stops the command, leaving an
  incomplete output file.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		seq.ValidateSeq = false

		var fhLog *os.File
		if opt.Log2File {
			fhLog = addLog(opt.LogFile, opt.Verbose)
		}
		outputLog := opt.Verbose || opt.Log2File

		timeStart := time.Now()
		defer func() {
			if outputLog {
				log.Info()
				log.Infof("elapsed time: %s", time.Since(timeStart))
				log.Info()
			}
			if opt.Log2File {
				fhLog.Close()
			}
		}()

		seqFile := getFlagString(cmd, "seq-file")
		if seqFile == "" {
			checkError(fmt.Errorf("flag -s/--seq-file needed"))
		}
		outFile := getFlagString(cmd, "out-file")
		bed := getFlagBool(cmd, "bed")
		lineWidth := getFlagNonNegativeInt(cmd, "line-width")

		files := getFileList(getFlagStringSlice(cmd, "in-file"), true)
		files = append(files, getFileList(args, true)...)
		if len(files) == 0 {
			log.Errorf("no input files given")
			fmt.Fprintln(os.Stderr)
			cmd.Usage()
			os.Exit(1)
		}

		table := newRunTable()
		for _, file := range files {
			checkError(table.ReadFile(file, bed))
		}
		if outputLog {
			log.Infof("%d unaligned regions of %d queries loaded", table.Regions(), len(table.queries))
		}

		outfh, gw, w, err := outStream(outFile, strings.HasSuffix(outFile, ".gz"), opt.CompressionLevel)
		checkError(err)

		fastxReader, err := fastx.NewReader(nil, seqFile, "")
		checkError(err)

		var record *fastx.Record
		var buf *bytes.Buffer
		found := make(map[string]struct{}, len(table.queries))
		var n int
		for {
			record, err = fastxReader.Read()
			if err != nil {
				if err == io.EOF {
					break
				}
				checkError(err)
				break
			}

			runs, ok := table.runs[string(record.ID)]
			if !ok {
				continue
			}
			found[string(record.ID)] = struct{}{}

			buf, err = writeRunSeqs(outfh, record.ID, record.Seq.Seq, runs, lineWidth, buf)
			checkError(err)
			n += len(runs)
		}
		fastxReader.Close()

		checkError(closeOutStream(outfh, gw, w))

		if outputLog {
			if len(found) < len(table.queries) {
				log.Warningf("%d queries not found in %s", len(table.queries)-len(found), seqFile)
			}
			log.Infof("%d sequences of unaligned regions extracted", n)
		}
	},
}

// writeRunSeqs writes subsequences of the runs in FASTA format.
func writeRunSeqs(outfh *bufio.Writer, id []byte, s []byte, runs []coverage.Run, lineWidth int, buf *bytes.Buffer) (*bytes.Buffer, error) {
	var sub []byte
	for _, run := range runs {
		if run.End > len(s) {
			return buf, fmt.Errorf("unaligned region %s out of the range of sequence %s (%d bp)", run, id, len(s))
		}

		outfh.Write(_mark_fasta)
		fmt.Fprintf(outfh, "%s_%d-%d", id, run.Start, run.End)
		outfh.Write(_mark_newline)

		sub, buf = wrapByteSlice(s[run.Start-1:run.End], lineWidth, buf)
		outfh.Write(sub)
		if _, err := outfh.Write(_mark_newline); err != nil {
			return buf, err
		}
	}
	return buf, nil
}

// runTable holds unaligned regions of queries.
type runTable struct {
	queries []string
	runs    map[string][]coverage.Run
}

func newRunTable() *runTable {
	return &runTable{
		queries: make([]string, 0, 1024),
		runs:    make(map[string][]coverage.Run, 1024),
	}
}

// Regions returns the number of regions.
func (t *runTable) Regions() int {
	var n int
	for _, runs := range t.runs {
		n += len(runs)
	}
	return n
}

// ReadFile reads a table of unaligned regions, in CSV or tab-delimited
// format with a header row, or in BED3 format.
func (t *runTable) ReadFile(file string, bed bool) error {
	fh, err := xopen.Ropen(file)
	if err != nil {
		return errors.Wrapf(err, "read file: %s", file)
	}
	defer fh.Close()

	items := make([]string, 4)
	scanner := bufio.NewScanner(fh)
	var line string
	var sep byte
	var start, end int
	for scanner.Scan() {
		line = strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" || line[0] == '#' {
			continue
		}

		if bed || strings.IndexByte(line, '\t') >= 0 {
			sep = '\t'
		} else {
			sep = ','
		}
		stringSplitNByByte(line, sep, 4, &items)
		if len(items) < 3 {
			return fmt.Errorf("file %s: at least 3 columns needed: %s", file, line)
		}
		if !bed && hsp.IsHeader(items[0]) {
			continue
		}

		start, err = strconv.Atoi(items[1])
		if err != nil {
			return fmt.Errorf("file %s: invalid start position: %s", file, line)
		}
		end, err = strconv.Atoi(items[2])
		if err != nil {
			return fmt.Errorf("file %s: invalid end position: %s", file, line)
		}
		if bed {
			start++
		}
		if start < 1 || start > end {
			return fmt.Errorf("file %s: invalid region: %s", file, line)
		}

		if _, ok := t.runs[items[0]]; !ok {
			t.queries = append(t.queries, items[0])
		}
		t.runs[items[0]] = append(t.runs[items[0]], coverage.Run{Start: start, End: end})
	}
	if err = scanner.Err(); err != nil {
		return errors.Wrapf(err, "read file: %s", file)
	}
	return nil
}

func init() {
	RootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringSliceP("in-file", "i", []string{},
		formatFlagUsage(`Output file(s) of 'ugrab grab'.`))

	extractCmd.Flags().BoolP("bed", "b", false,
		formatFlagUsage(`Input files are in BED3 format.`))

	extractCmd.Flags().StringP("seq-file", "s", "",
		formatFlagUsage(`FASTA/Q file of query sequences.`))

	extractCmd.Flags().StringP("out-file", "o", "-",
		formatFlagUsage(`Out file, supports the ".gz" suffix ("-" for stdout).`))

	extractCmd.Flags().IntP("line-width", "w", 60,
		formatFlagUsage(`Line width of output sequences, 0 for no wrap.`))

	extractCmd.SetUsageTemplate(usageTemplate(""))
}
