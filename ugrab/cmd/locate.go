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
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shenwei356/ugrab/ugrab/coverage"
	"github.com/shenwei356/ugrab/ugrab/hsp"
	"github.com/shenwei356/xopen"
	"github.com/spf13/cobra"
)

var locateCmd = &cobra.Command{
	Use:   "locate",
	Short: "List HSPs overlapping given regions of queries",
	Long: `List HSPs overlapping given regions of queries

` + inputFormatHelp + `
Regions:
  A file (-R/--region-file) with query ID, start and end positions (1-based,
  both ends included), using the same delimiter as alignment results.
  Header rows and lines starting with "#" are skipped.

Output (tab-delimited):
    1.  query,      Query ID.
    2.  start,      Start position of the region.
    3.  end,        End position of the region.
    4.  hsp_start,  Start position of an HSP overlapping the region.
    5.  hsp_end,    End position of the HSP.
    6.  copies,     Number of HSPs with the same positions.

Regions without any HSPs are only output with --keep-empty, where the last
three columns are 0.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)

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

		regionFile := getFlagString(cmd, "region-file")
		if regionFile == "" {
			checkError(fmt.Errorf("flag -R/--region-file needed"))
		}
		files := getInputFiles(cmd, args, opt)
		outFile := getFlagString(cmd, "out-file")
		keepEmpty := getFlagBool(cmd, "keep-empty")

		var sep byte = ','
		if getFlagBool(cmd, "tabs") {
			sep = '\t'
		}

		agg := readHSPs(cmd, opt, files)

		// all regions are located before the output file is created,
		// so an invalid region leaves no partial output.
		locator := newHSPLocator(agg)
		fh, err := xopen.Ropen(regionFile)
		checkError(err)
		located, err := locator.LocateAll(fh, sep)
		checkError(err)
		checkError(fh.Close())

		outfh, gw, w, err := outStream(outFile, strings.HasSuffix(outFile, ".gz"), opt.CompressionLevel)
		checkError(err)

		fmt.Fprintln(outfh, "query\tstart\tend\thsp_start\thsp_end\tcopies")
		nHits := writeLocated(outfh, located, keepEmpty)

		checkError(closeOutStream(outfh, gw, w))

		if outputLog {
			log.Infof("%d HSPs found for %d regions", nHits, len(located))
		}
	},
}

// hspLocator searches HSPs of queries, with indexes built on demand.
type hspLocator struct {
	agg     *hsp.Aggregator
	indexes map[string]*coverage.Index
}

func newHSPLocator(agg *hsp.Aggregator) *hspLocator {
	return &hspLocator{agg: agg, indexes: make(map[string]*coverage.Index, 128)}
}

// Locate returns HSPs of a query overlapping [start, end].
func (l *hspLocator) Locate(query string, start, end int) ([]coverage.Hit, error) {
	idx, ok := l.indexes[query]
	if !ok {
		ivs := l.agg.Intervals(query)
		if len(ivs) == 0 {
			return nil, nil
		}
		var err error
		idx, err = coverage.NewIndex(ivs)
		if err != nil {
			return nil, fmt.Errorf("query %s: %s", query, err)
		}
		l.indexes[query] = idx
	}
	return idx.Overlaps(start, end), nil
}

// locatedRegion is a region and HSPs overlapping it.
type locatedRegion struct {
	Query      string
	Start, End int
	Hits       []coverage.Hit
}

// LocateAll reads all regions and searches HSPs overlapping them.
func (l *hspLocator) LocateAll(r io.Reader, sep byte) ([]locatedRegion, error) {
	items := make([]string, 4)
	scanner := bufio.NewScanner(r)
	located := make([]locatedRegion, 0, 1024)
	var line, query string
	var start, end int
	var hits []coverage.Hit
	var err error
	for scanner.Scan() {
		line = strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" || line[0] == '#' {
			continue
		}

		stringSplitNByByte(line, sep, 4, &items)
		if len(items) < 3 {
			return nil, fmt.Errorf("at least 3 columns needed for a region: %s", line)
		}
		query = items[0]
		if hsp.IsHeader(query) {
			continue
		}
		start, err = strconv.Atoi(strings.TrimSpace(items[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid start position: %s", line)
		}
		end, err = strconv.Atoi(strings.TrimSpace(items[2]))
		if err != nil {
			return nil, fmt.Errorf("invalid end position: %s", line)
		}
		if start > end {
			return nil, fmt.Errorf("start position should not be greater than end: %s", line)
		}

		hits, err = l.Locate(query, start, end)
		if err != nil {
			return nil, err
		}
		located = append(located, locatedRegion{Query: query, Start: start, End: end, Hits: hits})
	}
	if err = scanner.Err(); err != nil {
		return nil, err
	}
	return located, nil
}

// writeLocated writes one row per region-HSP pair and returns the number of HSPs.
// Regions without any HSP are written with zeros only if keepEmpty is true.
func writeLocated(w io.Writer, located []locatedRegion, keepEmpty bool) (nHits int) {
	for _, r := range located {
		if len(r.Hits) == 0 {
			if keepEmpty {
				fmt.Fprintf(w, "%s\t%d\t%d\t0\t0\t0\n", r.Query, r.Start, r.End)
			}
			continue
		}
		for _, h := range r.Hits {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\n", r.Query, r.Start, r.End, h.Start, h.End, h.Copies)
		}
		nHits += len(r.Hits)
	}
	return nHits
}

func init() {
	RootCmd.AddCommand(locateCmd)

	addInputFlags(locateCmd)

	locateCmd.Flags().StringP("region-file", "R", "",
		formatFlagUsage(`File of query regions.`))

	locateCmd.Flags().StringP("out-file", "o", "-",
		formatFlagUsage(`Out file, supports the ".gz" suffix ("-" for stdout).`))

	locateCmd.Flags().BoolP("keep-empty", "e", false,
		formatFlagUsage(`Output regions without any HSPs.`))

	locateCmd.SetUsageTemplate(usageTemplate(""))
}
