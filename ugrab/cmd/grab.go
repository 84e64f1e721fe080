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
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
)

var grabCmd = &cobra.Command{
	Use:   "grab",
	Short: "Extract coordinates of unaligned regions of queries",
	Long: `Extract coordinates of unaligned regions of queries

For each query, positions covered by any HSP are marked as aligned, and every
maximal stretch of unaligned positions not shorter than -l/--min-len is reported.

` + inputFormatHelp + `
Output:
  1. A CSV table (-T/--out-tabs for tab-delimited) with a header row:
         Query,start,end
     Positions are 1-based and both ends are included.
     Queries are in the order of the input, and regions are sorted by start.
  2. Or a BED3 file with -b/--bed, where start positions are 0-based.

Attention:
  1. HSPs out of the query range, i.e., [1, query length], or with a start
     position greater than the end, are treated as errors, unless --clamp is given,
     which trims HSPs to the query range and drops those out of it.
  2. If a query appears with different lengths, the first one is used.

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

		// ---------------------------------------------------------------
		// flags

		files := getInputFiles(cmd, args, opt)

		outFile := getFlagString(cmd, "out-file")
		minLen := getFlagPositiveInt(cmd, "min-len")
		outTabs := getFlagBool(cmd, "out-tabs")
		bed := getFlagBool(cmd, "bed")
		clamp := getFlagBool(cmd, "clamp")

		if outputLog {
			if opt.ConfigFile != "" {
				log.Infof("default values loaded from config file: %s", opt.ConfigFile)
			}
			log.Infof("input files: %s", strings.Join(files, ", "))
			log.Infof("output file: %s", outFile)
			log.Infof("minimum length of unaligned regions: %d", minLen)
			log.Info()
		}

		// ---------------------------------------------------------------
		// input

		agg := readHSPs(cmd, opt, files)

		checkError(validateQueries(agg, clamp))

		// ---------------------------------------------------------------
		// output

		outfh, gw, w, err := outStream(outFile, strings.HasSuffix(outFile, ".gz"), opt.CompressionLevel)
		checkError(err)

		sep := ","
		if outTabs {
			sep = "\t"
		}
		rw := NewRunWriter(outfh, sep, bed)
		checkError(rw.WriteHeader())

		var pbs *mpb.Progress
		var bar *mpb.Bar
		showProgress := opt.Verbose && agg.Len() >= progressMinQueries
		if showProgress {
			pbs, bar = newProgressBar(agg.Len(), "processed queries: ")
		}

		var nQueries, nRuns, nBases, nDropped int
		gopt := &GrabOptions{MinLen: minLen, Threads: opt.NumCPUs, Clamp: clamp}
		err = detectAll(agg, gopt, func(r *QueryRuns) error {
			if showProgress {
				bar.Increment()
			}
			nDropped += r.Dropped
			if len(r.Runs) > 0 {
				nQueries++
				nRuns += len(r.Runs)
				nBases += r.UnalignedBases()
			}
			return rw.Write(r)
		})
		if showProgress {
			if err != nil {
				bar.Abort(false)
			}
			pbs.Wait()
		}
		checkError(err)

		checkError(closeOutStream(outfh, gw, w))

		if outputLog {
			if nDropped > 0 {
				log.Warningf("%d HSPs out of query ranges were dropped", nDropped)
			}
			log.Infof("%s unaligned regions (%s bases) found in %s of %s queries",
				humanize.Comma(int64(nRuns)), humanize.Comma(int64(nBases)),
				humanize.Comma(int64(nQueries)), humanize.Comma(int64(agg.Len())))
			if !isStdin(outFile) {
				log.Infof("unaligned regions saved to: %s", outFile)
			}
		}
	},
}

func init() {
	RootCmd.AddCommand(grabCmd)

	// -----------------------------  input  -----------------------------

	addInputFlags(grabCmd)

	// -----------------------------  output  -----------------------------

	grabCmd.Flags().StringP("out-file", "o", "Unaligned_output.csv",
		formatFlagUsage(`Out file, supports the ".gz" suffix ("-" for stdout).`))

	grabCmd.Flags().BoolP("out-tabs", "T", false,
		formatFlagUsage(`Output in tab-delimited format.`))

	grabCmd.Flags().BoolP("bed", "b", false,
		formatFlagUsage(`Output in BED3 format, with 0-based start positions and no header row.`))

	// -----------------------------  regions  -----------------------------

	grabCmd.Flags().IntP("min-len", "l", 14,
		formatFlagUsage(`Minimum length of unaligned regions.`))

	grabCmd.Flags().BoolP("clamp", "", false,
		formatFlagUsage(`Trim HSPs to query ranges and drop those out of them, instead of reporting errors.`))

	grabCmd.SetUsageTemplate(usageTemplate(""))
}
