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
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/twotwotwo/sorts/sortutil"
	"github.com/vbauerster/mpb/v8"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize alignment coverage and unaligned regions of queries",
	Long: `Summarize alignment coverage and unaligned regions of queries

` + inputFormatHelp + `
Output (tab-delimited):
    1.  query,     Query ID.
    2.  qlen,      Query length.
    3.  hsps,      Number of HSPs.
    4.  aligned,   Number of aligned bases.
    5.  qcov,      Percentage of aligned bases.
    6.  runs,      Number of unaligned regions not shorter than -l/--min-len.
    7.  unaligned, Number of bases in these unaligned regions.
    8.  longest,   Length of the longest unaligned region, 0 for none.

A histogram of lengths of unaligned regions can be plotted with --plot.

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

		files := getInputFiles(cmd, args, opt)

		outFile := getFlagString(cmd, "out-file")
		minLen := getFlagPositiveInt(cmd, "min-len")
		clamp := getFlagBool(cmd, "clamp")
		plotFile := getFlagString(cmd, "plot")
		bins := getFlagPositiveInt(cmd, "bins")

		if plotFile != "" {
			switch strings.ToLower(filepath.Ext(plotFile)) {
			case ".png", ".pdf", ".svg", ".jpg", ".jpeg", ".eps", ".tif", ".tiff":
			default:
				checkError(fmt.Errorf("unsupported image format of --plot: %s", plotFile))
			}
		}

		agg := readHSPs(cmd, opt, files)

		checkError(validateQueries(agg, clamp))

		outfh, gw, w, err := outStream(outFile, strings.HasSuffix(outFile, ".gz"), opt.CompressionLevel)
		checkError(err)

		fmt.Fprintln(outfh, "query\tqlen\thsps\taligned\tqcov\truns\tunaligned\tlongest")

		var pbs *mpb.Progress
		var bar *mpb.Bar
		showProgress := opt.Verbose && agg.Len() >= progressMinQueries
		if showProgress {
			pbs, bar = newProgressBar(agg.Len(), "processed queries: ")
		}

		lens := make([]float64, 0, 1024)
		var totalLen, totalAligned int
		gopt := &GrabOptions{MinLen: minLen, Threads: opt.NumCPUs, Clamp: clamp}
		err = detectAll(agg, gopt, func(r *QueryRuns) error {
			if showProgress {
				bar.Increment()
			}

			var longest int
			for _, run := range r.Runs {
				lens = append(lens, float64(run.Len()))
				if run.Len() > longest {
					longest = run.Len()
				}
			}
			totalLen += r.Length
			totalAligned += r.AlignedBases

			_, err := fmt.Fprintf(outfh, "%s\t%d\t%d\t%d\t%.2f\t%d\t%d\t%d\n",
				r.Query, r.Length, r.HSPs, r.AlignedBases,
				float64(r.AlignedBases)/float64(r.Length)*100,
				len(r.Runs), r.UnalignedBases(), longest)
			return err
		})
		if showProgress {
			if err != nil {
				bar.Abort(false)
			}
			pbs.Wait()
		}
		checkError(err)

		checkError(closeOutStream(outfh, gw, w))

		if outputLog && totalLen > 0 {
			log.Infof("%s queries, %s bases, %.2f%% aligned",
				humanize.Comma(int64(agg.Len())), humanize.Comma(int64(totalLen)),
				float64(totalAligned)/float64(totalLen)*100)

			if len(lens) > 0 {
				sortutil.Float64s(lens)
				log.Infof("%s unaligned regions (>= %d bp), length: mean %.1f, median %.1f, max %.0f",
					humanize.Comma(int64(len(lens))), minLen,
					stat.Mean(lens, nil), stat.Quantile(0.5, stat.Empirical, lens, nil), lens[len(lens)-1])
			} else {
				log.Infof("no unaligned regions (>= %d bp) found", minLen)
			}
		}

		if plotFile != "" {
			if len(lens) == 0 {
				log.Warningf("no unaligned regions to plot")
				return
			}
			checkError(plotRunLengths(lens, bins, minLen, plotFile))
			if outputLog {
				log.Infof("histogram saved to: %s", plotFile)
			}
		}
	},
}

// plotRunLengths draws a histogram of lengths of unaligned regions.
func plotRunLengths(lens []float64, bins int, minLen int, file string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Unaligned regions (>= %d bp)", minLen)
	p.X.Label.Text = "Length (bp)"
	p.Y.Label.Text = "Count"

	h, err := plotter.NewHist(plotter.Values(lens), bins)
	if err != nil {
		return errors.Wrap(err, "plot histogram")
	}
	p.Add(h)

	if err = p.Save(6*vg.Inch, 4*vg.Inch, file); err != nil {
		return errors.Wrapf(err, "save plot: %s", file)
	}
	return nil
}

func init() {
	RootCmd.AddCommand(statsCmd)

	addInputFlags(statsCmd)

	statsCmd.Flags().StringP("out-file", "o", "-",
		formatFlagUsage(`Out file, supports the ".gz" suffix ("-" for stdout).`))

	statsCmd.Flags().IntP("min-len", "l", 14,
		formatFlagUsage(`Minimum length of unaligned regions.`))

	statsCmd.Flags().BoolP("clamp", "", false,
		formatFlagUsage(`Trim HSPs to query ranges and drop those out of them, instead of reporting errors.`))

	statsCmd.Flags().StringP("plot", "", "",
		formatFlagUsage(`Plot a histogram of lengths of unaligned regions to a file (.png, .pdf, .svg).`))

	statsCmd.Flags().IntP("bins", "", 40,
		formatFlagUsage(`Number of bins of the histogram.`))

	statsCmd.SetUsageTemplate(usageTemplate(""))
}
