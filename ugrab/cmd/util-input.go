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
	"regexp"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shenwei356/ugrab/ugrab/hsp"
	"github.com/shenwei356/util/pathutil"
	"github.com/spf13/cobra"
)

var inputFormatHelp = `Input:
  1. Tabular alignment results with query ID, query length, and start and end
     positions of HSPs on the query, in CSV format by default:
         Query,Query_Length,Query_start,Query_end
         seq1,1500,1,420
     Use -t/--tabs for tab-delimited files, and -f/--fields to choose the columns,
     e.g., -t -f 1,13,7,8 for blastn -outfmt "6 std qlen".
  2. Lines starting with "#" and header rows (query ID being "Query", "query",
     or "qseqid") are skipped.
  3. Positions are 1-based, and both ends are included.
  4. Files can be given via the flag -i/--in-file, positional arguments,
     a file list via -X/--infile-list, or a directory via -I/--in-dir.
     Plain or compressed files are supported, "-" for stdin.
`

// addInputFlags adds flags of input files and their format.
func addInputFlags(c *cobra.Command) {
	c.Flags().StringSliceP("in-file", "i", []string{},
		formatFlagUsage(`Input file(s) of alignment results. Multiple values are supported.`))

	c.Flags().StringP("infile-list", "X", "",
		formatFlagUsage(`File of input file list (one file per line).`))

	c.Flags().StringP("in-dir", "I", "",
		formatFlagUsage(`Directory containing input files. Directory symlinks are followed.`))

	c.Flags().StringP("file-regexp", "r", `\.(csv|tsv|txt|blast|out|b6)(\.gz)?$`,
		formatFlagUsage(`Regular expression for matching input files in -I/--in-dir, case ignored.`))

	c.Flags().BoolP("tabs", "t", false,
		formatFlagUsage(`Input files are tab-delimited.`))

	c.Flags().StringP("fields", "f", "1,2,3,4",
		formatFlagUsage(`Column numbers of query ID, query length, start and end.`))

	c.Flags().IntP("chunk-size", "", 4096,
		formatFlagUsage(`Number of lines parsed by a thread at a time.`))
}

// getInputFiles collects input files from all sources. It prints the usage
// and exits with a non-zero code if no input is given.
func getInputFiles(cmd *cobra.Command, args []string, opt *Options) []string {
	files := getFileList(getFlagStringSlice(cmd, "in-file"), true)
	files = append(files, getFileListFromArgsAndFile(cmd, args, true, "infile-list", true)...)

	inDir := getFlagString(cmd, "in-dir")
	if inDir != "" {
		isDir, err := pathutil.IsDir(inDir)
		if err != nil {
			checkError(fmt.Errorf("check input directory: %s", err))
		}
		if !isDir {
			checkError(fmt.Errorf("the value of flag -I/--in-dir should be a directory: %s", inDir))
		}

		reFileStr := getFlagString(cmd, "file-regexp")
		reFile, err := regexp.Compile("(?i)" + reFileStr)
		if err != nil {
			checkError(fmt.Errorf("failed to parse regular expression for matching file: %s", reFileStr))
		}

		_files, err := getFileListFromDir(inDir, reFile, opt.NumCPUs)
		checkError(err)
		if len(_files) == 0 {
			log.Warningf("no files matching regular expression: %s in %s", reFileStr, inDir)
		}
		files = append(files, _files...)
	}

	if len(files) == 0 {
		log.Errorf("no input files given")
		fmt.Fprintln(os.Stderr)
		cmd.Usage()
		os.Exit(1)
	}
	return files
}

func getInputFormat(cmd *cobra.Command) *hsp.Format {
	fields, err := hsp.ParseFields(getFlagString(cmd, "fields"))
	if err != nil {
		checkError(fmt.Errorf("flag -f/--fields: %s", err))
	}

	var delimiter byte = ','
	if getFlagBool(cmd, "tabs") {
		delimiter = '\t'
	}

	format, err := hsp.NewFormat(delimiter, fields)
	checkError(err)
	return format
}

// readHSPs reads all input files into one aggregator.
func readHSPs(cmd *cobra.Command, opt *Options, files []string) *hsp.Aggregator {
	format := getInputFormat(cmd)
	chunkSize := getFlagPositiveInt(cmd, "chunk-size")

	timeStart := time.Now()
	if opt.Verbose || opt.Log2File {
		log.Infof("reading alignment results from %d file(s) ...", len(files))
	}

	agg := hsp.NewAggregator()
	var conflicts int
	for _, file := range files {
		n, err := hsp.ReadFile(file, format, opt.NumCPUs, chunkSize, agg)
		checkError(err)
		conflicts += n
	}

	if opt.Verbose || opt.Log2File {
		log.Infof("  %s records of %s queries read in %s",
			humanize.Comma(int64(agg.Records())), humanize.Comma(int64(agg.Len())), time.Since(timeStart))
		if conflicts > 0 {
			log.Warningf("  %d records have query lengths different from the first records of the same queries, which are ignored",
				conflicts)
		}
	}
	return agg
}
