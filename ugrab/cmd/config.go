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
	"sort"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/shenwei356/util/pathutil"
	"github.com/spf13/cobra"
)

var defaultConfigFile = "~/.ugrab.toml"

// applyConfig reads default values of flags from the TOML config file
// given by the flag --config. Keys are flag names, e.g.,
//
//	threads = 8
//	min-len = 50
//	tabs = true
//	fields = "1,13,7,8"
//
// Flags set in the command line are not overwritten, and keys not
// matching any flag of the command are ignored.
// It returns the path of the file loaded, or an empty string if the
// default config file does not exist.
func applyConfig(cmd *cobra.Command) (string, error) {
	file, err := cmd.Flags().GetString("config")
	if err != nil {
		return "", err
	}
	if file == "" {
		return "", nil
	}
	explicit := cmd.Flags().Changed("config")

	file, err = homedir.Expand(file)
	if err != nil {
		return "", errors.Wrapf(err, "expand path of config file: %s", file)
	}

	ok, err := pathutil.Exists(file)
	if err != nil {
		return "", errors.Wrapf(err, "check config file: %s", file)
	}
	if !ok {
		if explicit {
			return "", fmt.Errorf("config file does not exist: %s", file)
		}
		return "", nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return "", errors.Wrapf(err, "read config file: %s", file)
	}

	values := make(map[string]interface{})
	if err = toml.Unmarshal(data, &values); err != nil {
		return "", errors.Wrapf(err, "parse config file: %s", file)
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if key == "config" {
			continue
		}
		flag := cmd.Flags().Lookup(key)
		if flag == nil || flag.Changed {
			continue
		}

		switch values[key].(type) {
		case []interface{}, map[string]interface{}:
			return "", fmt.Errorf("config file %s: value of '%s' should be a number, string or boolean", file, key)
		}

		if err = cmd.Flags().Set(key, fmt.Sprintf("%v", values[key])); err != nil {
			return "", errors.Wrapf(err, "config file %s: invalid value of '%s'", file, key)
		}
	}

	return file, nil
}
