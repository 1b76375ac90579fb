// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package afmt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pkozuchowski/afmt/config"
	"github.com/pkozuchowski/afmt/doc"
	"github.com/pkozuchowski/afmt/notation"
	"github.com/pkozuchowski/afmt/reporter"
)

// Formatter formats notation files into text.
type Formatter struct {
	// The layout configuration. If the zero value, config.Default() is used.
	Config config.Config
	// Opens files by path. If unspecified, files are read from the file
	// system.
	Accessor SourceAccessor
	// The maximum parallelism to use when formatting. If unspecified or set
	// to a non-positive value, then min(runtime.NumCPU(),
	// runtime.GOMAXPROCS(-1)) will be used.
	MaxParallelism int
	// A custom error and warning reporter. If unspecified a default reporter
	// is used. A default reporter fails after encountering any errors and
	// ignores all warnings.
	//
	// The reporter is called concurrently for different files.
	Reporter reporter.Reporter
	// Receives debug logs. If unspecified, nothing is logged.
	Logger *slog.Logger
}

// Compile compiles src into a document, using a builder configured with the
// formatter's indentation unit.
func (f *Formatter) Compile(filename, src string) (doc.Doc, error) {
	cfg, err := f.config()
	if err != nil {
		return doc.Doc{}, err
	}
	b, err := doc.NewBuilder(cfg.IndentSize)
	if err != nil {
		return doc.Doc{}, err
	}
	return notation.Compile(filename, src, b, f.Reporter)
}

// FormatSource compiles and renders src. The output ends in a newline unless
// it is empty.
func (f *Formatter) FormatSource(filename, src string) (string, error) {
	cfg, err := f.config()
	if err != nil {
		return "", err
	}
	d, err := f.Compile(filename, src)
	if err != nil {
		return "", err
	}

	out := doc.Render(d, cfg.MaxWidth)
	if out != "" && !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out, nil
}

// Format reads and formats the given files in parallel, and reads the
// current contents of each file's [Target]. Results are in the same order as
// files.
//
// Formatting stops at the first file that fails, or when ctx is cancelled.
func (f *Formatter) Format(ctx context.Context, files ...string) ([]Result, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if _, err := f.config(); err != nil {
		return nil, err
	}

	par := f.MaxParallelism
	if par <= 0 {
		par = min(runtime.GOMAXPROCS(-1), runtime.NumCPU())
	}

	results := make([]Result, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(par)
	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := f.formatFile(path)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (f *Formatter) formatFile(path string) (Result, error) {
	start := time.Now()
	src, err := f.read(path)
	if err != nil {
		return Result{}, err
	}
	out, err := f.FormatSource(path, src)
	if err != nil {
		return Result{}, err
	}

	target := Target(path)
	prev, err := f.read(target)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Result{}, err
	}

	res := Result{Path: path, Source: src, Output: out, Target: target, Previous: prev}
	f.logger().Debug("formatted file",
		slog.String("path", path),
		slog.String("target", target),
		slog.Int("bytes", len(out)),
		slog.Bool("changed", res.Changed()),
		slog.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

func (f *Formatter) read(path string) (string, error) {
	open := f.Accessor
	if open == nil {
		open = openFile
	}
	r, err := open(path)
	if err != nil {
		return "", err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

func (f *Formatter) config() (config.Config, error) {
	if f.Config == (config.Config{}) {
		return config.Default(), nil
	}
	return f.Config, f.Config.Validate()
}

func (f *Formatter) logger() *slog.Logger {
	if f.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return f.Logger
}
