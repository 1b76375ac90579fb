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

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pkozuchowski/afmt"
	"github.com/pkozuchowski/afmt/config"
	"github.com/pkozuchowski/afmt/doc"
	"github.com/pkozuchowski/afmt/reporter"
)

// errChanged is returned when --list or --diff find files whose rendering
// differs from their target. It sets the exit status without printing
// anything.
var errChanged = errors.New("some files are not up to date")

type options struct {
	configPath string
	maxWidth   int
	indentSize int

	write bool
	list  bool
	diff  bool
	dump  bool

	debug bool
	jobs  int
}

func newRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "afmt [flags] [file|directory|glob...]",
		Short: "Render layout notation files",
		Long: `afmt compiles files written in layout notation (.afd) into documents, and
renders them within a maximum line width.

The rendering of foo.txt.afd belongs in foo.txt. By default, renderings are
printed to stdout. Use -w to write them to their target files, -l to list the
targets that are out of date, and -d to show how they would change.

With no arguments, afmt reads notation from stdin and writes the rendering
to stdout.

Settings are taken from, in increasing order of precedence: the defaults, an
afmt.toml, .afmt.toml or .afmt.yaml file in the current directory or one of
its parents, the AFMT_MAX_WIDTH and AFMT_INDENT_SIZE environment variables,
and flags.`,
		Example: `  # Render a file to stdout
  afmt layout.txt.afd

  # Update the targets of every notation file beneath a directory
  afmt -w ./docs

  # Check which targets are out of date
  afmt -l 'docs/**/*.afd'

  # Render stdin at 40 columns, with debug logging enabled
  afmt --max-width 40 --debug < layout.afd`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if opts.debug {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
				Level: level,
			}))

			cfg, err := opts.config(cmd, logger)
			if err != nil {
				return err
			}

			f := &afmt.Formatter{
				Config:         cfg,
				MaxParallelism: opts.jobs,
				Logger:         logger,
				Reporter: reporter.NewReporter(nil, func(err reporter.ErrorWithPos) {
					logger.Warn(err.Error())
				}),
			}

			if len(args) == 0 {
				return opts.runStdin(f, stdin, stdout)
			}
			files, err := afmt.Expand(args...)
			if err != nil {
				return err
			}
			if opts.dump {
				return dumpFiles(f, files, stdout)
			}

			results, err := f.Format(cmd.Context(), files...)
			if err != nil {
				return err
			}
			return opts.report(results, stdout, logger)
		},
	}

	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "Path to a configuration file (default: searched for)")
	flags.IntVar(&opts.maxWidth, "max-width", config.DefaultMaxWidth, "Maximum line width")
	flags.IntVar(&opts.indentSize, "indent-size", config.DefaultIndentSize, "Columns per indentation level")
	flags.BoolVarP(&opts.write, "write", "w", false, "Write renderings to their target files instead of stdout")
	flags.BoolVarP(&opts.list, "list", "l", false, "List targets whose rendering would change")
	flags.BoolVarP(&opts.diff, "diff", "d", false, "Print diffs of targets whose rendering would change")
	flags.BoolVar(&opts.dump, "dump", false, "Print the structure of the compiled documents instead of rendering them")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	flags.IntVarP(&opts.jobs, "jobs", "j", 0, "Number of files to format in parallel (default: number of CPUs)")
	cmd.MarkFlagsMutuallyExclusive("dump", "write")

	return cmd
}

// config resolves the configuration: defaults, then a configuration file,
// then the environment, then flags.
func (o *options) config(cmd *cobra.Command, logger *slog.Logger) (config.Config, error) {
	path := o.configPath
	if path == "" {
		found, err := config.Find(".")
		if err != nil {
			return config.Config{}, err
		}
		path = found
	}

	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
		logger.Debug("loaded configuration", slog.String("path", path))
	}
	if err := config.FromEnv(&cfg, nil); err != nil {
		return config.Config{}, fmt.Errorf("environment: %w", err)
	}

	if cmd.Flags().Changed("max-width") {
		cfg.MaxWidth = o.maxWidth
	}
	if cmd.Flags().Changed("indent-size") {
		cfg.IndentSize = o.indentSize
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	logger.Debug("configuration",
		slog.Int("max_width", cfg.MaxWidth),
		slog.Int("indent_size", cfg.IndentSize),
	)
	return cfg, nil
}

func (o *options) runStdin(f *afmt.Formatter, stdin io.Reader, stdout io.Writer) error {
	if o.write || o.list || o.diff {
		return errors.New("--write, --list and --diff require file arguments")
	}
	src, err := io.ReadAll(stdin)
	if err != nil {
		return err
	}

	if o.dump {
		d, err := f.Compile("<stdin>", string(src))
		if err != nil {
			return err
		}
		_, err = io.WriteString(stdout, doc.Dump(d))
		return err
	}

	out, err := f.FormatSource("<stdin>", string(src))
	if err != nil {
		return err
	}
	_, err = io.WriteString(stdout, out)
	return err
}

func dumpFiles(f *afmt.Formatter, files []string, stdout io.Writer) error {
	for _, path := range files {
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		d, err := f.Compile(path, string(src))
		if err != nil {
			return err
		}
		if len(files) > 1 {
			fmt.Fprintf(stdout, "// %s\n", path)
		}
		if _, err := io.WriteString(stdout, doc.Dump(d)); err != nil {
			return err
		}
	}
	return nil
}

func (o *options) report(results []afmt.Result, stdout io.Writer, logger *slog.Logger) error {
	if !o.write && !o.list && !o.diff {
		for _, res := range results {
			if _, err := io.WriteString(stdout, res.Output); err != nil {
				return err
			}
		}
		return nil
	}

	changed := false
	for _, res := range results {
		if !res.Changed() {
			continue
		}
		changed = true

		if o.list {
			fmt.Fprintln(stdout, res.Target)
		}
		if o.diff {
			diff, err := res.Diff()
			if err != nil {
				return err
			}
			if _, err := io.WriteString(stdout, diff); err != nil {
				return err
			}
		}
		if o.write {
			if err := os.WriteFile(res.Target, []byte(res.Output), 0o644); err != nil {
				return err
			}
			logger.Info("wrote file", slog.String("path", res.Target))
		}
	}

	if changed && !o.write {
		return errChanged
	}
	return nil
}
