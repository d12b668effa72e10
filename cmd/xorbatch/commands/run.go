// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package commands

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/xorbatch/cmd/xorbatch/opts"
	"github.com/walteh/xorbatch/pkg/config"
	"github.com/walteh/xorbatch/pkg/log"
	"github.com/walteh/xorbatch/pkg/operation"
	"github.com/walteh/xorbatch/pkg/provider"
	"github.com/walteh/xorbatch/pkg/status"
)

// runFlags holds the values of the run command flags
type runFlags struct {
	key          string
	deleteSource bool
	conflict     string
	mode         string
	interval     uint
	input        string
	output       string
	mask         string
	quiet        bool
}

// NewRunCmd creates a new run command
func NewRunCmd(opts *opts.RootOpts) *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Transform matching files with a repeating XOR key",
		Long: `Run discovers the files of the input folder that match the mask and
transforms each of them with the key, in parallel.

While running, type a command and press enter:
  p  pause every worker
  r  resume
  s  stop (partial output is left in place)
  i  print a progress summary`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "run").Logger().WithContext(cmd.Context())

			params, err := flags.parameters(ctx, cmd, opts.ConfigFile)
			if err != nil {
				return err
			}

			log.FromContext(ctx).ShowProgress(!flags.quiet)

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			return Run(ctx, opts, params, cmd.InOrStdin())
		},
	}

	cmd.Flags().StringVar(&flags.key, "key", "", "18 character key")
	cmd.Flags().BoolVar(&flags.deleteSource, "delete", false, "delete each source file after a successful transform (add_counter only)")
	cmd.Flags().StringVar(&flags.conflict, "conflict", "overwrite", "output placement: overwrite or add_counter")
	cmd.Flags().StringVar(&flags.mode, "mode", "one_time", "treatment mode: one_time or timer")
	cmd.Flags().UintVar(&flags.interval, "interval", 1, "seconds between discovery cycles in timer mode")
	cmd.Flags().StringVar(&flags.input, "input", "", "folder to discover files in")
	cmd.Flags().StringVar(&flags.output, "output", "", "folder for add_counter output")
	cmd.Flags().StringVar(&flags.mask, "mask", "", "extensions or file names, separated by commas, semicolons or spaces")
	cmd.Flags().BoolVarP(&flags.quiet, "quiet", "q", false, "hide per-file progress lines")

	return cmd
}

// 🔧 parameters builds run parameters from the run file, if any, with every
// flag set on the command line taking precedence
func (f *runFlags) parameters(ctx context.Context, cmd *cobra.Command, configFile string) (config.RunParameters, error) {
	file := &config.File{}
	if configFile != "" {
		loaded, err := config.Load(ctx, configFile)
		if err != nil {
			return config.RunParameters{}, errors.Errorf("loading config: %w", err)
		}
		file = loaded
	}

	changed := cmd.Flags().Changed
	if changed("key") || file.Key == "" {
		file.Key = f.key
	}
	if changed("delete") {
		file.DeleteSource = f.deleteSource
	}
	if changed("conflict") || file.Conflict == "" {
		file.Conflict = f.conflict
	}
	if changed("mode") || file.Mode == "" {
		file.Mode = f.mode
	}
	if changed("interval") || file.IntervalSeconds == 0 {
		file.IntervalSeconds = f.interval
	}
	if changed("input") || file.InputFolder == "" {
		file.InputFolder = f.input
	}
	if changed("output") || file.OutputFolder == "" {
		file.OutputFolder = f.output
	}
	if changed("mask") || file.Mask == "" {
		file.Mask = f.mask
	}

	params, err := file.Parameters()
	if err != nil {
		return config.RunParameters{}, errors.Errorf("reading parameters: %w", err)
	}
	return params, nil
}

// 🚀 Run starts a run and drives it from operator commands read from in until
// it finishes. Events are rendered by the console logger of ctx. Cancelling ctx
// stops the run.
func Run(ctx context.Context, opts *opts.RootOpts, params config.RunParameters, in io.Reader) error {
	console := log.FromContext(ctx)

	coord, err := operation.New(operation.Options{
		Provider: provider.NewLocal(),
		Logger:   zerolog.Ctx(ctx),
	})
	if err != nil {
		return errors.Errorf("creating coordinator: %w", err)
	}

	rendered := make(chan struct{})
	go func() {
		defer close(rendered)
		for e := range coord.Events() {
			render(opts, console, e)
		}
	}()

	if res := coord.Start(ctx, params); !res.OK() {
		coord.Close()
		<-rendered
		return res.Err()
	}

	done := make(chan struct{})
	go func() {
		coord.Wait()
		close(done)
	}()

	cmds := readCommands(in, done)
	interrupted := ctx.Done()

loop:
	for {
		select {
		case <-done:
			break loop
		case <-interrupted:
			interrupted = nil
			coord.Stop()
		case line, ok := <-cmds:
			if !ok {
				cmds = nil
				continue
			}
			control(opts, coord, line)
		}
	}

	coord.Close()
	<-rendered

	opts.UserLogger.LogSummary(coord.Snapshot())
	return nil
}

func render(opts *opts.RootOpts, console *log.Logger, e status.Event) {
	if e.Kind == status.KindDiscoveredFiles {
		opts.UserLogger.LogDiscovered(e.Cycle, e.Files)
	}
	console.Render(e)
}

// 🎮 control applies one operator command
func control(opts *opts.RootOpts, coord *operation.Coordinator, line string) {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "":
	case "p", "pause":
		coord.Pause()
	case "r", "resume":
		coord.Resume()
	case "s", "stop", "q", "quit":
		coord.Stop()
	case "i", "info":
		opts.UserLogger.LogSummary(coord.Snapshot())
	default:
		opts.UserLogger.LogValidation(false, "Unknown command "+strings.TrimSpace(line)+" (p, r, s, i)", nil)
	}
}

// readCommands delivers lines of in until it is exhausted or done is closed
func readCommands(in io.Reader, done <-chan struct{}) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case out <- scanner.Text():
			case <-done:
				return
			}
		}
	}()
	return out
}
