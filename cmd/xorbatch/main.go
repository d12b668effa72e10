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

package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/walteh/xorbatch/cmd/xorbatch/commands"
	"github.com/walteh/xorbatch/cmd/xorbatch/opts"
	"github.com/walteh/xorbatch/pkg/log"
)

func main() {
	logger := setupLogging(false)
	ctx := logger.WithContext(context.Background())

	rootOpts := &opts.RootOpts{}
	rootCmd := newRootCmd(rootOpts)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		userLogger := rootOpts.UserLogger
		if userLogger == nil {
			userLogger = log.NewUserLogger(ctx, os.Stderr)
		}
		userLogger.LogValidation(false, "Command failed", err)
		os.Exit(1)
	}
}

// newRootCmd creates the root command. rootOpts is filled in once flags are
// parsed, before any subcommand runs.
func newRootCmd(rootOpts *opts.RootOpts) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "xorbatch",
		Short: "Batch XOR transform of the files in a folder",
		Long: `xorbatch discovers the files of a folder that match a mask and transforms
each of them with a repeating XOR key, once or on a timer.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogging(rootOpts.Debug)
			ctx := newRootOpts(logger.WithContext(cmd.Context()), rootOpts, cmd.OutOrStdout())
			cmd.SetContext(ctx)
			return nil
		},
	}

	addRootFlags(rootCmd, rootOpts)

	rootCmd.AddCommand(
		commands.NewRunCmd(rootOpts),
		newVersionCmd(),
	)

	return rootCmd
}
