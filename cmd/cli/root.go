// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

// Package cli implements the blockfix command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"blockfix/internal/config"
	"blockfix/internal/logger"
	"blockfix/internal/ssh"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	sshManager      *ssh.Manager
	statusColor     = color.New(color.FgCyan)
	errorColor      = color.New(color.FgRed)
	stepColor       = color.New(color.FgYellow)
	successColor    = color.New(color.FgGreen)
	identifierColor = color.New(color.FgBlue)
	dimColor        = color.New(color.Faint)
)

var rootFlags struct {
	patchesFile string
	logLevel    string
}

// errFound makes `check` exit non-zero without printing anything extra.
var errFound = errors.New("duplicate blocks found")

var rootCmd = &cobra.Command{
	Use:   "blockfix",
	Short: "Remove duplicated code blocks from source files",
	Long: `blockfix removes a known, duplicated block of text from a file and writes
the file back, leaving every other byte untouched.

With no arguments, 'blockfix apply' removes the duplicated Photo Catalyst
handler from App.tsx in the current directory. More patches can be defined in
~/.config/blockfix/config.yaml or in a file passed with --patches. Files on
remote machines are addressed as host:path once the host is configured with
'blockfix config add-host' or 'blockfix config import-ssh'.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if rootFlags.logLevel != "" {
			if err := logger.SetLevel(rootFlags.logLevel); err != nil {
				return err
			}
		}
		sshManager = ssh.NewManager()
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if sshManager != nil {
			sshManager.CloseAll()
		}
		return nil
	},
}

// loadCatalogue reads the user config and builds the patch catalogue.
func loadCatalogue() (*config.Catalogue, config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, cfg, fmt.Errorf("error loading configuration: %w", err)
	}
	cat, err := config.LoadCatalogue(cfg, rootFlags.patchesFile)
	if err != nil {
		return nil, cfg, err
	}
	return cat, cfg, nil
}

func RunCLI() {
	logger.InitLogger(false)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		if !errors.Is(err, errFound) {
			errorColor.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlags.patchesFile, "patches", "", "YAML file with additional patch definitions")
	rootCmd.PersistentFlags().StringVar(&rootFlags.logLevel, "log-level", "", "log level (debug, info, warn, error); overrides "+logger.LevelEnv)
	_ = rootCmd.MarkPersistentFlagFilename("patches", "yaml", "yml")

	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(serveCmd)
}
