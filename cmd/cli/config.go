// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package cli

import (
	"fmt"
	"io"

	"blockfix/internal/config"

	"github.com/spf13/cobra"
)

// configCmd is the parent command for all configuration-related subcommands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage blockfix configuration",
	Long: `Manages the SSH hosts that remote targets (host:path) refer to.
Patches are edited directly in the configuration file; 'config path' prints
its location.`,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), p)
		return nil
	},
}

var configListHostsCmd = &cobra.Command{
	Use:   "list-hosts",
	Short: "List configured SSH hosts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("error loading configuration: %w", err)
		}
		listHosts(cmd.OutOrStdout(), cfg.SSHHosts)
		return nil
	},
}

func listHosts(out io.Writer, hosts []config.SSHHost) {
	if len(hosts) == 0 {
		fmt.Fprintln(out, "No SSH hosts configured.")
		return
	}

	statusColor.Fprintln(out, "Configured SSH Hosts:")
	for i, host := range hosts {
		details := fmt.Sprintf("%s@%s", host.User, host.Hostname)
		if host.Port != 0 && host.Port != 22 {
			details += fmt.Sprintf(":%d", host.Port)
		}
		fmt.Fprintf(out, "%d: %s (%s)\n", i+1, identifierColor.Sprint(host.Name), details)
		if host.KeyPath != "" {
			fmt.Fprintf(out, "   Key Path:    %s\n", host.KeyPath)
		}
		if host.Password != "" {
			fmt.Fprintf(out, "   Password:    %s\n", errorColor.Sprint("[set, stored insecurely]"))
		}
		if host.Disabled {
			fmt.Fprintf(out, "   Status:      %s\n", errorColor.Sprint("Disabled"))
		}
	}
}

var addHostFlags config.SSHHost

var configAddHostCmd = &cobra.Command{
	Use:     "add-host <name>",
	Short:   "Add an SSH host for remote targets",
	Example: "  blockfix config add-host web --hostname 10.0.0.2 --user deploy --key ~/.ssh/id_ed25519",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		host := addHostFlags
		host.Name = args[0]
		if host.Hostname == "" || host.User == "" {
			return fmt.Errorf("--hostname and --user are required")
		}
		if host.Port == 22 {
			host.Port = 0 // Store 0 for default
		}
		return updateConfig(func(cfg *config.Config) error {
			return cfg.AddHost(host)
		}, fmt.Sprintf("SSH host '%s' added.", host.Name), cmd.OutOrStdout())
	},
}

var configRemoveHostCmd = &cobra.Command{
	Use:               "remove-host <name>",
	Short:             "Remove an SSH host",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: hostCompletionFunc,
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateConfig(func(cfg *config.Config) error {
			return cfg.RemoveHost(args[0])
		}, fmt.Sprintf("SSH host '%s' removed.", args[0]), cmd.OutOrStdout())
	},
}

var importName string

var configImportSSHCmd = &cobra.Command{
	Use:   "import-ssh [alias]",
	Short: "Import a host from ~/.ssh/config",
	Long: `Without an alias, lists the hosts in ~/.ssh/config that can be imported.
With an alias, adds that host, optionally under a different --name.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		potential, err := config.ParseSSHConfig()
		if err != nil {
			return err
		}

		if len(args) == 0 {
			if len(potential) == 0 {
				fmt.Fprintln(out, "No importable hosts found in ~/.ssh/config.")
				return nil
			}
			statusColor.Fprintln(out, "Importable hosts:")
			for _, p := range potential {
				fmt.Fprintf(out, "- %s (%s@%s:%d)\n", identifierColor.Sprint(p.Alias), p.User, p.Hostname, p.Port)
			}
			return nil
		}

		p, ok := config.FindPotentialHost(potential, args[0])
		if !ok {
			return fmt.Errorf("host '%s' not found in ~/.ssh/config (or it lacks a User)", args[0])
		}
		host, err := config.ConvertToSSHHost(p, importName)
		if err != nil {
			return err
		}
		return updateConfig(func(cfg *config.Config) error {
			return cfg.AddHost(host)
		}, fmt.Sprintf("SSH host '%s' imported from alias '%s'.", host.Name, p.Alias), out)
	},
}

// updateConfig loads the config, applies change, saves it and prints msg.
func updateConfig(change func(*config.Config) error, msg string, out io.Writer) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	if err := change(&cfg); err != nil {
		return err
	}
	if err := config.SaveConfig(cfg); err != nil {
		return fmt.Errorf("error saving configuration: %w", err)
	}
	successColor.Fprintln(out, msg)
	return nil
}

func init() {
	configAddHostCmd.Flags().StringVar(&addHostFlags.Hostname, "hostname", "", "hostname or IP address")
	configAddHostCmd.Flags().StringVar(&addHostFlags.User, "user", "", "SSH username")
	configAddHostCmd.Flags().IntVar(&addHostFlags.Port, "port", 22, "SSH port")
	configAddHostCmd.Flags().StringVar(&addHostFlags.KeyPath, "key", "", "path to the private key")
	configAddHostCmd.Flags().StringVar(&addHostFlags.Password, "password", "", "password (stored in plain text, prefer keys or ssh-agent)")

	configImportSSHCmd.Flags().StringVar(&importName, "name", "", "name to store the host under (defaults to the alias)")

	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configListHostsCmd)
	configCmd.AddCommand(configAddHostCmd)
	configCmd.AddCommand(configRemoveHostCmd)
	configCmd.AddCommand(configImportSSHCmd)
}
