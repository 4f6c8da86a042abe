// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package cli

import (
	"strings"

	"blockfix/internal/config"

	"github.com/spf13/cobra"
)

// patchCompletionFunc completes --patch values from the catalogue.
func patchCompletionFunc(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cat, _, err := loadCatalogue()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return cat.Names(toComplete), cobra.ShellCompDirectiveNoFileComp
}

// targetCompletionFunc offers configured host prefixes alongside the
// shell's usual file completion.
func targetCompletionFunc(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if strings.Contains(toComplete, ":") {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, cobra.ShellCompDirectiveDefault
	}

	var hosts []string
	for _, h := range cfg.EnabledHosts() {
		if strings.HasPrefix(h.Name, toComplete) {
			hosts = append(hosts, h.Name+":")
		}
	}
	if len(hosts) == 0 {
		return nil, cobra.ShellCompDirectiveDefault
	}
	return hosts, cobra.ShellCompDirectiveNoSpace
}

// hostCompletionFunc completes configured host names.
func hostCompletionFunc(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var names []string
	for _, h := range cfg.SSHHosts {
		if strings.HasPrefix(h.Name, toComplete) {
			names = append(names, h.Name)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
