// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"blockfix/internal/config"
	"blockfix/internal/discovery"
	"blockfix/internal/patch"
	"blockfix/internal/runner"
	"blockfix/internal/target"
	"blockfix/internal/ui"

	"github.com/spf13/cobra"
)

var (
	inspectPatches []string
	extFilter      []string
)

// addExtFlag registers the extension filter used when a target is a directory.
func addExtFlag(c *cobra.Command) {
	c.Flags().StringSliceVar(&extFilter, "ext", discovery.DefaultExtensions, "file extensions scanned in directory targets")
}

var checkCmd = &cobra.Command{
	Use:   "check [target...]",
	Short: "Report files that still contain the duplicated block",
	Long: `Reports every target that still contains a selected block, with its line
range. Nothing is written. Exits with status 1 when any block is found, so it
can guard a CI step.`,
	Example:           "  blockfix check\n  blockfix check -p photo-catalyst-duplicate src/App.tsx web:/srv/plume/App.tsx",
	ValidArgsFunction: targetCompletionFunc,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, cfg, err := loadCatalogue()
		if err != nil {
			return err
		}
		targets, err := discovery.Expand(args, extFilter)
		if err != nil {
			return err
		}
		return runCheck(cmd.Context(), cmd.OutOrStdout(), cat, cfg.EnabledHosts(), sshManager, targets)
	},
}

var showCmd = &cobra.Command{
	Use:               "show [target...]",
	Short:             "Print the blocks that apply would remove",
	Example:           "  blockfix show\n  blockfix show -p photo-catalyst-duplicate src/App.tsx",
	ValidArgsFunction: targetCompletionFunc,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, cfg, err := loadCatalogue()
		if err != nil {
			return err
		}
		targets, err := discovery.Expand(args, extFilter)
		if err != nil {
			return err
		}
		return runShow(cmd.Context(), cmd.OutOrStdout(), cat, cfg.EnabledHosts(), sshManager, targets)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List known patches",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, _, err := loadCatalogue()
		if err != nil {
			return err
		}
		return runList(cmd.OutOrStdout(), cat)
	},
}

func init() {
	for _, c := range []*cobra.Command{checkCmd, showCmd} {
		c.Flags().StringSliceVarP(&inspectPatches, "patch", "p", nil, "patch to look for (repeatable)")
		_ = c.RegisterFlagCompletionFunc("patch", patchCompletionFunc)
		addExtFlag(c)
	}
}

func runCheck(ctx context.Context, out io.Writer, cat *config.Catalogue, hosts []config.SSHHost, remote target.Runner, targets []string) error {
	jobs, err := runner.Plan(cat, inspectPatches, targets, hosts)
	if err != nil {
		return err
	}

	stop := startSpinner(jobs, " Reading remote files...")
	type inspection struct {
		matches []patch.Match
		err     error
	}
	results := make([]inspection, len(jobs))
	for i, job := range jobs {
		matches, _, err := runner.Inspect(ctx, job, remote)
		results[i] = inspection{matches, err}
	}
	stop()

	found, failed := 0, 0
	for i, job := range jobs {
		r := results[i]
		switch {
		case r.err != nil:
			failed++
			errorColor.Fprintf(out, "✗ %s: %v\n", job, r.err)
		case len(r.matches) == 0:
			successColor.Fprintf(out, "✓ %s: clean (%s)\n", identifierColor.Sprint(job.Target), job.Patch.Name)
		default:
			found++
			stepColor.Fprintf(out, "! %s: %s (%s)\n", identifierColor.Sprint(job.Target), lineRanges(r.matches), job.Patch.Name)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d check(s) failed", failed, len(jobs))
	}
	if found > 0 {
		return errFound
	}
	return nil
}

func runShow(ctx context.Context, out io.Writer, cat *config.Catalogue, hosts []config.SSHHost, remote target.Runner, targets []string) error {
	jobs, err := runner.Plan(cat, inspectPatches, targets, hosts)
	if err != nil {
		return err
	}

	failed := 0
	for _, job := range jobs {
		matches, content, err := runner.Inspect(ctx, job, remote)
		if err != nil {
			failed++
			errorColor.Fprintf(out, "✗ %s: %v\n", job, err)
			continue
		}
		if len(matches) == 0 {
			dimColor.Fprintf(out, "No duplicate found in %s (%s)\n", job.Target, job.Patch.Name)
			continue
		}
		for _, m := range matches {
			title := fmt.Sprintf("%s (%s, %s)", job.Target, job.Patch.Name, lineRanges([]patch.Match{m}))
			fmt.Fprintln(out, ui.RenderBlock(title, patch.Excerpt(content, m), m.StartLine))
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) could not be read", failed, len(jobs))
	}
	return nil
}

func runList(out io.Writer, cat *config.Catalogue) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tDEFAULT PATH\tDESCRIPTION")
	for _, p := range cat.All() {
		kind := "block"
		if p.Block == "" {
			kind = "pattern"
		}
		path := p.Path
		if path == "" {
			path = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Name, kind, path, p.Description)
	}
	return tw.Flush()
}
