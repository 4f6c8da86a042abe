// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"blockfix/internal/config"
	"blockfix/internal/discovery"
	"blockfix/internal/patch"
	"blockfix/internal/runner"
	"blockfix/internal/target"
	"blockfix/internal/ui"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

type applyOptions struct {
	patches     []string
	dryRun      bool
	count       int
	countSet    bool
	interactive bool
}

var applyFlags applyOptions

var applyCmd = &cobra.Command{
	Use:   "apply [target...]",
	Short: "Remove the duplicated block from one or more files",
	Long: `Removes the first occurrence of each selected patch's block from every target
and writes the file back. Files without the block are left untouched.

Targets are local paths or host:path for configured SSH hosts. A local
directory stands for the source files beneath it (see --ext). Without targets,
each patch is applied to its own default path. Without --patch, the builtin
'` + config.DefaultPatch + `' patch is used.`,
	Example: `  blockfix apply
  blockfix apply src/App.tsx
  blockfix apply --dry-run -p photo-catalyst-duplicate web:/srv/plume/App.tsx
  blockfix apply --patches fixes.yaml -p stray-debugger --count -1 src/*.ts`,
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
		opts := applyFlags
		opts.countSet = cmd.Flags().Changed("count")
		return runApply(cmd.Context(), cmd.OutOrStdout(), cat, cfg.EnabledHosts(), sshManager, targets, opts)
	},
}

func init() {
	applyCmd.Flags().StringSliceVarP(&applyFlags.patches, "patch", "p", nil, "patch to apply (repeatable)")
	applyCmd.Flags().BoolVarP(&applyFlags.dryRun, "dry-run", "n", false, "report what would be removed without writing")
	applyCmd.Flags().IntVar(&applyFlags.count, "count", 0, "occurrences to remove per file (-1 for all); defaults to the patch setting")
	applyCmd.Flags().BoolVarP(&applyFlags.interactive, "interactive", "i", false, "review each block before removing it")
	_ = applyCmd.RegisterFlagCompletionFunc("patch", patchCompletionFunc)
	addExtFlag(applyCmd)
}

func runApply(ctx context.Context, out io.Writer, cat *config.Catalogue, hosts []config.SSHHost, remote target.Runner, targets []string, opts applyOptions) error {
	jobs, err := runner.Plan(cat, opts.patches, targets, hosts)
	if err != nil {
		return err
	}
	if opts.countSet {
		for i := range jobs {
			jobs[i].Patch.Count = opts.count
		}
	}

	var outcomes []runner.Outcome
	if opts.interactive {
		outcomes, err = applyInteractively(ctx, out, jobs, remote, opts.dryRun)
		if err != nil {
			return err
		}
	} else {
		stop := startSpinner(jobs, " Patching remote files...")
		outcomes = runner.RunAll(ctx, jobs, remote, opts.dryRun)
		stop()
	}

	failed := 0
	for _, o := range outcomes {
		if !reportOutcome(out, o) {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d patch job(s) failed", failed, len(outcomes))
	}
	return nil
}

// applyInteractively asks before each removal. Skipped jobs produce no
// outcome; quitting stops processing the remaining jobs.
func applyInteractively(ctx context.Context, out io.Writer, jobs []runner.Job, remote target.Runner, dryRun bool) ([]runner.Outcome, error) {
	var outcomes []runner.Outcome
	for _, job := range jobs {
		matches, content, err := runner.Inspect(ctx, job, remote)
		if err != nil {
			outcomes = append(outcomes, runner.Outcome{Job: job, Err: err})
			continue
		}
		if len(matches) == 0 {
			outcomes = append(outcomes, runner.Outcome{Job: job, Result: patch.Result{Patch: job.Patch.Name, Target: job.Target.String()}})
			continue
		}

		var body []string
		for _, m := range matches {
			body = append(body, ui.NumberLines(patch.Excerpt(content, m), m.StartLine))
		}
		title := fmt.Sprintf("Remove %d block(s) matching %s from %s?", len(matches), job.Patch.Name, job.Target)
		choice, err := ui.Confirm(title, strings.Join(body, "\n\n"))
		if err != nil {
			return outcomes, err
		}

		switch choice {
		case ui.Accept:
			res, err := runner.Execute(ctx, job, remote, dryRun)
			outcomes = append(outcomes, runner.Outcome{Job: job, Result: res, Err: err})
		case ui.Skip:
			dimColor.Fprintf(out, "Skipped %s\n", job)
		default:
			statusColor.Fprintln(out, "Aborted; remaining files were not touched.")
			return outcomes, nil
		}
	}
	return outcomes, nil
}

// reportOutcome prints one line per job and reports whether it succeeded.
func reportOutcome(out io.Writer, o runner.Outcome) bool {
	res := o.Result
	switch {
	case o.Err != nil:
		errorColor.Fprintf(out, "✗ %s: %v\n", o.Job, o.Err)
		return false
	case res.Removed == 0:
		dimColor.Fprintf(out, "No duplicate found in %s (%s)\n", identifierColor.Sprint(res.Target), res.Patch)
	case res.DryRun:
		stepColor.Fprintf(out, "Would remove %d block(s) from %s (%s, %s)\n", res.Removed, identifierColor.Sprint(res.Target), res.Patch, lineRanges(res.Matches))
	default:
		successColor.Fprintf(out, "Duplicate removed: %s (%s, %s)\n", identifierColor.Sprint(res.Target), res.Patch, lineRanges(res.Matches))
	}
	return true
}

func lineRanges(matches []patch.Match) string {
	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		if m.StartLine == m.EndLine {
			parts = append(parts, fmt.Sprintf("line %d", m.StartLine))
		} else {
			parts = append(parts, fmt.Sprintf("lines %d-%d", m.StartLine, m.EndLine))
		}
	}
	return strings.Join(parts, ", ")
}

// startSpinner shows progress while remote jobs run. The returned func
// stops it; nothing is shown for purely local work.
func startSpinner(jobs []runner.Job, suffix string) func() {
	remote := false
	for _, j := range jobs {
		remote = remote || j.Target.IsRemote()
	}
	if !remote {
		return func() {}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	_ = s.Color("cyan")
	s.Suffix = suffix
	s.Start()
	return s.Stop
}
