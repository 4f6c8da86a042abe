// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

// Package runner turns patch names and target identifiers into jobs and
// executes them. Jobs touching the same file run one after another in the
// order given; different files are processed concurrently.
package runner

import (
	"context"
	"fmt"
	"sync"

	"blockfix/internal/config"
	"blockfix/internal/logger"
	"blockfix/internal/patch"
	"blockfix/internal/target"

	"golang.org/x/sync/semaphore"
)

// maxConcurrentFiles bounds how many files (and so SSH sessions) are
// processed at once.
const maxConcurrentFiles = 8

// Job is one patch applied to one target.
type Job struct {
	Patch  patch.Patch
	Target target.Target
}

func (j Job) String() string {
	return fmt.Sprintf("%s on %s", j.Patch.Name, j.Target)
}

// Outcome is the result of running a Job.
type Outcome struct {
	Job    Job
	Result patch.Result
	Err    error
}

// Plan builds the job list for the given patch names and target
// identifiers. Without identifiers each patch runs against its own Path.
// Without names the default patch is used.
func Plan(cat *config.Catalogue, names, identifiers []string, hosts []config.SSHHost) ([]Job, error) {
	if len(names) == 0 {
		names = []string{config.DefaultPatch}
	}

	var jobs []Job
	for _, name := range names {
		p, err := cat.Lookup(name)
		if err != nil {
			return nil, err
		}

		ids := identifiers
		if len(ids) == 0 {
			if p.Path == "" {
				return nil, fmt.Errorf("patch %q has no default path; pass a target", p.Name)
			}
			ids = []string{p.Path}
		}

		for _, id := range ids {
			t, err := target.Parse(id, hosts)
			if err != nil {
				return nil, err
			}
			jobs = append(jobs, Job{Patch: p, Target: t})
		}
	}
	return jobs, nil
}

// Execute runs a single job.
func Execute(ctx context.Context, job Job, remote target.Runner, dryRun bool) (patch.Result, error) {
	store, err := job.Target.Store(remote)
	if err != nil {
		return patch.Result{Patch: job.Patch.Name, Target: job.Target.String()}, err
	}

	res, err := job.Patch.Run(ctx, store, job.Target.Path, dryRun)
	res.Target = job.Target.String()
	if err != nil {
		logger.Error("patch failed", "patch", job.Patch.Name, "target", res.Target, "error", err)
		return res, err
	}
	logger.Info("patch applied",
		"patch", job.Patch.Name,
		"target", res.Target,
		"removed", res.Removed,
		"dry_run", dryRun,
	)
	return res, nil
}

// Inspect reads the job's target and reports the matches without
// modifying anything. The content is returned for rendering excerpts.
func Inspect(ctx context.Context, job Job, remote target.Runner) ([]patch.Match, []byte, error) {
	store, err := job.Target.Store(remote)
	if err != nil {
		return nil, nil, err
	}
	content, err := store.ReadFile(ctx, job.Target.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", job.Target, err)
	}
	matches, err := job.Patch.Find(content)
	if err != nil {
		return nil, nil, err
	}
	return matches, content, nil
}

// RunAll executes jobs and returns their outcomes in input order.
func RunAll(ctx context.Context, jobs []Job, remote target.Runner, dryRun bool) []Outcome {
	outcomes := make([]Outcome, len(jobs))

	// Group job indexes by file so writes to one file never overlap.
	groups := make(map[string][]int)
	var keys []string
	for i, j := range jobs {
		k := j.Target.Key()
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], i)
	}

	sem := semaphore.NewWeighted(maxConcurrentFiles)
	var wg sync.WaitGroup
	wg.Add(len(keys))
	for _, k := range keys {
		go func(idxs []int) {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				for _, i := range idxs {
					outcomes[i] = Outcome{Job: jobs[i], Err: err}
				}
				return
			}
			defer sem.Release(1)
			for _, i := range idxs {
				res, err := Execute(ctx, jobs[i], remote, dryRun)
				outcomes[i] = Outcome{Job: jobs[i], Result: res, Err: err}
			}
		}(groups[k])
	}
	wg.Wait()

	return outcomes
}
