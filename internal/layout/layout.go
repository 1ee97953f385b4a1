// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package layout discovers version directories and expands directory
// mappings under them into concrete source/target jobs.
package layout

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pdiddy/docbatch/pkg/types"
)

// DefaultPattern matches "v"-prefixed version directories such as v1 or
// v6.7.9.
const DefaultPattern = "v*"

// Job is one mapping applied under one version directory.
type Job struct {
	Version string
	Source  string
	Target  string
}

// Exists reports whether the job's source directory is present.
func (j Job) Exists() bool {
	info, err := os.Stat(j.Source)
	return err == nil && info.IsDir()
}

// Discover returns the immediate subdirectories of root whose names match
// pattern, sorted lexicographically. Files matching the pattern are ignored.
// An unreadable root is an error.
func Discover(root, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid version pattern %q: %w", pattern, err)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading version root %s: %w", root, err)
	}

	var versions []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if ok, _ := filepath.Match(pattern, e.Name()); ok {
			versions = append(versions, e.Name())
		}
	}
	sort.Strings(versions)
	return versions, nil
}

// Plan expands every mapping under every version, in version order then
// mapping order.
func Plan(root string, versions []string, mappings []types.DirMapping) []Job {
	jobs := make([]Job, 0, len(versions)*len(mappings))
	for _, v := range versions {
		for _, m := range mappings {
			jobs = append(jobs, Job{
				Version: v,
				Source:  filepath.Join(root, v, m.Source),
				Target:  filepath.Join(root, v, m.Target),
			})
		}
	}
	return jobs
}
