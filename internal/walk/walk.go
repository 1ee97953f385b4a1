// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package walk enumerates a source directory tree and pairs every entry
// with its mirrored location under a target root. It does not touch the
// target tree; consumers create directories as directory entries arrive.
package walk

import (
	"iter"
	"os"
	"path/filepath"
)

// Kind distinguishes directory entries from file entries.
type Kind int

const (
	Dir Kind = iota
	File
)

func (k Kind) String() string {
	if k == Dir {
		return "dir"
	}
	return "file"
}

// Entry is one step of a tree walk.
type Entry struct {
	Kind Kind

	// Source is the path under the source root.
	Source string

	// Target is the mirrored path under the target root. Empty when the
	// walk was started without a target root.
	Target string

	// Depth is 0 for the root directory, 1 for its children, and so on.
	Depth int

	// Err is set when a directory could not be read. Its files and
	// subdirectories are not visited.
	Err error
}

// Tree walks sourceRoot depth-first. For each directory it yields the
// directory itself, then its regular files in name order, then descends into
// its subdirectories in name order. Symbolic links and other non-regular
// entries are not followed.
//
// When targetRoot is empty no mirroring is computed and Entry.Target stays
// empty. When targetRoot lies inside sourceRoot it is not descended into, so
// output from an earlier run is never walked as input.
func Tree(sourceRoot, targetRoot string) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		w := walker{yield: yield}
		if targetRoot != "" {
			w.skip = absPath(targetRoot)
		}
		w.dir(sourceRoot, targetRoot, 0)
	}
}

// Files yields only the file entries of Tree and any read errors.
func Files(sourceRoot string) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for e := range Tree(sourceRoot, "") {
			if e.Kind == Dir && e.Err == nil {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

type walker struct {
	yield func(Entry) bool

	// skip is the absolute target root, excluded from the source walk.
	skip string
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

func (w walker) dir(src, dst string, depth int) bool {
	yield := w.yield
	entries, err := os.ReadDir(src)
	if err != nil {
		return yield(Entry{Kind: Dir, Source: src, Target: dst, Depth: depth, Err: err})
	}
	if !yield(Entry{Kind: Dir, Source: src, Target: dst, Depth: depth}) {
		return false
	}

	var subdirs []os.DirEntry
	for _, e := range entries {
		switch {
		case e.IsDir():
			subdirs = append(subdirs, e)
		case e.Type().IsRegular():
			file := Entry{Kind: File, Source: filepath.Join(src, e.Name()), Depth: depth + 1}
			if dst != "" {
				file.Target = filepath.Join(dst, e.Name())
			}
			if !yield(file) {
				return false
			}
		}
	}

	for _, d := range subdirs {
		childSrc := filepath.Join(src, d.Name())
		if w.skip != "" && absPath(childSrc) == w.skip {
			continue
		}
		childDst := ""
		if dst != "" {
			childDst = filepath.Join(dst, d.Name())
		}
		if !w.dir(childSrc, childDst, depth+1) {
			return false
		}
	}
	return true
}
