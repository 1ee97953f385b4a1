// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package recode rewrites legacy-encoded text files as UTF-8 without a
// byte-order mark, either next to the original under a marked filename or
// into a mirrored directory tree.
package recode

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/docbatch/internal/layout"
	"github.com/pdiddy/docbatch/internal/walk"
	"github.com/pdiddy/docbatch/pkg/types"
)

// Recoder converts candidate files according to a Policy. It holds no
// state between runs; every Run method returns its own result.
type Recoder struct {
	cfg    types.RecodeConfig
	exts   types.ExtensionSet
	policy Policy
	log    *zap.Logger
}

// New creates a Recoder. A nil logger discards output.
func New(cfg types.RecodeConfig, policy Policy, log *zap.Logger) *Recoder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recoder{
		cfg:    cfg,
		exts:   types.NewExtensionSet(cfg.Extensions...),
		policy: policy,
		log:    log,
	}
}

// IsCandidate reports whether path has one of the configured extensions.
func (r *Recoder) IsCandidate(path string) bool {
	return r.exts.Match(path)
}

// HasMarker reports whether the file name carries the conversion marker.
func (r *Recoder) HasMarker(path string) bool {
	if r.cfg.Marker == "" {
		return false
	}
	return strings.Contains(strings.ToLower(filepath.Base(path)), strings.ToLower(r.cfg.Marker))
}

// MarkedName inserts marker between the stem and extension of path:
// "dir/readme.h" becomes "dir/readme.utf8.h".
func MarkedName(path, marker string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + marker + ext
}

// ConvertFile converts one file from src to dst. Errors never escape; they
// are reported in the returned record.
func (r *Recoder) ConvertFile(src, dst string) types.Record {
	rec := types.Record{Source: src}
	if r.HasMarker(src) {
		r.log.Debug("skipping already converted file", zap.String("file", src))
		rec.Outcome = types.OutcomeSkipped
		rec.Reason = "name contains " + r.cfg.Marker
		return rec
	}

	rec.Target = dst
	r.log.Debug("processing file", zap.String("file", src))

	data, err := os.ReadFile(src)
	if err != nil {
		return r.fail(rec, fmt.Errorf("reading source: %w", err))
	}

	d, err := r.policy.Decide(data)
	rec.Encoding = d.Encoding
	if err != nil {
		return r.fail(rec, err)
	}
	if d.Skip {
		r.log.Debug("skipping file", zap.String("file", src), zap.String("reason", d.Reason))
		rec.Outcome = types.OutcomeSkipped
		rec.Reason = d.Reason
		return rec
	}
	if d.Fallback {
		r.log.Warn("could not detect encoding, decoding as UTF-8", zap.String("file", src))
		rec.Reason = d.Reason
	} else {
		r.log.Debug("detected encoding", zap.String("file", src), zap.String("encoding", d.Encoding))
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return r.fail(rec, fmt.Errorf("creating target directory: %w", err))
	}
	if err := os.WriteFile(dst, []byte(d.Text), 0o644); err != nil {
		return r.fail(rec, fmt.Errorf("writing target: %w", err))
	}

	r.log.Info("converted file", zap.String("file", src), zap.String("target", dst), zap.String("encoding", d.Encoding))
	rec.Outcome = types.OutcomeConverted
	return rec
}

func (r *Recoder) fail(rec types.Record, err error) types.Record {
	r.log.Error("failed to convert file", zap.String("file", rec.Source), zap.Error(err))
	rec.Outcome = types.OutcomeFailed
	rec.Reason = err.Error()
	return rec
}

// RunInPlace converts every candidate under root, writing each result next
// to its source under MarkedName. Originals are never overwritten. An
// unreadable root is returned as an error.
func (r *Recoder) RunInPlace(root string) (types.RunResult, error) {
	var result types.RunResult
	r.log.Info("starting in-place conversion", zap.String("root", root), zap.String("marker", r.cfg.Marker))

	for e := range walk.Files(root) {
		if e.Err != nil {
			if e.Depth == 0 {
				return result, fmt.Errorf("reading root %s: %w", root, e.Err)
			}
			r.log.Error("cannot read directory", zap.String("dir", e.Source), zap.Error(e.Err))
			continue
		}
		if !r.IsCandidate(e.Source) {
			continue
		}
		result.Add(r.ConvertFile(e.Source, MarkedName(e.Source, r.cfg.Marker)))
	}
	return result, nil
}

// RunMirror converts every candidate under src into the same relative path
// under dst. Every source subdirectory gets a target subdirectory, even when
// it holds no candidates. An unreadable src, or a dst that cannot be
// created, is returned as an error.
func (r *Recoder) RunMirror(src, dst string) (types.RunResult, error) {
	var result types.RunResult
	r.log.Info("mirroring directory", zap.String("source", src), zap.String("target", dst))

	for e := range walk.Tree(src, dst) {
		if e.Err != nil {
			if e.Depth == 0 {
				return result, fmt.Errorf("reading source %s: %w", src, e.Err)
			}
			r.log.Error("cannot read directory", zap.String("dir", e.Source), zap.Error(e.Err))
			continue
		}

		if e.Kind == walk.Dir {
			if err := os.MkdirAll(e.Target, 0o755); err != nil {
				if e.Depth == 0 {
					return result, fmt.Errorf("creating target %s: %w", dst, err)
				}
				r.log.Error("cannot create target directory", zap.String("dir", e.Target), zap.Error(err))
			}
			continue
		}

		if !r.IsCandidate(e.Source) {
			continue
		}
		result.Add(r.ConvertFile(e.Source, e.Target))
	}
	return result, nil
}

// RunVersions discovers version directories under root and mirrors every
// configured mapping inside each. Missing source directories are skipped
// with a warning.
func (r *Recoder) RunVersions(root string) (types.RunResult, error) {
	var result types.RunResult

	versions, err := layout.Discover(root, r.cfg.VersionPattern)
	if err != nil {
		return result, err
	}
	r.log.Info("found version directories", zap.Int("count", len(versions)), zap.Strings("versions", versions))

	current := ""
	for _, job := range layout.Plan(root, versions, r.cfg.Mappings) {
		if job.Version != current {
			current = job.Version
			r.log.Info("processing version directory", zap.String("version", current))
		}
		if !job.Exists() {
			r.log.Warn("source directory does not exist, skipping", zap.String("source", job.Source))
			continue
		}
		res, err := r.RunMirror(job.Source, job.Target)
		result.Merge(res)
		if err != nil {
			return result, err
		}
	}
	return result, nil
}
