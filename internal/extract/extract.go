// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns PDF documents into plain text files, either as
// sidecars next to each document or into a mirrored text tree.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"

	"github.com/pdiddy/docbatch/internal/charset"
	"github.com/pdiddy/docbatch/internal/layout"
	"github.com/pdiddy/docbatch/internal/walk"
	"github.com/pdiddy/docbatch/pkg/types"
)

// Extractor writes the text of every document it finds. Every output is a
// full regeneration: an existing output file is deleted first, even when
// read-only.
type Extractor struct {
	cfg    types.ExtractConfig
	exts   types.ExtensionSet
	reader PageReader
	legacy encoding.Encoding
	log    *zap.Logger

	// now is replaced in tests.
	now func() time.Time
}

// New creates an Extractor. cfg.OutputEncoding must name an encoding the
// charset package can resolve. A nil logger discards output.
func New(cfg types.ExtractConfig, reader PageReader, log *zap.Logger) (*Extractor, error) {
	enc, err := charset.Lookup(cfg.OutputEncoding)
	if err != nil {
		return nil, fmt.Errorf("sidecar output encoding: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.TextExtension == "" {
		cfg.TextExtension = ".txt"
	}
	return &Extractor{
		cfg:    cfg,
		exts:   types.NewExtensionSet(cfg.Extensions...),
		reader: reader,
		legacy: enc,
		log:    log,
		now:    time.Now,
	}, nil
}

// NewReader returns the PageReader for backend.
func NewReader(backend types.ExtractBackend) (PageReader, error) {
	switch backend {
	case types.BackendNative, "":
		return NativeReader{}, nil
	case types.BackendPdftotext:
		return NewPdftotextReader()
	default:
		return nil, fmt.Errorf("unsupported extract backend %q: use native or pdftotext", backend)
	}
}

// SidecarPath replaces the extension of path with textExt.
func SidecarPath(path, textExt string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + textExt
}

// Run extracts every document under root into a sidecar text file encoded
// in the legacy output encoding. Per-document failures are recorded and
// the walk continues; an unreadable root is returned as an error.
func (x *Extractor) Run(root string) (types.RunResult, error) {
	var result types.RunResult
	x.log.Info("starting text extraction", zap.String("root", root), zap.String("encoding", charset.Name(x.legacy)))

	for e := range walk.Files(root) {
		if e.Err != nil {
			if e.Depth == 0 {
				return result, fmt.Errorf("reading root %s: %w", root, e.Err)
			}
			x.log.Error("cannot read directory", zap.String("dir", e.Source), zap.Error(e.Err))
			continue
		}
		if !x.exts.Match(e.Source) {
			continue
		}
		dst := SidecarPath(e.Source, x.cfg.TextExtension)
		result.Add(x.extractFile(e.Source, dst, x.renderSidecar))
	}
	return result, nil
}

// RunMirror extracts every document under src into the mirrored location
// under dst as UTF-8 text with a provenance header and page markers.
func (x *Extractor) RunMirror(src, dst string) (types.RunResult, error) {
	var result types.RunResult
	x.log.Info("extracting into mirror", zap.String("source", src), zap.String("target", dst))

	for e := range walk.Tree(src, dst) {
		if e.Err != nil {
			if e.Depth == 0 {
				return result, fmt.Errorf("reading source %s: %w", src, e.Err)
			}
			x.log.Error("cannot read directory", zap.String("dir", e.Source), zap.Error(e.Err))
			continue
		}
		if e.Kind != walk.File || !x.exts.Match(e.Source) {
			continue
		}
		target := SidecarPath(e.Target, x.cfg.TextExtension)
		result.Add(x.extractFile(e.Source, target, x.renderMirror))
	}
	return result, nil
}

// RunVersions applies RunMirror to each configured mapping under every
// version directory of root. Missing source directories are skipped with a
// warning.
func (x *Extractor) RunVersions(root string) (types.RunResult, error) {
	var result types.RunResult

	versions, err := layout.Discover(root, x.cfg.VersionPattern)
	if err != nil {
		return result, err
	}
	x.log.Info("found version directories", zap.Int("count", len(versions)), zap.Strings("versions", versions))

	for _, job := range layout.Plan(root, versions, x.cfg.Mappings) {
		if !job.Exists() {
			x.log.Warn("source directory does not exist, skipping", zap.String("version", job.Version), zap.String("source", job.Source))
			continue
		}
		res, err := x.RunMirror(job.Source, job.Target)
		result.Merge(res)
		if err != nil {
			return result, err
		}
	}
	return result, nil
}

// renderFunc turns page texts into the bytes of an output file.
type renderFunc func(src string, pages []string) ([]byte, string, error)

// renderSidecar writes each page followed by a newline, encoded in the
// legacy output encoding.
func (x *Extractor) renderSidecar(_ string, pages []string) ([]byte, string, error) {
	var b strings.Builder
	for _, p := range pages {
		b.WriteString(p)
		b.WriteString("\n")
	}
	out, err := charset.Encode(x.legacy, b.String())
	return out, charset.Name(x.legacy), err
}

// renderMirror writes a provenance header and a marker before every page,
// as UTF-8.
func (x *Extractor) renderMirror(src string, pages []string) ([]byte, string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Source: %s\n", filepath.Base(src))
	fmt.Fprintf(&b, "Extracted: %s\n", x.now().Format("2006-01-02 15:04:05"))
	b.WriteString(strings.Repeat("=", 50))
	b.WriteString("\n\n")
	for i, p := range pages {
		fmt.Fprintf(&b, "--- Page %d ---\n", i+1)
		b.WriteString(p)
		b.WriteString("\n\n")
	}
	return []byte(b.String()), "utf-8", nil
}

func (x *Extractor) extractFile(src, dst string, render renderFunc) types.Record {
	rec := types.Record{Source: src, Target: dst}
	x.log.Debug("processing file", zap.String("file", src))

	if err := removeExisting(dst); err != nil {
		return x.fail(rec, err)
	}

	pages, err := x.readPages(src)
	if err != nil {
		return x.fail(rec, err)
	}

	data, encName, err := render(src, pages)
	rec.Encoding = encName
	if err != nil {
		return x.fail(rec, err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return x.fail(rec, fmt.Errorf("creating output directory: %w", err))
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return x.fail(rec, fmt.Errorf("writing %s: %w", dst, err))
	}

	x.log.Info("extracted text", zap.String("file", src), zap.String("target", dst), zap.Int("pages", len(pages)))
	rec.Outcome = types.OutcomeConverted
	return rec
}

// readPages calls the reader, converting a parser panic on a malformed
// document into an error.
func (x *Extractor) readPages(src string) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("malformed document %s: %v", src, r)
		}
	}()
	return x.reader.Pages(src)
}

func (x *Extractor) fail(rec types.Record, err error) types.Record {
	x.log.Error("failed to extract text", zap.String("file", rec.Source), zap.Error(err))
	rec.Outcome = types.OutcomeFailed
	rec.Reason = err.Error()
	return rec
}

// removeExisting deletes path if it exists, clearing a read-only permission
// first.
func removeExisting(path string) error {
	info, err := os.Lstat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking existing output %s: %w", path, err)
	}
	if info.Mode().IsRegular() && info.Mode().Perm()&0o200 == 0 {
		if err := os.Chmod(path, info.Mode().Perm()|0o200); err != nil {
			return fmt.Errorf("clearing read-only flag on %s: %w", path, err)
		}
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("deleting existing output %s: %w", path, err)
	}
	return nil
}
