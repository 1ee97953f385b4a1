// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/pdiddy/docbatch/pkg/types"
)

// fakeReader returns canned pages or errors keyed by base file name.
type fakeReader struct {
	pages  map[string][]string
	errs   map[string]error
	panics map[string]bool
	calls  []string
}

func (f *fakeReader) Pages(path string) ([]string, error) {
	name := filepath.Base(path)
	f.calls = append(f.calls, name)
	if f.panics[name] {
		panic("unexpected EOF in xref table")
	}
	if err, ok := f.errs[name]; ok {
		return nil, err
	}
	if p, ok := f.pages[name]; ok {
		return p, nil
	}
	return nil, errors.New("no fixture for " + name)
}

func writeFile(t *testing.T, path string, data string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func newExtractor(t *testing.T, reader PageReader) (*Extractor, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	x, err := New(types.DefaultExtractConfig(), reader, zap.New(core))
	require.NoError(t, err)
	x.now = func() time.Time { return time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC) }
	return x, logs
}

func TestSidecarPath(t *testing.T) {
	assert.Equal(t, filepath.Join("a", "guide.txt"), SidecarPath(filepath.Join("a", "guide.pdf"), ".txt"))
	assert.Equal(t, "REPORT.txt", SidecarPath("REPORT.PDF", ".txt"))
	assert.Equal(t, "v6.7.9.txt", SidecarPath("v6.7.9.pdf", ".txt"))
}

func TestNewRejectsUnknownEncoding(t *testing.T) {
	cfg := types.DefaultExtractConfig()
	cfg.OutputEncoding = "nope-1"
	_, err := New(cfg, &fakeReader{}, nil)
	assert.ErrorContains(t, err, "sidecar output encoding")
}

func TestNewReader(t *testing.T) {
	r, err := NewReader(types.BackendNative)
	require.NoError(t, err)
	assert.IsType(t, NativeReader{}, r)

	_, err = NewReader("ocr")
	assert.ErrorContains(t, err, "unsupported extract backend")
}

func TestRunSidecar(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "guide.pdf"), "%PDF")
	writeFile(t, filepath.Join(root, "sub", "API.PDF"), "%PDF")
	writeFile(t, filepath.Join(root, "sub", "notes.txt"), "keep me")

	reader := &fakeReader{pages: map[string][]string{
		"guide.pdf": {"第一页", "第二页"},
		"API.PDF":   {"ReqOrderInsert"},
	}}
	x, _ := newExtractor(t, reader)

	result, err := x.Run(root)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Converted)
	assert.Equal(t, 0, result.Failed)

	raw, err := os.ReadFile(filepath.Join(root, "guide.txt"))
	require.NoError(t, err)
	text, err := simplifiedchinese.GBK.NewDecoder().Bytes(raw)
	require.NoError(t, err)
	assert.Equal(t, "第一页\n第二页\n", string(text))
	assert.NotEqual(t, "第一页\n第二页\n", string(raw), "sidecars use the legacy encoding, not UTF-8")

	api, err := os.ReadFile(filepath.Join(root, "sub", "API.txt"))
	require.NoError(t, err)
	assert.Equal(t, "ReqOrderInsert\n", string(api))

	keep, err := os.ReadFile(filepath.Join(root, "sub", "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(keep))
}

func TestRunSidecarReplacesReadOnlyOutput(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "guide.pdf"), "%PDF")
	old := filepath.Join(root, "guide.txt")
	writeFile(t, old, "stale text from a previous run")
	require.NoError(t, os.Chmod(old, 0o444))

	x, _ := newExtractor(t, &fakeReader{pages: map[string][]string{"guide.pdf": {"fresh"}}})
	result, err := x.Run(root)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Converted)

	got, err := os.ReadFile(old)
	require.NoError(t, err)
	assert.Equal(t, "fresh\n", string(got))
}

func TestRunSidecarDeletesOutputEvenWhenExtractionFails(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "broken.pdf"), "garbage")
	writeFile(t, filepath.Join(root, "broken.txt"), "stale")

	x, _ := newExtractor(t, &fakeReader{errs: map[string]error{"broken.pdf": errors.New("not a PDF file")}})
	result, err := x.Run(root)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.NoFileExists(t, filepath.Join(root, "broken.txt"))
}

func TestRunSidecarContinuesAfterFailures(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		writeFile(t, filepath.Join(root, name), "%PDF")
	}

	reader := &fakeReader{
		pages:  map[string][]string{"c.pdf": {"ok"}},
		errs:   map[string]error{"a.pdf": errors.New("bad xref")},
		panics: map[string]bool{"b.pdf": true},
	}
	x, logs := newExtractor(t, reader)

	result, err := x.Run(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf", "b.pdf", "c.pdf"}, reader.calls)
	assert.Equal(t, 3, result.Processed)
	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, 1, result.Converted)
	assert.Contains(t, result.Records[1].Reason, "malformed document")
	assert.Equal(t, 2, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
	assert.FileExists(t, filepath.Join(root, "c.txt"))
}

func TestRunMissingRoot(t *testing.T) {
	x, _ := newExtractor(t, &fakeReader{})
	_, err := x.Run(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorContains(t, err, "reading root")
}

func TestRunVersionsMirror(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "v1", "guide", "Original", "trader.pdf"), "%PDF")
	writeFile(t, filepath.Join(root, "v1", "guide", "Original", "md", "quote.pdf"), "%PDF")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "v2", "chm", "Original"), 0o755))

	reader := &fakeReader{pages: map[string][]string{
		"trader.pdf": {"交易接口", "第二章"},
		"quote.pdf":  {"行情"},
	}}
	x, logs := newExtractor(t, reader)

	result, err := x.RunVersions(root)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Converted)

	got, err := os.ReadFile(filepath.Join(root, "v1", "guide", "Utf8Txt", "trader.txt"))
	require.NoError(t, err)
	want := strings.Join([]string{
		"Source: trader.pdf",
		"Extracted: 2026-03-01 09:30:00",
		strings.Repeat("=", 50),
		"",
		"--- Page 1 ---",
		"交易接口",
		"",
		"--- Page 2 ---",
		"第二章",
		"",
		"",
	}, "\n")
	assert.Equal(t, want, string(got))
	assert.FileExists(t, filepath.Join(root, "v1", "guide", "Utf8Txt", "md", "quote.txt"))

	assert.Equal(t, 1, logs.FilterMessage("source directory does not exist, skipping").Len())
}
