// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PageReader returns the plain text of every page of a document, in page
// order. Different backends (native Go parser, poppler's pdftotext)
// implement this interface.
type PageReader interface {
	Pages(path string) ([]string, error)
}

// NativeReader reads the embedded text layer with a pure-Go PDF parser.
// Scanned, image-only pages come back empty.
type NativeReader struct{}

// Pages implements PageReader.
func (NativeReader) Pages(path string) ([]string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		if f != nil {
			f.Close()
		}
		return nil, fmt.Errorf("opening PDF %s: %w", path, err)
	}
	defer f.Close()

	n := r.NumPage()
	fonts := make(map[string]*pdf.Font)
	pages := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		for _, name := range p.Fonts() {
			if _, ok := fonts[name]; !ok {
				font := p.Font(name)
				fonts[name] = &font
			}
		}
		text, err := p.GetPlainText(fonts)
		if err != nil {
			return nil, fmt.Errorf("reading page %d of %s: %w", i, path, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}

const binPdftotext = "pdftotext"

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Output(name string, args ...string) ([]byte, error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osExecutor) Output(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).Output()
}

// PdftotextReader shells out to poppler's pdftotext, which handles some
// font encodings the native parser does not.
type PdftotextReader struct {
	bin  string
	exec executor
}

// NewPdftotextReader verifies pdftotext is on PATH.
func NewPdftotextReader() (*PdftotextReader, error) {
	return newPdftotextReader(osExecutor{})
}

func newPdftotextReader(exec executor) (*PdftotextReader, error) {
	bin, err := exec.LookPath(binPdftotext)
	if err != nil {
		return nil, fmt.Errorf("%s not available: %w", binPdftotext, err)
	}
	return &PdftotextReader{bin: bin, exec: exec}, nil
}

// Pages implements PageReader. pdftotext terminates every page with a form
// feed, so the output is split on it and the trailing empty piece dropped.
func (p *PdftotextReader) Pages(path string) ([]string, error) {
	out, err := p.exec.Output(p.bin, "-layout", "-enc", "UTF-8", path, "-")
	if err != nil {
		return nil, fmt.Errorf("running %s on %s: %w", binPdftotext, path, err)
	}
	pages := strings.Split(string(out), "\f")
	if n := len(pages); n > 0 && strings.TrimSpace(pages[n-1]) == "" {
		pages = pages[:n-1]
	}
	return pages, nil
}
