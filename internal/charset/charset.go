// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package charset guesses the byte encoding of a buffer and converts
// between legacy encodings and UTF-8.
package charset

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrUnsupported is returned by Lookup for encoding names with no decoder.
var ErrUnsupported = errors.New("unsupported encoding")

// Guess is a detector's best estimate for a buffer.
type Guess struct {
	// Charset is the detector's name for the encoding (e.g. "GB-18030").
	Charset string

	// Language is an ISO code when the detector reports one.
	Language string

	// Confidence ranges from 0 to 100.
	Confidence int
}

// Detector guesses the encoding of raw bytes. The boolean result is false
// when there is no confident guess.
type Detector interface {
	Detect(data []byte) (Guess, bool)
}

// StatDetector wraps the chardet statistical text detector, which ranks
// candidate encodings by byte-pattern and n-gram frequency.
//
// Input that is not valid UTF-8 is matched against the Preferred multibyte
// encodings before any single-byte guess: the best scoring candidate that
// decodes without invalid sequences wins, and ties go to the earlier entry
// in Preferred.
type StatDetector struct {
	// MinConfidence is the lowest accepted score; results below it count as
	// no guess.
	MinConfidence int

	// Preferred lists multibyte encodings in order of preference.
	Preferred []string

	detector *chardet.Detector
}

// NewDetector returns a StatDetector that rejects guesses scoring below
// minConfidence and prefers the given multibyte encodings, in order.
func NewDetector(minConfidence int, preferred ...string) *StatDetector {
	return &StatDetector{
		MinConfidence: minConfidence,
		Preferred:     preferred,
		detector:      chardet.NewTextDetector(),
	}
}

// Detect implements Detector.
func (d *StatDetector) Detect(data []byte) (Guess, bool) {
	if len(data) == 0 {
		return Guess{}, false
	}
	results, err := d.detector.DetectAll(data)
	if err != nil {
		results = nil
	}
	g, found := d.choose(data, results)
	if !found {
		return Guess{}, false
	}
	return g, g.Confidence >= d.MinConfidence
}

func (d *StatDetector) choose(data []byte, results []chardet.Result) (Guess, bool) {
	if utf8.Valid(data) && !isASCII(data) {
		g := Guess{Charset: "UTF-8", Confidence: 100}
		for _, r := range results {
			if r.Charset == "UTF-8" {
				g.Confidence = r.Confidence
				break
			}
		}
		return g, true
	}
	if len(results) > 0 && (strings.HasPrefix(results[0].Charset, "UTF-16") || strings.HasPrefix(results[0].Charset, "UTF-32")) {
		return toGuess(results[0]), true
	}

	if !utf8.Valid(data) {
		best, bestRank := Guess{}, -1
		for _, r := range results {
			rank := d.rank(r.Charset)
			if rank < 0 || !decodesCleanly(r.Charset, data) {
				continue
			}
			if bestRank < 0 || r.Confidence > best.Confidence ||
				r.Confidence == best.Confidence && rank < bestRank {
				best, bestRank = toGuess(r), rank
			}
		}
		if bestRank >= 0 {
			return best, true
		}

		// chardet gives no multibyte score to a single double-byte character.
		for _, name := range d.Preferred {
			if decodesCleanly(name, data) {
				return Guess{Charset: name, Confidence: 10}, true
			}
		}
	}

	if len(results) == 0 {
		return Guess{}, false
	}
	return toGuess(results[0]), true
}

// rank returns the position of charset in Preferred, or -1.
func (d *StatDetector) rank(charset string) int {
	key := normalize(charset)
	for i, p := range d.Preferred {
		if normalize(p) == key {
			return i
		}
	}
	return -1
}

func normalize(name string) string {
	return strings.NewReplacer("-", "", "_", "").Replace(strings.ToLower(name))
}

func toGuess(r chardet.Result) Guess {
	return Guess{Charset: r.Charset, Language: r.Language, Confidence: r.Confidence}
}

func isASCII(data []byte) bool {
	for _, b := range data {
		if b >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// decodesCleanly reports whether data decodes as name with no replacement
// characters.
func decodesCleanly(name string, data []byte) bool {
	enc, err := Lookup(name)
	if err != nil {
		return false
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), data)
	return err == nil && !bytes.ContainsRune(out, utf8.RuneError)
}

// aliases maps detector spellings that neither index knows to a label they do.
var aliases = map[string]string{
	"gb-18030":  "gb18030",
	"gb2312-80": "gb2312",
	"ascii":     "us-ascii",
	"utf8":      "utf-8",
	"cp936":     "gbk",
	"ms936":     "gbk",
}

// Lookup resolves an encoding name, as produced by the detector or given in
// configuration, to an encoding. Names are matched case-insensitively
// against WHATWG labels first and IANA names second.
func Lookup(name string) (encoding.Encoding, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, fmt.Errorf("%w: empty name", ErrUnsupported)
	}
	if alias, ok := aliases[key]; ok {
		key = alias
	}
	if key == "utf-8" {
		return unicode.UTF8, nil
	}
	if enc, err := htmlindex.Get(key); err == nil {
		return enc, nil
	}
	enc, err := ianaindex.IANA.Encoding(key)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, name)
	}
	return enc, nil
}

// Name returns the canonical name of enc, or "unknown".
func Name(enc encoding.Encoding) string {
	if name, err := htmlindex.Name(enc); err == nil {
		return name
	}
	if name, err := ianaindex.IANA.Name(enc); err == nil {
		return name
	}
	return "unknown"
}

// Decode converts data from enc to a UTF-8 string. A leading byte-order mark
// overrides enc, matching how text readers treat BOM-prefixed files.
// Undecodable bytes become U+FFFD.
func Decode(enc encoding.Encoding, data []byte) (string, error) {
	out, _, err := transform.Bytes(unicode.BOMOverride(enc.NewDecoder()), data)
	if err != nil {
		return "", fmt.Errorf("decoding as %s: %w", Name(enc), err)
	}
	return string(out), nil
}

// DecodeUTF8 decodes data as UTF-8, dropping a leading BOM and replacing
// invalid sequences with U+FFFD.
func DecodeUTF8(data []byte) string {
	out, _ := Decode(unicode.UTF8, data)
	return out
}

// Encode converts text to enc. Runes enc cannot represent are replaced
// with the encoding's substitute byte instead of failing.
func Encode(enc encoding.Encoding, text string) ([]byte, error) {
	out, _, err := transform.Bytes(encoding.ReplaceUnsupported(enc.NewEncoder()), []byte(text))
	if err != nil {
		return nil, fmt.Errorf("encoding as %s: %w", Name(enc), err)
	}
	return out, nil
}
