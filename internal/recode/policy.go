// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package recode

import (
	"fmt"

	"golang.org/x/text/encoding"

	"github.com/pdiddy/docbatch/internal/charset"
	"github.com/pdiddy/docbatch/pkg/types"
)

// Decision is a policy's verdict on the contents of one file.
type Decision struct {
	// Text is the decoded content to write as UTF-8.
	Text string

	// Encoding names the encoding Text was decoded from.
	Encoding string

	// Skip is true when the file needs no conversion.
	Skip   bool
	Reason string

	// Fallback is true when no confident guess existed and the content
	// was decoded as UTF-8 anyway.
	Fallback bool
}

// Policy decides how to decode a file's raw bytes.
type Policy interface {
	Decide(data []byte) (Decision, error)
}

// DetectPolicy decodes with whatever the statistical detector guesses and
// falls back to UTF-8 when it has no confident guess.
type DetectPolicy struct {
	Detector charset.Detector
}

// Decide implements Policy. An encoding name the detector reports but no
// decoder exists for is an error.
func (p DetectPolicy) Decide(data []byte) (Decision, error) {
	g, ok := p.Detector.Detect(data)
	if !ok {
		return Decision{
			Text:     charset.DecodeUTF8(data),
			Encoding: "UTF-8",
			Fallback: true,
			Reason:   "no confident encoding guess",
		}, nil
	}

	enc, err := charset.Lookup(g.Charset)
	if err != nil {
		return Decision{Encoding: g.Charset}, err
	}
	text, err := charset.Decode(enc, data)
	if err != nil {
		return Decision{Encoding: g.Charset}, err
	}
	return Decision{Text: text, Encoding: g.Charset}, nil
}

// ComparePolicy decodes the bytes twice, as Legacy and as UTF-8. Identical
// results mean the file is treated as already UTF-8 and skipped.
//
// Bytes that are valid under both decodings but decode to different text
// are converted as Legacy. In practice only pure ASCII and BOM-prefixed
// files are recognised as UTF-8.
type ComparePolicy struct {
	Legacy encoding.Encoding
}

// Decide implements Policy.
func (p ComparePolicy) Decide(data []byte) (Decision, error) {
	name := charset.Name(p.Legacy)
	legacy, err := charset.Decode(p.Legacy, data)
	if err != nil {
		return Decision{Encoding: name}, err
	}
	if legacy == charset.DecodeUTF8(data) {
		return Decision{Encoding: "UTF-8", Skip: true, Reason: "already UTF-8"}, nil
	}
	return Decision{Text: legacy, Encoding: name}, nil
}

// NewPolicy builds the policy selected by cfg. det is used by the detect
// policy; when nil a chardet-backed detector honouring cfg.MinConfidence and
// cfg.PreferredCharsets is created.
func NewPolicy(cfg types.RecodeConfig, det charset.Detector) (Policy, error) {
	switch cfg.Policy {
	case types.PolicyDetect, "":
		if det == nil {
			det = charset.NewDetector(cfg.MinConfidence, cfg.PreferredCharsets...)
		}
		return DetectPolicy{Detector: det}, nil
	case types.PolicyCompare:
		enc, err := charset.Lookup(cfg.LegacyEncoding)
		if err != nil {
			return nil, fmt.Errorf("legacy encoding for compare policy: %w", err)
		}
		return ComparePolicy{Legacy: enc}, nil
	default:
		return nil, fmt.Errorf("unsupported recode policy %q: use detect or compare", cfg.Policy)
	}
}
