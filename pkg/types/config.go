// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "path/filepath"

// DirMapping pairs a source directory with the directory its converted
// output is mirrored into. Both paths are relative to a version directory.
type DirMapping struct {
	Source string `json:"source" yaml:"source" mapstructure:"source"`
	Target string `json:"target" yaml:"target" mapstructure:"target"`
}

// RecodePolicy selects how the recoder decides the source encoding.
type RecodePolicy string

const (
	// PolicyDetect uses the statistical charset detector.
	PolicyDetect RecodePolicy = "detect"

	// PolicyCompare decodes as the legacy encoding and as UTF-8 and treats
	// identical results as already UTF-8.
	PolicyCompare RecodePolicy = "compare"
)

// RecodeConfig holds settings for the recode pipeline.
type RecodeConfig struct {
	// Extensions lists the candidate file extensions.
	Extensions []string `json:"extensions" yaml:"extensions" mapstructure:"extensions"`

	// Marker is the filename fragment that identifies converted output
	// (e.g. "notes.utf8.txt"). Files containing it are never reprocessed.
	Marker string `json:"marker" yaml:"marker" mapstructure:"marker"`

	// Policy selects detect or compare.
	Policy RecodePolicy `json:"policy" yaml:"policy" mapstructure:"policy"`

	// LegacyEncoding is the encoding assumed by the compare policy.
	LegacyEncoding string `json:"legacy_encoding" yaml:"legacy_encoding" mapstructure:"legacy_encoding"`

	// MinConfidence is the lowest detector confidence (0-100) accepted as a
	// guess. Lower scores fall back to UTF-8.
	MinConfidence int `json:"min_confidence" yaml:"min_confidence" mapstructure:"min_confidence"`

	// PreferredCharsets orders the multibyte encodings tried ahead of
	// single-byte guesses when a file is not valid UTF-8. An empty list
	// leaves the detector's ranking alone.
	PreferredCharsets []string `json:"preferred_charsets" yaml:"preferred_charsets" mapstructure:"preferred_charsets"`

	// VersionPattern is the glob matched against top-level directory names.
	VersionPattern string `json:"version_pattern" yaml:"version_pattern" mapstructure:"version_pattern"`

	// Mappings are applied in order under every version directory.
	Mappings []DirMapping `json:"mappings" yaml:"mappings" mapstructure:"mappings"`
}

// ExtractBackend identifies the PDF page text reader.
type ExtractBackend string

const (
	BackendNative    ExtractBackend = "native"
	BackendPdftotext ExtractBackend = "pdftotext"
)

// ExtractConfig holds settings for the extract pipeline.
type ExtractConfig struct {
	// Extensions lists the document extensions to extract from.
	Extensions []string `json:"extensions" yaml:"extensions" mapstructure:"extensions"`

	// TextExtension replaces the document extension on output files.
	TextExtension string `json:"text_extension" yaml:"text_extension" mapstructure:"text_extension"`

	// OutputEncoding is the legacy code page used for sidecar files.
	OutputEncoding string `json:"output_encoding" yaml:"output_encoding" mapstructure:"output_encoding"`

	// Backend selects native or pdftotext.
	Backend ExtractBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// VersionPattern and Mappings drive mirrored extraction.
	VersionPattern string       `json:"version_pattern" yaml:"version_pattern" mapstructure:"version_pattern"`
	Mappings       []DirMapping `json:"mappings" yaml:"mappings" mapstructure:"mappings"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is console or json.
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// JournalConfig controls the optional SQLite run journal.
type JournalConfig struct {
	// Path is the database file. Empty disables the journal.
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// Config groups all settings.
type Config struct {
	Log     LogConfig     `json:"log" yaml:"log" mapstructure:"log"`
	Recode  RecodeConfig  `json:"recode" yaml:"recode" mapstructure:"recode"`
	Extract ExtractConfig `json:"extract" yaml:"extract" mapstructure:"extract"`
	Journal JournalConfig `json:"journal" yaml:"journal" mapstructure:"journal"`
}

// DefaultRecodeConfig returns the settings the recoder ships with.
func DefaultRecodeConfig() RecodeConfig {
	return RecodeConfig{
		Extensions:        []string{".h", ".txt", ".htm", ".html", ".cpp", ".xml", ".hhc", ".hhk"},
		Marker:            ".utf8",
		Policy:            PolicyDetect,
		LegacyEncoding:    "gb2312",
		MinConfidence:     10,
		PreferredCharsets: []string{"GB-18030", "Big5", "Shift_JIS", "EUC-JP", "EUC-KR"},
		VersionPattern:    "v*",
		Mappings: []DirMapping{
			{Source: filepath.Join("chm", "Original"), Target: filepath.Join("chm", "Utf8")},
			{Source: filepath.Join("api", "Original"), Target: filepath.Join("api", "Utf8")},
			{Source: filepath.Join("demo", "Original"), Target: filepath.Join("demo", "Utf8")},
		},
	}
}

// DefaultExtractConfig returns the settings the extractor ships with.
func DefaultExtractConfig() ExtractConfig {
	return ExtractConfig{
		Extensions:     []string{".pdf"},
		TextExtension:  ".txt",
		OutputEncoding: "gbk",
		Backend:        BackendNative,
		VersionPattern: "v*",
		Mappings: []DirMapping{
			{Source: filepath.Join("guide", "Original"), Target: filepath.Join("guide", "Utf8Txt")},
		},
	}
}

// DefaultConfig returns the complete default configuration.
func DefaultConfig() Config {
	return Config{
		Log:     LogConfig{Level: "info", Format: "console"},
		Recode:  DefaultRecodeConfig(),
		Extract: DefaultExtractConfig(),
	}
}
