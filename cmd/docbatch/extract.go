// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docbatch/internal/extract"
	"github.com/pdiddy/docbatch/internal/logging"
)

var extractCmd = &cobra.Command{
	Use:   "extract [root]",
	Short: "Extract PDF text into sidecar text files",
	Long: `Extract finds every PDF under root (default: the current directory) and
writes its text to a file of the same name with a .txt extension. Existing
text files are deleted and regenerated, read-only ones included.

Sidecar files are written in the legacy output encoding (default gbk), not
UTF-8. Use "extract versions" for UTF-8 output into a mirrored tree.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

var extractVersionsCmd = &cobra.Command{
	Use:   "versions [root]",
	Short: "Extract PDF text into mirrored trees under version directories",
	Long: `Versions discovers version directories (default pattern v*) under root
and, for each configured mapping (default guide/Original -> guide/Utf8Txt),
writes the text of every PDF as UTF-8 into the mirrored target directory,
with a provenance header and page markers. Missing source directories are
skipped with a warning.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtractVersions,
}

func init() {
	extractCmd.PersistentFlags().String("backend", "native", "page text backend: native or pdftotext")
	extractCmd.Flags().String("encoding", "gbk", "legacy encoding for sidecar files")
	extractCmd.PersistentFlags().StringSlice("ext", []string{".pdf"}, "document extensions to extract")
	extractVersionsCmd.Flags().String("pattern", "v*", "glob matched against version directory names")

	bindFlag("extract.backend", extractCmd.PersistentFlags().Lookup("backend"))
	bindFlag("extract.output_encoding", extractCmd.Flags().Lookup("encoding"))
	bindFlag("extract.extensions", extractCmd.PersistentFlags().Lookup("ext"))
	bindFlag("extract.version_pattern", extractVersionsCmd.Flags().Lookup("pattern"))

	extractCmd.AddCommand(extractVersionsCmd)
	rootCmd.AddCommand(extractCmd)
}

func newExtractor() (*extract.Extractor, error) {
	reader, err := extract.NewReader(cfg.Extract.Backend)
	if err != nil {
		return nil, err
	}
	return extract.New(cfg.Extract, reader, logger)
}

func runExtract(cmd *cobra.Command, args []string) error {
	root := rootArg(args)
	x, err := newExtractor()
	if err != nil {
		return err
	}

	started := time.Now()
	result, err := x.Run(root)
	if err != nil {
		return err
	}
	logging.Summary(logger, "text extraction completed", result)
	return journalRun(cmd, "extract", root, started, result)
}

func runExtractVersions(cmd *cobra.Command, args []string) error {
	root := rootArg(args)
	x, err := newExtractor()
	if err != nil {
		return err
	}

	started := time.Now()
	result, err := x.RunVersions(root)
	if err != nil {
		return err
	}
	logging.Summary(logger, "text extraction completed", result)
	return journalRun(cmd, "extract-versions", root, started, result)
}
