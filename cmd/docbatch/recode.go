// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docbatch/internal/logging"
	"github.com/pdiddy/docbatch/internal/recode"
)

var recodeCmd = &cobra.Command{
	Use:   "recode [root]",
	Short: "Re-encode legacy text files to UTF-8 next to the originals",
	Long: `Recode walks root (default: the current directory), detects the encoding
of every file with a candidate extension and writes a UTF-8 copy beside it
with the marker inserted before the extension (readme.h -> readme.utf8.h).
Originals are never modified, and files whose names already contain the
marker are skipped.

Policies:
  detect   statistical charset detection; UTF-8 fallback with a warning
  compare  decode as --legacy-encoding and as UTF-8; identical means skip`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRecode,
}

var recodeVersionsCmd = &cobra.Command{
	Use:   "versions [root]",
	Short: "Re-encode mapped directories under every version directory",
	Long: `Versions discovers version directories (default pattern v*) under root
(default: the current directory), sorted by name, and for each configured
mapping (default chm, api and demo: Original -> Utf8) writes a UTF-8 copy of
every candidate file into the mirrored target tree. Every source
subdirectory is recreated in the target. Missing source directories are
skipped with a warning.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRecodeVersions,
}

func init() {
	flags := recodeCmd.PersistentFlags()
	flags.String("policy", "detect", "encoding policy: detect or compare")
	flags.String("marker", ".utf8", "filename marker of converted files")
	flags.StringSlice("ext", nil, "candidate extensions (default .h,.txt,.htm,.html,.cpp,.xml,.hhc,.hhk)")
	flags.String("legacy-encoding", "gb2312", "encoding assumed by the compare policy")
	flags.Int("min-confidence", 10, "lowest detector confidence (0-100) accepted as a guess")
	flags.StringSlice("prefer", nil, "multibyte encodings tried first, in order (default GB-18030,Big5,Shift_JIS,EUC-JP,EUC-KR)")
	recodeVersionsCmd.Flags().String("pattern", "v*", "glob matched against version directory names")

	bindFlag("recode.policy", flags.Lookup("policy"))
	bindFlag("recode.marker", flags.Lookup("marker"))
	bindFlag("recode.extensions", flags.Lookup("ext"))
	bindFlag("recode.legacy_encoding", flags.Lookup("legacy-encoding"))
	bindFlag("recode.min_confidence", flags.Lookup("min-confidence"))
	bindFlag("recode.preferred_charsets", flags.Lookup("prefer"))
	bindFlag("recode.version_pattern", recodeVersionsCmd.Flags().Lookup("pattern"))

	recodeCmd.AddCommand(recodeVersionsCmd)
	rootCmd.AddCommand(recodeCmd)
}

func newRecoder() (*recode.Recoder, error) {
	policy, err := recode.NewPolicy(cfg.Recode, nil)
	if err != nil {
		return nil, err
	}
	return recode.New(cfg.Recode, policy, logger), nil
}

func runRecode(cmd *cobra.Command, args []string) error {
	root := rootArg(args)
	r, err := newRecoder()
	if err != nil {
		return err
	}

	started := time.Now()
	result, err := r.RunInPlace(root)
	if err != nil {
		return err
	}
	logging.Summary(logger, "UTF-8 conversion completed", result)
	return journalRun(cmd, "recode", root, started, result)
}

func runRecodeVersions(cmd *cobra.Command, args []string) error {
	root := rootArg(args)
	r, err := newRecoder()
	if err != nil {
		return err
	}

	started := time.Now()
	result, err := r.RunVersions(root)
	if err != nil {
		return err
	}
	logging.Summary(logger, "UTF-8 conversion completed", result)
	return journalRun(cmd, "recode-versions", root, started, result)
}
