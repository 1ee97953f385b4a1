// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/docbatch/pkg/types"
)

// setDefaults registers types.DefaultConfig with viper. Config files,
// environment variables and changed flags override these values key by key;
// a list given in a config file replaces the default list entirely.
func setDefaults(v *viper.Viper) {
	d := types.DefaultConfig()

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("journal.path", d.Journal.Path)

	v.SetDefault("recode.extensions", d.Recode.Extensions)
	v.SetDefault("recode.marker", d.Recode.Marker)
	v.SetDefault("recode.policy", string(d.Recode.Policy))
	v.SetDefault("recode.legacy_encoding", d.Recode.LegacyEncoding)
	v.SetDefault("recode.min_confidence", d.Recode.MinConfidence)
	v.SetDefault("recode.preferred_charsets", d.Recode.PreferredCharsets)
	v.SetDefault("recode.version_pattern", d.Recode.VersionPattern)
	v.SetDefault("recode.mappings", mappingMaps(d.Recode.Mappings))

	v.SetDefault("extract.extensions", d.Extract.Extensions)
	v.SetDefault("extract.text_extension", d.Extract.TextExtension)
	v.SetDefault("extract.output_encoding", d.Extract.OutputEncoding)
	v.SetDefault("extract.backend", string(d.Extract.Backend))
	v.SetDefault("extract.version_pattern", d.Extract.VersionPattern)
	v.SetDefault("extract.mappings", mappingMaps(d.Extract.Mappings))
}

// mappingMaps renders mappings the way they appear in a YAML config file.
func mappingMaps(mappings []types.DirMapping) []map[string]any {
	out := make([]map[string]any, len(mappings))
	for i, m := range mappings {
		out[i] = map[string]any{"source": m.Source, "target": m.Target}
	}
	return out
}

// bindFlag ties a viper key to a flag so a flag given on the command line
// wins over every other source.
func bindFlag(key string, flag *pflag.Flag) {
	if flag == nil {
		panic("binding unknown flag for " + key)
	}
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

// loadConfig decodes the merged viper settings.
func loadConfig(v *viper.Viper) (types.Config, error) {
	var c types.Config
	if err := v.Unmarshal(&c); err != nil {
		return types.Config{}, fmt.Errorf("decoding configuration: %w", err)
	}
	return c, nil
}

// readConfig locates and reads the config file. An explicit cfgFile must
// exist; otherwise docbatch.yaml is looked up in the working directory and
// ~/.config/docbatch, and its absence is not an error. A file that exists but
// does not parse is.
func readConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("docbatch")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "docbatch"))
		}
	}

	v.SetEnvPrefix("DOCBATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	fmt.Fprintln(os.Stderr, "Using config file:", v.ConfigFileUsed())
	return nil
}
