// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"path/filepath"
	"strings"
)

// ExtensionSet is a case-insensitive allow-list of file extensions. Keys are
// stored lower-cased with a leading dot.
type ExtensionSet map[string]bool

// NewExtensionSet builds a set from extensions given with or without the
// leading dot, in any case.
func NewExtensionSet(exts ...string) ExtensionSet {
	set := make(ExtensionSet, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		set[e] = true
	}
	return set
}

// Match reports whether the extension of path is in the set.
func (s ExtensionSet) Match(path string) bool {
	return s[strings.ToLower(filepath.Ext(path))]
}
