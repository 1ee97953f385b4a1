// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/docbatch/pkg/types"
)

// Export is the document written by Export: a run and its records.
type Export struct {
	Run     Run            `json:"run" yaml:"run"`
	Records []types.Record `json:"records" yaml:"records"`
}

// Export writes run id and its records to w as "yaml" or "json".
func (s *Store) Export(ctx context.Context, id, format string, w io.Writer) error {
	run, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	records, err := s.Records(ctx, id)
	if err != nil {
		return err
	}
	doc := Export{Run: run, Records: records}

	switch format {
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
}
