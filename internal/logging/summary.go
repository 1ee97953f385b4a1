// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logging

import (
	"go.uber.org/zap"

	"github.com/pdiddy/docbatch/pkg/types"
)

// Summary logs the run counters once, at the end of a run.
func Summary(log *zap.Logger, msg string, r types.RunResult) {
	log.Info(msg,
		zap.Int("processed", r.Processed),
		zap.Int("converted", r.Converted),
		zap.Int("skipped", r.Skipped),
		zap.Int("failed", r.Failed),
	)
}
