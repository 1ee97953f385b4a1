// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/docbatch/pkg/types"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		want    zapcore.Level
		wantErr bool
	}{
		{name: "", want: zapcore.InfoLevel},
		{name: "debug", want: zapcore.DebugLevel},
		{name: "WARN", want: zapcore.WarnLevel},
		{name: "error", want: zapcore.ErrorLevel},
		{name: "chatty", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.name)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew(t *testing.T) {
	logger, err := New(types.LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = New(types.LogConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))

	_, err = New(types.LogConfig{Format: "xml"})
	assert.ErrorContains(t, err, "unsupported log format")
}

func TestSummary(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	var r types.RunResult
	r.Add(types.Record{Source: "a.h", Outcome: types.OutcomeConverted})
	r.Add(types.Record{Source: "b.h", Outcome: types.OutcomeFailed})

	Summary(zap.New(core), "conversion completed", r)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, int64(2), fields["processed"])
	assert.Equal(t, int64(1), fields["converted"])
	assert.Equal(t, int64(0), fields["skipped"])
	assert.Equal(t, int64(1), fields["failed"])
}
