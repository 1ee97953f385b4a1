// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package recode

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pdiddy/docbatch/internal/charset"
	"github.com/pdiddy/docbatch/pkg/types"
)

func comparePolicy(t *testing.T) Policy {
	t.Helper()
	cfg := types.DefaultRecodeConfig()
	cfg.Policy = types.PolicyCompare
	p, err := NewPolicy(cfg, nil)
	require.NoError(t, err)
	return p
}

func TestComparePolicy(t *testing.T) {
	p := comparePolicy(t)

	tests := []struct {
		name     string
		data     []byte
		wantSkip bool
		wantText string
	}{
		{
			name:     "ascii is already utf-8",
			data:     []byte("#define VERSION \"6.7.9\"\n"),
			wantSkip: true,
		},
		{
			name:     "empty file is already utf-8",
			data:     []byte{},
			wantSkip: true,
		},
		{
			name:     "bom-prefixed utf-8",
			data:     append([]byte{0xEF, 0xBB, 0xBF}, []byte("接口")...),
			wantSkip: true,
		},
		{
			name:     "legacy bytes are converted",
			data:     gbk(t, "// 测试 header"),
			wantText: "// 测试 header",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := p.Decide(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSkip, d.Skip)
			if !tt.wantSkip {
				assert.Equal(t, tt.wantText, d.Text)
				assert.Equal(t, "gbk", d.Encoding)
			}
		})
	}
}

// Unmarked UTF-8 CJK text decodes differently under both encodings, so the
// comparison treats it as legacy. This documents the heuristic's blind spot.
func TestComparePolicyMisjudgesUnmarkedUTF8(t *testing.T) {
	p := comparePolicy(t)

	d, err := p.Decide([]byte("测试"))
	require.NoError(t, err)
	assert.False(t, d.Skip)
	assert.NotEqual(t, "测试", d.Text)
}

func TestDetectPolicyRealDetector(t *testing.T) {
	p, err := NewPolicy(types.DefaultRecodeConfig(), nil)
	require.NoError(t, err)

	d, err := p.Decide([]byte("plain ascii text for the detector\n"))
	require.NoError(t, err)
	assert.False(t, d.Skip)
	assert.Equal(t, "plain ascii text for the detector\n", d.Text)
}

func TestNewPolicyErrors(t *testing.T) {
	cfg := types.DefaultRecodeConfig()
	cfg.Policy = "guess"
	_, err := NewPolicy(cfg, nil)
	assert.ErrorContains(t, err, "unsupported recode policy")

	cfg.Policy = types.PolicyCompare
	cfg.LegacyEncoding = "klingon"
	_, err = NewPolicy(cfg, nil)
	assert.ErrorIs(t, err, charset.ErrUnsupported)
}

func TestRunInPlaceComparePolicy(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "ascii.h"), []byte("int x;\n"))
	writeFile(t, filepath.Join(root, "legacy.xml"), gbk(t, "<a>测试</a>"))

	cfg := types.DefaultRecodeConfig()
	r := New(cfg, comparePolicy(t), zap.NewNop())

	result, err := r.RunInPlace(root)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Converted)
	assert.Equal(t, 1, result.Skipped)

	assert.NoFileExists(t, filepath.Join(root, "ascii.utf8.h"))
	got, err := os.ReadFile(filepath.Join(root, "legacy.utf8.xml"))
	require.NoError(t, err)
	assert.Equal(t, "<a>测试</a>", string(got))
}
