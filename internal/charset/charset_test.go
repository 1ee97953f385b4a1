// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package charset

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
)

const chineseSample = "这是一个用于测试编码检测的中文文本，我们需要足够多的常用汉字来让统计检测器作出正确的判断。" +
	"中国的经济发展和社会进步为人民生活带来了很大的变化，这些文字都是在日常生活中经常使用的。"

func TestLookup(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "GB-18030", want: "gb18030"},
		{name: "gb2312", want: "gbk"},
		{name: "GBK", want: "gbk"},
		{name: "cp936", want: "gbk"},
		{name: "UTF-8", want: "utf-8"},
		{name: "Big5", want: "big5"},
		{name: "Shift_JIS", want: "shift_jis"},
		{name: "EUC-KR", want: "euc-kr"},
		{name: " windows-1252 ", want: "windows-1252"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := Lookup(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, Name(enc))
		})
	}
}

func TestLookupUnsupported(t *testing.T) {
	for _, name := range []string{"", "x-made-up", "IBM420_ltr"} {
		_, err := Lookup(name)
		assert.ErrorIs(t, err, ErrUnsupported, name)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	gbk, err := Lookup("gbk")
	require.NoError(t, err)

	legacy, err := Encode(gbk, "测试")
	require.NoError(t, err)
	assert.Len(t, legacy, 4)
	assert.False(t, utf8.Valid(legacy), "GBK bytes for CJK text are not valid UTF-8")

	text, err := Decode(gbk, legacy)
	require.NoError(t, err)
	assert.Equal(t, "测试", text)
}

func TestDecodeHonoursBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("hello 测试")...)

	text, err := Decode(simplifiedchinese.GBK, data)
	require.NoError(t, err)
	assert.Equal(t, "hello 测试", text)
}

func TestDecodeUTF8(t *testing.T) {
	assert.Equal(t, "�a", DecodeUTF8([]byte{0xFF, 'a'}))
	assert.Equal(t, "plain", DecodeUTF8([]byte("\xEF\xBB\xBFplain")))
}

func TestEncodeReplacesUnsupported(t *testing.T) {
	out, err := Encode(simplifiedchinese.GBK, "a😀b")
	require.NoError(t, err)
	assert.Equal(t, byte('a'), out[0])
	assert.Equal(t, byte('b'), out[len(out)-1])
}

func TestStatDetector(t *testing.T) {
	d := NewDetector(10)

	t.Run("utf-8 text", func(t *testing.T) {
		g, ok := d.Detect([]byte(chineseSample))
		require.True(t, ok)
		assert.Equal(t, "UTF-8", g.Charset)
		assert.GreaterOrEqual(t, g.Confidence, 10)
	})

	t.Run("gbk text", func(t *testing.T) {
		legacy, err := Encode(simplifiedchinese.GBK, strings.Repeat(chineseSample, 4))
		require.NoError(t, err)

		g, ok := d.Detect(legacy)
		require.True(t, ok)
		assert.Equal(t, "GB-18030", g.Charset)

		enc, err := Lookup(g.Charset)
		require.NoError(t, err)
		text, err := Decode(enc, legacy)
		require.NoError(t, err)
		assert.Equal(t, strings.Repeat(chineseSample, 4), text)
	})

	t.Run("empty input", func(t *testing.T) {
		_, ok := d.Detect(nil)
		assert.False(t, ok)
	})

	t.Run("below threshold", func(t *testing.T) {
		strict := NewDetector(101)
		g, ok := strict.Detect([]byte(chineseSample))
		assert.False(t, ok)
		assert.Equal(t, "UTF-8", g.Charset, "the rejected guess is still reported")
	})
}

func TestStatDetectorPrefersMultibyte(t *testing.T) {
	preferred := []string{"GB-18030", "Big5", "Shift_JIS", "EUC-JP", "EUC-KR"}
	d := NewDetector(10, preferred...)

	tests := []struct {
		name string
		text string
	}{
		{"two characters", "测试"},
		{"one character", "中"},
		{"ascii-heavy comment", "// 测试 header\n"},
		{"define with comment", "#define NAME \"测试接口\" // 中文注释\n"},
		{"code with short comment", "int main(void) { return 0; } /* 返回 */\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			legacy, err := Encode(simplifiedchinese.GBK, tt.text)
			require.NoError(t, err)

			g, ok := d.Detect(legacy)
			require.True(t, ok)
			assert.Equal(t, "GB-18030", g.Charset)

			enc, err := Lookup(g.Charset)
			require.NoError(t, err)
			text, err := Decode(enc, legacy)
			require.NoError(t, err)
			assert.Equal(t, tt.text, text)
		})
	}

	t.Run("valid utf-8 stays utf-8", func(t *testing.T) {
		g, ok := d.Detect([]byte("测试"))
		require.True(t, ok)
		assert.Equal(t, "UTF-8", g.Charset)
	})

	t.Run("preference order breaks ties", func(t *testing.T) {
		legacy, err := Encode(simplifiedchinese.GBK, "测试")
		require.NoError(t, err)

		g, ok := NewDetector(10, "Big5", "GB-18030").Detect(legacy)
		require.True(t, ok)
		assert.Equal(t, "Big5", g.Charset)
	})
}

func TestNameUTF16(t *testing.T) {
	assert.Equal(t, "utf-16le", Name(unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)))
}
