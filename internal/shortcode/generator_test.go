package shortcode

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_DefaultLength(t *testing.T) {
	g := NewGenerator(0)
	code, err := g.Generate()
	require.NoError(t, err)
	assert.Len(t, code, DefaultLength)
	assert.Equal(t, DefaultLength, g.Length())
}

func TestGenerator_Charset(t *testing.T) {
	g := NewGenerator(12)
	for i := 0; i < 200; i++ {
		code, err := g.Generate()
		require.NoError(t, err)
		require.Len(t, code, 12)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(Charset, r), "非法字符 %q", r)
		}
	}
}

func TestGenerator_Distinct(t *testing.T) {
	g := NewGenerator(8)
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		code, err := g.Generate()
		require.NoError(t, err)
		seen[code] = struct{}{}
	}
	// 62^8 的空间里 1000 次抽样几乎不可能重复
	assert.Len(t, seen, 1000)
}

func TestGenerator_SourceError(t *testing.T) {
	g := NewGenerator(6)
	g.source = func() (int64, error) { return 0, errors.New("entropy exhausted") }
	_, err := g.Generate()
	assert.Error(t, err)
}
