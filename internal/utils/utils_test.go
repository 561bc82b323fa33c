package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestionFilter(t *testing.T) {
	f := NewSuggestionFilter("Cat", "")
	assert.False(t, f.ShouldInclude("cat"))
	assert.True(t, f.ShouldInclude("car"))
	assert.False(t, f.ShouldInclude("CAR"))
	assert.True(t, f.ShouldInclude(""))
	assert.False(t, f.ShouldInclude(""))
}

func TestCreateRankList(t *testing.T) {
	assert.Equal(t, []uint16{}, CreateRankList(0))
	assert.Equal(t, []uint16{1, 2, 3}, CreateRankList(3))
}

func TestInputChecks(t *testing.T) {
	tests := []struct {
		in        string
		dotStream bool
		word      bool
	}{
		{"125 15 123", true, false},
		{"1", true, false},
		{"17", false, false},
		{"   ", false, false},
		{"hello", false, true},
		{"don't", false, true},
		{"héllo", false, true},
		{"he llo", false, false},
		{"abc1", false, false},
		{"", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.dotStream, IsDotStream(tt.in))
			assert.Equal(t, tt.word, IsWordInput(tt.in, 60))
		})
	}
	assert.False(t, IsWordInput("abcdef", 5))
}

func TestLastWord(t *testing.T) {
	assert.Equal(t, "wor", LastWord("hello wor"))
	assert.Equal(t, "", LastWord("hello "))
	assert.Equal(t, "hello", LastWord("hello"))
	assert.Equal(t, "", LastWord(""))
}

func TestCapitalization(t *testing.T) {
	assert.Nil(t, CapitalPositions("hello"))
	pos := CapitalPositions("HeL")
	assert.Equal(t, []bool{true, false, true}, pos)
	assert.Equal(t, "HeLlo", ApplyCapitalization("hello", pos))
	assert.Equal(t, "hello", ApplyCapitalization("hello", nil))
	assert.Equal(t, "Éa", ApplyCapitalization("éa", []bool{true}))
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "words.txt")
	require.NoError(t, WriteFileAtomic(path, []byte("one\n")))
	require.NoError(t, WriteFileAtomic(path, []byte("two\n")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.True(t, FileExists(path))
}

func TestTOMLRecovery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.toml")
	require.NoError(t, os.WriteFile(path, []byte("[engine]\nmax_suggestions = 7\nname = \"x\"\nok = true\n"), 0o644))

	data, err := ParseTOMLWithRecovery(path)
	require.NoError(t, err)
	section, ok := ExtractSection(data, "engine")
	require.True(t, ok)

	n, ok := ExtractInt64(section, "max_suggestions")
	assert.True(t, ok)
	assert.Equal(t, 7, n)
	s, ok := ExtractString(section, "name")
	assert.True(t, ok)
	assert.Equal(t, "x", s)
	b, ok := ExtractBool(section, "ok")
	assert.True(t, ok)
	assert.True(t, b)
	_, ok = ExtractInt64(section, "name")
	assert.False(t, ok)
}
