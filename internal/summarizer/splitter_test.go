package summarizer_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docworker/internal/summarizer"
)

func TestSplitter_BlankText(t *testing.T) {
	s := summarizer.NewSplitter(100, 10)
	assert.Empty(t, s.Split(""))
	assert.Empty(t, s.Split(" \n\n\t "))
}

func TestSplitter_ShortTextIsOneChunk(t *testing.T) {
	s := summarizer.NewSplitter(100, 10)
	assert.Equal(t, []string{"hello world"}, s.Split("  hello world \n"))
}

func TestSplitter_PrefersParagraphBreaks(t *testing.T) {
	s := summarizer.NewSplitter(12, 0)
	chunks := s.Split("aaaa bbbb\n\ncccc dddd\n\neeee")
	assert.Equal(t, []string{"aaaa bbbb", "cccc dddd", "eeee"}, chunks)
}

func TestSplitter_FallsBackToWords(t *testing.T) {
	s := summarizer.NewSplitter(9, 0)
	chunks := s.Split("one two three four five")
	assert.Equal(t, []string{"one two", "three", "four five"}, chunks)
}

func TestSplitter_Overlap(t *testing.T) {
	s := summarizer.NewSplitter(11, 5)
	chunks := s.Split("aaa bbb ccc ddd")
	assert.Equal(t, []string{"aaa bbb ccc", "ccc ddd"}, chunks)
}

func TestSplitter_UnbrokenRuns(t *testing.T) {
	s := summarizer.NewSplitter(4, 0)
	chunks := s.Split("ééééééééé")
	assert.Equal(t, []string{"éééé", "éééé", "é"}, chunks)
}

func TestSplitter_ChunksRespectSize(t *testing.T) {
	text := strings.Repeat("Lorem ipsum dolor sit amet, consectetur adipiscing elit.\n", 40) +
		"\n\n" + strings.Repeat("Sed do eiusmod tempor incididunt ut labore. ", 60)

	s := summarizer.NewSplitter(200, 40)
	chunks := s.Split(text)

	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 200)
		assert.NotEmpty(t, strings.TrimSpace(c))
	}
}

func TestNewSplitter_OverlapNotSmallerThanSizeIsDropped(t *testing.T) {
	s := summarizer.NewSplitter(10, 10)
	assert.Equal(t, 0, s.ChunkOverlap)
}
