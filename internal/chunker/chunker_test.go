package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_EmptyText(t *testing.T) {
	c := New()
	assert.Empty(t, c.Split(""))
	assert.Empty(t, c.Split("   \n\t  "))
}

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	c := New(WithMaxSize(50), WithOverlap(10))

	chunks := c.Split("hello world")

	require.Len(t, chunks, 1)
	assert.Equal(t, "hello world", chunks[0])
}

func TestSplit_TrimsWholeTextFirst(t *testing.T) {
	c := New(WithMaxSize(50), WithOverlap(10))

	chunks := c.Split("  hello world \n")

	require.Len(t, chunks, 1)
	assert.Equal(t, "hello world", chunks[0])
}

func TestSplit_LongTextOverlappingWindows(t *testing.T) {
	c := New(WithMaxSize(80), WithOverlap(10))
	text := strings.Repeat("a", 200)

	chunks := c.Split(text)

	require.GreaterOrEqual(t, len(chunks), 3)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 80)
	}

	// Walking the window positions must cover the entire input.
	covered := 0
	for i, chunk := range chunks {
		if i == 0 {
			covered = len(chunk)
			continue
		}
		covered += len(chunk) - 10
	}
	assert.GreaterOrEqual(t, covered, len(text))
}

func TestSplit_ExactWindowBoundaries(t *testing.T) {
	c := New(WithMaxSize(10), WithOverlap(3))
	text := "0123456789abcdefghij"

	chunks := c.Split(text)

	require.Equal(t, []string{"0123456789", "789abcdefg", "defghij"}, chunks)
}

func TestSplit_FinalChunkEndsIteration(t *testing.T) {
	// Window reaching the end must be the last chunk even when a shorter
	// tail would start before the text ends.
	c := New(WithMaxSize(10), WithOverlap(5))
	text := "012345678901234"

	chunks := c.Split(text)

	require.Equal(t, []string{"0123456789", "5678901234"}, chunks)
}

func TestSplit_Deterministic(t *testing.T) {
	c := New(WithMaxSize(80), WithOverlap(10))
	text := strings.Repeat("evidence ", 40)

	first := c.Split(text)
	second := c.Split(text)

	assert.Equal(t, first, second)
}

func TestNew_OverlapClampedBelowMaxSize(t *testing.T) {
	c := New(WithMaxSize(40), WithOverlap(40))

	// Must still terminate and make forward progress.
	chunks := c.Split(strings.Repeat("x", 400))
	assert.NotEmpty(t, chunks)
	assert.Equal(t, 10, c.overlap)
}
