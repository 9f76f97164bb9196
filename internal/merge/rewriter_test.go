package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyEdits_SingleReplacement(t *testing.T) {
	out, err := applyEdits("hello world", []Edit{{Start: 6, End: 11, Replacement: "there"}})
	require.NoError(t, err)
	assert.Equal(t, "hello there", out)
}

func TestApplyEdits_DriftAcrossEdits(t *testing.T) {
	// First edit grows the document, second shrinks it; both are computed
	// against original offsets.
	doc := "aaa BBB ccc DDD eee"
	edits := []Edit{
		{Start: 4, End: 7, Replacement: "LONGER"},
		{Start: 12, End: 15, Replacement: "x"},
	}
	out, err := applyEdits(doc, edits)
	require.NoError(t, err)
	assert.Equal(t, "aaa LONGER ccc x eee", out)
}

func TestApplyEdits_UnsortedInput(t *testing.T) {
	doc := "one two three"
	edits := []Edit{
		{Start: 8, End: 13, Replacement: "3"},
		{Start: 0, End: 3, Replacement: "1"},
	}
	out, err := applyEdits(doc, edits)
	require.NoError(t, err)
	assert.Equal(t, "1 two 3", out)
}

func TestApplyEdits_PureInsertions(t *testing.T) {
	doc := "ac"
	edits := []Edit{
		{Start: 1, End: 1, Replacement: "b"},
		{Start: 2, End: 2, Replacement: "d"},
	}
	out, err := applyEdits(doc, edits)
	require.NoError(t, err)
	assert.Equal(t, "abcd", out)
}

func TestApplyEdits_AdjacentRangesDoNotOverlap(t *testing.T) {
	doc := "abcdef"
	edits := []Edit{
		{Start: 0, End: 3, Replacement: "X"},
		{Start: 3, End: 6, Replacement: "Y"},
	}
	out, err := applyEdits(doc, edits)
	require.NoError(t, err)
	assert.Equal(t, "XY", out)
}

func TestApplyEdits_BytesOutsideRangesUnchanged(t *testing.T) {
	doc := "keep1 EDIT keep2 EDIT keep3"
	edits := []Edit{
		{Start: 6, End: 10, Replacement: "abcdefgh"},
		{Start: 17, End: 21, Replacement: ""},
	}
	out, err := applyEdits(doc, edits)
	require.NoError(t, err)
	assert.Equal(t, "keep1 abcdefgh keep2  keep3", out)
}

func TestApplyEdits_Errors(t *testing.T) {
	_, err := applyEdits("abc", []Edit{{Start: 1, End: 5, Replacement: "x"}})
	assert.Error(t, err)

	_, err = applyEdits("abc", []Edit{{Start: -1, End: 2, Replacement: "x"}})
	assert.Error(t, err)

	_, err = applyEdits("abcdef", []Edit{
		{Start: 0, End: 4, Replacement: "x"},
		{Start: 2, End: 6, Replacement: "y"},
	})
	assert.Error(t, err)
}

func TestApplyEdits_NoEdits(t *testing.T) {
	out, err := applyEdits("unchanged", nil)
	require.NoError(t, err)
	assert.Equal(t, "unchanged", out)
}
