package morse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscriptKeepsSuffixWithinBound(t *testing.T) {
	tr := NewTranscript(5)

	seq := []Signal{Dot, Dash, Dot, Space, Dash, Dot, Dot}
	var logical strings.Builder
	for _, s := range seq {
		tr.Append(s)
		logical.WriteString(string(s))
	}

	require.LessOrEqual(t, tr.Len(), 5)
	full := []rune(logical.String())
	assert.Equal(t, string(full[len(full)-5:]), tr.String())
}

func TestTranscriptOrderIsChronological(t *testing.T) {
	tr := NewTranscript(10)
	tr.Append(Dot)
	tr.Append(Dash)
	tr.Append(Dot)
	assert.Equal(t, "•-•", tr.String())
}

func TestTranscriptDefaultLimit(t *testing.T) {
	tr := NewTranscript(0)
	for i := 0; i < 200; i++ {
		tr.Append(Dot)
	}
	assert.Equal(t, DefaultDisplayLimit, tr.Len())
}

func TestTranscriptRenderPadsAndMasksSpaces(t *testing.T) {
	tr := NewTranscript(10)
	tr.Append(Dot)
	tr.Append(Space)
	tr.Append(Dash)

	assert.Equal(t, "_____•_-", tr.Render(8))
}

func TestTranscriptClear(t *testing.T) {
	tr := NewTranscript(10)
	tr.Append(Dash)
	tr.Clear()
	assert.Zero(t, tr.Len())
	assert.Equal(t, "____", tr.Render(4))
}
