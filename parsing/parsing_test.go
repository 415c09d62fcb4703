package parsing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitReasoningAnswerMarker(t *testing.T) {
	reasoning, answer := SplitReasoningAnswer("Some thinking here.\nFinal Answer: 42")
	require.Equal(t, "Some thinking here.", reasoning)
	require.Equal(t, "42", answer)
}

func TestSplitReasoningAnswerLastPeriod(t *testing.T) {
	reasoning, answer := SplitReasoningAnswer("First sentence. Second sentence")
	require.Equal(t, "First sentence.", reasoning)
	require.Equal(t, "Second sentence", answer)
}

func TestSplitReasoningAnswerFallback(t *testing.T) {
	reasoning, answer := SplitReasoningAnswer("just a bare response")
	require.Empty(t, reasoning)
	require.Equal(t, "just a bare response", answer)
}

func TestExtractSectionRoundTrip(t *testing.T) {
	thinking, fallback1 := ExtractSection("<thinking>A</thinking><output>B</output>", "thinking")
	output, fallback2 := ExtractSection("<thinking>A</thinking><output>B</output>", "output")
	require.Equal(t, "A", thinking)
	require.Equal(t, "B", output)
	require.False(t, fallback1)
	require.False(t, fallback2)
}

func TestExtractSectionMissingClose(t *testing.T) {
	content, fallback := ExtractSection("<thinking>unterminated", "thinking")
	require.Equal(t, "unterminated", content)
	require.True(t, fallback)
}

func TestExtractScoreClamps(t *testing.T) {
	require.Equal(t, 10.0, ExtractScore("score: 99", 0, 10))
	require.Equal(t, 0.0, ExtractScore("score: -5", 0, 10))
	require.Equal(t, 7.5, ExtractScore("Score: 7.5/10", 0, 10))
	require.Equal(t, 0.0, ExtractScore("no numbers at all", 0, 10))
}

func TestExtractScoreNoPanicOnGarbage(t *testing.T) {
	require.NotPanics(t, func() {
		ExtractScore("NaN", 0, 1)
		ExtractScore("-Infinity", 0, 1)
	})
}

func TestExtractCodeRoundTrip(t *testing.T) {
	code := "fn main() {}"
	require.Equal(t, code, ExtractCode(WrapInFence(code)))
}

func TestExtractCodeNoFence(t *testing.T) {
	require.Equal(t, "plain text", ExtractCode("plain text"))
}

func TestExtractAnswerStrategies(t *testing.T) {
	text := "Reasoning here.\nFinal Answer: 42"
	require.Equal(t, "Final Answer: 42", ExtractAnswer(text, LastLine))
	require.Equal(t, "42", ExtractAnswer(text, AfterMarker))
	require.Equal(t, text, ExtractAnswer(text, FullResponse))
}

func TestExtractAnswerInQuotes(t *testing.T) {
	require.Equal(t, "42", ExtractAnswer(`the answer is "42"`, InQuotes))
}
