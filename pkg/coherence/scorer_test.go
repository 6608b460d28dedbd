package coherence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLexicalScorer(t *testing.T) {
	scorer := NewLexicalScorer()

	t.Run("EmptyTextScoresZero", func(t *testing.T) {
		assert.Equal(t, 0.0, scorer.Score(""))
		assert.Equal(t, 0.0, scorer.Score("   \n\t  "))
	})

	t.Run("ScoreStaysInRange", func(t *testing.T) {
		texts := []string{
			"one",
			"Short note.",
			"A reasonably varied sentence with a healthy number of distinct words in it.",
			"word word word word word word word word word word word word word word word",
		}
		for _, text := range texts {
			score := scorer.Score(text)
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 100.0)
		}
	})

	t.Run("VariedTextBeatsRepetition", func(t *testing.T) {
		varied := "The nightly batch finished cleanly across every region. Two shards needed a retry before settling. Throughput held steady and the error budget remains untouched for this quarter."
		repetitive := "ok ok ok ok ok ok ok ok ok ok ok ok ok ok ok ok ok ok ok ok ok ok ok ok ok ok ok ok ok ok"

		assert.Greater(t, scorer.Score(varied), scorer.Score(repetitive))
	})

	t.Run("Deterministic", func(t *testing.T) {
		text := "Review completed without findings. All checks passed on the first run."
		assert.Equal(t, scorer.Score(text), scorer.Score(text))
	})
}
