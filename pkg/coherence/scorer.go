// Package coherence scores free text on basic lexical statistics. The
// allocation engine consumes only the resulting number; anything producing a
// score in [0,100] can stand in for this package.
package coherence

import (
	"strings"
	"unicode"
)

// Scorer maps a piece of text to a quality score in [0,100].
type Scorer interface {
	Score(text string) float64
}

// lexicalScorer combines three signals with fixed weights:
//   - type-token ratio (vocabulary diversity), up to 40 points
//   - sentence length (8-24 words per sentence reads best), up to 30 points
//   - overall length, saturating at 120 words, up to 30 points
//
// Empty or whitespace-only text scores 0.
type lexicalScorer struct {
	diversityWeight float64
	sentenceWeight  float64
	lengthWeight    float64
}

func NewLexicalScorer() Scorer {
	return &lexicalScorer{
		diversityWeight: 40,
		sentenceWeight:  30,
		lengthWeight:    30,
	}
}

func (s *lexicalScorer) Score(text string) float64 {
	words := splitWords(text)
	if len(words) == 0 {
		return 0
	}

	unique := map[string]struct{}{}
	for _, w := range words {
		unique[strings.ToLower(w)] = struct{}{}
	}
	typeTokenRatio := float64(len(unique)) / float64(len(words))

	sentences := countSentences(text)
	if sentences == 0 {
		sentences = 1
	}
	wordsPerSentence := float64(len(words)) / float64(sentences)

	score := typeTokenRatio*s.diversityWeight +
		sentenceShapeFactor(wordsPerSentence)*s.sentenceWeight +
		lengthFactor(len(words))*s.lengthWeight

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// sentenceShapeFactor peaks at 1.0 inside the 8-24 words/sentence band and
// falls off linearly outside it.
func sentenceShapeFactor(wordsPerSentence float64) float64 {
	switch {
	case wordsPerSentence >= 8 && wordsPerSentence <= 24:
		return 1.0
	case wordsPerSentence < 8:
		return wordsPerSentence / 8
	default:
		f := 1 - (wordsPerSentence-24)/24
		if f < 0 {
			return 0
		}
		return f
	}
}

func lengthFactor(wordCount int) float64 {
	f := float64(wordCount) / 120
	if f > 1 {
		return 1
	}
	return f
}

func splitWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
	})
}

func countSentences(text string) int {
	count := 0
	for _, r := range text {
		if r == '.' || r == '!' || r == '?' {
			count++
		}
	}
	return count
}
