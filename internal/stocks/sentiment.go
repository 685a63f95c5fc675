package stocks

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Label summarizes a sentiment score.
type Label string

// Sentiment labels.
const (
	Bullish Label = "Bullish"
	Neutral Label = "Neutral"
	Bearish Label = "Bearish"
)

// labelBand is the score magnitude needed to leave Neutral.
const labelBand = 0.15

// Sentiment is the aggregate headline score for a symbol, in [-1, 1].
type Sentiment struct {
	Symbol    string     `json:"symbol"`
	Label     Label      `json:"label"`
	Headlines []Headline `json:"headlines"`
	Score     float64    `json:"score"`
	Positive  int        `json:"positive"`
	Negative  int        `json:"negative"`
}

var positiveWords = wordSet(
	"beat", "beats", "bullish", "buy", "climb", "climbs", "gain", "gains", "growth", "high",
	"jump", "jumps", "outperform", "profit", "rally", "rallies", "record", "rise", "rises",
	"soar", "soars", "strong", "surge", "surges", "upgrade", "upgraded", "win",
)

var negativeWords = wordSet(
	"bearish", "cut", "cuts", "decline", "declines", "downgrade", "downgraded", "drop", "drops",
	"fall", "falls", "fraud", "lawsuit", "loss", "losses", "miss", "misses", "plunge", "plunges",
	"recall", "sell", "selloff", "slump", "tumble", "tumbles", "weak", "warning",
)

func wordSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// Score rates each headline by its lexicon hits and averages the results.
// Headlines without any hit count as neutral (0).
func Score(symbol string, headlines []Headline) *Sentiment {
	s := &Sentiment{Symbol: symbol, Label: Neutral, Headlines: make([]Headline, len(headlines))}
	if len(headlines) == 0 {
		return s
	}

	var total float64
	for i, h := range headlines {
		h.Score = scoreText(h.Title)
		switch {
		case h.Score > 0:
			s.Positive++
		case h.Score < 0:
			s.Negative++
		}
		total += h.Score
		s.Headlines[i] = h
	}

	s.Score = round2(total / float64(len(headlines)))
	switch {
	case s.Score >= labelBand:
		s.Label = Bullish
	case s.Score <= -labelBand:
		s.Label = Bearish
	}
	return s
}

func scoreText(text string) float64 {
	var pos, neg int
	for _, word := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	}) {
		if _, ok := positiveWords[word]; ok {
			pos++
		}
		if _, ok := negativeWords[word]; ok {
			neg++
		}
	}
	if pos+neg == 0 {
		return 0
	}
	return round2(float64(pos-neg) / float64(pos+neg))
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
