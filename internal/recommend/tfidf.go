// StreamPick - Streaming Content Discovery and Recommendation
// Copyright 2026 StreamPick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streampick/streampick

package recommend

import (
	"math"
	"strings"
	"unicode"

	"github.com/streampick/streampick/internal/models"
)

// englishStopwords are filtered out of content text before weighting.
var englishStopwords = map[string]struct{}{
	"a": {}, "about": {}, "after": {}, "all": {}, "also": {}, "an": {},
	"and": {}, "any": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"because": {}, "been": {}, "before": {}, "being": {}, "between": {},
	"both": {}, "but": {}, "by": {}, "can": {}, "could": {}, "did": {},
	"do": {}, "does": {}, "down": {}, "during": {}, "each": {}, "few": {},
	"for": {}, "from": {}, "further": {}, "had": {}, "has": {}, "have": {},
	"he": {}, "her": {}, "here": {}, "hers": {}, "him": {}, "his": {},
	"how": {}, "i": {}, "if": {}, "in": {}, "into": {}, "is": {}, "it": {},
	"its": {}, "just": {}, "me": {}, "more": {}, "most": {}, "my": {},
	"no": {}, "nor": {}, "not": {}, "now": {}, "of": {}, "off": {},
	"on": {}, "once": {}, "only": {}, "or": {}, "other": {}, "our": {},
	"out": {}, "over": {}, "own": {}, "same": {}, "she": {}, "should": {},
	"so": {}, "some": {}, "such": {}, "than": {}, "that": {}, "the": {},
	"their": {}, "them": {}, "then": {}, "there": {}, "these": {},
	"they": {}, "this": {}, "those": {}, "through": {}, "to": {}, "too": {},
	"under": {}, "until": {}, "up": {}, "very": {}, "was": {}, "we": {},
	"were": {}, "what": {}, "when": {}, "where": {}, "which": {},
	"while": {}, "who": {}, "whom": {}, "why": {}, "will": {}, "with": {},
	"would": {}, "you": {}, "your": {}, "yours": {},
}

// contentText flattens an item's metadata into the weighted text the
// vectorizer consumes. The title is repeated to weight it above the
// overview and credits.
func contentText(item models.ContentItem) string {
	parts := []string{
		item.Title, item.Title, item.Title,
		item.PlotOverview,
		strings.Join(item.GenreNames, " "),
		strings.Join(item.Directors, " "),
		strings.Join(item.Cast, " "),
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// tokenize splits text into lowercase alphanumeric terms, dropping
// stopwords and single characters.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ToLower(f)
		if len(f) < 2 {
			continue
		}
		if _, stop := englishStopwords[f]; stop {
			continue
		}
		terms = append(terms, f)
	}
	return terms
}

// sparseVector is a term-index to weight map, L2-normalized after
// construction so cosine similarity reduces to a dot product.
type sparseVector map[int]float64

// buildTFIDF vectorizes one document per item. Terms appearing in a
// single document get the highest IDF; terms in every document approach
// zero weight.
func buildTFIDF(texts []string) []sparseVector {
	vocab := make(map[string]int)
	docFreq := make(map[int]int)
	termCounts := make([]map[int]int, len(texts))

	for i, text := range texts {
		counts := make(map[int]int)
		for _, term := range tokenize(text) {
			idx, ok := vocab[term]
			if !ok {
				idx = len(vocab)
				vocab[term] = idx
			}
			counts[idx]++
		}
		termCounts[i] = counts
		for idx := range counts {
			docFreq[idx]++
		}
	}

	n := float64(len(texts))
	vectors := make([]sparseVector, len(texts))
	for i, counts := range termCounts {
		vec := make(sparseVector, len(counts))
		var norm float64
		for idx, count := range counts {
			// smoothed IDF, as in standard TF-IDF formulations
			idf := math.Log((1+n)/(1+float64(docFreq[idx]))) + 1
			w := float64(count) * idf
			vec[idx] = w
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for idx := range vec {
				vec[idx] /= norm
			}
		}
		vectors[i] = vec
	}
	return vectors
}

// dotSparse computes the dot product of two normalized sparse vectors,
// which equals their cosine similarity. Iterates the smaller vector.
func dotSparse(a, b sparseVector) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for idx, w := range a {
		if bw, ok := b[idx]; ok {
			sum += w * bw
		}
	}
	return sum
}

// cosine computes cosine similarity between two rating vectors held as
// content-ID to score maps.
func cosine(a, b map[string]float64) float64 {
	var dot float64
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	for idx, av := range small {
		if bv, ok := large[idx]; ok {
			dot += av * bv
		}
	}
	if dot == 0 {
		return 0
	}

	var normA, normB float64
	for _, v := range a {
		normA += v * v
	}
	for _, v := range b {
		normB += v * v
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
