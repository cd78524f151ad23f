package summarizer

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// FrequencySummarizer picks the most representative sentences of a text by
// word-frequency scoring. Used for ingestion reports, not retrieval.
type FrequencySummarizer struct {
	wordRe     *regexp.Regexp
	sentenceRe *regexp.Regexp
	stopwords  map[string]struct{}
}

func NewFrequencySummarizer() *FrequencySummarizer {
	return &FrequencySummarizer{
		wordRe:     regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		sentenceRe: regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`),
		stopwords:  stopwords(),
	}
}

// Summarize returns up to maxSentences of the input, highest scoring first by
// normalized word frequency, kept in their original order.
func (s *FrequencySummarizer) Summarize(text string, maxSentences int) (string, error) {
	if maxSentences <= 0 {
		maxSentences = 5
	}
	sentences := s.sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		return strings.TrimSpace(text), nil
	}

	freq := map[string]float64{}
	maxFreq := 0.0
	for _, sentence := range sentences {
		for _, word := range s.words(sentence) {
			if _, stop := s.stopwords[word]; stop {
				continue
			}
			freq[word]++
			if freq[word] > maxFreq {
				maxFreq = freq[word]
			}
		}
	}
	if maxFreq > 0 {
		for word := range freq {
			freq[word] /= maxFreq
		}
	}

	type scored struct {
		idx   int
		score float64
	}
	ranking := make([]scored, len(sentences))
	for i, sentence := range sentences {
		words := s.words(sentence)
		total := 0.0
		for _, word := range words {
			total += freq[word]
		}
		if n := float64(len(words)); n > 0 {
			total /= math.Sqrt(n)
		}
		ranking[i] = scored{i, total}
	}
	sort.Slice(ranking, func(i, j int) bool { return ranking[i].score > ranking[j].score })

	if maxSentences > len(ranking) {
		maxSentences = len(ranking)
	}
	picked := make([]int, maxSentences)
	for i := range picked {
		picked[i] = ranking[i].idx
	}
	sort.Ints(picked)

	parts := make([]string, 0, len(picked))
	for _, idx := range picked {
		parts = append(parts, strings.TrimSpace(sentences[idx]))
	}
	return strings.Join(parts, " "), nil
}

func (s *FrequencySummarizer) words(text string) []string {
	return s.wordRe.FindAllString(strings.ToLower(text), -1)
}

func stopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to",
		"of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were",
		"be", "been", "being", "it", "this", "that", "these", "those", "from",
		"up", "down", "over", "under", "than", "so", "such", "into", "about",
		"between", "through", "during", "before", "after", "out", "off", "own",
		"same", "too", "very", "can", "will", "just", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
