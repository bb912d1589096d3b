package core

import (
	"regexp"
	"strings"
	"unicode"
)

// SimilarityThreshold is the default Jaccard similarity at or above which a
// later sentence is considered a restatement of an earlier one and dropped.
// It is a heuristic, tunable through enhancer.similarity_threshold.
const SimilarityThreshold = 0.70

var (
	bulletPrefix = regexp.MustCompile(`^[-*]\s+`)

	// introPatterns are boilerplate lead-ins models put before the answer.
	introPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^here\s+(?:is|are|was|were)\s+(?:an?|the)?\s*(?:rewritten|revised|updated)?\s*(?:version\s+of\s+)?(?:the\s+)?(?:task|accomplishment|sentence)s?\s*:?\s*`),
		regexp.MustCompile(`(?i)^(?:rewritten|revised)\s+(?:task|version)\s*:?\s*`),
		regexp.MustCompile(`(?i)^(?:professional\s+accomplishment|accomplishment)\s*:?\s*`),
		regexp.MustCompile(`(?i)^the\s+following\s+is\s*:?\s*`),
	}

	leadingPronoun    = regexp.MustCompile(`(?i)^(?:I|We|My|Our)\s+`)
	standalonePronoun = regexp.MustCompile(`(?i)\b(?:I|We|My|Our)\b\s*`)

	alternativeLeadIn = regexp.MustCompile(`(?i)^(?:or,?\s*alternatively|alternatively|or)\b\s*[:,]?\s*`)
	wordToken         = regexp.MustCompile(`[\p{L}\p{N}_]+`)
	multiSpace        = regexp.MustCompile(`\s{2,}`)
)

// Sanitizer cleans raw model output into a single accomplishment statement.
type Sanitizer struct {
	// SimilarityThreshold is the Jaccard score at or above which a sentence
	// is treated as a duplicate. Zero selects the package default.
	SimilarityThreshold float64
}

// Sanitize cleans text with the default similarity threshold.
func Sanitize(text string) string {
	return Sanitizer{}.Sanitize(text)
}

// Sanitize strips wrapping quotes, bullets, boilerplate lead-ins and
// first-person pronouns from model output, then drops sentences that merely
// restate an earlier one. It performs no I/O.
func (s Sanitizer) Sanitize(text string) string {
	if text == "" {
		return text
	}

	cleaned := strings.Trim(strings.TrimSpace(text), "`\"")
	cleaned = bulletPrefix.ReplaceAllString(cleaned, "")
	for _, p := range introPatterns {
		if loc := p.FindStringIndex(cleaned); loc != nil {
			cleaned = cleaned[loc[1]:]
			break
		}
	}
	cleaned = RemoveFirstPersonPronouns(cleaned)
	cleaned = s.removeRedundantSentences(cleaned)
	cleaned = multiSpace.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

// RemoveFirstPersonPronouns deletes "I", "we", "my" and "our" as whole
// words, case-insensitively.
func RemoveFirstPersonPronouns(text string) string {
	if text == "" {
		return text
	}
	text = leadingPronoun.ReplaceAllString(text, "")
	text = standalonePronoun.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

func (s Sanitizer) threshold() float64 {
	if s.SimilarityThreshold <= 0 {
		return SimilarityThreshold
	}
	return s.SimilarityThreshold
}

// removeRedundantSentences keeps the first sentence and any later sentence
// that is neither flagged as an alternative ("Or, ...", "Alternatively, ...")
// nor too similar to a sentence already kept.
func (s Sanitizer) removeRedundantSentences(text string) string {
	sentences := splitSentences(strings.TrimSpace(text))
	if len(sentences) <= 1 {
		return strings.TrimSpace(text)
	}

	var kept []string
	var keptWords []map[string]struct{}
	for _, sentence := range sentences {
		if len(kept) > 0 && alternativeLeadIn.MatchString(sentence) {
			continue
		}
		words := sentenceWords(sentence)
		if len(words) == 0 {
			continue
		}
		redundant := false
		for _, existing := range keptWords {
			if jaccard(words, existing) >= s.threshold() {
				redundant = true
				break
			}
		}
		if !redundant {
			kept = append(kept, strings.TrimRight(sentence, " \t"))
			keptWords = append(keptWords, words)
		}
	}
	return strings.TrimSpace(strings.Join(kept, " "))
}

// splitSentences splits after '.', '!' or '?' when followed by whitespace.
func splitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes); i++ {
		if !isTerminal(runes[i]) || i+1 >= len(runes) || !unicode.IsSpace(runes[i+1]) {
			continue
		}
		sentences = append(sentences, string(runes[start:i+1]))
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		start = j
		i = j - 1
	}
	if start < len(runes) {
		sentences = append(sentences, string(runes[start:]))
	}
	return sentences
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// sentenceWords returns the lower-cased word set of a sentence with any
// "or"/"alternatively" lead-in removed.
func sentenceWords(sentence string) map[string]struct{} {
	sentence = alternativeLeadIn.ReplaceAllString(strings.TrimSpace(sentence), "")
	words := make(map[string]struct{})
	for _, w := range wordToken.FindAllString(strings.ToLower(sentence), -1) {
		words[w] = struct{}{}
	}
	return words
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	overlap := 0
	for w := range a {
		if _, ok := b[w]; ok {
			overlap++
		}
	}
	union := len(a) + len(b) - overlap
	return float64(overlap) / float64(union)
}
