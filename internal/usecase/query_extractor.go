package usecase

import (
	"regexp"
	"strings"
)

// Compiled patterns for search phrase extraction
var (
	// "cari" or "carikan" as a whole word, capturing everything after it
	searchTriggerPattern = regexp.MustCompile(`\bcari(?:kan)?\b(.*)`)

	// one filler word directly after the trigger ("carikan dong ...", "cari produk ...")
	leadingFillerPattern = regexp.MustCompile(`^(?:kan|in|dong|ya|untuk|produk)\b`)
)

// searchIntentPhrases mark an utterance as a product search request
var searchIntentPhrases = []string{
	"cari", "carikan", "mencari", "butuh",
	"nyari", "ingin beli", "pengen beli",
	"beli", "harga",
}

// greetingWords mark an utterance as small talk
var greetingWords = []string{"halo", "hai", "selamat"}

// ExtractSearchQuery pulls the search phrase out of a transcribed utterance.
// "tolong carikan kacamata hitam" yields "kacamata hitam". When there is no trigger word, or
// nothing is left after it, the original utterance is returned unchanged.
func ExtractSearchQuery(utterance string) string {
	m := searchTriggerPattern.FindStringSubmatch(strings.ToLower(utterance))
	if m == nil {
		return utterance
	}

	query := strings.TrimSpace(m[1])
	query = strings.TrimSpace(leadingFillerPattern.ReplaceAllString(query, ""))
	if query == "" {
		return utterance
	}
	return query
}

// HasSearchIntent reports whether the utterance asks for a product
func HasSearchIntent(utterance string) bool {
	return containsAny(strings.ToLower(utterance), searchIntentPhrases)
}

// IsGreeting reports whether the utterance is a greeting
func IsGreeting(utterance string) bool {
	return containsAny(strings.ToLower(utterance), greetingWords)
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
