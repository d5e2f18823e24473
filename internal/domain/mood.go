package domain

import "strings"

// MoodKind is the category a free-text mood reply falls into.
type MoodKind int

const (
	MoodEnergetic MoodKind = iota
	MoodNegative
	MoodNeutral
)

// FallbackMood is used when the user does not answer in time.
const FallbackMood = "determined"

var (
	negativeKeywords = []string{"bad", "tired", "sleepy", "don't want", "dont want"}
	neutralKeywords  = []string{"okay", "normal", "average", "so-so"}

	// mobile keyboards type typographic apostrophes
	apostrophes = strings.NewReplacer("\u2019", "'", "\u2018", "'", "\u02bc", "'")
)

// ClassifyMood matches text case-insensitively against the keyword sets,
// negative first, then neutral. Anything else is energetic.
func ClassifyMood(text string) MoodKind {
	t := apostrophes.Replace(strings.ToLower(text))
	switch {
	case containsAny(t, negativeKeywords):
		return MoodNegative
	case containsAny(t, neutralKeywords):
		return MoodNeutral
	default:
		return MoodEnergetic
	}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
