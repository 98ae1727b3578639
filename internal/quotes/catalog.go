package quotes

import (
	"math/rand/v2"
	"strings"

	"golang.org/x/text/cases"
)

// Languages offered by the language autocomplete.
var Languages = []string{
	"Bengali", "Hindi", "Tamil", "Telugu", "Marathi", "Gujarati",
	"Urdu", "Kannada", "Odia", "Malayalam", "Punjabi", "Assamese",
	"Maithili", "Santali", "Nepali", "Sinhala", "English",
}

// Tone is a preset writing style.
type Tone struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Tones lists the tone presets in display order.
var Tones = []Tone{
	{"inspirational", "Inspirational"},
	{"poetic", "Poetic"},
	{"funny", "Funny"},
	{"philosophical", "Philosophical"},
	{"romantic", "Romantic"},
	{"melancholic", "Melancholic"},
	{"nostalgic", "Nostalgic"},
	{"optimistic", "Optimistic"},
	{"heartbroken", "Heartbroken"},
	{"sarcastic", "Sarcastic"},
	{"witty", "Witty"},
	{"dark_humor", "Dark Humor"},
	{"dad_joke", "Dad Joke Style"},
	{"satirical", "Satirical"},
	{"motivational", "Motivational"},
	{"business", "Business & Success"},
	{"mindfulness", "Mindfulness & Zen"},
	{"stoic", "Stoic"},
	{"fitness", "Fitness & Health"},
	{"futuristic", "Cyberpunk / Futuristic"},
	{"shakespearean", "Shakespearean"},
	{"minimalist", "Minimalist (Short)"},
	{"mysterious", "Mysterious"},
	{"dramatic", "Dramatic"},
}

// Topics feeds the surprise button.
var Topics = []string{
	// Emotions and life
	"Love", "Success", "Happiness", "Heartbreak", "Hope", "Failure",
	"Peace", "Anger", "Courage", "Fear", "Trust", "Betrayal", "Destiny",
	"Freedom", "Wisdom", "Loneliness", "Nostalgia", "Regret", "Gratitude",

	// Relationships
	"Mother", "Father", "Friendship", "Sister", "Brother", "Teacher",
	"Family", "Enemy", "Soulmate",

	// Nature
	"Rain", "Space", "Moon", "Sun", "Stars", "Ocean", "Mountains",
	"Flowers", "Winter", "Summer", "River", "Night", "Sunrise", "Sunset",

	// Everyday
	"Coffee", "Chai", "Books", "Music", "Money", "Time", "Travel",
	"Work", "School", "Home", "Mirror", "Sleep", "Food",

	// Abstract
	"Dreams", "Magic", "Silence", "Chaos", "Adventure", "Memories",
	"Cricket", "Cinema", "Politics", "Technology", "Future", "Childhood",
}

const (
	DefaultLanguage = "Bengali"
	DefaultTone     = "inspirational"
)

var toneIndex = func() map[string]Tone {
	m := make(map[string]Tone, len(Tones))
	for _, t := range Tones {
		m[t.Value] = t
	}
	return m
}()

// LookupTone returns the preset for value.
func LookupTone(value string) (Tone, bool) {
	t, ok := toneIndex[value]
	return t, ok
}

func fold(s string) string {
	// cases.Caser is stateful, so each call gets its own.
	return cases.Fold().String(s)
}

// SuggestLanguages returns the catalog languages containing input,
// ignoring case. Empty input suggests nothing.
func SuggestLanguages(input string) []string {
	input = strings.TrimSpace(input)
	if input == "" {
		return []string{}
	}
	needle := fold(input)
	out := []string{}
	for _, l := range Languages {
		if strings.Contains(fold(l), needle) {
			out = append(out, l)
		}
	}
	return out
}

// CanonicalLanguage returns the catalog spelling of input when it names a
// catalog language in any case, otherwise the trimmed input. Free-form
// languages outside the catalog are allowed. Empty input gives
// DefaultLanguage.
func CanonicalLanguage(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return DefaultLanguage
	}
	needle := fold(input)
	for _, l := range Languages {
		if fold(l) == needle {
			return l
		}
	}
	return input
}

// Suggestion is a random topic and language pair.
type Suggestion struct {
	Topic    string `json:"topic"`
	Language string `json:"language"`
}

// Surprise picks a random topic and language. A nil rng uses the global
// source.
func Surprise(rng *rand.Rand) Suggestion {
	pick := rand.IntN
	if rng != nil {
		pick = rng.IntN
	}
	return Suggestion{
		Topic:    Topics[pick(len(Topics))],
		Language: Languages[pick(len(Languages))],
	}
}
