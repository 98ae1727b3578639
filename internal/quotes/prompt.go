package quotes

import "fmt"

// BuildPrompt returns the instruction sent to the generation provider.
func BuildPrompt(topic, language, tone string) string {
	return fmt.Sprintf(`Generate a creative, short quote about %q in the %q language.
Tone: %q.
Rules:
1. Quote in Original Script.
2. English Translation below in parentheses.
3. Format: "Quote" - Author`, topic, language, tone)
}
