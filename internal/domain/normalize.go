package domain

import "strings"

var answerReplacer = strings.NewReplacer(
	".", "",
	",", "",
	"!", "",
	"?", "",
	"-", " ",
	"_", " ",
)

// NormalizeAnswer canonicalizes free text for open-ended comparison: trim, lowercase,
// drop . , ! ? and turn - and _ into spaces. Internal whitespace is not collapsed.
func NormalizeAnswer(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}
	return answerReplacer.Replace(strings.ToLower(trimmed))
}

// ValidOpenEndedAnswer reports whether an answer is one to four words long.
func ValidOpenEndedAnswer(answer string) bool {
	n := len(strings.Fields(answer))
	return n >= 1 && n <= 4
}
