package reassemble

import "strings"

// closingMarks lose the space before them.
var closingMarks = []string{".", ",", "!", "?", ";", ":", ")", "]", "}"}

// openingMarks lose the space after them.
var openingMarks = []string{"(", "[", "{"}

// NormalizePunctuation tightens spacing around punctuation in three fixed
// passes over the whole string: closing marks, then opening marks, then
// " - " collapses to "-". Each mark is replaced everywhere in one pass, so
// runs like "a  ." only lose one space.
func NormalizePunctuation(text string) string {
	for _, p := range closingMarks {
		text = strings.ReplaceAll(text, " "+p, p)
	}
	for _, p := range openingMarks {
		text = strings.ReplaceAll(text, p+" ", p)
	}
	return strings.ReplaceAll(text, " - ", "-")
}
