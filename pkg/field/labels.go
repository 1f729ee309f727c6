package field

import (
	"regexp"
	"strings"
	"unicode"
)

var splitWordsPattern = regexp.MustCompile(`[_\-\s]+`)

// Humanize converts a field key into a sentence-case label. It splits on
// underscores, dashes, spaces, camelCase and letter/digit boundaries:
// "first_name" and "firstName" both become "First name".
func Humanize(key string) string {
	if key == "" {
		return ""
	}

	var words []string
	for _, chunk := range splitWordsPattern.Split(key, -1) {
		if chunk == "" {
			continue
		}
		words = append(words, strings.Fields(splitCamel(chunk))...)
	}
	if len(words) == 0 {
		return ""
	}

	label := []rune(strings.ToLower(strings.Join(words, " ")))
	label[0] = unicode.ToUpper(label[0])
	return string(label)
}

func splitCamel(input string) string {
	var out strings.Builder
	for i, r := range input {
		if i > 0 && isBoundary(input, i, r) {
			out.WriteRune(' ')
		}
		out.WriteRune(r)
	}
	return out.String()
}

func isBoundary(input string, index int, r rune) bool {
	prev := rune(input[index-1])
	if isLower(prev) && isUpper(r) {
		return true
	}
	// "HTMLParser" splits before the final capital of an acronym.
	if isUpper(prev) && isUpper(r) && index+1 < len(input) && isLower(rune(input[index+1])) {
		return true
	}
	return (isLetter(prev) && isDigit(r)) || (isDigit(prev) && isLetter(r))
}

func isUpper(r rune) bool  { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool  { return r >= 'a' && r <= 'z' }
func isDigit(r rune) bool  { return r >= '0' && r <= '9' }
func isLetter(r rune) bool { return isUpper(r) || isLower(r) }
