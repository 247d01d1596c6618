package ai

import (
	"errors"
	"strings"
	"unicode"

	"github.com/benvon/life-tracker/internal/models"
)

// ErrNoJSONObject is returned when a response contains no balanced JSON object
var ErrNoJSONObject = errors.New("no JSON object in response")

// ExtractJSON returns the first balanced {...} object in a model response.
// Markdown code fences are removed first; braces inside JSON strings are ignored.
func ExtractJSON(response string) (string, error) {
	s := stripFences(response)

	start := strings.IndexByte(s, '{')
	for start != -1 {
		if end := matchObject(s[start:]); end != -1 {
			return s[start : start+end+1], nil
		}
		next := strings.IndexByte(s[start+1:], '{')
		if next == -1 {
			break
		}
		start += next + 1
	}
	return "", ErrNoJSONObject
}

// matchObject returns the index of the brace closing s[0], or -1 when unbalanced
func matchObject(s string) int {
	depth := 0
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "```") {
		return s
	}
	var b strings.Builder
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return strings.TrimSpace(b.String())
}

// NormalizeCategory reduces a classification response to a lowercase category word.
// Fences, punctuation and a leading "Category:" are dropped, and what remains must be
// exactly one known category, so "Category: food." yields food but "not sleep, food" is
// rejected. A rejected response is returned cleaned with ok false.
func NormalizeCategory(response string) (category models.Category, ok bool) {
	words := strings.FieldsFunc(strings.ToLower(stripFences(response)), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if len(words) > 1 && words[0] == "category" {
		words = words[1:]
	}
	if len(words) == 1 {
		if c := models.Category(words[0]); c.Valid() {
			return c, true
		}
	}
	return models.Category(strings.Join(words, " ")), false
}
