package digitalocean

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrNoJSONFound is returned when a completion carries no decodable JSON value
var ErrNoJSONFound = errors.New("no valid JSON object or array found in completion")

var fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.+?)\\s*```")

// extractJSON pulls the first complete JSON value out of a model answer.
// Models sometimes wrap JSON mode output in markdown fences or add a line of
// prose around it.
func extractJSON(answer string) (string, error) {
	s := strings.TrimSpace(answer)
	if m := fencedBlock.FindStringSubmatch(s); len(m) > 1 {
		s = strings.TrimSpace(m[1])
	}
	if json.Valid([]byte(s)) {
		return s, nil
	}
	if candidate := matchBrackets(s); candidate != "" && json.Valid([]byte(candidate)) {
		return candidate, nil
	}
	return "", ErrNoJSONFound
}

// matchBrackets returns the balanced object or array starting at the first
// '{' or '[' in s, skipping brackets inside strings.
func matchBrackets(s string) string {
	start := strings.IndexAny(s, "{[")
	if start == -1 {
		return ""
	}
	openCh, closeCh := s[start], byte('}')
	if openCh == '[' {
		closeCh = ']'
	}

	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == openCh:
			depth++
		case c == closeCh:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
