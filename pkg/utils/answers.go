package utils

import (
	"encoding/base64"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// AnswerType is the shape a quiz instruction asks the answer to take.
type AnswerType int

const (
	AnswerText AnswerType = iota
	AnswerBoolean
	AnswerNumber
	AnswerStructured
	AnswerBinary
)

func (t AnswerType) String() string {
	switch t {
	case AnswerBoolean:
		return "boolean"
	case AnswerNumber:
		return "number"
	case AnswerStructured:
		return "structured"
	case AnswerBinary:
		return "binary"
	default:
		return "text"
	}
}

var (
	booleanKeywords = []string{"true or false", "true/false", "yes or no", "yes/no", "true", "false", "yes", "no"}
	numberKeywords  = []string{"how many", "sum", "total", "count", "number", "calculate", "average", "value"}
	structKeywords  = []string{"key-value", "json", "object", "dictionary"}
	binaryKeywords  = []string{"data uri", "data-uri", "base64", "file contents", "attachment"}
)

var wordPattern = regexp.MustCompile(`[a-z0-9]+`)

// DetectAnswerType scans the instruction for type hints. First category
// hit wins: boolean, number, structured, binary, then plain text.
func DetectAnswerType(instruction string) AnswerType {
	lower := strings.ToLower(instruction)
	words := make(map[string]bool)
	for _, w := range wordPattern.FindAllString(lower, -1) {
		words[w] = true
	}

	hit := func(keywords []string) bool {
		for _, kw := range keywords {
			if strings.ContainsAny(kw, " /-") {
				if strings.Contains(lower, kw) {
					return true
				}
			} else if words[kw] {
				return true
			}
		}
		return false
	}

	switch {
	case hit(booleanKeywords):
		return AnswerBoolean
	case hit(numberKeywords):
		return AnswerNumber
	case hit(structKeywords):
		return AnswerStructured
	case hit(binaryKeywords):
		return AnswerBinary
	default:
		return AnswerText
	}
}

var numberPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// CoerceAnswer converts raw model output into the hinted type. It never
// fails: when the hinted parse misses, the reply's own shape decides next
// (a whole-string JSON document, a data URI), and trimmed text is the
// last resort; the second return reports whether the hint was abandoned.
func CoerceAnswer(raw string, t AnswerType) (interface{}, bool) {
	switch t {
	case AnswerBoolean:
		if v, ok := parseBoolean(raw); ok {
			return v, false
		}
	case AnswerNumber:
		if v, ok := parseNumber(raw); ok {
			return v, false
		}
	case AnswerStructured:
		if v, ok := parseStructured(raw); ok {
			return v, false
		}
	case AnswerBinary:
		return coerceBinary(raw), false
	case AnswerText:
		if v, ok := sniffAnswer(raw); ok {
			return v, false
		}
		return coerceText(raw), false
	}
	if v, ok := sniffAnswer(raw); ok {
		return v, true
	}
	return coerceText(raw), true
}

// sniffAnswer goes by the reply's own shape when no hinted parse applies.
// A reply that is itself one JSON document keeps its structure instead of
// degrading to a string; a data URI passes through untouched.
func sniffAnswer(raw string) (interface{}, bool) {
	trimmed := strings.TrimSpace(raw)
	if strings.Contains(trimmed, "{") && strings.Contains(trimmed, "}") {
		var v interface{}
		if err := json.Unmarshal([]byte(trimmed), &v); err == nil {
			return v, true
		}
	}
	if strings.HasPrefix(trimmed, "data:") && strings.Contains(trimmed, ";") {
		return trimmed, true
	}
	return nil, false
}

func parseBoolean(raw string) (bool, bool) {
	norm := strings.ToLower(strings.TrimSpace(raw))
	norm = strings.Trim(norm, `."'!`)
	switch norm {
	case "true", "yes", "1":
		return true, true
	case "false", "no", "0":
		return false, true
	}
	// fall back to the first recognizable token in a longer reply
	for _, tok := range strings.Fields(norm) {
		switch strings.Trim(tok, `.,:;"'!`) {
		case "true", "yes":
			return true, true
		case "false", "no":
			return false, true
		}
	}
	return false, false
}

// parseNumber takes the last numeric literal in the text, tolerating
// thousands separators. Integral values come back as int64.
func parseNumber(raw string) (interface{}, bool) {
	cleaned := strings.ReplaceAll(raw, ",", "")
	matches := numberPattern.FindAllString(cleaned, -1)
	if len(matches) == 0 {
		return nil, false
	}
	f, err := strconv.ParseFloat(matches[len(matches)-1], 64)
	if err != nil {
		return nil, false
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return int64(f), true
	}
	return f, true
}

func parseStructured(raw string) (interface{}, bool) {
	candidate := CleanJSONResponse(raw)
	if !strings.HasPrefix(candidate, "{") && !strings.HasPrefix(candidate, "[") {
		return nil, false
	}
	var v interface{}
	if err := json.Unmarshal([]byte(candidate), &v); err != nil {
		return nil, false
	}
	return v, true
}

func coerceBinary(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "data:") {
		return trimmed
	}
	return "data:text/plain;base64," + base64.StdEncoding.EncodeToString([]byte(trimmed))
}

func coerceText(raw string) string {
	t := strings.TrimSpace(raw)
	if len(t) >= 2 {
		if (t[0] == '"' && t[len(t)-1] == '"') || (t[0] == '\'' && t[len(t)-1] == '\'') {
			t = t[1 : len(t)-1]
		}
	}
	return t
}

// CleanJSONResponse removes markdown formatting and extra prose around a
// JSON payload in model output.
func CleanJSONResponse(response string) string {
	response = strings.ReplaceAll(response, "```json", "")
	response = strings.ReplaceAll(response, "```JSON", "")
	response = strings.ReplaceAll(response, "```", "")

	prefixes := []string{
		"Here is the answer:",
		"Here's the answer:",
		"The answer is:",
		"Answer:",
	}
	trimmed := strings.TrimSpace(response)
	for _, prefix := range prefixes {
		if strings.HasPrefix(trimmed, prefix) {
			trimmed = strings.TrimPrefix(trimmed, prefix)
			break
		}
	}
	response = strings.TrimSpace(trimmed)

	objStart := strings.Index(response, "{")
	arrStart := strings.Index(response, "[")

	if objStart != -1 && (arrStart == -1 || objStart < arrStart) {
		objEnd := findMatchingBrace(response, objStart)
		if objEnd != -1 {
			response = response[objStart : objEnd+1]
		}
	} else if arrStart != -1 {
		arrEnd := findMatchingBracket(response, arrStart)
		if arrEnd != -1 {
			response = response[arrStart : arrEnd+1]
		}
	}

	return strings.TrimSpace(response)
}

// findMatchingBrace finds the matching closing brace for an opening brace
func findMatchingBrace(s string, start int) int {
	if start >= len(s) || s[start] != '{' {
		return -1
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		char := s[i]

		if escaped {
			escaped = false
			continue
		}

		if char == '\\' && inString {
			escaped = true
			continue
		}

		if char == '"' {
			inString = !inString
			continue
		}

		if inString {
			continue
		}

		switch char {
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

// findMatchingBracket finds the matching closing bracket for an opening bracket
func findMatchingBracket(s string, start int) int {
	if start >= len(s) || s[start] != '[' {
		return -1
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		char := s[i]

		if escaped {
			escaped = false
			continue
		}

		if char == '\\' && inString {
			escaped = true
			continue
		}

		if char == '"' {
			inString = !inString
			continue
		}

		if inString {
			continue
		}

		switch char {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}

	return -1
}
