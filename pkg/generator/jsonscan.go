package generator

import (
	"encoding/json"
	"errors"
	"strings"
)

var (
	ErrNoJSON         = errors.New("no JSON object found")
	ErrIncompleteJSON = errors.New("incomplete JSON object")
)

// IsCompleteJSON reports whether every brace and bracket in s is closed
// and no string literal is left open. It does not validate the document.
func IsCompleteJSON(s string) bool {
	depth := 0
	inString := false
	escaped := false
	for _, r := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0 && !inString
}

// ExtractJSON pulls the first JSON object out of model output, dropping
// markdown fences and any prose around it. Prose may itself contain
// braces: each '{' is tried in turn until one opens a balanced, valid,
// non-empty object. An object still open at the end of the text is
// ErrIncompleteJSON.
func ExtractJSON(text string) (string, error) {
	text = stripFences(strings.TrimSpace(text))

	for start := strings.IndexByte(text, '{'); start >= 0; {
		end, closed := objectEnd(text, start)
		if !closed {
			return "", ErrIncompleteJSON
		}
		candidate := text[start : end+1]
		if json.Valid([]byte(candidate)) && strings.TrimSpace(candidate[1:len(candidate)-1]) != "" {
			return candidate, nil
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", ErrNoJSON
}

// objectEnd finds the '}' that closes the '{' at start, skipping string
// literals. closed is false when the text ends first.
func objectEnd(text string, start int) (end int, closed bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
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
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

func stripFences(text string) string {
	open := strings.Index(text, "```")
	if open < 0 {
		return text
	}
	body := text[open+3:]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		// Drop the language tag line, e.g. ```json
		if tag := strings.TrimSpace(body[:nl]); !strings.ContainsAny(tag, "{[") {
			body = body[nl+1:]
		}
	}
	if end := strings.Index(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}
