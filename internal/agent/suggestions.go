package agent

import (
	"strings"
	"unicode/utf8"
)

const (
	maxSuggestions      = 5
	maxSuggestionLength = 100
)

// DefaultSuggestions are offered when the narrative lists no actions.
var DefaultSuggestions = []string{"look around", "check inventory"}

// ExtractSuggestedActions collects the bulleted lines ("-", "*" or "•")
// of a narrative.
func ExtractSuggestedActions(narrative string) []string {
	actions := make([]string, 0, maxSuggestions)
	for _, line := range strings.Split(narrative, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "*") && !strings.HasPrefix(line, "•") {
			continue
		}
		action := strings.TrimSpace(strings.TrimLeft(line, "-*• "))
		if action == "" || utf8.RuneCountInString(action) >= maxSuggestionLength {
			continue
		}
		actions = append(actions, action)
		if len(actions) == maxSuggestions {
			break
		}
	}

	if len(actions) == 0 {
		return append(actions, DefaultSuggestions...)
	}
	return actions
}
