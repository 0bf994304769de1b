package advisor

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/v0xg/eventprobe/internal/pagemap"
)

const systemPrompt = `You help a browser test find the control to click when its usual selectors no longer match.

You will receive:
1. The URL and title of the current page
2. The clickable elements of the page, each with a CSS selector and its visible text
3. The name of the control the test is looking for, such as "add button" or "submit button"

Pick the ONE element that best performs the named action. Labels may be in any language; Hungarian admin pages use words like "Új", "Hozzáadás", "Mentés", "Létrehozás".

Respond with a JSON object:
{"selector": "<selector copied exactly from the list>", "reason": "<short explanation>"}

If no element fits, respond with {"selector": ""}.
Respond ONLY with the JSON object, no explanation or markdown.`

type suggestion struct {
	Selector string `json:"selector"`
	Reason   string `json:"reason"`
}

func buildUserPrompt(m *pagemap.PageMap, elements []pagemap.Element, action string) (string, error) {
	list, err := json.MarshalIndent(elements, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal page elements: %w", err)
	}
	return fmt.Sprintf("Page: %s (%s)\n\nClickable elements:\n%s\n\nLooking for: %s", m.URL, m.Title, list, action), nil
}

// parseSuggestion extracts the JSON object from a response that may contain
// surrounding text
func parseSuggestion(response string) (suggestion, error) {
	var s suggestion
	if err := json.Unmarshal([]byte(response), &s); err == nil {
		return s, nil
	}

	start := strings.Index(response, "{")
	if start == -1 {
		return s, fmt.Errorf("no JSON object found in response")
	}

	depth := 0
	end := -1
	for i := start; i < len(response) && end == -1; i++ {
		switch response[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				end = i + 1
			}
		}
	}
	if end == -1 {
		return s, fmt.Errorf("no matching closing brace found")
	}

	if err := json.Unmarshal([]byte(response[start:end]), &s); err != nil {
		return s, fmt.Errorf("failed to parse extracted JSON: %w", err)
	}
	return s, nil
}
