package sessiontest

import (
	"fmt"
	"strings"
)

// Input returns a text input with the given id
func Input(id string) *Node {
	return &Node{ID: id, Tag: "input", Type: "text"}
}

// DateInput returns an input[type=date] that, like Chrome's native widget,
// shows an empty value until a complete ISO date has been typed
func DateInput(id string) *Node {
	return &Node{ID: id, Tag: "input", Type: "date", Accept: isoOnly}
}

// SlashDateInput returns a date widget whose framework only reacts to
// keystrokes in MM/DD/YYYY form and rejects script assignment
func SlashDateInput(id string) *Node {
	return &Node{ID: id, Tag: "input", Type: "date", Accept: slashOnly, IgnoreScript: true}
}

// Button returns a button with the given label and classes
func Button(text string, classes ...string) *Node {
	return &Node{Tag: "button", Text: text, Classes: classes}
}

// Select returns a select element with the given id
func Select(id string) *Node {
	return &Node{ID: id, Tag: "select"}
}

func isoOnly(typed string) (string, bool) {
	var y, m, d int
	if len(typed) != 10 {
		return "", false
	}
	if _, err := fmt.Sscanf(typed, "%4d-%2d-%2d", &y, &m, &d); err != nil {
		return "", false
	}
	return typed, true
}

// slashOnly normalizes MM/DD/YYYY to the ISO value a date input reports
func slashOnly(typed string) (string, bool) {
	parts := strings.Split(typed, "/")
	if len(parts) != 3 || len(parts[0]) != 2 || len(parts[1]) != 2 || len(parts[2]) != 4 {
		return "", false
	}
	return parts[2] + "-" + parts[0] + "-" + parts[1], true
}
