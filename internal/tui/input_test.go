package tui

import (
	"strings"
	"testing"
)

func TestEditRuneAddCharacters(t *testing.T) {
	tests := []struct {
		name  string
		start string
		key   string
		want  string
	}{
		{"append to empty", "", "a", "a"},
		{"append letter", "hel", "l", "hell"},
		{"append digit", "abc", "1", "abc1"},
		{"append space", "hello", " ", "hello "},
		{"append special", "abc", "!", "abc!"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := editRune(tc.start, tc.key)
			if got != tc.want {
				t.Errorf("editRune(%q, %q) = %q, want %q", tc.start, tc.key, got, tc.want)
			}
		})
	}
}

func TestEditRuneBackspace(t *testing.T) {
	tests := []struct {
		name  string
		start string
		want  string
	}{
		{"backspace on single char", "a", ""},
		{"backspace on longer string", "hello", "hell"},
		{"backspace on empty does nothing", "", ""},
		{"backspace removes a full rune", "héllé", "héll"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := editRune(tc.start, "backspace")
			if got != tc.want {
				t.Errorf("editRune(%q, 'backspace') = %q, want %q", tc.start, got, tc.want)
			}
		})
	}
}

func TestEditRuneIgnoresNonPrintableKeys(t *testing.T) {
	original := "hello"
	for _, key := range []string{"enter", "esc", "up", "down", "ctrl+c", "tab", "shift+tab", "pgup"} {
		t.Run(key, func(t *testing.T) {
			if got := editRune(original, key); got != original {
				t.Errorf("editRune(%q, %q) = %q, want unchanged", original, key, got)
			}
		})
	}
}

func TestEditRuneMaxInputLen(t *testing.T) {
	atLimit := strings.Repeat("a", maxInputLen)
	belowLimit := strings.Repeat("a", maxInputLen-1)

	if got := editRune(atLimit, "b"); got != atLimit {
		t.Error("at limit should reject new char")
	}
	if got := editRune(belowLimit, "b"); got != belowLimit+"b" {
		t.Error("below limit should accept new char")
	}
	if got := editRune(atLimit, "backspace"); got != atLimit[:len(atLimit)-1] {
		t.Error("backspace should still work at the limit")
	}
}

func TestEditDigits(t *testing.T) {
	tests := []struct {
		start, key, want string
	}{
		{"", "4", "4"},
		{"4", "2", "42"},
		{"42", "a", "42"},
		{"42", " ", "42"},
		{"42", "backspace", "4"},
		{"123456789012345678", "9", "123456789012345678"},
	}
	for _, tc := range tests {
		if got := editDigits(tc.start, tc.key); got != tc.want {
			t.Errorf("editDigits(%q, %q) = %q, want %q", tc.start, tc.key, got, tc.want)
		}
	}
}

func TestMask(t *testing.T) {
	if got := mask("pässword"); got != strings.Repeat("•", 8) {
		t.Errorf("mask = %q", got)
	}
	if mask("") != "" {
		t.Error("empty secret should mask to empty")
	}
}

func TestTruncateToHeight(t *testing.T) {
	input := "line1\nline2\nline3\nline4\nline5\n"
	tests := []struct {
		name string
		max  int
		want string
	}{
		{"limits lines", 3, "line1\nline2\nline3\n"},
		{"within limit", 10, input},
		{"zero returns all", 0, input},
		{"negative returns all", -1, input},
		{"exact limit", 5, input},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := truncateToHeight(input, tc.max); got != tc.want {
				t.Errorf("truncateToHeight(_, %d) = %q, want %q", tc.max, got, tc.want)
			}
		})
	}
}

func TestRenderChatInput(t *testing.T) {
	unfocused := renderChatInput("bob", "", "say something...", false, 0)
	if !strings.Contains(unfocused, "say something...") {
		t.Error("unfocused empty input should show the placeholder")
	}
	typed := renderChatInput("bob", "hello", "say something...", true, 0)
	if !strings.Contains(typed, "hello") || strings.Contains(typed, "say something") {
		t.Errorf("focused input = %q", typed)
	}
	if !strings.Contains(typed, "█") {
		t.Error("cursor should be visible on frame 0")
	}
}
