package ui

import (
	"strconv"
	"strings"

	"github.com/Dicklesworthstone/picam/pkg/model"
)

// IsPrintableKey returns true if the key is a printable ASCII character.
func IsPrintableKey(key string) bool {
	return len(key) == 1 && key[0] >= 32 && key[0] < 127
}

// isSpinboxKey accepts digits and a leading minus
func isSpinboxKey(key, current string) bool {
	if key == "-" {
		return current == ""
	}
	return len(key) == 1 && key[0] >= '0' && key[0] <= '9'
}

// parseSpinbox converts typed text to a value for p. ok is false when
// nothing usable was typed.
func parseSpinbox(p model.Parameter, text string) (int, bool) {
	text = strings.TrimSpace(text)
	if text == "" || text == "-" {
		return 0, false
	}
	v, err := strconv.Atoi(text)
	if err != nil {
		return 0, false
	}
	return p.Range().Clamp(v), true
}
