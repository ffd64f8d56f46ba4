// Package domain contains value types without transport or lifecycle logic.
package domain

import "strings"

const GuestName = "Guest"

// NormalizeDisplayName trims the name and falls back to GuestName when blank.
func NormalizeDisplayName(raw string) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return GuestName
	}
	return name
}

// NormalizeMessage trims chat text and rejects empty messages.
func NormalizeMessage(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", ErrInvalidMessage
	}
	return text, nil
}
