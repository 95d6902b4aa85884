package util

import (
	"errors"
	"strings"
)

var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName returns name as a single safe path segment. Letters,
// digits, '.', '-' and '_' are kept and every other rune becomes '_'.
// Empty names and names containing ".." are rejected.
func SanitizeFileName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.Contains(name, "..") {
		return "", ErrInvalidFileName
	}
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if clean == "." {
		return "", ErrInvalidFileName
	}
	return clean, nil
}
