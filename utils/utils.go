package utils

import (
	// Go Internal Packages
	"strings"
)

// ContainsAny reports whether s contains at least one of subs.
func ContainsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// ContainsAll reports whether s contains every one of subs.
func ContainsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

// CollapseSpaces trims s and replaces every run of whitespace with one space.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
