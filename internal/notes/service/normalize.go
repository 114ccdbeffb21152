package service

import (
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	slugPattern  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// normalizeEmail lowercases and trims an email address. Every email stored
// or compared goes through this so lookups never miss on case.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// normalizeSlug lowercases and trims a tenant slug.
func normalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

func validEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func validSlug(slug string) bool {
	return slugPattern.MatchString(slug)
}
