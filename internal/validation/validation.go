// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var (
	usernameRegex  = regexp.MustCompile(`^[\w.@+-]+$`)
	groupSlugRegex = regexp.MustCompile(`^[a-z0-9_-]+$`)
)

const (
	maxUsernameLen  = 150
	minPasswordLen  = 8
	maxPasswordLen  = 128
	maxGroupSlugLen = 50
	maxGroupTitle   = 200
)

// ValidateUsername accepts letters, digits and @ . + - _ up to 150 characters.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username is required")
	}
	if len([]rune(username)) > maxUsernameLen {
		return fmt.Errorf("username must not exceed %d characters", maxUsernameLen)
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username may contain only letters, numbers, and @/./+/-/_ characters")
	}
	return nil
}

// ValidatePassword checks length, rejects all-digit passwords and passwords equal to the username.
func ValidatePassword(password, username string) error {
	if len(password) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters long", minPasswordLen)
	}
	if len(password) > maxPasswordLen {
		return fmt.Errorf("password must not exceed %d characters", maxPasswordLen)
	}

	allDigits := true
	for _, r := range password {
		if !unicode.IsDigit(r) {
			allDigits = false
			break
		}
	}
	if allDigits {
		return fmt.Errorf("password cannot be entirely numeric")
	}

	if username != "" && strings.EqualFold(password, username) {
		return fmt.Errorf("password is too similar to the username")
	}
	return nil
}

// ValidateGroupSlug validates a URL-safe group slug.
func ValidateGroupSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("slug is required")
	}
	if len(slug) > maxGroupSlugLen {
		return fmt.Errorf("slug must not exceed %d characters", maxGroupSlugLen)
	}
	if !groupSlugRegex.MatchString(slug) {
		return fmt.Errorf("slug may contain only lowercase letters, numbers, underscores, and hyphens")
	}
	return nil
}

// ValidateGroupTitle requires a non-blank title of at most 200 characters.
func ValidateGroupTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("title is required")
	}
	if len([]rune(title)) > maxGroupTitle {
		return fmt.Errorf("title must not exceed %d characters", maxGroupTitle)
	}
	return nil
}
