package auth

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/agext/levenshtein"
)

// MinPasswordLength is the shortest password the policy accepts.
const MinPasswordLength = 8

// MaxSimilarity is the similarity ratio at or above which a password is
// considered too close to one of the user's attributes.
const MaxSimilarity = 0.7

//go:embed common_passwords.txt
var commonPasswordsFile string

var (
	commonPasswords = parseCommonPasswords(commonPasswordsFile)
	nonWordRegex    = regexp.MustCompile(`\W+`)
	digitsRegex     = regexp.MustCompile(`^[0-9]+$`)
)

func parseCommonPasswords(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, line := range strings.Split(s, "\n") {
		if line = strings.ToLower(strings.TrimSpace(line)); line != "" {
			out[line] = struct{}{}
		}
	}
	return out
}

// UserAttributes are the user fields a password must not resemble.
type UserAttributes struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
}

// ValidatePassword runs every password check and returns the messages of
// those that failed, in check order. A nil result means the password is
// acceptable.
func ValidatePassword(password string, attrs UserAttributes) []string {
	var problems []string
	if msg := checkSimilarity(password, attrs); msg != "" {
		problems = append(problems, msg)
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		problems = append(problems, fmt.Sprintf(
			"This password is too short. It must contain at least %d characters.", MinPasswordLength))
	}
	if _, ok := commonPasswords[strings.ToLower(strings.TrimSpace(password))]; ok {
		problems = append(problems, "This password is too common.")
	}
	if digitsRegex.MatchString(password) {
		problems = append(problems, "This password is entirely numeric.")
	}
	return problems
}

func checkSimilarity(password string, attrs UserAttributes) string {
	if password == "" {
		return ""
	}
	lowered := strings.ToLower(password)

	for _, attr := range []struct {
		value, verbose string
	}{
		{attrs.Username, "username"},
		{attrs.FirstName, "first name"},
		{attrs.LastName, "last name"},
		{attrs.Email, "email address"},
	} {
		if attr.value == "" {
			continue
		}
		value := strings.ToLower(attr.value)
		parts := append(nonWordRegex.Split(value, -1), value)
		for _, part := range parts {
			if part == "" || exceedsLengthRatio(lowered, part) {
				continue
			}
			if levenshtein.Similarity(lowered, part, nil) >= MaxSimilarity {
				return fmt.Sprintf("The password is too similar to the %s.", attr.verbose)
			}
		}
	}
	return ""
}

// exceedsLengthRatio skips attribute parts so short relative to the password
// that they could never reach MaxSimilarity.
func exceedsLengthRatio(password, value string) bool {
	pwdLen := utf8.RuneCountInString(password)
	valueLen := utf8.RuneCountInString(value)
	bound := MaxSimilarity / 2 * float64(pwdLen)
	return pwdLen >= 10*valueLen && float64(valueLen) < bound
}
