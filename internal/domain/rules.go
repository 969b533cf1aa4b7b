package domain

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Field rule messages.
const (
	MsgBlank        = "This field cannot be blank."
	MsgInvalidURL   = "Enter a valid URL."
	MsgInvalidEmail = "Enter a valid email address."
	MsgUsername     = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
)

var (
	urlSchemeRegex = regexp.MustCompile(`(?i)^(https?|ftps?)://`)
	usernameRegex  = regexp.MustCompile(`^[\w.@+-]+$`)
)

// notBlank rejects strings that are empty after trimming whitespace.
var notBlank = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return validation.NewError("validation_blank", MsgBlank)
	}
	return nil
})

// maxLength limits a string to n characters, counting runes.
func maxLength(n int) validation.Rule {
	return validation.By(func(value interface{}) error {
		s, _ := value.(string)
		if count := utf8.RuneCountInString(s); count > n {
			return validation.NewError(
				"validation_max_length",
				fmt.Sprintf("Ensure this value has at most %d characters (it has %d).", n, count),
			)
		}
		return nil
	})
}

// oneOf restricts a string to the given choices.
func oneOf(choices ...string) validation.Rule {
	return validation.By(func(value interface{}) error {
		s, _ := value.(string)
		for _, c := range choices {
			if s == c {
				return nil
			}
		}
		return validation.NewError(
			"validation_choice",
			fmt.Sprintf("Value '%s' is not a valid choice.", s),
		)
	})
}

var urlRules = []validation.Rule{
	validation.Match(urlSchemeRegex).Error(MsgInvalidURL),
	is.URL.Error(MsgInvalidURL),
}

var emailRules = []validation.Rule{
	is.EmailFormat.Error(MsgInvalidEmail),
}

var usernameRules = []validation.Rule{
	validation.Match(usernameRegex).Error(MsgUsername),
}

// check runs rules against value and records the first failure under field.
func check(errs *FieldErrors, field string, value interface{}, rules ...validation.Rule) {
	if err := validation.Validate(value, rules...); err != nil {
		errs.Add(field, err.Error())
	}
}
