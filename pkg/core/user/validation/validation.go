// Package validation checks the format of account fields. Every failure is an
// InvalidInput error whose message is shown to the client.
package validation

import (
	"errors"
	"regexp"
	"unicode/utf16"

	validation "github.com/go-ozzo/ozzo-validation"

	apperrors "account-service/pkg/common/errors"
)

// emailPart is anything but '@' and whitespace, Unicode spaces included.
const emailPart = `[^\s\x0B\p{Z}\x{FEFF}@]+`

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.]+$`)
	emailPattern    = regexp.MustCompile(`^` + emailPart + `@` + emailPart + `\.` + emailPart + `$`)
	letterPattern   = regexp.MustCompile(`[a-zA-Z]`)
	digitPattern    = regexp.MustCompile(`[0-9]`)
)

// Rules run in order and the first failure wins.
var (
	usernameRules = []validation.Rule{
		validation.Required.Error("Username is required"),
		validation.Match(usernamePattern).Error("Username must contain only letters, numbers, dots and underscore"),
	}
	emailRules = []validation.Rule{
		validation.Required.Error("Email is required"),
		validation.Match(emailPattern).Error("Email is not valid"),
	}
	passwordRules = []validation.Rule{
		validation.Required.Error("Password is required"),
		minUTF16Length(8, "Your password must be at least 8 characters"),
		validation.Match(letterPattern).Error("Your password must contain at least one letter."),
		validation.Match(digitPattern).Error("Your password must contain at least one digit."),
	}
)

// minUTF16Length measures in UTF-16 code units, so a character outside the
// Basic Multilingual Plane counts twice.
func minUTF16Length(n int, msg string) validation.Rule {
	return validation.By(func(value interface{}) error {
		s, _ := value.(string)
		if len(utf16.Encode([]rune(s))) < n {
			return errors.New(msg)
		}
		return nil
	})
}

func verify(value string, rules []validation.Rule) error {
	if err := validation.Validate(value, rules...); err != nil {
		return apperrors.New(apperrors.KindInvalidInput, err.Error())
	}
	return nil
}

func VerifyUsername(username string) error {
	return verify(username, usernameRules)
}

func VerifyEmail(email string) error {
	return verify(email, emailRules)
}

// VerifyPassword requires at least 8 characters with one letter and one digit.
func VerifyPassword(password string) error {
	return verify(password, passwordRules)
}

// VerifyAccount checks username, email and password in that order.
func VerifyAccount(username, email, password string) error {
	if err := VerifyUsername(username); err != nil {
		return err
	}
	if err := VerifyEmail(email); err != nil {
		return err
	}
	return VerifyPassword(password)
}
