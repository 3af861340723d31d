package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "account-service/pkg/common/errors"
)

func assertInvalid(t *testing.T, err error, msg string) {
	t.Helper()
	if msg == "" {
		assert.NoError(t, err)
		return
	}
	if assert.Error(t, err) {
		assert.Equal(t, msg, err.Error())
		assert.Equal(t, apperrors.KindInvalidInput, apperrors.KindOf(err))
		assert.Equal(t, msg, apperrors.PublicMessage(err))
	}
}

func TestVerifyUsername(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "Username is required"},
		{"john.doe_99", ""},
		{"JOHN", ""},
		{"john doe", "Username must contain only letters, numbers, dots and underscore"},
		{"john-doe", "Username must contain only letters, numbers, dots and underscore"},
		{"jöhn", "Username must contain only letters, numbers, dots and underscore"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assertInvalid(t, VerifyUsername(tt.in), tt.want)
		})
	}
}

func TestVerifyEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "Email is required"},
		{"john@example.com", ""},
		{"a.b+c@sub.example.org", ""},
		{"john@example", "Email is not valid"},
		{"john.example.com", "Email is not valid"},
		{"jo hn@example.com", "Email is not valid"},
		{"john@@example.com", "Email is not valid"},
		{"jo\u00a0hn@example.com", "Email is not valid"},
		{"john@exam\u3000ple.com", "Email is not valid"},
		{"john@example.c\u2028om", "Email is not valid"},
		{"jo\vhn@example.com", "Email is not valid"},
		{"j\ufeffohn@example.com", "Email is not valid"},
		{"jöhn@exämple.com", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assertInvalid(t, VerifyEmail(tt.in), tt.want)
		})
	}
}

func TestVerifyPassword(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "Password is required"},
		{"abc", "Your password must be at least 8 characters"},
		{"abc1", "Your password must be at least 8 characters"},
		{"12345678", "Your password must contain at least one letter."},
		{"abcdefgh", "Your password must contain at least one digit."},
		{"ABCDEFGH", "Your password must contain at least one digit."},
		{"Abcdef12", ""},
		{"abcdefg1", ""},
		{"ABCDEFG1", ""},
		{"\U0001F600\U0001F600\U0001F600a1", ""},
		{"\U0001F600\U0001F600a1b", "Your password must be at least 8 characters"},
		{"ééééééa1", ""},
		{"éééééa1", "Your password must be at least 8 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assertInvalid(t, VerifyPassword(tt.in), tt.want)
		})
	}
}

func TestVerifyAccountOrder(t *testing.T) {
	assertInvalid(t, VerifyAccount("", "bad", "x"), "Username is required")
	assertInvalid(t, VerifyAccount("john", "bad", "x"), "Email is not valid")
	assertInvalid(t, VerifyAccount("john", "john@example.com", "x"), "Your password must be at least 8 characters")
	assertInvalid(t, VerifyAccount("john", "john@example.com", "Abcdef12"), "")
}
