package auth

import (
	goerrors "errors"
	"fmt"
	"groupchat/errors"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	passwordTag = "password"
	// argon2 accepts more, the cap bounds the hashing cost of a request
	maxPasswordLength = 72
)

// Validator is the single validator instance of the process, shared by
// every service. The password policy is configurable.
type Validator struct {
	validate          *validator.Validate
	minPasswordLength int
}

func NewValidator(minPasswordLength int) *Validator {
	v := &Validator{validate: validator.New(), minPasswordLength: minPasswordLength}
	// Registration only fails on an empty tag name, which cannot happen here
	_ = v.validate.RegisterValidation(passwordTag, func(fl validator.FieldLevel) bool {
		return v.acceptsPassword(fl.Field().String())
	})
	return v
}

type registration struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,password"`
	Name     string `validate:"max=64"`
}

type chatName struct {
	Name string `validate:"required,max=100"`
}

// ValidateRegister checks a sign up form.
// A password outside the policy is reported as errors.ErrInvalidPassword.
func (v *Validator) ValidateRegister(email, password, name string) error {
	err := v.validate.Struct(registration{Email: email, Password: password, Name: name})
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if goerrors.As(err, &fieldErrors) {
		for _, fe := range fieldErrors {
			if fe.Tag() == passwordTag {
				return fmt.Errorf("%w: at least %d characters mixing upper case, lower case, digits and symbols",
					errors.ErrInvalidPassword, v.minPasswordLength)
			}
		}
	}
	return err
}

// ValidateChatName expects a name already trimmed.
func (v *Validator) ValidateChatName(name string) error {
	if err := v.validate.Struct(chatName{Name: name}); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrInvalidChatName, err)
	}
	return nil
}

func (v *Validator) acceptsPassword(password string) bool {
	length := utf8.RuneCountInString(password)
	if length < v.minPasswordLength || len(password) > maxPasswordLength {
		return false
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsNumber(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	return upper && lower && digit && special
}
