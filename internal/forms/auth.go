package forms

import (
	"strings"

	"yatube/internal/validation"
)

// SignupInput is the raw signup form.
type SignupInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Password1 string
	Password2 string
}

type signupFields struct {
	Username  string `form:"username" validate:"required,max=150"`
	Email     string `form:"email" validate:"required,email,max=254"`
	FirstName string `form:"first_name" validate:"max=150"`
	LastName  string `form:"last_name" validate:"max=150"`
	Password1 string `form:"password1" validate:"required"`
	Password2 string `form:"password2" validate:"required,eqfield=Password1"`
}

// ValidateSignup checks the signup form. The returned input has trimmed names.
func ValidateSignup(in SignupInput) (SignupInput, Errors) {
	errs := Errors{}
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	check(signupFields(in), errs)

	if !errs.Has("username") {
		if err := validation.ValidateUsername(in.Username); err != nil {
			errs.Add("username", err.Error())
		}
	}
	if !errs.Has("password1") && !errs.Has("password2") {
		if err := validation.ValidatePassword(in.Password1, in.Username); err != nil {
			errs.Add("password2", err.Error())
		}
	}

	if errs.Any() {
		return SignupInput{}, errs
	}
	return in, nil
}

// LoginInput is the raw login form.
type LoginInput struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

func ValidateLogin(in LoginInput) Errors {
	errs := Errors{}
	in.Username = strings.TrimSpace(in.Username)
	check(in, errs)
	if errs.Any() {
		return errs
	}
	return nil
}
