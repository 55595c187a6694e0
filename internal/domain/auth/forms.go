package auth

import (
	"strings"

	"hrportal/internal/platform/validation"
)

type LoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

func (f LoginForm) Validate() *validation.Validator {
	v := validation.New()
	f.Email = strings.TrimSpace(f.Email)
	v.Struct(f)
	return v
}

type ForgotPasswordForm struct {
	Email string `form:"email" validate:"required,email"`
}

func (f ForgotPasswordForm) Validate() *validation.Validator {
	v := validation.New()
	f.Email = strings.TrimSpace(f.Email)
	v.Struct(f)
	return v
}
