package handler

import "github.com/go-playground/validator/v10"

// Validator adapts go-playground/validator to echo.Validator so handlers
// can call c.Validate on their request DTOs.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
}

func (cv *Validator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}
