package handler

import "github.com/iliyamo/recipe-sharing-api/internal/model"

// Validator adapts model.Validate to echo.Validator.
type Validator struct{}

func (Validator) Validate(i any) error { return model.Validate(i) }
